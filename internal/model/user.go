// Package model defines data structures for the bot.
package model

import (
	"time"
)

// Supported UI languages.
const (
	LangEnglish = "en"
	LangRussian = "ru"
	LangUzbek   = "uz"
)

// KnownLanguage reports whether code is one of the supported languages.
func KnownLanguage(code string) bool {
	switch code {
	case LangEnglish, LangRussian, LangUzbek:
		return true
	}
	return false
}

// User represents a chat user and their language preference.
type User struct {
	ID        int64     `json:"id"`
	Language  string    `json:"language"`
	FirstName string    `json:"first_name,omitempty"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
