package model

import (
	"time"
)

// SuggestionTTL is how long a cached suggestion stays retrievable.
const SuggestionTTL = 24 * time.Hour

// Suggestion is a follow-up question offered as a one-tap button. The ID
// is short enough to fit the transport's callback payload limit; the full
// text lives in the suggestion cache.
type Suggestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
