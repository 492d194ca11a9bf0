package bot

import (
	"github.com/sinoai/medassist-bot/internal/model"
	"github.com/sinoai/medassist-bot/internal/telegram"
)

// Callback data prefixes.
const (
	callbackLangPrefix    = "lang_"
	callbackSuggestPrefix = "suggest_"
)

func languageKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "🇺🇿 O'zbekcha", CallbackData: callbackLangPrefix + model.LangUzbek}},
			{{Text: "🇷🇺 Русский", CallbackData: callbackLangPrefix + model.LangRussian}},
			{{Text: "🇬🇧 English", CallbackData: callbackLangPrefix + model.LangEnglish}},
		},
	}
}

// suggestionKeyboard renders follow-up suggestions as one button per
// row. Returns nil when there is nothing to show.
func suggestionKeyboard(suggestions []model.Suggestion) *telegram.InlineKeyboardMarkup {
	if len(suggestions) == 0 {
		return nil
	}
	rows := make([][]telegram.InlineKeyboardButton, 0, len(suggestions))
	for _, s := range suggestions {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         "💬 " + s.Text,
			CallbackData: callbackSuggestPrefix + s.ID,
		}})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
