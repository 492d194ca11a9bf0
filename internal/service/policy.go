package service

import (
	"github.com/sinoai/medassist-bot/internal/model"
)

// languagePolicy describes how a UI language moves through the
// inference pipeline. A bridged language is translated to its pivot
// before inference and back after, because the model's instruction set
// is not tuned for it directly. Adding another bridged language is a
// data change here, not a code change.
type languagePolicy struct {
	PreTranslate  bool
	PostTranslate bool
	Pivot         string
}

var bridgePolicies = map[string]languagePolicy{
	model.LangUzbek: {PreTranslate: true, PostTranslate: true, Pivot: model.LangEnglish},
}

func policyFor(language string) languagePolicy {
	if p, ok := bridgePolicies[language]; ok {
		return p
	}
	return languagePolicy{}
}
