package domain

import "strings"

// LanguageCode identifies an output language for advice and alerts.
type LanguageCode string

const (
	English  LanguageCode = "en"
	Amharic  LanguageCode = "am"
	Oromo    LanguageCode = "om"
	Tigrinya LanguageCode = "ti"
)

var languageNames = map[LanguageCode]string{
	English:  "English",
	Amharic:  "Amharic",
	Oromo:    "Oromo",
	Tigrinya: "Tigrinya",
}

// ParseLanguage maps a code to a supported language, falling back to English.
func ParseLanguage(code string) LanguageCode {
	lc := LanguageCode(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := languageNames[lc]; ok {
		return lc
	}
	return English
}

// Name returns the English name of the language used in model prompts.
func (l LanguageCode) Name() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[English]
}
