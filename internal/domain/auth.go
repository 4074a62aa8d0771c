package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is the UI language preference.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

var languageMatcher = language.NewMatcher([]language.Tag{language.English, language.Hindi})

// ParseLanguage maps a BCP 47 tag such as "hi-IN" or "en_US" onto a supported
// language. The second return is false when nothing matched with confidence.
func ParseLanguage(raw string) (Language, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", "-"))
	if raw == "" {
		return LanguageEnglish, false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return LanguageEnglish, false
	}
	_, index, confidence := languageMatcher.Match(tag)
	if confidence < language.High {
		return LanguageEnglish, false
	}
	if index == 1 {
		return LanguageHindi, true
	}
	return LanguageEnglish, true
}

// Toggle returns the other supported language.
func (l Language) Toggle() Language {
	if l == LanguageHindi {
		return LanguageEnglish
	}
	return LanguageHindi
}

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DashboardSummary aggregates counters for the home view.
type DashboardSummary struct {
	TotalTickets  int `json:"totalTickets"`
	OpenTickets   int `json:"openTickets"`
	ActiveChats   int `json:"activeChats"`
	AssignedTasks int `json:"assignedTasks"`
	StaffOnline   int `json:"staffOnline"`
	Performance   int `json:"performance"`
}
