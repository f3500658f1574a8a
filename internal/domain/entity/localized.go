package entity

import "strings"

// Localized pairs the English and Arabic text of the same logical value.
type Localized struct {
	EN string `json:"en" validate:"required"`
	AR string `json:"ar" validate:"required"`
}

// L is shorthand for building a Localized value.
func L(en, ar string) Localized { return Localized{EN: en, AR: ar} }

func (l Localized) IsZero() bool { return l.EN == "" && l.AR == "" }

// Contains reports whether either language contains term, ignoring case.
func (l Localized) Contains(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(l.EN), term) || strings.Contains(strings.ToLower(l.AR), term)
}

// Record is implemented by every entity mirrored from the remote API.
type Record interface {
	RecordID() string
}
