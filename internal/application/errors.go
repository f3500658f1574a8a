package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotAdmin        = errors.New("only administrators may sign in to the dashboard")
	ErrSignedOut       = errors.New("not signed in")
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenExpired    = errors.New("token expired")
)

// ValidationError lists form fields that failed validation, keyed by path.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Details[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(details map[string]string) error {
	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Details: details}
}
