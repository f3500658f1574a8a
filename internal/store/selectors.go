package store

import (
	"errors"

	"github.com/oksasatya/course-admin/internal/domain/repository"
)

// All returns a copy of the list.
func (s *Slice[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.state.Items))
	copy(out, s.state.Items)
	return out
}

func (s *Slice[T]) ByID(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.state.Items[i], true
	}
	var zero T
	return zero, false
}

func (s *Slice[T]) Filter(pred func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, it := range s.state.Items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// Count returns how many records satisfy pred; a nil pred counts everything.
func (s *Slice[T]) Count(pred func(T) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pred == nil {
		return len(s.state.Items)
	}
	n := 0
	for _, it := range s.state.Items {
		if pred(it) {
			n++
		}
	}
	return n
}

func (s *Slice[T]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Items = make([]T, len(s.state.Items))
	copy(st.Items, s.state.Items)
	if s.state.Current != nil {
		cur := *s.state.Current
		st.Current = &cur
	}
	return st
}

// ErrorMessage is the text shown to staff for a failed action: the server's
// message for expected API errors, the error text otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *repository.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
