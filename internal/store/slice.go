// Package store keeps an in-memory mirror of each remote entity collection.
//
// A Slice wraps one repository.Resource: every action calls the API and, on
// success, merges the server's answer into the local list. Failed actions leave
// the list untouched and record the error message for display. Concurrent
// actions are allowed; the response that resolves last wins.
package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
)

// State is a copy of a slice's contents at one instant.
type State[T entity.Record] struct {
	Items     []T       `json:"items"`
	Current   *T        `json:"current,omitempty"`
	Loading   bool      `json:"loading"`
	Err       string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type EventKind string

const (
	EventReplaced EventKind = "replaced"
	EventUpserted EventKind = "upserted"
	EventRemoved  EventKind = "removed"
	EventReset    EventKind = "reset"
)

// Event describes a successful mutation. Items holds the whole list for
// EventReplaced and the single affected record for EventUpserted.
type Event[T entity.Record] struct {
	Slice string
	Kind  EventKind
	Items []T
	ID    string
}

type Slice[T entity.Record] struct {
	name   string
	repo   repository.Resource[T]
	logger *logrus.Logger
	now    func() time.Time

	mu      sync.RWMutex
	state   State[T]
	pending int

	subMu  sync.Mutex
	subs   map[int]func(Event[T])
	nextID int
}

func NewSlice[T entity.Record](name string, repo repository.Resource[T], logger *logrus.Logger) *Slice[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Slice[T]{
		name:   name,
		repo:   repo,
		logger: logger,
		now:    time.Now,
		subs:   map[int]func(Event[T]){},
	}
}

func (s *Slice[T]) Name() string { return s.name }

// Subscribe registers fn for change events and returns a func that removes it.
func (s *Slice[T]) Subscribe(fn func(Event[T])) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Slice[T]) emit(ev Event[T]) {
	ev.Slice = s.name
	s.subMu.Lock()
	fns := make([]func(Event[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Slice[T]) begin() {
	s.mu.Lock()
	s.pending++
	s.state.Loading = true
	s.mu.Unlock()
}

// finish runs apply under the lock when err is nil and always clears one
// pending action.
func (s *Slice[T]) finish(action string, err error, apply func()) {
	s.mu.Lock()
	s.pending--
	s.state.Loading = s.pending > 0
	if err != nil {
		s.state.Err = ErrorMessage(err)
	} else {
		s.state.Err = ""
		if apply != nil {
			apply()
		}
		s.state.UpdatedAt = s.now()
	}
	s.mu.Unlock()
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"slice": s.name, "action": action}).Warn("slice action failed")
	}
}

// Fetch replaces the list with the server's.
func (s *Slice[T]) Fetch(ctx context.Context, query url.Values) ([]T, error) {
	s.begin()
	items, err := s.repo.List(ctx, query)
	s.finish("fetch", err, func() { s.state.Items = items })
	if err != nil {
		return nil, err
	}
	s.emit(Event[T]{Kind: EventReplaced, Items: items})
	return items, nil
}

// FetchOne loads a single record, makes it current and upserts it into the list.
func (s *Slice[T]) FetchOne(ctx context.Context, id string) (T, error) {
	s.begin()
	rec, err := s.repo.Get(ctx, id)
	s.finish("fetch_one", err, func() {
		if rec.RecordID() == "" {
			return
		}
		cur := rec
		s.state.Current = &cur
		s.upsertLocked(rec)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	s.emit(Event[T]{Kind: EventUpserted, Items: []T{rec}, ID: rec.RecordID()})
	return rec, nil
}

// Create appends the record the server returned. A reply that carries no
// record (no id) leaves the list alone.
func (s *Slice[T]) Create(ctx context.Context, rec T, files ...repository.Upload) (T, error) {
	s.begin()
	created, err := s.repo.Create(ctx, rec, files...)
	s.finish("create", err, func() { s.upsertLocked(created) })
	if err != nil {
		var zero T
		return zero, err
	}
	if created.RecordID() == "" {
		s.logger.WithField("slice", s.name).Warn("create reply carried no record")
		return created, nil
	}
	s.emit(Event[T]{Kind: EventUpserted, Items: []T{created}, ID: created.RecordID()})
	return created, nil
}

// Update replaces the matching record with the server's reply. When the reply
// carries no record the record is fetched again.
func (s *Slice[T]) Update(ctx context.Context, id string, patch any, files ...repository.Upload) (T, error) {
	s.begin()
	updated, err := s.repo.Update(ctx, id, patch, files...)
	if err == nil && updated.RecordID() == "" {
		updated, err = s.reload(ctx, id)
	}
	s.finish("update", err, func() { s.upsertLocked(updated) })
	if err != nil {
		var zero T
		return zero, err
	}
	s.emit(Event[T]{Kind: EventUpserted, Items: []T{updated}, ID: updated.RecordID()})
	return updated, nil
}

func (s *Slice[T]) reload(ctx context.Context, id string) (T, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return rec, fmt.Errorf("reloading %s %s after update: %w", s.name, id, err)
	}
	return rec, nil
}

func (s *Slice[T]) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.repo.Delete(ctx, id)
	s.finish("delete", err, func() { s.removeLocked(id) })
	if err != nil {
		return err
	}
	s.emit(Event[T]{Kind: EventRemoved, ID: id})
	return nil
}

// SoftDelete flips the record's isDeleted flag on the server and drops it from
// the visible list.
func (s *Slice[T]) SoftDelete(ctx context.Context, id string) error {
	s.begin()
	_, err := s.repo.Update(ctx, id, map[string]any{"isDeleted": true})
	s.finish("soft_delete", err, func() { s.removeLocked(id) })
	if err != nil {
		return err
	}
	s.emit(Event[T]{Kind: EventRemoved, ID: id})
	return nil
}

// Optimistic applies mutate to the local record before calling the API with
// patch. On failure the prior record is restored. A record that is not
// mirrored yet is patched on the server all the same and the reply upserted.
// A reply without a record keeps the locally mutated one.
func (s *Slice[T]) Optimistic(ctx context.Context, id string, mutate func(T) T, patch any) (T, error) {
	var zero, prior, applied T
	s.mu.Lock()
	idx := s.indexLocked(id)
	mirrored := idx >= 0
	if mirrored {
		prior = s.state.Items[idx]
		applied = mutate(prior)
		s.state.Items[idx] = applied
	}
	s.pending++
	s.state.Loading = true
	s.mu.Unlock()

	updated, err := s.repo.Update(ctx, id, patch)
	if err == nil && updated.RecordID() == "" {
		if mirrored {
			updated = applied
		} else {
			updated, err = s.reload(ctx, id)
		}
	}

	s.mu.Lock()
	s.pending--
	s.state.Loading = s.pending > 0
	if err != nil {
		s.state.Err = ErrorMessage(err)
		if i := s.indexLocked(id); mirrored && i >= 0 {
			s.state.Items[i] = prior
		}
	} else {
		s.state.Err = ""
		s.upsertLocked(updated)
		s.state.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"slice": s.name, "action": "optimistic", "id": id}).Warn("optimistic update rolled back")
		return zero, err
	}
	s.emit(Event[T]{Kind: EventUpserted, Items: []T{updated}, ID: id})
	return updated, nil
}

// Merge upserts a record pushed by the server outside of a request. Records
// without an id are ignored.
func (s *Slice[T]) Merge(rec T) {
	if rec.RecordID() == "" {
		return
	}
	s.mu.Lock()
	s.upsertLocked(rec)
	s.state.UpdatedAt = s.now()
	s.mu.Unlock()
	s.emit(Event[T]{Kind: EventUpserted, Items: []T{rec}, ID: rec.RecordID()})
}

// Reset forgets everything, e.g. on sign-out.
func (s *Slice[T]) Reset() {
	s.mu.Lock()
	s.state = State[T]{Loading: s.pending > 0}
	s.mu.Unlock()
	s.emit(Event[T]{Kind: EventReset})
}

func (s *Slice[T]) indexLocked(id string) int {
	for i, it := range s.state.Items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}

// upsertLocked ignores records without an id: they are replies that carried
// no record, not entries.
func (s *Slice[T]) upsertLocked(rec T) {
	if rec.RecordID() == "" {
		return
	}
	if i := s.indexLocked(rec.RecordID()); i >= 0 {
		s.state.Items[i] = rec
	} else {
		s.state.Items = append(s.state.Items, rec)
	}
	if s.state.Current != nil && (*s.state.Current).RecordID() == rec.RecordID() {
		cur := rec
		s.state.Current = &cur
	}
}

func (s *Slice[T]) removeLocked(id string) {
	if i := s.indexLocked(id); i >= 0 {
		s.state.Items = append(s.state.Items[:i:i], s.state.Items[i+1:]...)
	}
	if s.state.Current != nil && (*s.state.Current).RecordID() == id {
		s.state.Current = nil
	}
}
