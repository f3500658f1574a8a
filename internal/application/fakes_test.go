package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

// memResource is an in-memory stand-in for a remote collection.
type memResource[T entity.Record] struct {
	mu     sync.Mutex
	prefix string
	seq    int
	items  []T
	calls  []string
	failOn func(op string, rec T) error
}

func newMem[T entity.Record](prefix string, seed ...T) *memResource[T] {
	return &memResource[T]{prefix: prefix, items: seed}
}

func (m *memResource[T]) record(op string) {
	m.calls = append(m.calls, op)
}

func (m *memResource[T]) check(op string, rec T) error {
	if m.failOn == nil {
		return nil
	}
	return m.failOn(op, rec)
}

// withID sets the _id member through JSON, which every entity shares.
func withID[T entity.Record](rec T, id string) T {
	b, _ := json.Marshal(rec)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	m["_id"] = id
	b, _ = json.Marshal(m)
	var out T
	_ = json.Unmarshal(b, &out)
	return out
}

func mergePatch[T entity.Record](rec T, patch map[string]any) T {
	b, _ := json.Marshal(rec)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	for k, v := range patch {
		m[k] = v
	}
	b, _ = json.Marshal(m)
	var out T
	_ = json.Unmarshal(b, &out)
	return out
}

func (m *memResource[T]) List(_ context.Context, _ url.Values) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("list")
	var zero T
	if err := m.check("list", zero); err != nil {
		return nil, err
	}
	return append([]T(nil), m.items...), nil
}

func (m *memResource[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("get:" + id)
	var zero T
	if err := m.check("get", zero); err != nil {
		return zero, err
	}
	for _, it := range m.items {
		if it.RecordID() == id {
			return it, nil
		}
	}
	return zero, &repository.APIError{Status: 404, Message: "not found"}
}

func (m *memResource[T]) Create(_ context.Context, rec T, _ ...repository.Upload) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create")
	if err := m.check("create", rec); err != nil {
		var zero T
		return zero, err
	}
	m.seq++
	out := withID(rec, fmt.Sprintf("%s%d", m.prefix, m.seq))
	m.items = append(m.items, out)
	return out, nil
}

func (m *memResource[T]) Update(_ context.Context, id string, patch any, _ ...repository.Upload) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update:" + id)
	var zero T
	for i, it := range m.items {
		if it.RecordID() != id {
			continue
		}
		if err := m.check("update", it); err != nil {
			return zero, err
		}
		var next T
		switch p := patch.(type) {
		case map[string]any:
			next = mergePatch(it, p)
		case T:
			next = withID(p, id)
		default:
			return zero, fmt.Errorf("unsupported patch %T", patch)
		}
		m.items[i] = next
		return next, nil
	}
	return zero, &repository.APIError{Status: 404, Message: "not found"}
}

func (m *memResource[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete:" + id)
	var zero T
	if err := m.check("delete", zero); err != nil {
		return err
	}
	for i, it := range m.items {
		if it.RecordID() == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return &repository.APIError{Status: 404, Message: "not found"}
}

type memResources struct {
	courses       *memResource[entity.Course]
	modules       *memResource[entity.Module]
	topics        *memResource[entity.Topic]
	videos        *memResource[entity.Video]
	assignments   *memResource[entity.Assignment]
	questions     *memResource[entity.Question]
	categories    *memResource[entity.Category]
	instructors   *memResource[entity.Instructor]
	users         *memResource[entity.User]
	stories       *memResource[entity.SuccessStory]
	notifications *memResource[entity.Notification]
}

func newTestCatalog() (*Catalog, *memResources) {
	m := &memResources{
		courses:       newMem[entity.Course]("course"),
		modules:       newMem[entity.Module]("mod"),
		topics:        newMem[entity.Topic]("top"),
		videos:        newMem[entity.Video]("vid"),
		assignments:   newMem[entity.Assignment]("asg"),
		questions:     newMem[entity.Question]("q"),
		categories:    newMem[entity.Category]("cat"),
		instructors:   newMem[entity.Instructor]("ins"),
		users:         newMem[entity.User]("user"),
		stories:       newMem[entity.SuccessStory]("story"),
		notifications: newMem[entity.Notification]("notif"),
	}
	c := NewCatalog(Resources{
		Courses:       m.courses,
		Modules:       m.modules,
		Topics:        m.topics,
		Videos:        m.videos,
		Assignments:   m.assignments,
		Questions:     m.questions,
		Categories:    m.categories,
		Instructors:   m.instructors,
		Users:         m.users,
		Stories:       m.stories,
		Notifications: m.notifications,
	}, helpers.NopLogger())
	return c, m
}
