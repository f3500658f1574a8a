package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]map[string]any
	hits    []string
	failing bool
	// gate, when set, holds every write until it is closed
	gate    chan struct{}
	reject  map[string]bool
	batches int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]map[string]any{KindCourses: {}, KindUsers: {}}}
}

func (f *fakeIndex) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeIndex) Index(_ context.Context, kind, id string, doc any) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject[id] {
		return errors.New("mapper_parsing_exception")
	}
	f.docs[kind][id] = doc
	return nil
}

func (f *fakeIndex) IndexBatch(_ context.Context, kind string, docs map[string]any) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	failed := 0
	for id, doc := range docs {
		if f.reject[id] {
			failed++
			continue
		}
		f.docs[kind][id] = doc
	}
	if failed > 0 {
		return errors.New("some documents failed")
	}
	return nil
}

func (f *fakeIndex) indexed(kind string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]any, len(f.docs[kind]))
	for k, v := range f.docs[kind] {
		out[k] = v
	}
	return out
}

func (f *fakeIndex) Remove(_ context.Context, kind, id string) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs[kind], id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, string, int) ([]string, error) {
	if f.failing {
		return nil, errors.New("cluster unavailable")
	}
	return f.hits, nil
}

func TestSearchFallsBackToMemory(t *testing.T) {
	c, m := newTestCatalog()
	m.users.items = []entity.User{
		{ID: "u1", Name: "Amal Saleh", Email: "amal@example.com"},
		{ID: "u2", Name: "Badr", Email: "badr@example.com", Phone: "+966500000001"},
	}
	m.courses.items = []entity.Course{
		{ID: "c1", Title: entity.L("Go Basics", "أساسيات جو")},
		{ID: "c2", Title: entity.L("Rust", "رست")},
	}
	_, _ = c.Users.List(context.Background(), nil)
	_, _ = c.Courses.List(context.Background(), nil)

	s := NewSearchService(c, nil, helpers.NopLogger())
	assert.Len(t, s.Users(context.Background(), "  "), 2)
	got := s.Users(context.Background(), "AMAL")
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].ID)
	assert.Len(t, s.Users(context.Background(), "96650"), 1)

	courses := s.Courses(context.Background(), "جو")
	require.Len(t, courses, 1)
	assert.Equal(t, "c1", courses[0].ID)

	idx := newFakeIndex()
	idx.failing = true
	s.Index = idx
	assert.Len(t, s.Courses(context.Background(), "rust"), 1)
}

func TestSearchUsesIndexAndStaysInSync(t *testing.T) {
	c, m := newTestCatalog()
	m.courses.items = []entity.Course{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}
	idx := newFakeIndex()
	s := NewSearchService(c, idx, helpers.NopLogger())
	detach := s.Attach()
	defer detach()

	_, err := c.Courses.List(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))
	assert.Len(t, idx.indexed(KindCourses), 3)
	assert.Equal(t, 1, idx.batches)

	require.NoError(t, c.Courses.Delete(context.Background(), "c2"))
	require.NoError(t, s.Flush(context.Background()))
	assert.NotContains(t, idx.indexed(KindCourses), "c2")

	// hits the slice no longer holds are dropped
	idx.hits = []string{"c3", "c2", "c1"}
	got := s.Courses(context.Background(), "anything")
	require.Len(t, got, 2)
	assert.Equal(t, "c3", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)
}

func TestIndexSyncDoesNotBlockSliceActions(t *testing.T) {
	c, m := newTestCatalog()
	for i := 0; i < 100; i++ {
		m.users.items = append(m.users.items, entity.User{ID: fmt.Sprintf("u%d", i), Name: "User"})
	}
	idx := newFakeIndex()
	idx.gate = make(chan struct{})
	s := NewSearchService(c, idx, helpers.NopLogger())
	detach := s.Attach()

	done := make(chan error, 1)
	go func() {
		_, err := c.Users.List(context.Background(), nil)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listing users waited on the search index")
	}
	assert.Empty(t, idx.indexed(KindUsers))

	close(idx.gate)
	detach()
	assert.Len(t, idx.indexed(KindUsers), 100)
}

func TestIndexSyncKeepsGoingAfterRejectedDocuments(t *testing.T) {
	c, m := newTestCatalog()
	m.users.items = []entity.User{{ID: "u1"}, {ID: "bad"}, {ID: "u3"}}
	idx := newFakeIndex()
	idx.reject = map[string]bool{"bad": true}
	s := NewSearchService(c, idx, helpers.NopLogger())
	detach := s.Attach()
	defer detach()

	_, err := c.Users.List(context.Background(), nil)
	require.NoError(t, err)
	_, err = c.Users.Create(context.Background(), entity.User{Name: "Dana", Email: "dana@example.com", Role: entity.RoleStudent})
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))

	got := idx.indexed(KindUsers)
	assert.Contains(t, got, "u1")
	assert.Contains(t, got, "u3")
	assert.Contains(t, got, "user1")
	assert.NotContains(t, got, "bad")
}

func TestIndexSyncDropsEventsWhenBacklogIsFull(t *testing.T) {
	c, m := newTestCatalog()
	m.users.items = []entity.User{{ID: "u1"}, {ID: "u2"}}
	idx := newFakeIndex()
	idx.gate = make(chan struct{})
	s := NewSearchService(c, idx, helpers.NopLogger())
	s.Backlog = 1
	detach := s.Attach()

	for i := 0; i < 5; i++ {
		_, err := c.Users.List(context.Background(), nil)
		require.NoError(t, err)
	}
	close(idx.gate)
	detach()
	// the worker holds one job and the queue one more; the rest were dropped
	assert.LessOrEqual(t, idx.batches, 2)
	assert.Len(t, idx.indexed(KindUsers), 2)
}
