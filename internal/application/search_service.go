package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/store"
)

const (
	KindCourses = "courses"
	KindUsers   = "users"
)

// SearchIndex is a full-text index over mirrored records.
type SearchIndex interface {
	Index(ctx context.Context, kind, id string, doc any) error
	// IndexBatch indexes docs keyed by id, attempting every one of them.
	IndexBatch(ctx context.Context, kind string, docs map[string]any) error
	Remove(ctx context.Context, kind, id string) error
	Search(ctx context.Context, kind, term string, limit int) ([]string, error)
}

// SearchService answers the dashboard's search boxes. With no index attached,
// or when the index fails, it matches the mirrored slices in memory.
type SearchService struct {
	Catalog *Catalog
	Index   SearchIndex
	Logger  *logrus.Logger
	Limit   int
	// Backlog bounds the sync jobs waiting for the index. Events arriving
	// while it is full are dropped and logged.
	Backlog int
	// SyncTimeout bounds one index call made by the sync worker.
	SyncTimeout time.Duration

	mu     sync.Mutex
	jobs   chan indexJob
	closed bool
	wg     sync.WaitGroup
}

func NewSearchService(c *Catalog, idx SearchIndex, logger *logrus.Logger) *SearchService {
	return &SearchService{Catalog: c, Index: idx, Logger: logger, Limit: 50, Backlog: 256, SyncTimeout: 30 * time.Second}
}

// indexJob is one unit of work for the sync worker. A job with done set only
// marks a point in the queue.
type indexJob struct {
	kind   string
	docs   map[string]any
	remove string
	done   chan struct{}
}

// Attach keeps the index in step with the course and user slices. Slice
// events are queued and applied by a single worker, so slice actions never
// wait on the index. The returned func detaches both subscriptions and waits
// for the queued jobs to be applied.
func (s *SearchService) Attach() func() {
	if s.Index == nil {
		return func() {}
	}
	jobs := make(chan indexJob, s.Backlog)
	s.mu.Lock()
	s.jobs, s.closed = jobs, false
	s.mu.Unlock()
	s.wg.Add(1)
	go s.sync(jobs)

	offCourses := s.Catalog.Courses.Slice.Subscribe(func(ev store.Event[entity.Course]) {
		if job, ok := jobFor(KindCourses, ev); ok {
			s.enqueue(job)
		}
	})
	offUsers := s.Catalog.Users.Slice.Subscribe(func(ev store.Event[entity.User]) {
		if job, ok := jobFor(KindUsers, ev); ok {
			s.enqueue(job)
		}
	})
	return func() {
		offCourses()
		offUsers()
		s.mu.Lock()
		if !s.closed {
			s.closed = true
			close(jobs)
		}
		s.mu.Unlock()
		s.wg.Wait()
	}
}

func jobFor[T entity.Record](kind string, ev store.Event[T]) (indexJob, bool) {
	switch ev.Kind {
	case store.EventReplaced, store.EventUpserted:
		docs := make(map[string]any, len(ev.Items))
		for _, it := range ev.Items {
			if id := it.RecordID(); id != "" {
				docs[id] = it
			}
		}
		return indexJob{kind: kind, docs: docs}, len(docs) > 0
	case store.EventRemoved:
		return indexJob{kind: kind, remove: ev.ID}, ev.ID != ""
	}
	return indexJob{}, false
}

func (s *SearchService) enqueue(job indexJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.jobs == nil {
		return
	}
	select {
	case s.jobs <- job:
	default:
		s.Logger.WithFields(logrus.Fields{"kind": job.kind, "docs": len(job.docs)}).Warn("search sync backlog full, dropping event")
	}
}

// Flush blocks until every job queued before the call has been applied.
func (s *SearchService) Flush(ctx context.Context) error {
	done := make(chan struct{})
	s.mu.Lock()
	if s.closed || s.jobs == nil {
		s.mu.Unlock()
		return nil
	}
	select {
	case s.jobs <- indexJob{done: done}:
	case <-ctx.Done():
		s.mu.Unlock()
		return ctx.Err()
	}
	s.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SearchService) sync(jobs <-chan indexJob) {
	defer s.wg.Done()
	for job := range jobs {
		if job.done != nil {
			close(job.done)
			continue
		}
		s.apply(job)
	}
}

func (s *SearchService) apply(job indexJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.SyncTimeout)
	defer cancel()
	log := s.Logger.WithField("kind", job.kind)
	if job.remove != "" {
		if err := s.Index.Remove(ctx, job.kind, job.remove); err != nil {
			log.WithError(err).WithField("id", job.remove).Warn("unindex record failed")
		}
		return
	}
	if len(job.docs) == 1 {
		for id, doc := range job.docs {
			if err := s.Index.Index(ctx, job.kind, id, doc); err != nil {
				log.WithError(err).WithField("id", id).Warn("index record failed")
			}
		}
		return
	}
	if err := s.Index.IndexBatch(ctx, job.kind, job.docs); err != nil {
		log.WithError(err).WithField("docs", len(job.docs)).Warn("bulk index failed")
	}
}

func (s *SearchService) Users(ctx context.Context, term string) []entity.User {
	term = strings.TrimSpace(term)
	slice := s.Catalog.Users.Slice
	if term == "" {
		return slice.All()
	}
	if out, ok := lookup(ctx, s, KindUsers, term, slice); ok {
		return out
	}
	t := strings.ToLower(term)
	return slice.Filter(func(u entity.User) bool {
		return strings.Contains(strings.ToLower(u.Name), t) ||
			strings.Contains(strings.ToLower(u.Email), t) ||
			strings.Contains(u.Phone, t)
	})
}

func (s *SearchService) Courses(ctx context.Context, term string) []entity.Course {
	term = strings.TrimSpace(term)
	slice := s.Catalog.Courses.Slice
	if term == "" {
		return slice.All()
	}
	if out, ok := lookup(ctx, s, KindCourses, term, slice); ok {
		return out
	}
	return slice.Filter(func(c entity.Course) bool {
		return c.Title.Contains(term) || c.Description.Contains(term)
	})
}

// lookup resolves index hits against the slice so results always reflect the
// mirrored records. ok is false when the index is absent or failed.
func lookup[T entity.Record](ctx context.Context, s *SearchService, kind, term string, slice *store.Slice[T]) ([]T, bool) {
	if s.Index == nil {
		return nil, false
	}
	ids, err := s.Index.Search(ctx, kind, term, s.Limit)
	if err != nil {
		s.Logger.WithError(err).WithField("kind", kind).Warn("search index failed, falling back to memory")
		return nil, false
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if rec, ok := slice.ByID(id); ok {
			out = append(out, rec)
		}
	}
	return out, true
}
