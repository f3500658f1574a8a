package application

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

const monthLayout = "2006-01"

type AnalyticsService struct {
	Catalog *Catalog
	Source  repository.RevenueSource
	Redis   *redis.Client
	TTL     time.Duration
	Logger  *logrus.Logger
}

func NewAnalyticsService(c *Catalog, src repository.RevenueSource, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{Catalog: c, Source: src, Redis: rdb, TTL: ttl, Logger: logger}
}

// Refresh reloads the lists the summary is derived from, concurrently.
func (s *AnalyticsService) Refresh(ctx context.Context) error {
	c := s.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := c.Courses.List(gctx, nil); return err })
	g.Go(func() error { _, err := c.Users.List(gctx, nil); return err })
	g.Go(func() error { _, err := c.Instructors.List(gctx, nil); return err })
	g.Go(func() error { _, err := c.Categories.List(gctx, nil); return err })
	g.Go(func() error { _, err := c.Stories.List(gctx, nil); return err })
	g.Go(func() error { _, err := c.Notifications.List(gctx, nil); return err })
	return g.Wait()
}

// Summary derives dashboard counters from the mirrored slices.
func (s *AnalyticsService) Summary() entity.Summary {
	c := s.Catalog
	published := c.Courses.Slice.Count(func(co entity.Course) bool { return co.IsPublished && !co.IsDeleted })
	total := c.Courses.Slice.Count(func(co entity.Course) bool { return !co.IsDeleted })
	return entity.Summary{
		Courses:          total,
		PublishedCourses: published,
		DraftCourses:     total - published,
		Users:            c.Users.Slice.Count(nil),
		UsersByRole:      c.Users.CountByRole(),
		BlockedUsers:     c.Users.Slice.Count(func(u entity.User) bool { return u.IsBlocked }),
		Instructors:      c.Instructors.Slice.Count(nil),
		Categories:       c.Categories.Slice.Count(func(ca entity.Category) bool { return !ca.IsDeleted }),
		Stories:          c.Stories.Slice.Count(nil),
		UnreadAlerts:     c.Notifications.Unread(),
	}
}

func revenueKey(from, to time.Time) string {
	return "analytics:revenue:" + from.UTC().Format(time.RFC3339) + ":" + to.UTC().Format(time.RFC3339)
}

// Revenue returns monthly revenue between from and to, served from the Redis
// cache when possible. Cache failures only cost a refetch.
func (s *AnalyticsService) Revenue(ctx context.Context, from, to time.Time) (entity.Revenue, error) {
	if to.Before(from) {
		return entity.Revenue{}, invalid(map[string]string{"to": "must not be before from"})
	}
	key := revenueKey(from, to)
	if s.Redis != nil {
		var cached entity.Revenue
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached)
		if err != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("revenue cache read failed")
		}
		if ok {
			return cached, nil
		}
	}

	points, err := s.Source.Revenue(ctx, from, to)
	if err != nil {
		return entity.Revenue{}, err
	}
	rev := AggregateRevenue(points, from, to)

	if s.Redis != nil && s.TTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, rev, s.TTL); err != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("revenue cache write failed")
		}
	}
	return rev, nil
}

// AggregateRevenue buckets points by UTC month. Every month between from and to
// gets a bucket, empty or not; points outside [from, to] are ignored.
func AggregateRevenue(points []entity.RevenuePoint, from, to time.Time) entity.Revenue {
	from, to = from.UTC(), to.UTC()
	rev := entity.Revenue{From: from, To: to}

	byMonth := map[string]*entity.RevenueBucket{}
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := start; !m.After(to); m = m.AddDate(0, 1, 0) {
		k := m.Format(monthLayout)
		byMonth[k] = &entity.RevenueBucket{Month: k}
	}

	for _, p := range points {
		d := p.Date.UTC()
		if d.Before(from) || d.After(to) {
			continue
		}
		k := d.Format(monthLayout)
		b, ok := byMonth[k]
		if !ok {
			b = &entity.RevenueBucket{Month: k}
			byMonth[k] = b
		}
		b.Amount += p.Amount
		b.Count++
		rev.Total += p.Amount
	}

	rev.Buckets = make([]entity.RevenueBucket, 0, len(byMonth))
	for _, b := range byMonth {
		rev.Buckets = append(rev.Buckets, *b)
	}
	sort.Slice(rev.Buckets, func(i, j int) bool { return rev.Buckets[i].Month < rev.Buckets[j].Month })
	return rev
}
