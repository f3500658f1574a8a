package application

import (
	"context"
	"net/url"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/internal/store"
	"github.com/oksasatya/course-admin/pkg/validation"
)

// Rule adds a check the struct tags cannot express. It returns path -> message.
type Rule[T entity.Record] func(T) map[string]string

// EntityService validates forms before handing them to the entity's slice.
type EntityService[T entity.Record] struct {
	Slice *store.Slice[T]
	rules []Rule[T]
}

func NewEntityService[T entity.Record](s *store.Slice[T], rules ...Rule[T]) *EntityService[T] {
	return &EntityService[T]{Slice: s, rules: rules}
}

func (s *EntityService[T]) Validate(rec T) error {
	details := validation.Struct(rec)
	for _, r := range s.rules {
		extra := r(rec)
		if len(extra) == 0 {
			continue
		}
		if details == nil {
			details = map[string]string{}
		}
		for k, v := range extra {
			if _, ok := details[k]; !ok {
				details[k] = v
			}
		}
	}
	return invalid(details)
}

func (s *EntityService[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	return s.Slice.Fetch(ctx, query)
}

func (s *EntityService[T]) Get(ctx context.Context, id string) (T, error) {
	return s.Slice.FetchOne(ctx, id)
}

func (s *EntityService[T]) Create(ctx context.Context, rec T, files ...repository.Upload) (T, error) {
	if err := s.Validate(rec); err != nil {
		var zero T
		return zero, err
	}
	return s.Slice.Create(ctx, rec, files...)
}

// Update replaces the whole record after validating it.
func (s *EntityService[T]) Update(ctx context.Context, id string, rec T, files ...repository.Upload) (T, error) {
	if err := s.Validate(rec); err != nil {
		var zero T
		return zero, err
	}
	return s.Slice.Update(ctx, id, rec, files...)
}

// Patch sends a partial update; the server is the judge of partial payloads.
func (s *EntityService[T]) Patch(ctx context.Context, id string, fields map[string]any, files ...repository.Upload) (T, error) {
	return s.Slice.Update(ctx, id, fields, files...)
}

func (s *EntityService[T]) Delete(ctx context.Context, id string) error {
	return s.Slice.Delete(ctx, id)
}

func (s *EntityService[T]) SoftDelete(ctx context.Context, id string) error {
	return s.Slice.SoftDelete(ctx, id)
}

func questionAnswerRule(q entity.Question) map[string]string {
	if len(q.Options) > 0 && !q.AnswerInRange() {
		return map[string]string{"correctAnswer": "must point at one of the options"}
	}
	return nil
}
