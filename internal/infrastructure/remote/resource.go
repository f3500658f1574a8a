package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
)

// Remote API resource paths.
const (
	PathCourses       = "/course"
	PathModules       = "/module"
	PathTopics        = "/topic"
	PathVideos        = "/video"
	PathAssignments   = "/assignments"
	PathQuestions     = "/questions"
	PathCategories    = "/category"
	PathInstructors   = "/instructor"
	PathUsers         = "/user"
	PathStories       = "/successStory"
	PathNotifications = "/notifications"
)

// Resource implements repository.Resource over one REST collection.
type Resource[T entity.Record] struct {
	client *Client
	path   string
}

func NewResource[T entity.Record](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

var _ repository.Resource[entity.Course] = (*Resource[entity.Course])(nil)

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var out []T
	if err := r.client.Do(ctx, http.MethodGet, r.path, query, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, nil, nil, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, rec T, files ...repository.Upload) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodPost, r.path, nil, rec, files, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, id string, patch any, files ...repository.Upload) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodPatch, r.path+"/"+url.PathEscape(id), nil, patch, files, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.Do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, nil, nil)
}
