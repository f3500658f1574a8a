package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/internal/store"
)

// Resources bundles the remote collections the catalog mirrors.
type Resources struct {
	Courses       repository.Resource[entity.Course]
	Modules       repository.Resource[entity.Module]
	Topics        repository.Resource[entity.Topic]
	Videos        repository.Resource[entity.Video]
	Assignments   repository.Resource[entity.Assignment]
	Questions     repository.Resource[entity.Question]
	Categories    repository.Resource[entity.Category]
	Instructors   repository.Resource[entity.Instructor]
	Users         repository.Resource[entity.User]
	Stories       repository.Resource[entity.SuccessStory]
	Notifications repository.Resource[entity.Notification]
}

// Catalog holds one service, and therefore one slice, per entity.
type Catalog struct {
	Courses       *CourseService
	Modules       *EntityService[entity.Module]
	Topics        *EntityService[entity.Topic]
	Videos        *EntityService[entity.Video]
	Assignments   *EntityService[entity.Assignment]
	Questions     *EntityService[entity.Question]
	Categories    *EntityService[entity.Category]
	Instructors   *EntityService[entity.Instructor]
	Users         *UserService
	Stories       *EntityService[entity.SuccessStory]
	Notifications *NotificationService

	resets []func()
}

func NewCatalog(res Resources, logger *logrus.Logger) *Catalog {
	c := &Catalog{
		Courses:     &CourseService{EntityService: NewEntityService(store.NewSlice("courses", res.Courses, logger))},
		Modules:     NewEntityService(store.NewSlice("modules", res.Modules, logger)),
		Topics:      NewEntityService(store.NewSlice("topics", res.Topics, logger)),
		Videos:      NewEntityService(store.NewSlice("videos", res.Videos, logger)),
		Assignments: NewEntityService(store.NewSlice("assignments", res.Assignments, logger)),
		Questions:   NewEntityService[entity.Question](store.NewSlice("questions", res.Questions, logger), questionAnswerRule),
		Categories:  NewEntityService(store.NewSlice("categories", res.Categories, logger)),
		Instructors: NewEntityService(store.NewSlice("instructors", res.Instructors, logger)),
		Users:       &UserService{EntityService: NewEntityService(store.NewSlice("users", res.Users, logger))},
		Stories:     NewEntityService(store.NewSlice("stories", res.Stories, logger)),
		Notifications: &NotificationService{
			EntityService: NewEntityService(store.NewSlice("notifications", res.Notifications, logger)),
			logger:        logger,
		},
	}
	c.resets = []func(){
		c.Courses.Slice.Reset, c.Modules.Slice.Reset, c.Topics.Slice.Reset, c.Videos.Slice.Reset,
		c.Assignments.Slice.Reset, c.Questions.Slice.Reset, c.Categories.Slice.Reset,
		c.Instructors.Slice.Reset, c.Users.Slice.Reset, c.Stories.Slice.Reset, c.Notifications.Slice.Reset,
	}
	return c
}

// Reset clears every slice, e.g. when the session ends.
func (c *Catalog) Reset() {
	for _, r := range c.resets {
		r()
	}
}

type CourseService struct {
	*EntityService[entity.Course]
}

// SetPublished flips the publish flag optimistically.
func (s *CourseService) SetPublished(ctx context.Context, id string, published bool) (entity.Course, error) {
	return s.Slice.Optimistic(ctx, id, func(c entity.Course) entity.Course {
		c.IsPublished = published
		return c
	}, map[string]any{"isPublished": published})
}

type UserService struct {
	*EntityService[entity.User]
}

// SetBlocked blocks or unblocks a user optimistically.
func (s *UserService) SetBlocked(ctx context.Context, id string, blocked bool) (entity.User, error) {
	return s.Slice.Optimistic(ctx, id, func(u entity.User) entity.User {
		u.IsBlocked = blocked
		return u
	}, map[string]any{"isBlocked": blocked})
}

// CountByRole tallies the mirrored users per role.
func (s *UserService) CountByRole() map[string]int {
	out := map[string]int{}
	for _, u := range s.Slice.All() {
		out[u.Role]++
	}
	return out
}
