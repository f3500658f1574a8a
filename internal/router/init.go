package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/config"
	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/internal/container"
	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/internal/infrastructure/remote"
	handlers "github.com/oksasatya/course-admin/internal/interface/http"
	"github.com/oksasatya/course-admin/internal/interface/middleware"
	"github.com/oksasatya/course-admin/internal/router/modules"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

// Deps are the components the HTTP modules are built from.
type Deps struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Redis     *redis.Client
	JWT       *helpers.JWTManager
	Sessions  *application.SessionService
	Catalog   *application.Catalog
	Builder   *application.CourseBuilder
	Analytics *application.AnalyticsService
	Search    *application.SearchService
	Hub       handlers.Subscriber
}

// DepsFromContainer collects Deps from the container singletons.
func DepsFromContainer() Deps {
	return Deps{
		Config:    container.GetConfig(),
		Logger:    container.GetLogger(),
		Redis:     container.GetRedis(),
		JWT:       container.GetJWT(),
		Sessions:  container.GetSessions(),
		Catalog:   container.GetCatalog(),
		Builder:   container.GetBuilder(),
		Analytics: container.GetAnalytics(),
		Search:    container.GetSearch(),
		Hub:       container.GetHub(),
	}
}

// RemoteResources binds every mirrored entity to its REST collection.
func RemoteResources(api *remote.Client) application.Resources {
	return application.Resources{
		Courses:       remote.NewResource[entity.Course](api, remote.PathCourses),
		Modules:       remote.NewResource[entity.Module](api, remote.PathModules),
		Topics:        remote.NewResource[entity.Topic](api, remote.PathTopics),
		Videos:        remote.NewResource[entity.Video](api, remote.PathVideos),
		Assignments:   remote.NewResource[entity.Assignment](api, remote.PathAssignments),
		Questions:     remote.NewResource[entity.Question](api, remote.PathQuestions),
		Categories:    remote.NewResource[entity.Category](api, remote.PathCategories),
		Instructors:   remote.NewResource[entity.Instructor](api, remote.PathInstructors),
		Users:         remote.NewResource[entity.User](api, remote.PathUsers),
		Stories:       remote.NewResource[entity.SuccessStory](api, remote.PathStories),
		Notifications: remote.NewResource[entity.Notification](api, remote.PathNotifications),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, d Deps) {
	fail := &handlers.Failure{
		Logger: d.Logger,
		// the backend no longer accepts the token: end the session here too
		OnUnauthorized: func(ctx context.Context) {
			_ = d.Sessions.SignOut(ctx)
		},
	}

	signInLimiter := middleware.RateLimit(d.Redis, 10, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	debugLimiter := middleware.RateLimit(d.Redis, 120, time.Minute, middleware.KeyByIP(), nil)
	guard := []gin.HandlerFunc{
		middleware.Auth(d.JWT, d.Sessions),
		middleware.RateLimit(d.Redis, 600, time.Minute, middleware.KeyByStaff(), nil),
	}

	c := d.Catalog
	notifications := handlers.NewEntityHandler("notifications", c.Notifications.EntityService, fail).
		WithCreate(func(ctx context.Context, n entity.Notification, _ ...repository.Upload) (entity.Notification, error) {
			return c.Notifications.Send(ctx, n)
		})
	courses := handlers.NewEntityHandler("courses", c.Courses.EntityService, fail)
	courses.SoftDelete = true
	categories := handlers.NewEntityHandler("categories", c.Categories, fail)
	categories.SoftDelete = true

	r.Add(modules.NewDebugModule(handlers.NewHealthHandler(d.Redis, d.Sessions.Active), debugLimiter))
	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(d.Sessions, d.Config.CookieDomain, d.Config.CookieSecure, d.Logger, fail),
		signInLimiter, guard,
	))
	r.Add(modules.NewCourseModule(handlers.NewCourseHandler(c.Courses, d.Builder, d.Search, fail), guard))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.Users, d.Search, fail), guard))
	r.Add(modules.NewNotificationModule(handlers.NewNotificationHandler(c.Notifications, d.Hub, fail), guard))
	r.Add(modules.NewAnalyticsModule(handlers.NewAnalyticsHandler(d.Analytics, fail), guard))
	r.Add(modules.NewEntitiesModule(guard,
		modules.EntityRoute{Path: "courses", Handler: courses},
		modules.EntityRoute{Path: "modules", Handler: handlers.NewEntityHandler("modules", c.Modules, fail)},
		modules.EntityRoute{Path: "topics", Handler: handlers.NewEntityHandler("topics", c.Topics, fail)},
		modules.EntityRoute{Path: "videos", Handler: handlers.NewEntityHandler("videos", c.Videos, fail)},
		modules.EntityRoute{Path: "assignments", Handler: handlers.NewEntityHandler("assignments", c.Assignments, fail)},
		modules.EntityRoute{Path: "questions", Handler: handlers.NewEntityHandler("questions", c.Questions, fail)},
		modules.EntityRoute{Path: "categories", Handler: categories},
		modules.EntityRoute{Path: "instructors", Handler: handlers.NewEntityHandler("instructors", c.Instructors, fail)},
		modules.EntityRoute{Path: "stories", Handler: handlers.NewEntityHandler("stories", c.Stories, fail)},
		modules.EntityRoute{Path: "users", Handler: handlers.NewEntityHandler("users", c.Users.EntityService, fail)},
		modules.EntityRoute{Path: "notifications", Handler: notifications},
	))
}
