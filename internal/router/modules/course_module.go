package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/course-admin/internal/interface/http"
)

// CourseModule adds publishing, search and the composition wizard to /api/courses.
type CourseModule struct {
	Handler *handlers.CourseHandler
	Guard   []gin.HandlerFunc
}

func NewCourseModule(h *handlers.CourseHandler, guard []gin.HandlerFunc) *CourseModule {
	return &CourseModule{Handler: h, Guard: guard}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/courses", m.Guard...)
	{
		auth.GET("/search", m.Handler.SearchCourses)
		auth.POST("/compose/validate", m.Handler.ValidateDraft)
		auth.POST("/:id/compose", m.Handler.Compose)
		auth.PATCH("/:id/publish", m.Handler.Publish)
	}
}
