package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/pkg/response"
	"github.com/oksasatya/course-admin/pkg/validation"
)

// CourseHandler adds the course routes beyond plain CRUD.
type CourseHandler struct {
	Courses *application.CourseService
	Builder *application.CourseBuilder
	Search  *application.SearchService
	Fail    *Failure
}

func NewCourseHandler(courses *application.CourseService, builder *application.CourseBuilder, search *application.SearchService, fail *Failure) *CourseHandler {
	return &CourseHandler{Courses: courses, Builder: builder, Search: search, Fail: fail}
}

type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// Publish PATCH /api/courses/:id/publish {published}
func (h *CourseHandler) Publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	course, err := h.Courses.SetPublished(c.Request.Context(), c.Param("id"), *req.Published)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	msg := "course unpublished"
	if course.IsPublished {
		msg = "course published"
	}
	response.Success(c, http.StatusOK, course, msg, nil)
}

// Compose POST /api/courses/:id/compose submits a wizard draft.
func (h *CourseHandler) Compose(c *gin.Context) {
	var d application.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Builder.Submit(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res, "course composed", nil)
}

// ValidateDraft POST /api/courses/compose/validate checks a draft without
// creating anything, so the wizard can validate each step.
func (h *CourseHandler) ValidateDraft(c *gin.Context) {
	var d application.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := d.Validate(); err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"valid": true}, "draft is valid", nil)
}

// SearchCourses GET /api/courses/search?q=
func (h *CourseHandler) SearchCourses(c *gin.Context) {
	out := h.Search.Courses(c.Request.Context(), c.Query("q"))
	response.Success(c, http.StatusOK, out, "courses", gin.H{"count": len(out)})
}
