package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/pkg/response"
	"github.com/oksasatya/course-admin/pkg/validation"
)

// EntityHandler serves the CRUD routes of one entity.
type EntityHandler[T entity.Record] struct {
	Name       string
	Svc        *application.EntityService[T]
	Fail       *Failure
	SoftDelete bool

	create func(ctx context.Context, rec T, files ...repository.Upload) (T, error)
}

func NewEntityHandler[T entity.Record](name string, svc *application.EntityService[T], fail *Failure) *EntityHandler[T] {
	return &EntityHandler[T]{Name: name, Svc: svc, Fail: fail, create: svc.Create}
}

// WithCreate replaces the create operation, e.g. to send notifications.
func (h *EntityHandler[T]) WithCreate(fn func(ctx context.Context, rec T, files ...repository.Upload) (T, error)) *EntityHandler[T] {
	h.create = fn
	return h
}

// List GET /api/<entity>. With ?cached=true the mirrored slice is returned
// without calling the backend; other query parameters are forwarded.
func (h *EntityHandler[T]) List(c *gin.Context) {
	if c.Query("cached") == "true" {
		st := h.Svc.Slice.Snapshot()
		response.Success(c, http.StatusOK, st.Items, h.Name+" (cached)", gin.H{
			"count": len(st.Items), "loading": st.Loading, "updated_at": st.UpdatedAt, "error": st.Err,
		})
		return
	}
	query := c.Request.URL.Query()
	items, err := h.Svc.List(c.Request.Context(), query)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	response.Success(c, http.StatusOK, items, h.Name, gin.H{"count": len(items)})
}

func (h *EntityHandler[T]) Get(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec, h.Name, nil)
}

func (h *EntityHandler[T]) Create(c *gin.Context) {
	var rec T
	files, cleanup, err := bindRecord(c, &rec)
	defer cleanup()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	created, err := h.create(c.Request.Context(), rec, files...)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, created, h.Name+" created", nil)
}

// Update PATCH /api/<entity>/:id sends only the fields present in the body.
func (h *EntityHandler[T]) Update(c *gin.Context) {
	var fields map[string]any
	files, cleanup, err := bindRecord(c, &fields)
	defer cleanup()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	delete(fields, "_id")
	if len(fields) == 0 && len(files) == 0 {
		response.Error[any](c, http.StatusBadRequest, "nothing to update", nil)
		return
	}
	updated, err := h.Svc.Patch(c.Request.Context(), c.Param("id"), fields, files...)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated, h.Name+" updated", nil)
}

func (h *EntityHandler[T]) Delete(c *gin.Context) {
	id := c.Param("id")
	var err error
	if h.SoftDelete {
		err = h.Svc.SoftDelete(c.Request.Context(), id)
	} else {
		err = h.Svc.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true}, h.Name+" deleted", nil)
}

// Register mounts the CRUD routes under rg at /<path>.
func (h *EntityHandler[T]) Register(rg *gin.RouterGroup, path string) {
	g := rg.Group("/" + path)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
