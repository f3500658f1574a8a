package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/pkg/response"
	"github.com/oksasatya/course-admin/pkg/validation"
)

type UserHandler struct {
	Users  *application.UserService
	Search *application.SearchService
	Fail   *Failure
}

func NewUserHandler(users *application.UserService, search *application.SearchService, fail *Failure) *UserHandler {
	return &UserHandler{Users: users, Search: search, Fail: fail}
}

type blockRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

// Block PATCH /api/users/:id/block {blocked}
func (h *UserHandler) Block(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if c.Param("id") == c.GetString("userID") && *req.Blocked {
		response.Error[any](c, http.StatusBadRequest, "you cannot block yourself", nil)
		return
	}
	u, err := h.Users.SetBlocked(c.Request.Context(), c.Param("id"), *req.Blocked)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated", nil)
}

// SearchUsers GET /api/users/search?q=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	out := h.Search.Users(c.Request.Context(), c.Query("q"))
	response.Success(c, http.StatusOK, out, "users", gin.H{"count": len(out), "by_role": h.Users.CountByRole()})
}
