package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/course-admin/internal/interface/http"
)

type UserModule struct {
	Handler *handlers.UserHandler
	Guard   []gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, guard []gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/users", m.Guard...)
	{
		auth.GET("/search", m.Handler.SearchUsers)
		auth.PATCH("/:id/block", m.Handler.Block)
	}
}
