package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/course-admin/internal/interface/http"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	Guard   []gin.HandlerFunc
}

func NewNotificationModule(h *handlers.NotificationHandler, guard []gin.HandlerFunc) *NotificationModule {
	return &NotificationModule{Handler: h, Guard: guard}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/notifications", m.Guard...)
	{
		auth.GET("/stream", m.Handler.Stream)
		auth.PATCH("/:id/read", m.Handler.MarkRead)
	}
}
