package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/course-admin/internal/interface/http"
)

type AnalyticsModule struct {
	Handler *handlers.AnalyticsHandler
	Guard   []gin.HandlerFunc
}

func NewAnalyticsModule(h *handlers.AnalyticsHandler, guard []gin.HandlerFunc) *AnalyticsModule {
	return &AnalyticsModule{Handler: h, Guard: guard}
}

func (m *AnalyticsModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/analytics", m.Guard...)
	{
		auth.GET("/summary", m.Handler.Summary)
		auth.GET("/revenue", m.Handler.Revenue)
	}
}
