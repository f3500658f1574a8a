package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/course-admin/internal/interface/http"
)

// DebugModule serves GET /api/healthz and the expvar metrics at GET /api/debug/vars.
type DebugModule struct {
	Health *handlers.HealthHandler
	Limit  gin.HandlerFunc
}

func NewDebugModule(h *handlers.HealthHandler, limit gin.HandlerFunc) *DebugModule {
	return &DebugModule{Health: h, Limit: limit}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.Health.Health)
	rg.GET("/debug/vars", m.Limit, gin.WrapH(expvar.Handler()))
}
