package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/course-admin/internal/interface/http"
)

// AuthModule serves staff sign-in.
// Public: POST /api/auth/signin
// Protected: POST /api/auth/signout, GET /api/auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limit   gin.HandlerFunc
	Guard   []gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, limit gin.HandlerFunc, guard []gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Limit: limit, Guard: guard}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signin", m.Limit, m.Handler.SignIn)

	auth := rg.Group("/auth", m.Guard...)
	{
		auth.POST("/signout", m.Handler.SignOut)
		auth.GET("/me", m.Handler.Me)
	}
}
