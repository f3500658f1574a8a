package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/pkg/helpers"
	"github.com/oksasatya/course-admin/pkg/response"
	"github.com/oksasatya/course-admin/pkg/validation"
)

type AuthHandler struct {
	Sessions *application.SessionService
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
	Fail     *Failure
}

func NewAuthHandler(sessions *application.SessionService, cookieDomain string, cookieSecure bool, logger *logrus.Logger, fail *Failure) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Cookies: helpers.NewCookie(cookieDomain, cookieSecure), Logger: logger, Fail: fail}
}

// SignIn POST /api/auth/signin {email, password}
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req application.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Sessions.SignIn(c.Request.Context(), req)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	h.Cookies.SetAccess(c, res.AccessToken, res.AccessExpiry)
	response.Success(c, http.StatusOK, res, "signed in", nil)
}

// SignOut POST /api/auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.Sessions.SignOut(c.Request.Context()); err != nil {
		h.Logger.WithError(err).Warn("sign out failed")
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"signed_out": true}, "signed out", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := h.Sessions.Current()
	if !ok {
		h.Cookies.Clear(c)
		response.Error[any](c, http.StatusUnauthorized, "session expired, sign in again", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "current user", nil)
}
