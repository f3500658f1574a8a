package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/pkg/helpers"
	"github.com/oksasatya/course-admin/pkg/response"
)

const CtxUserIDKey = "userID"

// SessionAuthorizer confirms that a gateway token still maps to a live session.
type SessionAuthorizer interface {
	Authorize(ctx context.Context, claims *helpers.Claims) (map[string]string, error)
}

// Auth validates the access cookie and ensures the staff session recorded in
// Redis is the one the token was issued for. It sets userID, userName and
// userEmail in the Gin context on success.
func Auth(jwt *helpers.JWTManager, sessions SessionAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		data, err := sessions.Authorize(c.Request.Context(), claims)
		switch {
		case errors.Is(err, application.ErrSignedOut):
			response.Abort(c, http.StatusUnauthorized, "session expired, sign in again", nil)
			return
		case err != nil:
			response.Abort(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set(CtxUserIDKey, data["user_id"]) // required by handlers
		c.Set("userName", data["name"])
		c.Set("userEmail", data["email"])
		c.Next()
	}
}
