package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/pkg/response"
)

// Failure turns service errors into envelopes. Expected API errors keep the
// upstream status and message; anything else is logged and reported as a
// retryable upstream failure.
type Failure struct {
	Logger *logrus.Logger
	// OnUnauthorized runs when the backend rejects the bearer token.
	OnUnauthorized func(ctx context.Context)
}

func (f *Failure) Respond(c *gin.Context, err error) {
	var (
		verr *application.ValidationError
		serr *application.SubmitError
	)
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", verr.Details)
	case errors.As(err, &serr):
		status, msg := upstream(serr.Err)
		response.Error[any](c, status, msg, gin.H{"step": serr.Step, "created": serr.Created})
	case errors.Is(err, application.ErrNotAdmin):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrSignedOut), errors.Is(err, application.ErrTokenExpired):
		response.Error[any](c, http.StatusUnauthorized, "session expired, sign in again", nil)
	case errors.Is(err, repository.ErrUnauthorized):
		if f.OnUnauthorized != nil {
			f.OnUnauthorized(c.Request.Context())
		}
		_, msg := upstream(err)
		response.Error[any](c, http.StatusUnauthorized, msg, nil)
	default:
		if _, ok := repository.AsAPIError(err); ok {
			status, msg := upstream(err)
			response.Error[any](c, status, msg, nil)
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "not found", nil)
			return
		}
		f.Logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		response.ErrorMeta[any](c, status, "course platform unavailable", nil, gin.H{"retry": true})
	}
}

func upstream(err error) (int, string) {
	apiErr, ok := repository.AsAPIError(err)
	if !ok {
		return http.StatusBadGateway, "course platform unavailable"
	}
	status := apiErr.Status
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return status, apiErr.Message
}
