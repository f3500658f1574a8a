package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/pkg/response"
)

// Subscriber hands out live notification streams.
type Subscriber interface {
	Subscribe() (<-chan entity.Notification, func())
}

type NotificationHandler struct {
	Notifications *application.NotificationService
	Hub           Subscriber
	Fail          *Failure
	// Heartbeat keeps idle SSE connections open through proxies.
	Heartbeat time.Duration
}

func NewNotificationHandler(svc *application.NotificationService, hub Subscriber, fail *Failure) *NotificationHandler {
	return &NotificationHandler{Notifications: svc, Hub: hub, Fail: fail, Heartbeat: 25 * time.Second}
}

// MarkRead PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.Notifications.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, n, "notification read", gin.H{"unread": h.Notifications.Unread()})
}

// Stream GET /api/notifications/stream pushes notifications as server-sent events.
func (h *NotificationHandler) Stream(c *gin.Context) {
	events, off := h.Hub.Subscribe()
	defer off()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	beat := time.NewTicker(h.Heartbeat)
	defer beat.Stop()

	c.SSEvent("ready", gin.H{"unread": h.Notifications.Unread()})
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case n, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-beat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
