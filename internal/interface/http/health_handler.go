package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/course-admin/pkg/response"
)

type HealthHandler struct {
	Redis  *redis.Client
	Active func() bool
}

func NewHealthHandler(rdb *redis.Client, active func() bool) *HealthHandler {
	return &HealthHandler{Redis: rdb, Active: active}
}

// Health GET /api/healthz reports Redis reachability and whether a staff
// session is active. Only a Redis failure makes the gateway unhealthy.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	redisOK := h.Redis.Ping(ctx).Err() == nil
	data := gin.H{"redis": redisOK, "session": h.Active()}
	if !redisOK {
		response.Error[any](c, http.StatusServiceUnavailable, "redis unreachable", data)
		return
	}
	response.Success(c, http.StatusOK, data, "ok", nil)
}
