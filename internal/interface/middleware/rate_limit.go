package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/course-admin/pkg/helpers"
	"github.com/oksasatya/course-admin/pkg/response"
)

// ipFromCtx prefers the address RealIP resolved.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc names the counter a request is charged to.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports whether a request skips the limiter.
type AllowFunc func(*gin.Context) bool

// KeyByIP charges every request to the caller's address.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return helpers.KeyQuotaIP(ipFromCtx(c))
	}
}

// KeyByStaff charges requests to the signed-in staff member set by
// AuthMiddleware. Requests without a session fall back to the caller's address.
func KeyByStaff() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return helpers.KeyQuotaStaff(uid)
		}
		return helpers.KeyQuotaIP(ipFromCtx(c))
	}
}

// hitScript returns the counter after this hit and the milliseconds left in
// its window. The window starts on the first hit.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

type quota struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func (q quota) hit(ctx context.Context, key string) (int, time.Duration, error) {
	res, err := hitScript.Run(ctx, q.rdb, []string{key}, q.window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	left := time.Duration(res[1]) * time.Millisecond
	if left < 0 {
		left = 0
	}
	return int(res[0]), left, nil
}

func (q quota) annotate(c *gin.Context, used int, left time.Duration) {
	remaining := q.limit - used
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(q.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(int(left/time.Second)))
}

// RateLimit allows limit requests per key in each fixed window and answers
// 429 past that. Preflights are free. When Redis cannot be reached the
// request goes through uncounted.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	q := quota{rdb: rdb, limit: limit, window: window}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		used, left, err := q.hit(c.Request.Context(), keyFn(c))
		if err != nil {
			c.Next()
			return
		}
		q.annotate(c, used, left)

		if used <= limit {
			c.Next()
			return
		}
		// round up so clients never retry inside the window
		wait := (left + time.Second - 1) / time.Second
		if wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(wait)))
		}
		response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
	}
}
