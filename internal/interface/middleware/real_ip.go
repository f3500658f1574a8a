package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the caller's address under "real_ip". CF-Connecting-IP wins,
// then the left-most X-Forwarded-For entry, then gin's ClientIP.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := parseIP(c.GetHeader("CF-Connecting-IP"))
		if ip == "" {
			first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ",")
			ip = parseIP(first)
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func parseIP(s string) string {
	if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
		return ip.String()
	}
	return ""
}
