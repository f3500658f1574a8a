package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/pkg/response"
)

type AnalyticsHandler struct {
	Analytics *application.AnalyticsService
	Fail      *Failure
	now       func() time.Time
}

func NewAnalyticsHandler(svc *application.AnalyticsService, fail *Failure) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: svc, Fail: fail, now: time.Now}
}

// Summary GET /api/analytics/summary. ?refresh=true reloads the underlying lists first.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	if c.Query("refresh") == "true" {
		if err := h.Analytics.Refresh(c.Request.Context()); err != nil {
			h.Fail.Respond(c, err)
			return
		}
	}
	response.Success(c, http.StatusOK, h.Analytics.Summary(), "summary", nil)
}

// Revenue GET /api/analytics/revenue?from=&to= accepts RFC3339 or YYYY-MM-DD.
// The range defaults to the last twelve months.
func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	to := h.now().UTC()
	from := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	details := map[string]string{}
	if v := c.Query("from"); v != "" {
		t, ok := parseDate(v, false)
		if !ok {
			details["from"] = "must be a date (YYYY-MM-DD) or RFC3339 timestamp"
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, ok := parseDate(v, true)
		if !ok {
			details["to"] = "must be a date (YYYY-MM-DD) or RFC3339 timestamp"
		}
		to = t
	}
	if len(details) > 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid query", details)
		return
	}
	rev, err := h.Analytics.Revenue(c.Request.Context(), from, to)
	if err != nil {
		h.Fail.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, rev, "revenue", nil)
}

// parseDate reads a bare date as the start of that day, or its last instant
// when endOfDay is set.
func parseDate(s string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
