package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type body struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Meta    map[string]any  `json:"meta"`
}

func respond(t *testing.T, f *Failure, err error) (int, body) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	f.Respond(c, err)
	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return w.Code, b
}

func TestFailureRespond(t *testing.T) {
	signedOut := 0
	f := &Failure{Logger: helpers.NopLogger(), OnUnauthorized: func(context.Context) { signedOut++ }}

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &application.ValidationError{Details: map[string]string{"name.ar": "is required"}}, http.StatusBadRequest, "invalid payload"},
		{"not admin", application.ErrNotAdmin, http.StatusForbidden, application.ErrNotAdmin.Error()},
		{"signed out", application.ErrSignedOut, http.StatusUnauthorized, "session expired, sign in again"},
		{"token expired", fmt.Errorf("sign in: %w", application.ErrTokenExpired), http.StatusUnauthorized, "session expired, sign in again"},
		{"upstream conflict", &repository.APIError{Status: 409, Message: "slug taken"}, http.StatusConflict, "slug taken"},
		{"upstream not found", &repository.APIError{Status: 404, Message: "course not found"}, http.StatusNotFound, "course not found"},
		{"bare not found", repository.ErrNotFound, http.StatusNotFound, "not found"},
		{"odd upstream status", &repository.APIError{Status: 302, Message: "moved"}, http.StatusBadGateway, "moved"},
		{"transport", errors.New("dial tcp: connection refused"), http.StatusBadGateway, "course platform unavailable"},
		{"timeout", fmt.Errorf("GET /course: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "course platform unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, b := respond(t, f, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, b.Message)
		})
	}
	assert.Zero(t, signedOut)

	status, b := respond(t, f, &repository.APIError{Status: 401, Message: "jwt expired"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "jwt expired", b.Message)
	assert.Equal(t, 1, signedOut)

	_, b = respond(t, f, errors.New("boom"))
	assert.Equal(t, true, b.Meta["retry"])
}

func TestFailureRespondSubmitError(t *testing.T) {
	f := &Failure{Logger: helpers.NopLogger()}
	err := &application.SubmitError{
		Step:    "modules[1]",
		Created: application.Created{Modules: []string{"m1"}},
		Err:     &repository.APIError{Status: 422, Message: "title too long"},
	}
	status, b := respond(t, f, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "title too long", b.Message)
	assert.JSONEq(t, `{"step":"modules[1]","created":{"modules":["m1"],"topics":null,"videos":null,"assignments":null,"questions":null}}`, string(b.Error))
}

func TestParseDate(t *testing.T) {
	got, ok := parseDate("2024-02-10", false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), got)

	got, ok = parseDate("2024-02-10", true)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 10, 23, 59, 59, 999999999, time.UTC), got)

	got, ok = parseDate("2024-02-10T08:30:00+02:00", true)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 10, 6, 30, 0, 0, time.UTC), got.UTC())

	_, ok = parseDate("10/02/2024", false)
	assert.False(t, ok)
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("image", name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(content))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBindRecordMultipart(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = multipartRequest(t,
		map[string]string{"data": `{"name":{"en":"Art","ar":"فن"}}`},
		map[string]string{"art.jpg": "jpeg bytes"},
	)

	var cat entity.Category
	uploads, cleanup, err := bindRecord(c, &cat)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "فن", cat.Name.AR)
	require.Len(t, uploads, 1)
	assert.Equal(t, "image", uploads[0].Field)
	assert.Equal(t, "art.jpg", uploads[0].FileName)
	content, err := io.ReadAll(uploads[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(content))
}

func TestBindRecordMultipartWithoutData(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = multipartRequest(t, map[string]string{"name": "Art"}, nil)

	var cat entity.Category
	_, cleanup, err := bindRecord(c, &cat)
	defer cleanup()
	assert.ErrorIs(t, err, errNoData)
}

func TestBindRecordJSON(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":{"en":"Art","ar":"فن"}}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var cat entity.Category
	uploads, cleanup, err := bindRecord(c, &cat)
	defer cleanup()
	require.NoError(t, err)
	assert.Empty(t, uploads)
	assert.Equal(t, "Art", cat.Name.EN)
}
