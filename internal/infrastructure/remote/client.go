package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/repository"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

// Client talks to the course platform REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// SetTokenSource swaps the token source; used once the session service exists.
// It is safe to call while requests are in flight.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do sends one request. With files, payload is encoded as multipart/form-data,
// otherwise as JSON. The decoded "data" member of the response lands in out.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload any, files []repository.Upload, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(files) > 0:
		buf, ct, err := encodeMultipart(payload, files)
		if err != nil {
			return fmt.Errorf("encoding multipart body: %w", err)
		}
		body, contentType = buf, ct
	case payload != nil:
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"method": method, "path": path}).Error("api request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WithError(closeErr).Warn("failed to close response body")
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &repository.APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			apiErr.Message = env.Message
		}
		c.logger.WithFields(logrus.Fields{"status": resp.StatusCode, "path": path, "message": apiErr.Message}).Warn("api returned error")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	data := []byte(env.Data)
	if len(data) == 0 || string(data) == "null" {
		// some endpoints answer with the bare record
		data = raw
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
