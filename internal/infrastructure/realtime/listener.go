// Package realtime carries server-pushed notifications: a websocket listener
// toward the backend and a hub fanning events out to gateway subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
)

const EventNotification = "notification"

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler receives every decoded notification.
type Handler func(ctx context.Context, n entity.Notification)

// Listener keeps a websocket open to the backend while a session is active.
type Listener struct {
	URL    string
	Token  func() string
	Retry  time.Duration
	Handle Handler
	Logger *logrus.Logger
	Dialer *websocket.Dialer
}

func NewListener(url string, token func() string, retry time.Duration, handle Handler, logger *logrus.Logger) *Listener {
	return &Listener{
		URL:    url,
		Token:  token,
		Retry:  retry,
		Handle: handle,
		Logger: logger,
		Dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

var errNoToken = errors.New("no active session")

// Run connects, reads until the connection drops and reconnects after Retry.
// It returns when ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.session(ctx)
		if ctx.Err() != nil {
			return
		}
		switch {
		case errors.Is(err, errNoToken):
			l.Logger.Debug("realtime listener idle, signed out")
		case err != nil:
			reconnects.Add(1)
			l.Logger.WithError(err).WithField("retry_in", l.Retry.String()).Warn("realtime connection lost")
		}
		t := time.NewTimer(l.Retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (l *Listener) session(ctx context.Context) error {
	tok := l.Token()
	if tok == "" {
		return errNoToken
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+tok)
	conn, resp, err := l.Dialer.DialContext(ctx, l.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}
	l.Logger.WithField("url", l.URL).Info("realtime connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		l.dispatch(ctx, msg)
	}
}

func (l *Listener) dispatch(ctx context.Context, msg []byte) {
	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		l.Logger.WithError(err).Warn("malformed realtime frame")
		return
	}
	if f.Event != EventNotification {
		l.Logger.WithField("event", f.Event).Debug("ignoring realtime event")
		return
	}
	var n entity.Notification
	if err := json.Unmarshal(f.Data, &n); err != nil {
		l.Logger.WithError(err).Warn("malformed notification payload")
		return
	}
	eventsReceived.Add(1)
	l.Handle(ctx, n)
}
