package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
)

// Broadcaster fans a pushed notification out to live gateway subscribers.
type Broadcaster interface {
	Broadcast(n entity.Notification)
}

// QueuePublisher forwards pushed notifications to a message queue.
type QueuePublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type NotificationService struct {
	*EntityService[entity.Notification]
	logger *logrus.Logger
	hub    Broadcaster
	queue  QueuePublisher
}

// Use attaches the optional fan-out targets of Receive. Either may be nil.
func (s *NotificationService) Use(hub Broadcaster, queue QueuePublisher) {
	s.hub = hub
	s.queue = queue
}

// Send creates a notification addressed to one user, or to everyone.
func (s *NotificationService) Send(ctx context.Context, n entity.Notification) (entity.Notification, error) {
	n.IsRead = false
	return s.Create(ctx, n)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (entity.Notification, error) {
	return s.Slice.Optimistic(ctx, id, func(n entity.Notification) entity.Notification {
		n.IsRead = true
		return n
	}, map[string]any{"isRead": true})
}

func (s *NotificationService) Unread() int {
	return s.Slice.Count(func(n entity.Notification) bool { return !n.IsRead })
}

// Receive handles a notification pushed over the real-time channel.
func (s *NotificationService) Receive(ctx context.Context, n entity.Notification) {
	if n.ID == "" {
		s.logger.WithField("title", n.Title.EN).Warn("dropping pushed notification without id")
		return
	}
	s.Slice.Merge(n)
	if s.hub != nil {
		s.hub.Broadcast(n)
	}
	if s.queue != nil {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.queue.PublishJSON(pctx, n); err != nil {
			s.logger.WithError(err).WithField("notification_id", n.ID).Error("publish notification failed")
		}
	}
}
