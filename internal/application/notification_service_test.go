package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-admin/internal/domain/entity"
)

type recordingHub struct{ got []entity.Notification }

func (h *recordingHub) Broadcast(n entity.Notification) { h.got = append(h.got, n) }

type recordingQueue struct {
	bodies []any
	err    error
}

func (q *recordingQueue) PublishJSON(_ context.Context, body any) error {
	q.bodies = append(q.bodies, body)
	return q.err
}

func TestReceiveMergesAndFansOut(t *testing.T) {
	c, _ := newTestCatalog()
	hub, queue := &recordingHub{}, &recordingQueue{err: errors.New("channel closed")}
	c.Notifications.Use(hub, queue)

	n := entity.Notification{ID: "n1", Title: entity.L("New signup", "تسجيل جديد")}
	c.Notifications.Receive(context.Background(), n)
	c.Notifications.Receive(context.Background(), entity.Notification{})

	assert.Equal(t, 1, c.Notifications.Slice.Count(nil))
	assert.Equal(t, 1, c.Notifications.Unread())
	require.Len(t, hub.got, 1)
	assert.Equal(t, "n1", hub.got[0].ID)
	assert.Len(t, queue.bodies, 1)
}

func TestSendAndMarkRead(t *testing.T) {
	c, m := newTestCatalog()
	sent, err := c.Notifications.Send(context.Background(), entity.Notification{
		Title:  entity.L("Maintenance", "صيانة"),
		Body:   entity.L("Tonight", "الليلة"),
		IsRead: true,
	})
	require.NoError(t, err)
	assert.False(t, sent.IsRead)
	assert.Equal(t, 1, c.Notifications.Unread())

	_, err = c.Notifications.MarkRead(context.Background(), sent.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Notifications.Unread())
	assert.True(t, m.notifications.items[0].IsRead)

	_, err = c.Notifications.Send(context.Background(), entity.Notification{Title: entity.L("x", "")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
