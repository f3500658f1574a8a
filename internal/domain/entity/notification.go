package entity

import "time"

// Notification targets a single user, or everyone when User is empty.
type Notification struct {
	ID        string    `json:"_id,omitempty"`
	Title     Localized `json:"title" validate:"required"`
	Body      Localized `json:"body" validate:"required"`
	User      string    `json:"user,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (n Notification) RecordID() string { return n.ID }
