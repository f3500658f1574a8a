package entity

import "time"

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Course struct {
	ID          string    `json:"_id,omitempty"`
	Title       Localized `json:"title" validate:"required"`
	Description Localized `json:"description" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Instructor  string    `json:"instructor" validate:"required"`
	Price       float64   `json:"price" validate:"gte=0"`
	Discount    float64   `json:"discount" validate:"gte=0,ltefield=Price"`
	Level       string    `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Image       string    `json:"image,omitempty" validate:"omitempty,url"`
	IsPublished bool      `json:"isPublished"`
	IsDeleted   bool      `json:"isDeleted,omitempty"`
	Modules     []Module  `json:"modules,omitempty" validate:"-"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

func (c Course) RecordID() string { return c.ID }

// Module is a chapter of a course.
type Module struct {
	ID     string    `json:"_id,omitempty"`
	Course string    `json:"course" validate:"required"`
	Title  Localized `json:"title" validate:"required"`
	Order  int       `json:"order" validate:"gte=0"`
	Topics []Topic   `json:"topics,omitempty" validate:"-"`
}

func (m Module) RecordID() string { return m.ID }

type Topic struct {
	ID     string    `json:"_id,omitempty"`
	Module string    `json:"module" validate:"required"`
	Title  Localized `json:"title" validate:"required"`
	Order  int       `json:"order" validate:"gte=0"`
}

func (t Topic) RecordID() string { return t.ID }

type Video struct {
	ID       string    `json:"_id,omitempty"`
	Topic    string    `json:"topic" validate:"required"`
	Title    Localized `json:"title" validate:"required"`
	URL      string    `json:"url,omitempty" validate:"omitempty,url"`
	Duration int       `json:"duration" validate:"gte=0"` // seconds
	IsFree   bool      `json:"isFree"`
}

func (v Video) RecordID() string { return v.ID }

type Assignment struct {
	ID          string    `json:"_id,omitempty"`
	Topic       string    `json:"topic" validate:"required"`
	Title       Localized `json:"title" validate:"required"`
	Description Localized `json:"description" validate:"-"`
}

func (a Assignment) RecordID() string { return a.ID }

// Question is a multiple-choice item of an assignment. CorrectAnswer indexes Options.
type Question struct {
	ID            string      `json:"_id,omitempty"`
	Assignment    string      `json:"assignment" validate:"required"`
	Text          Localized   `json:"text" validate:"required"`
	Options       []Localized `json:"options" validate:"min=2,dive"`
	CorrectAnswer int         `json:"correctAnswer" validate:"gte=0"`
	Points        int         `json:"points" validate:"gte=0"`
}

func (q Question) RecordID() string { return q.ID }

// AnswerInRange reports whether CorrectAnswer points at an existing option.
func (q Question) AnswerInRange() bool {
	return q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}
