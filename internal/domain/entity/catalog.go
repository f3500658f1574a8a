package entity

// Category groups courses. Categories are soft-deleted.
type Category struct {
	ID        string    `json:"_id,omitempty"`
	Name      Localized `json:"name" validate:"required"`
	Image     string    `json:"image,omitempty" validate:"omitempty,url"`
	IsDeleted bool      `json:"isDeleted,omitempty"`
}

func (c Category) RecordID() string { return c.ID }

type Instructor struct {
	ID       string    `json:"_id,omitempty"`
	Name     Localized `json:"name" validate:"required"`
	JobTitle Localized `json:"jobTitle" validate:"required"`
	Bio      Localized `json:"bio" validate:"-"`
	Email    string    `json:"email" validate:"required,email"`
	Image    string    `json:"image,omitempty" validate:"omitempty,url"`
}

func (i Instructor) RecordID() string { return i.ID }

// SuccessStory is a testimonial shown on the platform landing page.
type SuccessStory struct {
	ID     string    `json:"_id,omitempty"`
	Name   Localized `json:"name" validate:"required"`
	Story  Localized `json:"story" validate:"required"`
	Image  string    `json:"image,omitempty" validate:"omitempty,url"`
	Course string    `json:"course,omitempty"`
}

func (s SuccessStory) RecordID() string { return s.ID }
