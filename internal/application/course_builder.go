package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/pkg/validation"
)

// Draft is the nested form state of the course composition wizard:
// module -> topic -> video/assignment -> question.
type Draft struct {
	Modules []ModuleDraft `json:"modules" validate:"min=1,dive"`
}

type ModuleDraft struct {
	Title  entity.Localized `json:"title"`
	Topics []TopicDraft     `json:"topics" validate:"dive"`
}

type TopicDraft struct {
	Title       entity.Localized  `json:"title"`
	Videos      []VideoDraft      `json:"videos" validate:"dive"`
	Assignments []AssignmentDraft `json:"assignments" validate:"dive"`
}

type VideoDraft struct {
	Title    entity.Localized `json:"title"`
	URL      string           `json:"url" validate:"required,url"`
	Duration int              `json:"duration" validate:"gte=0"`
	IsFree   bool             `json:"isFree"`
}

type AssignmentDraft struct {
	Title       entity.Localized `json:"title"`
	Description entity.Localized `json:"description" validate:"-"`
	Questions   []QuestionDraft  `json:"questions" validate:"dive"`
}

type QuestionDraft struct {
	Text          entity.Localized   `json:"text"`
	Options       []entity.Localized `json:"options" validate:"min=2,dive"`
	CorrectAnswer int                `json:"correctAnswer" validate:"gte=0"`
	Points        int                `json:"points" validate:"gte=0"`
}

// Validate checks the whole tree and reports every problem keyed by path,
// e.g. "modules[0].topics[1].videos[0].url".
func (d Draft) Validate() error {
	details := validation.Struct(d)
	if details == nil {
		details = map[string]string{}
	}
	for mi, m := range d.Modules {
		for ti, t := range m.Topics {
			for ai, a := range t.Assignments {
				for qi, q := range a.Questions {
					if len(q.Options) > 0 && (q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options)) {
						p := fmt.Sprintf("modules[%d].topics[%d].assignments[%d].questions[%d].correctAnswer", mi, ti, ai, qi)
						if _, ok := details[p]; !ok {
							details[p] = "must point at one of the options"
						}
					}
				}
			}
		}
	}
	return invalid(details)
}

// Created lists the ids the wizard managed to create, in creation order.
type Created struct {
	Modules     []string `json:"modules"`
	Topics      []string `json:"topics"`
	Videos      []string `json:"videos"`
	Assignments []string `json:"assignments"`
	Questions   []string `json:"questions"`
}

// SubmitError reports the step that failed. Records created before it are left
// in place; Created says which.
type SubmitError struct {
	Step    string
	Created Created
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("compose course: step %s: %v", e.Step, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

type ComposeResult struct {
	Course  *entity.Course `json:"course,omitempty"`
	Created Created        `json:"created"`
}

// CourseBuilder submits wizard drafts as a sequence of creates.
type CourseBuilder struct {
	Catalog *Catalog
	Logger  *logrus.Logger
}

func NewCourseBuilder(c *Catalog, logger *logrus.Logger) *CourseBuilder {
	return &CourseBuilder{Catalog: c, Logger: logger}
}

// Submit creates every module of the draft under courseID, each child using
// the id its parent was given by the server. It stops at the first failure.
func (b *CourseBuilder) Submit(ctx context.Context, courseID string, d Draft) (*ComposeResult, error) {
	if courseID == "" {
		return nil, invalid(map[string]string{"course": "is required"})
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var created Created
	fail := func(step string, err error) (*ComposeResult, error) {
		b.Logger.WithError(err).WithFields(logrus.Fields{"course_id": courseID, "step": step}).Warn("course composition stopped")
		return nil, &SubmitError{Step: step, Created: created, Err: err}
	}

	c := b.Catalog
	for mi, md := range d.Modules {
		mpath := "modules[" + strconv.Itoa(mi) + "]"
		mod, err := c.Modules.Create(ctx, entity.Module{Course: courseID, Title: md.Title, Order: mi})
		if err != nil {
			return fail(mpath, err)
		}
		created.Modules = append(created.Modules, mod.ID)

		for ti, td := range md.Topics {
			tpath := mpath + ".topics[" + strconv.Itoa(ti) + "]"
			topic, err := c.Topics.Create(ctx, entity.Topic{Module: mod.ID, Title: td.Title, Order: ti})
			if err != nil {
				return fail(tpath, err)
			}
			created.Topics = append(created.Topics, topic.ID)

			for vi, vd := range td.Videos {
				v, err := c.Videos.Create(ctx, entity.Video{
					Topic:    topic.ID,
					Title:    vd.Title,
					URL:      vd.URL,
					Duration: vd.Duration,
					IsFree:   vd.IsFree,
				})
				if err != nil {
					return fail(tpath+".videos["+strconv.Itoa(vi)+"]", err)
				}
				created.Videos = append(created.Videos, v.ID)
			}

			for ai, ad := range td.Assignments {
				apath := tpath + ".assignments[" + strconv.Itoa(ai) + "]"
				a, err := c.Assignments.Create(ctx, entity.Assignment{Topic: topic.ID, Title: ad.Title, Description: ad.Description})
				if err != nil {
					return fail(apath, err)
				}
				created.Assignments = append(created.Assignments, a.ID)

				for qi, qd := range ad.Questions {
					q, err := c.Questions.Create(ctx, entity.Question{
						Assignment:    a.ID,
						Text:          qd.Text,
						Options:       qd.Options,
						CorrectAnswer: qd.CorrectAnswer,
						Points:        qd.Points,
					})
					if err != nil {
						return fail(apath+".questions["+strconv.Itoa(qi)+"]", err)
					}
					created.Questions = append(created.Questions, q.ID)
				}
			}
		}
	}

	res := &ComposeResult{Created: created}
	course, err := c.Courses.Get(ctx, courseID)
	if err != nil {
		b.Logger.WithError(err).WithField("course_id", courseID).Warn("refresh composed course failed")
		return res, nil
	}
	res.Course = &course
	return res, nil
}
