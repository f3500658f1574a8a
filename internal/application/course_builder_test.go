package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

func sampleDraft() Draft {
	return Draft{Modules: []ModuleDraft{
		{
			Title: entity.L("Basics", "الأساسيات"),
			Topics: []TopicDraft{
				{
					Title:  entity.L("Variables", "المتغيرات"),
					Videos: []VideoDraft{{Title: entity.L("Intro", "مقدمة"), URL: "https://cdn.test/v1.mp4", Duration: 120}},
					Assignments: []AssignmentDraft{{
						Title: entity.L("Quiz", "اختبار"),
						Questions: []QuestionDraft{{
							Text:          entity.L("var or :=?", "var أم :=؟"),
							Options:       []entity.Localized{entity.L("var", "var"), entity.L(":=", ":=")},
							CorrectAnswer: 1,
							Points:        5,
						}},
					}},
				},
				{Title: entity.L("Loops", "الحلقات")},
			},
		},
		{Title: entity.L("Advanced", "متقدم")},
	}}
}

func TestDraftValidatePaths(t *testing.T) {
	d := sampleDraft()
	d.Modules[0].Topics[0].Videos[0].URL = ""
	d.Modules[0].Topics[1].Title.AR = ""
	d.Modules[0].Topics[0].Assignments[0].Questions[0].CorrectAnswer = 7

	err := d.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Details["modules[0].topics[0].videos[0].url"])
	assert.Equal(t, "is required", verr.Details["modules[0].topics[1].title.ar"])
	assert.Equal(t, "must point at one of the options", verr.Details["modules[0].topics[0].assignments[0].questions[0].correctAnswer"])

	assert.Error(t, Draft{}.Validate())
}

func TestSubmitCreatesTreeInOrder(t *testing.T) {
	c, m := newTestCatalog()
	m.courses.items = []entity.Course{{ID: "course1", Title: entity.L("Go", "جو")}}
	b := NewCourseBuilder(c, helpers.NopLogger())

	res, err := b.Submit(context.Background(), "course1", sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, []string{"mod1", "mod2"}, res.Created.Modules)
	assert.Equal(t, []string{"top1", "top2"}, res.Created.Topics)
	assert.Equal(t, []string{"vid1"}, res.Created.Videos)
	assert.Equal(t, []string{"asg1"}, res.Created.Assignments)
	assert.Equal(t, []string{"q1"}, res.Created.Questions)
	require.NotNil(t, res.Course)
	assert.Equal(t, "course1", res.Course.ID)

	assert.Equal(t, "course1", m.modules.items[1].Course)
	assert.Equal(t, 1, m.modules.items[1].Order)
	assert.Equal(t, "mod1", m.topics.items[1].Module)
	assert.Equal(t, 1, m.topics.items[1].Order)
	assert.Equal(t, "top1", m.videos.items[0].Topic)
	assert.Equal(t, "asg1", m.questions.items[0].Assignment)
}

func TestSubmitStopsAtFirstFailure(t *testing.T) {
	c, m := newTestCatalog()
	m.questions.failOn = func(op string, _ entity.Question) error {
		return &repository.APIError{Status: 422, Message: "options must be unique"}
	}
	b := NewCourseBuilder(c, helpers.NopLogger())

	_, err := b.Submit(context.Background(), "course1", sampleDraft())
	var serr *SubmitError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "modules[0].topics[0].assignments[0].questions[0]", serr.Step)
	assert.Equal(t, []string{"mod1"}, serr.Created.Modules)
	assert.Equal(t, []string{"asg1"}, serr.Created.Assignments)
	assert.Empty(t, serr.Created.Questions)

	apiErr, ok := repository.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "options must be unique", apiErr.Message)
	// the second module is never attempted
	assert.Len(t, m.modules.items, 1)
}

func TestSubmitNeedsCourse(t *testing.T) {
	c, _ := newTestCatalog()
	_, err := NewCourseBuilder(c, helpers.NopLogger()).Submit(context.Background(), "", sampleDraft())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Details["course"])
}

func TestSubmitToleratesRefreshFailure(t *testing.T) {
	c, _ := newTestCatalog()
	res, err := NewCourseBuilder(c, helpers.NopLogger()).Submit(context.Background(), "missing", sampleDraft())
	require.NoError(t, err)
	assert.Nil(t, res.Course)
	assert.Len(t, res.Created.Modules, 2)
}
