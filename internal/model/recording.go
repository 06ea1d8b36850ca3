package model

import (
	"strings"

	"classroom-recorder/pkg/errors"
)

// RecordingContext identifies the lesson a recording belongs to. It is a value
// type: fields are unexported and only set by NewRecordingContext.
type RecordingContext struct {
	period  string
	section string
	lesson  string
}

// NewRecordingContext trims all three labels and fails with a
// *errors.MissingFieldError naming the first empty one.
func NewRecordingContext(period, section, lesson string) (RecordingContext, error) {
	rc := RecordingContext{
		period:  strings.TrimSpace(period),
		section: strings.TrimSpace(section),
		lesson:  strings.TrimSpace(lesson),
	}

	switch {
	case rc.period == "":
		return RecordingContext{}, &errors.MissingFieldError{Field: FieldPeriod}
	case rc.section == "":
		return RecordingContext{}, &errors.MissingFieldError{Field: FieldSection}
	case rc.lesson == "":
		return RecordingContext{}, &errors.MissingFieldError{Field: FieldLesson}
	}

	return rc, nil
}

func (rc RecordingContext) Period() string  { return rc.period }
func (rc RecordingContext) Section() string { return rc.section }
func (rc RecordingContext) Lesson() string  { return rc.lesson }

// Chain returns the folder titles from the root down to the lesson folder.
func (rc RecordingContext) Chain() []string {
	return []string{rc.period, rc.section, rc.lesson}
}

func (rc RecordingContext) IsZero() bool {
	return rc == RecordingContext{}
}

// ContextView is the JSON shape of a RecordingContext.
type ContextView struct {
	Period  string `json:"period"`
	Section string `json:"section"`
	Lesson  string `json:"lesson"`
	Title   string `json:"title"`
}

func (rc RecordingContext) View() ContextView {
	return ContextView{
		Period:  rc.period,
		Section: rc.section,
		Lesson:  rc.lesson,
		Title:   rc.period + " " + rc.section + "：" + rc.lesson,
	}
}

// Submission is one completed recording plus the group and participant names
// typed by the students. It is consumed once by the filer.
type Submission struct {
	Group   string
	Members string
	Audio   []byte
}

// Validate checks the submission against the configured group range.
func (s Submission) Validate(groups []string) error {
	if strings.TrimSpace(s.Members) == "" {
		return &errors.MissingFieldError{Field: FieldMembers}
	}

	group := strings.TrimSpace(s.Group)
	if group == "" {
		return &errors.MissingFieldError{Field: FieldGroup}
	}
	if len(groups) > 0 && !contains(groups, group) {
		return &errors.InvalidSubmissionError{Field: FieldGroup, Value: s.Group, Message: "not one of the configured groups"}
	}

	if len(s.Audio) == 0 {
		return &errors.InvalidSubmissionError{Field: FieldAudio, Message: "recording is empty"}
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Field names reported in resolution and validation errors.
const (
	FieldPeriod  = "period"
	FieldSection = "section"
	FieldLesson  = "lesson"
	FieldGroup   = "group"
	FieldMembers = "members"
	FieldAudio   = "audio"
)

// FolderHandle is a remote folder identity.
type FolderHandle struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}
