package excel

import (
	"context"
	"fmt"

	"classroom-recorder/internal/model"
	"classroom-recorder/internal/session"
	"classroom-recorder/pkg/errors"
)

type Validator struct {
	resolver *session.Resolver
}

func NewValidator(resolver *session.Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// Validate resolves every row and rejects the sheet on the first row that
// cannot be resolved or repeats an earlier lesson.
func (v *Validator) Validate(ctx context.Context, rows []model.LessonRow) ([]model.RecordingContext, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no lesson rows", errors.ErrInvalidLessonSheet)
	}

	seen := make(map[string]int, len(rows))
	contexts := make([]model.RecordingContext, 0, len(rows))
	for _, row := range rows {
		rc, err := v.resolver.Resolve(single(row.Year), single(row.Class), single(row.Lesson))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Row, err)
		}

		key := rc.Period() + "\x00" + rc.Section() + "\x00" + rc.Lesson()
		if first, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: row %d repeats row %d", errors.ErrInvalidLessonSheet, row.Row, first)
		}
		seen[key] = row.Row

		contexts = append(contexts, rc)
	}

	return contexts, nil
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
