package excel

import (
	"context"

	"classroom-recorder/internal/model"
	"classroom-recorder/internal/session"
)

// ScheduleStrategy turns a lesson schedule upload into recording contexts.
type ScheduleStrategy interface {
	Parse(ctx context.Context, data []byte) ([]model.LessonRow, error)
	Validate(ctx context.Context, rows []model.LessonRow) ([]model.RecordingContext, error)
}

type ExcelStrategy struct {
	parser    *Parser
	validator *Validator
}

func NewExcelStrategy(resolver *session.Resolver) ScheduleStrategy {
	return &ExcelStrategy{
		parser:    NewParser(),
		validator: NewValidator(resolver),
	}
}

func (s *ExcelStrategy) Parse(ctx context.Context, data []byte) ([]model.LessonRow, error) {
	return s.parser.Parse(ctx, data)
}

func (s *ExcelStrategy) Validate(ctx context.Context, rows []model.LessonRow) ([]model.RecordingContext, error) {
	return s.validator.Validate(ctx, rows)
}
