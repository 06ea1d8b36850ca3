package excel

import (
	"bytes"
	"fmt"

	"classroom-recorder/internal/model"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "提出一覧"

var reportHeader = []string{"submission_id", "group", "members", "status", "file_name", "error_kind", "error_message", "submitted_at"}

// LessonReport renders the ledger rows of one lesson as an XLSX workbook.
func LessonReport(rc model.RecordingContext, records []model.SubmissionRecord) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), reportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	title := rc.View().Title
	if err := file.SetCellValue(reportSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}

	if err := file.SetSheetRow(reportSheet, "A2", &reportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			record.ID,
			record.GroupName,
			record.Members,
			string(record.Status),
			deref(record.FileName),
			deref(record.ErrorKind),
			deref(record.ErrorMessage),
			record.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := file.SetSheetRow(reportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", i+3, err)
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportFileName is the download name for a lesson report.
func ReportFileName(rc model.RecordingContext) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", rc.Period(), rc.Section(), rc.Lesson())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
