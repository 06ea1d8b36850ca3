package excel

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"classroom-recorder/internal/model"
	"classroom-recorder/internal/session"
	"classroom-recorder/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// Header names accepted for each schedule column, matched case-insensitively.
var columnAliases = map[string][]string{
	session.KeyPeriod:  {"year", "period", "年度"},
	session.KeySection: {"class", "section", "クラス"},
	session.KeyLesson:  {"lesson", "授業", "単元"},
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the first worksheet. Row 1 is the header; fully blank rows are
// skipped.
func (p *Parser) Parse(ctx context.Context, data []byte) ([]model.LessonRow, error) {
	// Create file from bytes
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidLessonSheet
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	if len(rows) < 2 { // Header + at least one data row
		return nil, fmt.Errorf("%w: no lesson rows", errors.ErrInvalidLessonSheet)
	}

	columnMap, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var lessons []model.LessonRow
	for i, row := range rows[1:] {
		lesson := p.parseRow(row, columnMap, i+2) // i+2 for actual row number
		if lesson.IsBlank() {
			continue
		}
		lessons = append(lessons, lesson)
	}

	return lessons, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columnMap := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		for key, aliases := range columnAliases {
			for _, alias := range aliases {
				if name == alias {
					columnMap[key] = i
				}
			}
		}
	}

	if _, ok := columnMap[session.KeyLesson]; !ok {
		return nil, fmt.Errorf("%w: missing required column: %s", errors.ErrInvalidLessonSheet, session.KeyLesson)
	}
	return columnMap, nil
}

func (p *Parser) parseRow(row []string, columnMap map[string]int, rowNum int) model.LessonRow {
	getValue := func(colName string) string {
		if idx, exists := columnMap[colName]; exists && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	return model.LessonRow{
		Row:    rowNum,
		Year:   getValue(session.KeyPeriod),
		Class:  getValue(session.KeySection),
		Lesson: getValue(session.KeyLesson),
	}
}
