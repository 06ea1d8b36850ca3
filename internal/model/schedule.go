package model

// LessonRow is one line of a lesson schedule spreadsheet. Blank cells fall
// back to the configured defaults when the row is resolved.
type LessonRow struct {
	Row    int    `json:"row"`
	Year   string `json:"year"`
	Class  string `json:"class"`
	Lesson string `json:"lesson"`
}

func (r LessonRow) IsBlank() bool {
	return r.Year == "" && r.Class == "" && r.Lesson == ""
}
