package model

import "time"

type SubmissionStatus string

const (
	SubmissionStatusQueued SubmissionStatus = "QUEUED"
	SubmissionStatusStored SubmissionStatus = "STORED"
	SubmissionStatusFailed SubmissionStatus = "FAILED"
)

// SubmissionRecord is the ledger row kept for every filing attempt. The audio
// itself is never persisted here.
type SubmissionRecord struct {
	ID             string           `json:"id" db:"id"`
	Period         string           `json:"period" db:"period"`
	Section        string           `json:"section" db:"section"`
	Lesson         string           `json:"lesson" db:"lesson"`
	GroupName      string           `json:"group" db:"group_name"`
	Members        string           `json:"members" db:"members"`
	AudioBytes     int              `json:"audio_bytes" db:"audio_bytes"`
	Status         SubmissionStatus `json:"status" db:"status"`
	FileName       *string          `json:"file_name,omitempty" db:"file_name"`
	LessonFolderID *string          `json:"lesson_folder_id,omitempty" db:"lesson_folder_id"`
	ErrorKind      *string          `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage   *string          `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// NewSubmissionRecord builds a queued ledger row for sub under rc.
func NewSubmissionRecord(id string, rc RecordingContext, sub Submission) SubmissionRecord {
	now := time.Now().UTC()
	return SubmissionRecord{
		ID:         id,
		Period:     rc.Period(),
		Section:    rc.Section(),
		Lesson:     rc.Lesson(),
		GroupName:  sub.Group,
		Members:    sub.Members,
		AudioBytes: len(sub.Audio),
		Status:     SubmissionStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Apply copies the outcome of a filing attempt onto the record.
func (r *SubmissionRecord) Apply(result UploadResult) {
	r.UpdatedAt = time.Now().UTC()
	if result.OK() {
		r.Status = SubmissionStatusStored
		r.FileName = &result.FileName
		r.LessonFolderID = &result.LessonFolderID
		r.ErrorKind = nil
		r.ErrorMessage = nil
		return
	}

	kind := string(result.ErrorKind)
	r.Status = SubmissionStatusFailed
	r.ErrorKind = &kind
	r.ErrorMessage = &result.Message
}
