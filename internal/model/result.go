package model

import "classroom-recorder/pkg/errors"

type ResultStatus string

const (
	ResultStored ResultStatus = "STORED"
	ResultFailed ResultStatus = "FAILED"
)

// UploadResult is the outcome of one filing attempt: either Stored with the
// file name and lesson folder, or Failed with a kind and message.
type UploadResult struct {
	Status         ResultStatus `json:"status"`
	FileName       string       `json:"file_name,omitempty"`
	LessonFolderID string       `json:"lesson_folder_id,omitempty"`
	ErrorKind      errors.Kind  `json:"error_kind,omitempty"`
	Message        string       `json:"message,omitempty"`
}

func Stored(fileName, lessonFolderID string) UploadResult {
	return UploadResult{
		Status:         ResultStored,
		FileName:       fileName,
		LessonFolderID: lessonFolderID,
	}
}

func Failed(kind errors.Kind, message string) UploadResult {
	return UploadResult{
		Status:    ResultFailed,
		ErrorKind: kind,
		Message:   message,
	}
}

// FailedFrom classifies err with errors.KindOf.
func FailedFrom(err error) UploadResult {
	return Failed(errors.KindOf(err), err.Error())
}

func (r UploadResult) OK() bool {
	return r.Status == ResultStored
}
