package db

import (
	"context"
	"database/sql"

	"classroom-recorder/internal/model"
	"classroom-recorder/pkg/errors"
)

// Repository is the submission ledger: one row per filing attempt.
type Repository interface {
	InsertSubmission(ctx context.Context, record *model.SubmissionRecord) error
	UpdateSubmissionResult(ctx context.Context, record *model.SubmissionRecord) error
	GetSubmission(ctx context.Context, id string) (*model.SubmissionRecord, error)
	ListLessonSubmissions(ctx context.Context, period, section, lesson string) ([]model.SubmissionRecord, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const submissionColumns = `id, period, section, lesson, group_name, members, audio_bytes, status,
	file_name, lesson_folder_id, error_kind, error_message, created_at, updated_at`

func (r *repository) InsertSubmission(ctx context.Context, record *model.SubmissionRecord) error {
	query := `INSERT INTO submissions (` + submissionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Period, record.Section, record.Lesson, record.GroupName, record.Members,
		record.AudioBytes, record.Status, record.FileName, record.LessonFolderID,
		record.ErrorKind, record.ErrorMessage, record.CreatedAt, record.UpdatedAt)
	return err
}

func (r *repository) UpdateSubmissionResult(ctx context.Context, record *model.SubmissionRecord) error {
	query := `UPDATE submissions SET status = ?, file_name = ?, lesson_folder_id = ?,
			  error_kind = ?, error_message = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		record.Status, record.FileName, record.LessonFolderID,
		record.ErrorKind, record.ErrorMessage, record.UpdatedAt, record.ID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.ErrSubmissionNotFound
	}
	return nil
}

func (r *repository) GetSubmission(ctx context.Context, id string) (*model.SubmissionRecord, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = ?`

	record, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) ListLessonSubmissions(ctx context.Context, period, section, lesson string) ([]model.SubmissionRecord, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
			  WHERE period = ? AND section = ? AND lesson = ?
			  ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, period, section, lesson)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.SubmissionRecord
	for rows.Next() {
		record, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*model.SubmissionRecord, error) {
	var record model.SubmissionRecord
	err := row.Scan(&record.ID, &record.Period, &record.Section, &record.Lesson,
		&record.GroupName, &record.Members, &record.AudioBytes, &record.Status,
		&record.FileName, &record.LessonFolderID, &record.ErrorKind, &record.ErrorMessage,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
