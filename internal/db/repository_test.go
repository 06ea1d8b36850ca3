package db

import (
	"context"
	"testing"
	"time"

	"classroom-recorder/internal/model"
	"classroom-recorder/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "period", "section", "lesson", "group_name", "members", "audio_bytes", "status",
	"file_name", "lesson_folder_id", "error_kind", "error_message", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(conn), mock
}

func testRecord(t *testing.T) *model.SubmissionRecord {
	t.Helper()
	rc, err := model.NewRecordingContext("2026年度", "1年A組", "細胞の観察")
	require.NoError(t, err)
	record := model.NewSubmissionRecord("sub-1", rc, model.Submission{Group: "3班", Members: "佐藤,田中", Audio: []byte("RIFF")})
	return &record
}

func TestRepository_InsertAndUpdate(t *testing.T) {
	// given
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	record := testRecord(t)

	mock.ExpectExec("INSERT INTO submissions").
		WithArgs("sub-1", "2026年度", "1年A組", "細胞の観察", "3班", "佐藤,田中", 4, "QUEUED",
			nil, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// when
	require.NoError(t, repo.InsertSubmission(ctx, record))

	t.Run("should store the filing result", func(t *testing.T) {
		record.Apply(model.Stored("3班_佐藤_田中.wav", "lesson-folder"))
		mock.ExpectExec("UPDATE submissions SET status").
			WithArgs("STORED", "3班_佐藤_田中.wav", "lesson-folder", nil, nil, sqlmock.AnyArg(), "sub-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateSubmissionResult(ctx, record))
	})

	t.Run("should report unknown submission", func(t *testing.T) {
		mock.ExpectExec("UPDATE submissions SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, repo.UpdateSubmissionResult(ctx, record), errors.ErrSubmissionNotFound)
	})

	// then
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetSubmission(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM submissions WHERE id = ?").
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"sub-1", "2026年度", "1年A組", "細胞の観察", "3班", "佐藤,田中", 4, "FAILED",
			nil, nil, "BackendError", "quota exceeded", now, now))

	record, err := repo.GetSubmission(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Equal(t, model.SubmissionStatusFailed, record.Status)
	require.Equal(t, "quota exceeded", *record.ErrorMessage)
	require.Nil(t, record.FileName)

	mock.ExpectQuery("SELECT (.+) FROM submissions WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = repo.GetSubmission(context.Background(), "missing")
	require.ErrorIs(t, err, errors.ErrSubmissionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListLessonSubmissions(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs("2026年度", "1年A組", "細胞の観察").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("sub-1", "2026年度", "1年A組", "細胞の観察", "1班", "佐藤", 10, "STORED",
				"1班_佐藤.wav", "lesson", nil, nil, now, now).
			AddRow("sub-2", "2026年度", "1年A組", "細胞の観察", "2班", "田中", 12, "QUEUED",
				nil, nil, nil, nil, now, now))

	records, err := repo.ListLessonSubmissions(context.Background(), "2026年度", "1年A組", "細胞の観察")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "1班_佐藤.wav", *records[0].FileName)
	require.Equal(t, model.SubmissionStatusQueued, records[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
