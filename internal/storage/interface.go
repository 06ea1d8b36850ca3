package storage

import (
	"context"
	"io"

	"classroom-recorder/internal/model"
)

// Capability is the remote folder store recordings are filed into.
//
//go:generate mockgen -source=interface.go -destination=interface_mock.go -package=storage
type Capability interface {
	// Authenticate establishes or verifies the session. Failures wrap
	// errors.ErrAuthenticationFailed.
	Authenticate(ctx context.Context) error
	// ListFolders returns non-trashed folders under parentID whose title equals
	// title exactly, in backend order.
	ListFolders(ctx context.Context, parentID, title string) ([]model.FolderHandle, error)
	CreateFolder(ctx context.Context, parentID, title string) (model.FolderHandle, error)
	UploadFile(ctx context.Context, parentID, fileName string, content io.ReadSeeker) error
}
