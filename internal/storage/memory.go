package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"classroom-recorder/internal/model"
	"classroom-recorder/pkg/errors"

	"github.com/google/uuid"
)

// MemoryStorage keeps folders and files in process. It backs local
// development (storage.backend: memory) and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	folders []memoryFolder
	files   map[string]map[string][]byte

	// AuthErr, when set, is returned by Authenticate.
	AuthErr error
}

type memoryFolder struct {
	handle  model.FolderHandle
	trashed bool
}

var _ Capability = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string]map[string][]byte{}}
}

func (m *MemoryStorage) Authenticate(ctx context.Context) error {
	if m.AuthErr != nil {
		return errors.Wrap(errors.ErrAuthenticationFailed, m.AuthErr, "memory storage")
	}
	return nil
}

func (m *MemoryStorage) ListFolders(ctx context.Context, parentID, title string) ([]model.FolderHandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []model.FolderHandle
	for _, f := range m.folders {
		if !f.trashed && f.handle.ParentID == parentID && f.handle.Name == title {
			matches = append(matches, f.handle)
		}
	}
	return matches, nil
}

func (m *MemoryStorage) CreateFolder(ctx context.Context, parentID, title string) (model.FolderHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handle := model.FolderHandle{ID: uuid.NewString(), Name: title, ParentID: parentID}
	m.folders = append(m.folders, memoryFolder{handle: handle})
	return handle, nil
}

func (m *MemoryStorage) UploadFile(ctx context.Context, parentID, fileName string, content io.ReadSeeker) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return errors.Wrap(errors.ErrBackend, err, "read upload content")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.files[parentID] == nil {
		m.files[parentID] = map[string][]byte{}
	}
	m.files[parentID][fileName] = data
	return nil
}

// Trash marks a folder as trashed so ListFolders skips it.
func (m *MemoryStorage) Trash(folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.folders {
		if m.folders[i].handle.ID == folderID {
			m.folders[i].trashed = true
			return nil
		}
	}
	return fmt.Errorf("folder %s not found", folderID)
}

// FolderCount returns the number of folders ever created.
func (m *MemoryStorage) FolderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.folders)
}

// File returns the stored content of fileName under parentID.
func (m *MemoryStorage) File(parentID, fileName string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[parentID][fileName]
	return data, ok
}
