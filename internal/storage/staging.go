package storage

import (
	"fmt"
	"io"
	"os"
)

const stagingPattern = "recording-*.wav"

// Stager writes audio buffers to temporary files so uploads always read from a
// complete, seekable stream.
type Stager struct {
	dir string
}

// NewStager stages into dir, or the OS temp dir when dir is empty.
func NewStager(dir string) (*Stager, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create staging dir %s: %w", dir, err)
		}
	}
	return &Stager{dir: dir}, nil
}

// Staged is an open staging file. Release closes and removes it and is safe to
// call more than once.
type Staged struct {
	file     *os.File
	released bool
}

func (s *Stager) Stage(data []byte) (*Staged, error) {
	f, err := os.CreateTemp(s.dir, stagingPattern)
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}

	staged := &Staged{file: f}
	if _, err := f.Write(data); err != nil {
		staged.Release()
		return nil, fmt.Errorf("write staging file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		staged.Release()
		return nil, fmt.Errorf("rewind staging file: %w", err)
	}

	return staged, nil
}

func (s *Staged) Reader() io.ReadSeeker {
	return s.file
}

func (s *Staged) Path() string {
	return s.file.Name()
}

func (s *Staged) Release() error {
	if s.released {
		return nil
	}
	s.released = true

	closeErr := s.file.Close()
	if err := os.Remove(s.file.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staging file: %w", err)
	}
	return closeErr
}
