package storage

import (
	"fmt"

	"classroom-recorder/internal/config"
	"classroom-recorder/pkg/errors"
)

// New builds the configured backend. A missing credential set yields an error
// wrapping errors.ErrConfigurationMissing; callers may keep running without a
// capability and report that per submission.
func New(cfg *config.Config) (Capability, error) {
	switch cfg.Storage.Backend {
	case "drive":
		d, err := NewDriveStorage(cfg.Storage.Drive)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "s3":
		s, err := NewS3Storage(cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, errors.Wrap(errors.ErrConfigurationMissing, nil, fmt.Sprintf("unknown storage backend %q", cfg.Storage.Backend))
	}
}
