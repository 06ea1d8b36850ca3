package storage

import (
	"context"
	"fmt"
	"os"
	"sync"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/logger"
	"classroom-recorder/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

const (
	AuthModeServiceAccount = "service_account"
	AuthModeUserOAuth      = "user_oauth"
)

// driveAuth owns the oauth2 token source for one Drive backend. The source is
// built lazily on first use and reused afterwards; oauth2 refreshes tokens.
type driveAuth struct {
	cfg    config.DriveConfig
	source oauth2.TokenSource
	mu     sync.RWMutex
	log    zerolog.Logger
}

func newDriveAuth(cfg config.DriveConfig) (*driveAuth, error) {
	switch cfg.AuthMode {
	case AuthModeServiceAccount:
		if cfg.CredentialsJSON == "" && cfg.CredentialsFile == "" {
			return nil, errors.Wrap(errors.ErrConfigurationMissing, nil, "drive service account credentials not set")
		}
	case AuthModeUserOAuth:
		if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
			return nil, errors.Wrap(errors.ErrConfigurationMissing, nil, "drive user oauth client or refresh token not set")
		}
	default:
		return nil, errors.Wrap(errors.ErrConfigurationMissing, nil, fmt.Sprintf("unknown drive auth mode %q", cfg.AuthMode))
	}

	return &driveAuth{cfg: cfg, log: logger.Component("drive-auth")}, nil
}

func (a *driveAuth) TokenSource() (oauth2.TokenSource, error) {
	a.mu.RLock()
	if a.source != nil {
		source := a.source
		a.mu.RUnlock()
		return source, nil
	}
	a.mu.RUnlock()

	return a.buildSource()
}

func (a *driveAuth) buildSource() (oauth2.TokenSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Double check after acquiring write lock
	if a.source != nil {
		return a.source, nil
	}

	a.log.Debug().Str("auth_mode", a.cfg.AuthMode).Msg("Building drive token source")

	// The source outlives any single request, so it is not tied to one.
	ctx := context.Background()

	switch a.cfg.AuthMode {
	case AuthModeUserOAuth:
		conf := &oauth2.Config{
			ClientID:     a.cfg.ClientID,
			ClientSecret: a.cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{drive.DriveScope},
		}
		a.source = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: a.cfg.RefreshToken})
	default:
		key, err := a.serviceAccountKey()
		if err != nil {
			return nil, err
		}
		jwtConfig, err := google.JWTConfigFromJSON(key, drive.DriveScope)
		if err != nil {
			return nil, errors.Wrap(errors.ErrAuthenticationFailed, err, "parse service account key")
		}
		a.source = oauth2.ReuseTokenSource(nil, jwtConfig.TokenSource(ctx))
	}

	return a.source, nil
}

func (a *driveAuth) serviceAccountKey() ([]byte, error) {
	if a.cfg.CredentialsJSON != "" {
		return []byte(a.cfg.CredentialsJSON), nil
	}

	key, err := os.ReadFile(a.cfg.CredentialsFile)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigurationMissing, err, "read service account key")
	}
	return key, nil
}

// Verify forces a token fetch so a rejected grant surfaces before any folder
// operation runs.
func (a *driveAuth) Verify() error {
	source, err := a.TokenSource()
	if err != nil {
		return err
	}

	token, err := source.Token()
	if err != nil {
		return errors.Wrap(errors.ErrAuthenticationFailed, err, "fetch drive token")
	}

	a.log.Debug().Time("expires_at", token.Expiry).Msg("Drive token valid")
	return nil
}
