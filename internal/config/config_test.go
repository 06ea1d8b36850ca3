package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  name: classroom-recorder\n"))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "drive", cfg.Storage.Backend)
	require.Equal(t, "service_account", cfg.Storage.Drive.AuthMode)
	require.Equal(t, "normalized", cfg.Recording.Naming)
	require.Equal(t, 1, cfg.Workers.Filing.Count)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("RECORDER_ROOT_FOLDER", "1Qsnz2k7Gw")

	cfg, err := Parse([]byte("storage:\n  backend: memory\n  root_folder_id: ${RECORDER_ROOT_FOLDER}\n"))
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Storage.Backend)
	require.Equal(t, "1Qsnz2k7Gw", cfg.Storage.RootFolderID)
}

func TestLoad_FromConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recording:\n  default_period: 2026年度\n  group_count: 3\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "2026年度", cfg.Recording.DefaultPeriod)
	require.Equal(t, []string{"1班", "2班", "3班"}, cfg.Groups())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{Redis: RedisConfig{Host: "localhost", Port: 6379}}
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestParse_RejectsInvalidGroups(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative count", "recording:\n  group_count: -1\n"},
		{"format without verb", "recording:\n  group_format: 班\n"},
		{"string verb", "recording:\n  group_format: \"%s班\"\n"},
		{"two verbs", "recording:\n  group_format: \"%d班%d\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestParse_AcceptsPaddedGroupFormat(t *testing.T) {
	cfg, err := Parse([]byte("recording:\n  group_count: 2\n  group_format: \"G%02d\"\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"G01", "G02"}, cfg.Groups())
}

func TestGroups_NegativeCountIsEmpty(t *testing.T) {
	cfg := &Config{Recording: RecordingConfig{GroupCount: -3, GroupFormat: "%d班"}}
	require.Empty(t, cfg.Groups())
}
