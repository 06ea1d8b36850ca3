package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"classroom-recorder/internal/config"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testConfig = `
storage:
  backend: memory
  root_folder_id: root
link:
  base_url: https://recorder.example.com/record
  qr_size: 128
recording:
  default_period: 2026年度
logging:
  level: error
`

func useConfig(t *testing.T, yaml string) {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	cfg.Storage.StagingDir = filepath.Join(t.TempDir(), "staging")

	previous := loadConfig
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = previous })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLinkCmd(t *testing.T) {
	useConfig(t, testConfig)
	qrPath := filepath.Join(t.TempDir(), "lesson.png")

	out, err := run(t, "link", "--class", "1年A組", "--lesson", "細胞の観察", "--qr", qrPath)
	require.NoError(t, err)
	require.Contains(t, out, "2026年度 1年A組：細胞の観察")
	require.Contains(t, out, "https://recorder.example.com/record?")

	png, err := os.ReadFile(qrPath)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestResolveCmd(t *testing.T) {
	useConfig(t, testConfig)

	t.Run("should print the resolved context", func(t *testing.T) {
		out, err := run(t, "resolve", "https://recorder.example.com/record?class=%201%E5%B9%B4A%E7%B5%84&lesson=x&lesson=y")
		require.NoError(t, err)
		require.Contains(t, out, "year:   2026年度")
		require.Contains(t, out, "class:  1年A組")
		require.Contains(t, out, "lesson: x")
	})

	t.Run("should fail without a lesson", func(t *testing.T) {
		_, err := run(t, "resolve", "https://recorder.example.com/record?class=A")
		require.Error(t, err)
		require.Contains(t, err.Error(), "lesson")
	})
}

func TestUploadCmd(t *testing.T) {
	useConfig(t, testConfig)
	wav := filepath.Join(t.TempDir(), "take.wav")
	require.NoError(t, os.WriteFile(wav, []byte("RIFF...."), 0o600))

	out, err := run(t, "upload", "--class", "1年A組", "--lesson", "細胞の観察",
		"--group", "3班", "--members", "佐藤 田中", wav)
	require.NoError(t, err)
	require.Contains(t, out, "file:   3班_佐藤_田中.wav")

	out, err = run(t, "upload", "--class", "1年A組", "--lesson", "細胞の観察",
		"--group", "3班", "--members", "", wav)
	require.Error(t, err)
	require.Contains(t, out, "MissingField")
}

func TestGroupsCmd(t *testing.T) {
	useConfig(t, testConfig)

	out, err := run(t, "groups")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	require.Equal(t, "1班", lines[0])
	require.Equal(t, "12班", lines[11])
}

func TestLinksCmd(t *testing.T) {
	useConfig(t, testConfig)
	dir := t.TempDir()

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	require.NoError(t, file.SetSheetRow(sheet, "A1", &[]string{"class", "lesson"}))
	require.NoError(t, file.SetSheetRow(sheet, "A2", &[]string{"1年A組", "細胞の観察"}))
	require.NoError(t, file.SetSheetRow(sheet, "A3", &[]string{"1年B組", "光合成"}))
	schedule := filepath.Join(dir, "schedule.xlsx")
	require.NoError(t, file.SaveAs(schedule))
	require.NoError(t, file.Close())

	qrDir := filepath.Join(dir, "qr")
	out, err := run(t, "links", "--out", qrDir, schedule)
	require.NoError(t, err)
	require.Contains(t, out, "2026年度 1年A組：細胞の観察")
	require.Contains(t, out, "2026年度 1年B組：光合成")

	entries, err := os.ReadDir(qrDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.FileExists(t, filepath.Join(qrDir, "2026年度_1年A組_細胞の観察.png"))
}
