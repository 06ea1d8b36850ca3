package cli

import (
	"fmt"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// RootCmd returns the recorderctl command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recorderctl",
		Short: "Operator tool for classroom recordings",
		Long: `recorderctl builds student links and QR codes for a lesson, checks how a
link resolves and files a local recording into the lesson folder.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(LinkCmd())
	rootCmd.AddCommand(LinksCmd())
	rootCmd.AddCommand(ResolveCmd())
	rootCmd.AddCommand(UploadCmd())
	rootCmd.AddCommand(GroupsCmd())

	return rootCmd
}

func setup() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}
