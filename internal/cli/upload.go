package cli

import (
	"fmt"
	"os"

	"classroom-recorder/internal/filer"
	"classroom-recorder/internal/model"
	"classroom-recorder/internal/session"
	"classroom-recorder/internal/storage"
	"classroom-recorder/pkg/errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// UploadCmd returns the upload command
func UploadCmd() *cobra.Command {
	var (
		flags   lessonFlags
		group   string
		members string
	)

	cmd := &cobra.Command{
		Use:   "upload <file.wav>",
		Short: "File a local recording into the lesson folder",
		Long: `Run one filing attempt for a local WAV file: find or create the
year/class/lesson folders under storage.root_folder_id and upload the file
as "{group}_{members}.wav". Nothing is recorded in the submission ledger.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			rc, err := session.NewResolver(session.DefaultsFromConfig(cfg)).Resolve(flags.raw())
			if err != nil {
				return err
			}

			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read recording: %w", err)
			}

			client, err := storage.New(cfg)
			if err != nil && !errors.Is(err, errors.ErrConfigurationMissing) {
				return err
			}

			stager, err := storage.NewStager(cfg.Storage.StagingDir)
			if err != nil {
				return err
			}

			f := filer.New(stager, filer.ParseNamingConvention(cfg.Recording.Naming), cfg.Groups())
			sub := model.Submission{Group: group, Members: members, Audio: audio}
			result := f.Store(cmd.Context(), rc, sub, cfg.Storage.RootFolderID, client)

			out := cmd.OutOrStdout()
			if !result.OK() {
				fmt.Fprintf(out, "%s %s: %s\n", failMark, color.New(color.FgRed).Sprint(result.ErrorKind), result.Message)
				return fmt.Errorf("upload failed: %s", result.ErrorKind)
			}

			fmt.Fprintf(out, "%s %s\n", okMark, rc.View().Title)
			fmt.Fprintf(out, "  file:   %s\n", result.FileName)
			fmt.Fprintf(out, "  folder: %s\n", result.LessonFolderID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&group, "group", "", "Group label, e.g. 3班")
	cmd.Flags().StringVar(&members, "members", "", "Participant names")

	return cmd
}
