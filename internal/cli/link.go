package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"classroom-recorder/internal/excel"
	"classroom-recorder/internal/link"
	"classroom-recorder/internal/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type lessonFlags struct {
	year   string
	class  string
	lesson string
}

func (f *lessonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.year, "year", "", "Year / period label")
	cmd.Flags().StringVar(&f.class, "class", "", "Class / section label")
	cmd.Flags().StringVar(&f.lesson, "lesson", "", "Lesson name")
}

func (f *lessonFlags) raw() (period, section, lesson []string) {
	return nonEmpty(f.year), nonEmpty(f.class), nonEmpty(f.lesson)
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// LinkCmd returns the link command
func LinkCmd() *cobra.Command {
	var (
		flags   lessonFlags
		baseURL string
		qrOut   string
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build the student link for a lesson",
		Long: `Build the URL students open to record for a lesson. Flags left empty fall
back to recording.default_* from the config. With --qr the link is also
written as a PNG QR code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			rc, err := session.NewResolver(session.DefaultsFromConfig(cfg)).Resolve(flags.raw())
			if err != nil {
				return err
			}

			if baseURL == "" {
				baseURL = cfg.Link.BaseURL
			}
			target, err := link.BuildURL(baseURL, rc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", okMark, color.New(color.Bold).Sprint(rc.View().Title))
			fmt.Fprintln(out, target)

			if qrOut != "" {
				png, err := link.QRCode(target, cfg.Link.QRSize)
				if err != nil {
					return err
				}
				if err := os.WriteFile(qrOut, png, 0o644); err != nil {
					return fmt.Errorf("failed to write QR code: %w", err)
				}
				fmt.Fprintf(out, "QR code written to %s\n", qrOut)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Student page URL (default link.base_url)")
	cmd.Flags().StringVar(&qrOut, "qr", "", "Write a PNG QR code to this path")

	return cmd
}

// ResolveCmd returns the resolve command
func ResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <link>",
		Short: "Show the lesson context a student link resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			u, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid link: %w", err)
			}

			out := cmd.OutOrStdout()
			rc, err := session.NewResolver(session.DefaultsFromConfig(cfg)).FromQuery(u.Query())
			if err != nil {
				fmt.Fprintf(out, "%s %v\n", failMark, err)
				return err
			}

			view := rc.View()
			fmt.Fprintf(out, "%s %s\n", okMark, color.New(color.Bold).Sprint(view.Title))
			fmt.Fprintf(out, "  year:   %s\n", view.Period)
			fmt.Fprintf(out, "  class:  %s\n", view.Section)
			fmt.Fprintf(out, "  lesson: %s\n", view.Lesson)
			return nil
		},
	}
}

// GroupsCmd returns the groups command
func GroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the group labels students choose from",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			for _, g := range cfg.Groups() {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

// LinksCmd returns the links command
func LinksCmd() *cobra.Command {
	var (
		baseURL string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "links <schedule.xlsx>",
		Short: "Build student links for every lesson in a schedule sheet",
		Long: `Read a lesson schedule (first sheet, header row with year/class/lesson
columns) and print one link per lesson. With --out a QR code PNG is written
per lesson into that directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read schedule: %w", err)
			}

			ctx := cmd.Context()
			strategy := excel.NewExcelStrategy(session.NewResolver(session.DefaultsFromConfig(cfg)))
			rows, err := strategy.Parse(ctx, data)
			if err != nil {
				return err
			}
			contexts, err := strategy.Validate(ctx, rows)
			if err != nil {
				return err
			}

			if baseURL == "" {
				baseURL = cfg.Link.BaseURL
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output dir: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			for _, rc := range contexts {
				target, err := link.BuildURL(baseURL, rc)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s\n  %s\n", okMark, color.New(color.Bold).Sprint(rc.View().Title), target)

				if outDir == "" {
					continue
				}
				png, err := link.QRCode(target, cfg.Link.QRSize)
				if err != nil {
					return err
				}
				name := filepath.Join(outDir, strings.TrimSuffix(excel.ReportFileName(rc), ".xlsx")+".png")
				if err := os.WriteFile(name, png, 0o644); err != nil {
					return fmt.Errorf("failed to write QR code: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Student page URL (default link.base_url)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for per-lesson QR code PNGs")

	return cmd
}
