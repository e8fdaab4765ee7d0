package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/app/chapter"
	"github.com/heartmarshall/khmer-content/internal/app/seeder"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/lessonfile"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var (
		moduleID  int
		reference bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "summary files...",
		Short: "Rebuild one chapter's study materials from lesson files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := loadFiles(args, lessonfile.Meta{})
			if err != nil {
				return err
			}
			batches := make([]seeder.Batch, 0, len(files))
			lessons := make(map[int]domain.LessonDefinition)
			for _, f := range files {
				batches = append(batches, seeder.Batch{Source: filepath.Base(f.Path), Lessons: f.Lessons})
				for id, def := range f.ByID() {
					lessons[id] = def
				}
			}

			if dryRun {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), chapter.BuildSummary(moduleID, cfg.Seeder.ReferenceOffset, lessons).Render())
				return nil
			}

			// The guidebook is written as lesson items, so its sources must
			// pass the same checks as seed.
			if reference {
				report := seeder.ValidateBatches(batches...)
				printReport(cmd.OutOrStdout(), report)
				if report.HasErrors() {
					return fmt.Errorf("%d blocking findings: %w", len(report.Errors), domain.ErrContentInvalid)
				}
			}

			return ctx.withSession(cmd, sessionOptions{store: true, lock: true, synth: reference}, func(s *session) error {
				return publishChapter(s, moduleID, lessons, reference)
			})
		},
	}

	cmd.Flags().IntVar(&moduleID, "module-id", 0, "Module (chapter) id")
	cmd.Flags().BoolVar(&reference, "reference", false, "Also reseed the chapter guidebook lesson")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the summary instead of writing it")
	_ = cmd.MarkFlagRequired("module-id")

	return cmd
}
