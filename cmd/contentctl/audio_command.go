package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Audio file helpers",
	}
	cmd.AddCommand(newAudioFilenameCommand())
	cmd.AddCommand(newAudioReconcileCommand(ctx))
	return cmd
}

func newAudioFilenameCommand() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:         "filename text",
		Short:       "Print the deterministic audio filename of a text",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if domain.NormalizeKhmer(args[0]) == "" {
				return errors.New("text is empty after normalization")
			}
			fmt.Fprintln(cmd.OutOrStdout(), audio.Filename(args[0], label))
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Human-readable prefix, usually the English meaning")
	return cmd
}

func newAudioReconcileCommand(ctx *commandContext) *cobra.Command {
	var (
		lessonID int
		heal     bool
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Report audio files referenced by lesson items but missing on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sessionOptions{store: true, lock: heal, synth: heal}
			return ctx.withSession(cmd, opts, func(s *session) error {
				rep, err := s.app.Reconciler.Run(s.ctx, lessonID, heal)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(rep.Missing))
				for _, ref := range rep.Missing {
					rows = append(rows, []string{
						strconv.FormatInt(ref.LessonID, 10),
						strconv.FormatInt(ref.ItemID, 10),
						string(ref.Type),
						ref.Field,
						ref.File,
					})
				}
				if len(rows) > 0 {
					fmt.Fprintln(s.stdout, renderTable(s.stdout,
						[]string{"Lesson", "Item", "Type", "Field", "File"},
						rows,
						[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft},
					))
				}
				for _, gap := range rep.MissingMetadata {
					fmt.Fprintf(s.stdout, "lesson %d item %d: option %q has no metadata\n", gap.LessonID, gap.ItemID, gap.Option)
				}
				fmt.Fprintf(s.stdout, "%d items, %d audio refs, %d missing, %d metadata gaps\n",
					rep.Items, rep.Refs, len(rep.Missing), len(rep.MissingMetadata))

				if heal {
					fmt.Fprintf(s.stdout, "healed %d, failed %d\n", rep.Healed, rep.HealFailed)
					if rep.HealFailed > 0 {
						return fmt.Errorf("%d audio files could not be regenerated", rep.HealFailed)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&lessonID, "lesson-id", 0, "Limit the scan to one lesson (default all)")
	cmd.Flags().BoolVar(&heal, "heal", false, "Regenerate missing files from their text")
	return cmd
}
