package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/app/catalog"
	"github.com/heartmarshall/khmer-content/internal/audio"
)

func newAlphabetCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alphabet",
		Short: "Maintain the alphabet catalog and course structure",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Upsert every symbol of the built-in catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, sessionOptions{store: true, lock: true}, func(s *session) error {
				n, err := s.app.Catalog.SeedAlphabet(s.ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.stdout, "Seeded %d symbols\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rules",
		Short: "Write diacritic explanations and clear their audio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, sessionOptions{store: true, lock: true}, func(s *session) error {
				n, err := s.app.Catalog.ApplyDiacriticRules(s.ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.stdout, "Applied %d diacritic rules\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "modules",
		Short: "Upsert the course modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, sessionOptions{store: true, lock: true}, func(s *session) error {
				n, err := s.app.Catalog.SeedModules(s.ctx, catalog.DefaultCourse)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.stdout, "Seeded %d modules\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "audio",
		Short: "Synthesize the audio clip of every voiced symbol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, sessionOptions{lock: true, synth: true}, func(s *session) error {
				seeder := catalog.NewSeeder(s.log, nil, s.audio)
				stats, results := seeder.GenerateAudio(s.ctx, s.cfg.TTS.Concurrency)
				fmt.Fprintln(s.stdout, renderTable(s.stdout,
					[]string{"Generated", "Existing", "Failed", "Pending", "Duration"},
					[][]string{{
						strconv.Itoa(stats.Generated),
						strconv.Itoa(stats.Existing),
						strconv.Itoa(stats.Failed),
						strconv.Itoa(stats.Pending),
						stats.Duration.String(),
					}},
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
				))
				for _, r := range results {
					if r.Status == audio.StatusFailed {
						fmt.Fprintf(s.stdout, "failed %s: %v\n", r.Filename, r.Err)
					}
				}
				if stats.Failed > 0 {
					return fmt.Errorf("%d alphabet clips failed", stats.Failed)
				}
				return nil
			})
		},
	})

	return cmd
}
