package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/adapter/postgres"
	"github.com/heartmarshall/khmer-content/internal/config"
	"github.com/heartmarshall/khmer-content/internal/domain"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the content schema to the postgres backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, sessionOptions{}, func(s *session) error {
				if s.cfg.Store.Backend != config.BackendPostgres {
					return fmt.Errorf("%w: migrate needs store.backend %q (got %q)",
						domain.ErrConfig, config.BackendPostgres, s.cfg.Store.Backend)
				}
				if err := s.cfg.ValidateStore(); err != nil {
					return err
				}
				pool, err := postgres.NewPool(s.ctx, s.cfg.Database)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()

				if status {
					statuses, err := postgres.MigrationStatus(s.ctx, pool)
					if err != nil {
						return err
					}
					rows := make([][]string, 0, len(statuses))
					for _, st := range statuses {
						applied := ""
						if !st.AppliedAt.IsZero() {
							applied = st.AppliedAt.Format("2006-01-02 15:04:05")
						}
						rows = append(rows, []string{strconv.FormatInt(st.Source.Version, 10), st.Source.Path, string(st.State), applied})
					}
					fmt.Fprintln(s.stdout, renderTable(s.stdout, []string{"Version", "File", "State", "Applied"}, rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
					return nil
				}

				results, err := postgres.Migrate(s.ctx, pool)
				for _, r := range results {
					fmt.Fprintf(s.stdout, "applied %s (%s)\n", r.Source.Path, r.Duration)
				}
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(s.stdout, "schema is up to date")
				}
				s.log.InfoContext(s.ctx, "migrations applied", slog.Int("count", len(results)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Show applied and pending migrations instead of applying")
	return cmd
}
