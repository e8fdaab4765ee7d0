package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/app/validator"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/lessonfile"
)

func newValidateCommand() *cobra.Command {
	var lesson lessonFlags

	cmd := &cobra.Command{
		Use:         "validate files...",
		Short:       "Check lesson files without touching the store",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := loadFiles(args, lesson.meta(cmd))
			if err != nil {
				return err
			}
			return runValidate(cmd, files)
		},
	}
	lesson.register(cmd)
	return cmd
}

func runValidate(cmd *cobra.Command, files []lessonfile.File) error {
	out := cmd.OutOrStdout()
	var total validator.Report
	lessons := 0
	for _, f := range files {
		r := validator.ValidateList(filepath.Base(f.Path), f.Lessons)
		printReport(out, r)
		total.Merge(r)
		lessons += len(f.Lessons)
	}

	fmt.Fprintf(out, "%d files, %d lessons: %d errors, %d warnings\n",
		len(files), lessons, len(total.Errors), len(total.Warnings))
	if total.HasErrors() {
		return fmt.Errorf("%d blocking findings: %w", len(total.Errors), domain.ErrContentInvalid)
	}
	return nil
}
