package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/app"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the build version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "contentctl %s\n", app.BuildVersion())
			return nil
		},
	}
}
