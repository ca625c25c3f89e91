package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/domain/model"
)

func newDemoCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Print the demonstration case as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := model.DemoCase(time.Now())
			if output == "" || output == "-" {
				return export.WriteJSON(cmd.OutOrStdout(), c)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := export.WriteJSON(f, c); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
