package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/lingprofile/internal/domain/scoring"
)

func newConvertCommand() *cobra.Command {
	var scale string

	cmd := &cobra.Command{
		Use:   "convert VALUE",
		Short: "Convert a standardized score to a 0-10 competence",
		Example: `  lingprofile convert 50 --scale perc
  lingprofile convert 115 --scale qi`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scoring.ParseScale(scale)
			if err != nil {
				return err
			}
			raw, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("value %q: %w", args[0], err)
			}
			c := scoring.ConvertToCompetence(raw, sc)
			v, ok := c.Get()
			if !ok {
				return fmt.Errorf("value %q cannot be converted", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "competence=%d zone=%s label=%q\n",
				v, scoring.ClassifyZone(c), scoring.Describe(c))
			return nil
		},
	}

	cmd.Flags().StringVarP(&scale, "scale", "s", string(scoring.Percentile), "scale: perc, qi, z or t")
	return cmd
}
