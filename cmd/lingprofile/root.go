package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/config"
	"github.com/okian/lingprofile/internal/domain/model"
)

func newRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "lingprofile",
		Short: "Score, analyse and chart linguistic competence profiles.",
		Long: `lingprofile converts standardized test results to a 0-10 competence scale
across 40 language segments, analyses the resulting profile and renders it
as a radar chart or a report. It also runs the local HTTP service.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// The loader reads the file path from the environment.
			if cfgFile != "" {
				return os.Setenv(config.EnvPrefix+"CONFIG", cfgFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(
		newServeCommand(),
		newConvertCommand(),
		newAnalyzeCommand(),
		newRenderCommand(),
		newDemoCommand(),
		newSmokeCommand(),
	)
	return cmd
}

// readCase loads the first case from path, or from in when path is "-".
func readCase(in io.Reader, path string) (*model.Case, error) {
	r := in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	cases, err := export.ReadCases(r)
	if err != nil {
		return nil, err
	}
	if len(cases) > 1 {
		return nil, fmt.Errorf("%s holds %d cases; pass one", path, len(cases))
	}
	return cases[0], nil
}
