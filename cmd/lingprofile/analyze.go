package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/domain/analysis"
	"github.com/okian/lingprofile/internal/domain/scoring"
)

type analyzeOutput struct {
	CaseID   string                `json:"case_id"`
	Writing  scoring.WritingStatus `json:"writing"`
	Analysis *analysis.Result      `json:"analysis"`
	Zones    analysis.ZoneSummary  `json:"zones"`
}

func newAnalyzeCommand() *cobra.Command {
	var writing string

	cmd := &cobra.Command{
		Use:   "analyze CASE.json",
		Short: "Print the clinical analysis of a saved case",
		Long: `Reads one case (a JSON export, or "-" for stdin) and prints its domain
averages, patterns, hypotheses and intervention priorities as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCase(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			rep, err := export.NewReport(c, nil, time.Now())
			if err != nil {
				return err
			}

			switch writing {
			case "auto":
			case "on", "off":
				rep.Writing = scoring.WritingStatus{Active: writing == "on", Reason: "override"}
				rep.Analysis = analysis.Analyze(c.Competences, rep.Writing.Active)
				rep.Zones = analysis.Summary(rep.Analysis)
			default:
				return fmt.Errorf("--writing must be auto, on or off, got %q", writing)
			}

			if rep.Analysis == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no scored segments")
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analyzeOutput{
				CaseID:   c.ID,
				Writing:  rep.Writing,
				Analysis: rep.Analysis,
				Zones:    rep.Zones,
			})
		},
	}

	cmd.Flags().StringVar(&writing, "writing", "auto", "written modality: auto (from age and schooling), on or off")
	return cmd
}
