// internal/cli/run.go
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/dealwatch/internal/config"
	"github.com/law-makers/dealwatch/internal/pipeline"
	"github.com/law-makers/dealwatch/internal/price"
	"github.com/law-makers/dealwatch/internal/report"
	"github.com/law-makers/dealwatch/internal/ui"
)

var (
	output string
	strict bool
)

// runCmd performs one check of the listing
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check the listing once and notify qualifying deals",
	Long: `Opens the listing, dismisses known popups, extracts every listing card and
posts each deal priced per person below --max-price to the webhook.

A listing that never shows cards is reported as listing_not_ready and leaves a
screenshot, HTML dump and Markdown excerpt in --snapshot-dir.`,
	Example: `  # Check with the defaults (max € 1.200 p.p.)
  dealwatch run

  # Lower the threshold and keep the deals as CSV
  dealwatch run --max-price 999 --output deals.csv

  # Watch the browser while debugging popups
  dealwatch run --headful -v --entry staged`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	config.RegisterRunFlags(runCmd)
	runCmd.Flags().StringVarP(&output, "output", "o", "", "Save qualifying deals to a file (.json or .csv)")
	runCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the run did not complete")
}

func runRun(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	res := a.Pipeline.Run(cmd.Context())

	if output != "" {
		r := report.Report{
			RunID:       res.RunID,
			Outcome:     string(res.Outcome),
			GeneratedAt: time.Now().UTC(),
			Threshold:   a.Config.MaxPrice.String(),
			Deals:       res.Deals,
		}
		if err := report.Save(output, r); err != nil {
			log.Error().Err(err).Str("file", output).Msg("Failed to save report")
		} else {
			log.Info().Str("file", output).Int("deals", len(res.Deals)).Msg("Report saved")
		}
	}

	if !a.Config.JSONLog {
		printSummary(cmd.OutOrStdout(), res)
	}

	if strict && res.Outcome != pipeline.OutcomeCompleted {
		return fmt.Errorf("run %s ended %s: %w", res.RunID, res.Outcome, res.Err)
	}
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	var outcome string
	switch res.Outcome {
	case pipeline.OutcomeCompleted:
		outcome = ui.Success(string(res.Outcome))
	case pipeline.OutcomeListingNotReady:
		outcome = ui.Warn(string(res.Outcome))
	default:
		outcome = ui.Error(string(res.Outcome))
	}

	fmt.Fprintf(w, "\n%s %s  %s  %s\n", ui.Bold("Run"), res.RunID, outcome, ui.Dim(res.Duration.Round(time.Millisecond).String()))

	for _, s := range res.Steps {
		fmt.Fprintf(w, "  %-16s %s\n", s.Name, ui.Dim(string(s.Outcome)))
	}

	fmt.Fprintf(w, "  %-16s %d\n", "cards", res.Cards)
	fmt.Fprintf(w, "  %-16s %d\n", "malformed", res.Stats.Malformed)
	fmt.Fprintf(w, "  %-16s %d\n", "above max", res.Stats.AboveThreshold)
	fmt.Fprintf(w, "  %-16s %d\n", "duplicates", res.Stats.Duplicates)
	fmt.Fprintf(w, "  %-16s %d (notified %d, failed %d)\n", "deals", len(res.Deals), res.Notified, res.NotifyFailures)

	for _, d := range res.Deals {
		fmt.Fprintf(w, "  %s %s  %s\n", ui.Success("•"), d.Name, ui.Info(price.Format(d.PricePerPerson)+" p.p."))
		fmt.Fprintf(w, "    %s\n", ui.Dim(d.URL))
	}

	if res.Err != nil {
		fmt.Fprintf(w, "  %s\n", ui.Error(res.Err.Error()))
	}
	fmt.Fprintln(w)
}
