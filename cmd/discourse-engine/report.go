package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/discourse-engine/internal/collect"
	"github.com/pdiddy/discourse-engine/internal/report"
	"github.com/pdiddy/discourse-engine/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the latest corpus analysis",
	Long: `Report prints the most recent corpus analysis for a subreddit (or the
all-subreddits run when --subreddit is omitted): dimension means and
standard deviations, the diversity index, top topics and clusters.

Use --runs to list every stored run instead.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("subreddit", "", "subreddit whose latest run to show (default: the all-subreddits run)")
	reportCmd.Flags().Bool("runs", false, "list stored runs instead of showing the latest")
	reportCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	subreddit, err := subredditFlag(cmd)
	if err != nil {
		return err
	}
	showRuns, _ := cmd.Flags().GetBool("runs")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore(pipelineConfig().Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	if showRuns {
		runs, err := st.CorpusAnalyses(ctx, subreddit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return report.JSON(os.Stdout, runs)
		}
		return report.Runs(os.Stdout, runs)
	}

	ca, err := st.LatestCorpusAnalysis(ctx, subreddit)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w; run \"discourse-engine analyze run\" first", err)
	}
	if err != nil {
		return err
	}
	if jsonOutput {
		return report.JSON(os.Stdout, ca)
	}
	return report.Corpus(os.Stdout, ca)
}

// subredditFlag returns the normalized --subreddit value, or "".
func subredditFlag(cmd *cobra.Command) (string, error) {
	raw, _ := cmd.Flags().GetString("subreddit")
	if raw == "" {
		return "", nil
	}
	return collect.NormalizeSubreddit(raw)
}
