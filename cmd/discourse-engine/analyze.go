package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/discourse-engine/internal/corpus"
	"github.com/pdiddy/discourse-engine/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score text on the political dimensions",
	Long: `Analyze scores text on the economic, social and governance dimensions.
Use "analyze text" for a one-off string and "analyze run" for the stored
corpus.`,
}

// --- text subcommand ---

var analyzeTextCmd = &cobra.Command{
	Use:   "text [text...]",
	Short: "Analyze a single piece of text",
	Long: `Text scores its arguments (joined with spaces) on every political
dimension and prints the scores, confidences, labels and detected topics.
Texts under 20 characters are not analyzed.`,
	RunE: runAnalyzeText,
}

func runAnalyzeText(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide the text to analyze")
	}

	cfg := pipelineConfig()
	analyzer, err := newAnalyzer(cfg.Analysis)
	if err != nil {
		return err
	}

	result := analyzer.Analyze(strings.Join(args, " "))

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return report.JSON(os.Stdout, result)
	}
	return report.Analysis(os.Stdout, result)
}

// --- run subcommand ---

var analyzeRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze the stored corpus and save a corpus analysis",
	Long: `Run analyzes every stored post (and comment, with --comments) of a
subreddit, or of all subreddits, saves the per-item results, and stores an
aggregate with dimension means, standard deviations, the diversity index
and octant clusters. Each run gets a new run ID.`,
	RunE: runAnalyzeRun,
}

func runAnalyzeRun(cmd *cobra.Command, args []string) error {
	subreddit, err := subredditFlag(cmd)
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	analyzer, err := newAnalyzer(cfg.Analysis)
	if err != nil {
		return err
	}
	scorer := newScorer(cfg.Analysis)

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	// Progress goes to stderr when stdout carries JSON.
	jsonOutput, _ := cmd.Flags().GetBool("json")
	progress := io.Writer(os.Stdout)
	if jsonOutput {
		progress = os.Stderr
	}

	ca, err := corpus.Run(cmd.Context(), st, analyzer, scorer, corpus.OptionsFrom(subreddit, cfg.Analysis), progress)
	if err != nil {
		return err
	}
	if jsonOutput {
		return report.JSON(os.Stdout, ca)
	}
	return report.Corpus(os.Stdout, ca)
}

func init() {
	analyzeCmd.PersistentFlags().Bool("json", false, "output results as JSON")

	analyzeRunCmd.Flags().String("subreddit", "", "analyze one subreddit (default: all)")
	analyzeRunCmd.Flags().Int("limit", 0, "maximum posts, and separately comments, to analyze (0 = all)")
	analyzeRunCmd.Flags().Bool("comments", false, "include stored comments")
	analyzeRunCmd.Flags().Int("min-cluster-size", 0, "smallest octant reported as a cluster (default 5)")

	viper.BindPFlag("analysis.limit", analyzeRunCmd.Flags().Lookup("limit"))
	viper.BindPFlag("analysis.include_comments", analyzeRunCmd.Flags().Lookup("comments"))
	viper.BindPFlag("analysis.min_cluster_size", analyzeRunCmd.Flags().Lookup("min-cluster-size"))

	analyzeCmd.AddCommand(analyzeTextCmd)
	analyzeCmd.AddCommand(analyzeRunCmd)

	rootCmd.AddCommand(analyzeCmd)
}
