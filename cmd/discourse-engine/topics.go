package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/discourse-engine/internal/report"
	"github.com/pdiddy/discourse-engine/internal/store"
	"github.com/pdiddy/discourse-engine/internal/topics"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List taxonomy topics",
	Long: `Topics lists the topic taxonomy used for detection, with a sample of
each topic's keywords. Use --taxonomy to load a custom YAML taxonomy.`,
	RunE: runTopics,
}

func runTopics(cmd *cobra.Command, args []string) error {
	tax, err := loadTaxonomy(pipelineConfig().Analysis)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out := make(map[string][]string, len(tax.Topics()))
		for _, name := range tax.Topics() {
			out[name], _ = tax.Keywords(name)
		}
		return report.JSON(os.Stdout, out)
	}
	return report.Topics(os.Stdout, tax)
}

// --- detect subcommand ---

var topicsDetectCmd = &cobra.Command{
	Use:   "detect [text...]",
	Short: "Detect topics in a piece of text",
	RunE:  runTopicsDetect,
}

func runTopicsDetect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide the text to scan")
	}
	tax, err := loadTaxonomy(pipelineConfig().Analysis)
	if err != nil {
		return err
	}
	return report.JSON(os.Stdout, topics.NewDetector(tax).DetectTopics(strings.Join(args, " ")))
}

// --- sentiment subcommand ---

var topicsSentimentCmd = &cobra.Command{
	Use:   "sentiment <topic>",
	Short: "Summarize sentiment of stored items mentioning a topic",
	Long: `Sentiment scans stored posts (and comments, with --comments) for a
taxonomy topic and reports how many mention it, their mean sentiment and
how many are positive, negative or neutral.`,
	Args: cobra.ExactArgs(1),
	RunE: runTopicsSentiment,
}

func runTopicsSentiment(cmd *cobra.Command, args []string) error {
	subreddit, err := subredditFlag(cmd)
	if err != nil {
		return err
	}
	includeComments, _ := cmd.Flags().GetBool("comments")

	cfg := pipelineConfig()
	tax, err := loadTaxonomy(cfg.Analysis)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	items, err := st.Texts(cmd.Context(), store.TextQuery{Subreddit: subreddit, IncludeComments: includeComments})
	if err != nil {
		return err
	}
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	ts, err := topics.NewDetector(tax).TopicSentiment(args[0], texts, newScorer(cfg.Analysis))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return report.JSON(os.Stdout, ts)
	}
	return report.TopicSentiment(os.Stdout, ts)
}

func init() {
	topicsCmd.PersistentFlags().Bool("json", false, "output results as JSON")

	topicsSentimentCmd.Flags().String("subreddit", "", "restrict to one subreddit (default: all)")
	topicsSentimentCmd.Flags().Bool("comments", false, "include stored comments")

	topicsCmd.AddCommand(topicsDetectCmd)
	topicsCmd.AddCommand(topicsSentimentCmd)

	rootCmd.AddCommand(topicsCmd)
}
