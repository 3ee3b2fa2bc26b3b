package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/discourse-engine/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database counts and schema version",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore(pipelineConfig().Store)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return report.JSON(os.Stdout, stats)
	}

	version, dirty, err := st.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("data dir:        %s\n", st.DataDir())
	fmt.Printf("schema version:  %d", version)
	if dirty {
		fmt.Print(" (dirty)")
	}
	fmt.Println()
	fmt.Printf("subreddits:      %d\n", stats.Subreddits)
	fmt.Printf("posts:           %d\n", stats.Posts)
	fmt.Printf("comments:        %d\n", stats.Comments)
	fmt.Printf("item analyses:   %d\n", stats.ItemAnalyses)
	fmt.Printf("corpus analyses: %d\n", stats.CorpusAnalyses)
	return nil
}
