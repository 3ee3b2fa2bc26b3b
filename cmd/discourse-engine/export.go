package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export corpus analyses to YAML or JSON",
	Long: `Export writes database counts, subreddit metadata and every stored
corpus analysis to <data-dir>/export.yaml or export.json. --subreddit
restricts the export to one subreddit's runs.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("subreddit", "", "export one subreddit's runs only")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	subreddit, err := subredditFlag(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(pipelineConfig().Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = st.ExportYAML(cmd.Context(), subreddit)
	case "json":
		path, err = st.ExportJSON(cmd.Context(), subreddit)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}
