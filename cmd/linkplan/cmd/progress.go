package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avelhorn/linkplan/internal/progress"
	"github.com/avelhorn/linkplan/pkg/linkplan"
)

var (
	checkShaPath string
	noJSON       bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Report matching progress per category",
	Long: `Aggregates object matching status into per-category counts (and a
per-module breakdown with --verbose), verifies produced artifacts against
the reference checksum manifest, prints a summary table, and writes
progress.json into the build directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		g, err := client.Resolve()
		if err != nil {
			return err
		}

		manifestPath := checkShaPath
		if manifestPath == "" {
			manifestPath = defaultManifestPath(g.Target)
		}

		report, err := client.Progress(g, linkplan.ProgressOptions{
			ManifestPath: manifestPath,
			PerModule:    verbose,
		})
		if err != nil {
			return err
		}

		if !quiet {
			report.Render(os.Stdout)
		}

		if noJSON {
			return nil
		}
		jsonPath := filepath.Join(buildDir, string(g.Target), "progress.json")
		if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
			return err
		}
		if err := progress.WriteJSON(jsonPath, report); err != nil {
			return err
		}
		detail("wrote %s", jsonPath)
		return nil
	},
}

func init() {
	progressCmd.Flags().StringVar(&checkShaPath, "check-sha", "", "reference checksum manifest (default: config/<target>/build.sha1)")
	progressCmd.Flags().BoolVar(&noJSON, "no-json", false, "skip writing progress.json")

	rootCmd.AddCommand(progressCmd)
}
