package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath   string
	targetCode   string
	buildDir     string
	nonMatching  bool
	debug        bool
	mapFile      bool
	verbose      bool
	quiet        bool
	compilersDir string
	wrapperPath  string
)

var rootCmd = &cobra.Command{
	Use:   "linkplan",
	Short: "Per-target link order and matching progress resolution",
	Long: `linkplan resolves a declarative build description for a multi-module
binary (a main executable plus relocatable modules) into per-module link
orders that honor object matching status, and reports matching progress
against a reference checksum manifest.

Strict builds link only byte-matching objects and must reproduce the
reference binary; --non-matching relaxes that to include divergent and
equivalent objects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("linkplan %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "linkplan.yaml", "path to project file")
	rootCmd.PersistentFlags().StringVarP(&targetCode, "target", "t", "", "target to build (default: the registry default)")
	rootCmd.PersistentFlags().StringVar(&buildDir, "build-dir", "build", "base build directory")
	rootCmd.PersistentFlags().BoolVar(&nonMatching, "non-matching", false, "link equivalent and non-matching objects")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "build with debug info (non-matching)")
	rootCmd.PersistentFlags().BoolVar(&mapFile, "map", false, "generate linker map file(s)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output, including per-module reporting")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().StringVar(&compilersDir, "compilers", "", "path to compilers (optional)")
	rootCmd.PersistentFlags().StringVar(&wrapperPath, "wrapper", "", "path to wibo or wine (optional)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
