package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avelhorn/linkplan/internal/registry"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported build targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%-8s %-8s %-10s %s\n", "TARGET", "ORDINAL", "IDENTITY", "LINKER")
		for _, target := range registry.Targets {
			p, err := registry.Resolve(target)
			if err != nil {
				return err
			}
			marker := ""
			if target == registry.DefaultTarget {
				marker = "  (default)"
			}
			fmt.Printf("%-8s %-8d %-10s %s%s\n", p.Target, p.Ordinal, p.IdentityConstant, p.LinkerProfile, marker)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
