package cmd

import (
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Resolve the link graph and write the build description",
	Long: `Resolves the project file for the selected target, assembles the
per-module link orders, and writes the Ninja build file and object
manifest into the build directory. Without --compilers the pinned
toolchain is downloaded into <build-dir>/tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		g, err := client.Configure(cmd.Context())
		if err != nil {
			return err
		}

		info("configured %s (%s mode): %d modules, %d objects",
			g.Target, client.Mode(), len(g.Modules), len(g.Objects))
		for _, mod := range g.Modules {
			detail("module %d (%s): %d objects linked", mod.ID, mod.Name, len(mod.Order))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
