// Command pensumctl administers the UniPlanner database and evaluates
// academic records offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// envFile is set by the --env flag.
var envFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pensumctl",
		Short: "Administer the UniPlanner pensum",
		Long: `pensumctl applies database migrations, loads the reference pensum and
academic calendar, and evaluates a student's record against a catalog
without a running server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "env file with database settings")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newEvaluateCmd())
	return root
}
