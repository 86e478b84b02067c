package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the data search path",
	Long: `Path prints the directories searched for resources, in priority
order, marking the ones that exist. The first line is the install
directory downloads go to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := GetDeps()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "install directory: %s\n", d.Config.Data.Dir)
		fmt.Fprintln(out, "search path:")
		for _, p := range d.Finder.Paths() {
			marker := symSkipped()
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				marker = symSuccess()
			}
			fmt.Fprintf(out, "  %s %s\n", marker, p)
		}
		return nil
	},
}
