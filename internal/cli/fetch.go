package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchFlags struct {
	output string
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <resource-url>",
	Short: "Copy a resource to a local file",
	Long: `Fetch resolves a resource URL (corpora:, file:, http: or https:) and
copies its contents to a local file, named after the resource unless
--output is given. Existing files are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := GetDeps()

		dest, err := d.Loader.Retrieve(cmd.Context(), args[0], fetchFlags.output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", symSuccess(), dest)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchFlags.output, "output", "o", "", "destination file")
}
