package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/pkg/version"
)

var rootFlags overrides

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "corpora: linguistic data package manager",
	Long: `corpora manages the data packages (corpora, grammars, taggers, and
trained models) that language-processing programs load at run time.

It downloads packages from a distribution server, verifies and installs
them into a local data directory, and resolves resource URLs such as
"corpora:corpora/brown/ca01" against the search path.`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return InitDependencies(rootFlags)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("corpora %s\n", version.GetVersion()))

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "configuration file (default ~/.config/corpora/config.yaml)")
	pf.StringVar(&rootFlags.dataDir, "dir", "", "data directory to install into")
	pf.StringVar(&rootFlags.indexURL, "url", "", "package index URL")
	pf.BoolVar(&rootFlags.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&rootFlags.headless, "non-interactive", false, "disable prompts and animations")
	pf.BoolVarP(&rootFlags.quiet, "quiet", "q", false, "only log errors")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(pathCmd)
}
