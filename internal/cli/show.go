package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/resource"
)

var showFlags struct {
	format   string
	encoding string
}

var showCmd = &cobra.Command{
	Use:   "show <resource-url>",
	Short: "Print a resource's contents",
	Long: `Show loads a resource and prints it. The format is detected from the
file extension; grammar files (.cfg, .fcfg, .pcfg) are printed with
"##" comment lines and blank lines stripped. Use --format to override
detection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := GetDeps()

		value, err := d.Loader.Load(cmd.Context(), args[0], resource.LoadOptions{
			Format:   resource.Format(showFlags.format),
			Encoding: showFlags.encoding,
			NoCache:  true,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch v := value.(type) {
		case string:
			fmt.Fprintln(out, v)
		case []byte:
			out.Write(v)
		default:
			fmt.Fprintf(out, "%v\n", v)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showFlags.format, "format", "", "force a format (json, yaml, text, raw, cfg)")
	showCmd.Flags().StringVar(&showFlags.encoding, "encoding", "", "text encoding (IANA name)")
}
