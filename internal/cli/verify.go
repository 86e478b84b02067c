package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/downloader"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [package...]",
	Short: "Check installed packages against the index checksums",
	Long: `Verify recomputes the checksum of each installed archive and compares
it against the index. Without arguments it checks every installed
package; out-of-date or damaged packages make the command fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := GetDeps()

		ix, err := d.EnsureIndex(cmd.Context())
		if err != nil {
			return err
		}

		pkgs := ix.Packages()
		if len(args) > 0 {
			if pkgs, err = ix.Resolve(args...); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		var bad int
		for _, p := range pkgs {
			status, err := downloader.ComputeStatus(p, d.Config.Data.Dir)
			if err != nil {
				return err
			}
			switch status {
			case downloader.StatusNotInstalled:
				// Only report missing packages when asked for explicitly.
				if len(args) > 0 {
					fmt.Fprintf(out, "%s %s: %s\n", symSkipped(), p.ID, status)
				}
			case downloader.StatusInstalled:
				fmt.Fprintf(out, "%s %s: %s\n", symSuccess(), p.ID, status)
			default:
				bad++
				fmt.Fprintf(out, "%s %s: %s\n", symWarning(), p.ID, status)
			}
		}
		if bad > 0 {
			return fmt.Errorf("%d package(s) need attention; repair with: corpora download --force", bad)
		}
		return nil
	},
}
