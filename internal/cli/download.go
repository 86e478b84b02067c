package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/downloader"
	"github.com/corpora-dev/corpora/internal/index"
	"github.com/corpora-dev/corpora/internal/ui"
)

var downloadFlags struct {
	all   bool
	force bool
}

var downloadCmd = &cobra.Command{
	Use:   "download [package|collection...]",
	Short: "Download and install data packages",
	Long: `Download installs the named packages or collections into the data
directory. Without arguments it opens an interactive picker on a
terminal. Packages already installed and up to date are skipped unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := GetDeps()
		ctx := cmd.Context()

		ix, err := d.EnsureIndex(ctx)
		if err != nil {
			return err
		}

		ids := args
		switch {
		case downloadFlags.all:
			ids = nil
			for _, p := range ix.Packages() {
				ids = append(ids, p.ID)
			}
		case len(ids) == 0:
			if d.Headless.IsHeadless() {
				return errors.New("no packages named; list ids with: corpora list")
			}
			if ids, err = pickPackages(d, ix); err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing selected")
				return nil
			}
		}

		pkgs, err := ix.Resolve(ids...)
		if err != nil {
			return err
		}

		var failed int
		out := cmd.OutOrStdout()
		for _, pkg := range pkgs {
			installed, err := downloadOne(cmd, d, pkg)
			switch {
			case err != nil:
				failed++
				fmt.Fprintf(out, "%s %s: %v\n", symError(), pkg.ID, err)
			case installed:
				fmt.Fprintf(out, "%s %s installed\n", symSuccess(), pkg.ID)
			default:
				fmt.Fprintf(out, "%s %s is up to date\n", symSkipped(), pkg.ID)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d package(s) failed", failed, len(pkgs))
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadFlags.all, "all", false, "download every package in the index")
	downloadCmd.Flags().BoolVarP(&downloadFlags.force, "force", "f", false, "reinstall even when up to date")
}

// downloadOne installs a single package with a progress bar.
func downloadOne(cmd *cobra.Command, d *Dependencies, pkg *index.Package) (bool, error) {
	bar := d.Progress.Bar(pkg.ArchiveName(), pkg.Size)
	defer bar.Done()

	return d.Downloader.Download(cmd.Context(), pkg, downloader.Options{
		Force: downloadFlags.force,
		Progress: func(pkgID string, written, total int64) {
			bar.Set(written)
		},
	})
}

// pickPackages runs the interactive picker over the whole index.
func pickPackages(d *Dependencies, ix *index.Index) ([]string, error) {
	pkgs := ix.Packages()
	installed := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		status, err := downloader.ComputeStatus(p, d.Config.Data.Dir)
		if err == nil && status == downloader.StatusInstalled {
			installed[p.ID] = true
		}
	}
	ids, err := ui.PickPackages(d.Theme, pkgs, installed)
	if errors.Is(err, ui.ErrPickerCancelled) {
		return nil, nil
	}
	return ids, err
}
