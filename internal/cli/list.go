package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/downloader"
	"github.com/corpora-dev/corpora/internal/ui"
)

var listFlags struct {
	installed   bool
	collections bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages from the index with their install status",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := GetDeps()

		ix, err := d.EnsureIndex(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if listFlags.collections {
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Collection", "Name", "Members"})
			for _, c := range ix.Collections() {
				t.AppendRow(table.Row{c.ID, c.Name, strings.Join(c.Children, ", ")})
			}
			t.Render()
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Package", "Name", "Size", "Status"})

		var shown int
		for _, p := range ix.Packages() {
			status, err := downloader.ComputeStatus(p, d.Config.Data.Dir)
			if err != nil {
				return err
			}
			if listFlags.installed && status == downloader.StatusNotInstalled {
				continue
			}
			t.AppendRow(table.Row{p.ID, p.Name, ui.HumanBytes(p.Size), status.String()})
			shown++
		}
		t.Render()
		fmt.Fprintf(out, "%d package(s)\n", shown)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listFlags.installed, "installed", false, "only show installed packages")
	listCmd.Flags().BoolVar(&listFlags.collections, "collections", false, "list collections instead of packages")
}
