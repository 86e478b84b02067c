package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/downloader"
	"github.com/corpora-dev/corpora/internal/index"
	"github.com/corpora-dev/corpora/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info <package|collection>",
	Short: "Show details for a package or collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := GetDeps()

		ix, err := d.EnsureIndex(cmd.Context())
		if err != nil {
			return err
		}

		var md string
		switch {
		case ix.Package(args[0]) != nil:
			md = packageMarkdown(d, ix.Package(args[0]))
		case ix.Collection(args[0]) != nil:
			md = collectionMarkdown(ix, ix.Collection(args[0]))
		default:
			return fmt.Errorf("%w: %q", index.ErrUnknownID, args[0])
		}

		rendered, err := renderMarkdown(d, md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func packageMarkdown(d *Dependencies, p *index.Package) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", p.ID, p.Name)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Category | %s |\n", p.Category)
	fmt.Fprintf(&b, "| Archive | %s |\n", p.ArchiveName())
	fmt.Fprintf(&b, "| Size | %s |\n", ui.HumanBytes(p.Size))
	if p.Unzip && p.UnzippedSize > 0 {
		fmt.Fprintf(&b, "| Unzipped | %s |\n", ui.HumanBytes(p.UnzippedSize))
	}
	if len(p.Languages) > 0 {
		fmt.Fprintf(&b, "| Languages | %s |\n", strings.Join(p.Languages, ", "))
	}
	fmt.Fprintf(&b, "| Checksum | `%s` |\n", p.Checksum)

	status, err := downloader.ComputeStatus(p, d.Config.Data.Dir)
	if err == nil {
		fmt.Fprintf(&b, "| Status | %s |\n", status)
	}
	fmt.Fprintf(&b, "\nInstall with `corpora download %s`.\n", p.ID)
	return b.String()
}

func collectionMarkdown(ix *index.Index, c *index.Collection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s (collection)\n\n", c.ID, c.Name)
	for _, child := range c.Children {
		kind := "package"
		if ix.Collection(child) != nil {
			kind = "collection"
		}
		fmt.Fprintf(&b, "- %s (%s)\n", child, kind)
	}
	fmt.Fprintf(&b, "\nInstall everything with `corpora download %s`.\n", c.ID)
	return b.String()
}

// renderMarkdown renders markdown for the terminal, falling back to
// plain output when color is off.
func renderMarkdown(d *Dependencies, md string) (string, error) {
	style := glamour.WithAutoStyle()
	if d.Theme.NoColor || d.Headless.IsHeadless() {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return "", fmt.Errorf("render info: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render info: %w", err)
	}
	return out, nil
}
