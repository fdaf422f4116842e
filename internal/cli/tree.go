package cli

import (
	"fmt"
	"strings"

	"devops-topics/internal/publish"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var raw bool
	var style string
	var width int
	var visibleOnly bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the whole tree as a Markdown checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			md := publish.RenderChecklistMarkdown(list.Topics(), publish.RenderOptions{
				Title:         "DevOps Topics",
				CollapsedOnly: visibleOnly,
			})
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			out, err := renderMarkdown(md, style, width)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print Markdown source instead of rendering it")
	cmd.Flags().StringVar(&style, "style", envOr("TOPICS_MD_STYLE", "dark"), "Glamour style (dark|light|notty|ascii)")
	cmd.Flags().IntVar(&width, "width", 80, "Word-wrap width")
	cmd.Flags().BoolVar(&visibleOnly, "visible", false, "Hide children of collapsed topics")
	return cmd
}

// renderMarkdown uses a fixed standard style; auto-detection can block on
// terminal queries.
func renderMarkdown(md, style string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
