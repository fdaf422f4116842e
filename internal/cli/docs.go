package cli

import (
	"fmt"

	"devops-topics/internal/docs"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	var render bool
	var style string

	cmd := &cobra.Command{
		Use:   "docs [page]",
		Short: "Show on-demand documentation (for humans and agents)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"pages": docs.Pages()}})
			}

			page := args[0]
			body, ok := docs.Get(page)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs page: %q (run `topics docs` to list pages)", page))
			}

			switch {
			case render:
				out, err := renderMarkdown(body, style, 80)
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"page": page, "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")
	cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal")
	cmd.Flags().StringVar(&style, "style", envOr("TOPICS_MD_STYLE", "dark"), "Glamour style for --render")

	return cmd
}
