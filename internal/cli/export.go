package cli

import (
	"strings"

	"devops-topics/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var toDir string
	var title string
	var includeIDs bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the tree (JSON forest, or Markdown pages with --to)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(toDir) == "" {
				return writeOut(cmd, app, map[string]any{"data": nonNilTopics(list.Topics())})
			}
			res, err := publish.WriteChecklist(list.Topics(), toDir, publish.WriteOptions{
				Title:      title,
				IncludeIDs: includeIDs,
				Overwrite:  overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"_hints": []string{
					"git status",
					"git add -A",
					"git commit -m \"Export topics checklist\"",
				},
			})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Write checklist.md and per-topic pages into this directory")
	cmd.Flags().StringVar(&title, "title", "DevOps Topics", "Document title")
	cmd.Flags().BoolVar(&includeIDs, "include-ids", false, "Append topic ids to each line")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	return cmd
}
