package cli

import (
	"strings"

	"devops-topics/internal/model"
	"devops-topics/internal/viewmodel"

	"github.com/spf13/cobra"
)

func pageMeta(list *viewmodel.TopicsList) map[string]any {
	return map[string]any{
		"page":        list.CurrentPage(),
		"totalPages":  list.TotalPages(),
		"pageSize":    list.PageSize(),
		"pageNumbers": list.PageNumbers(),
		"completion":  list.CompletionPercentage(),
	}
}

func newListCmd(app *App) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List root topics on a page (with nested subtopics)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			list.GoToPage(page)
			return writeOut(cmd, app, map[string]any{
				"data": nonNilTopics(list.PageTopics()),
				"meta": pageMeta(list),
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based; clamped)")
	return cmd
}

func newPagesCmd(app *App) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Show pagination state (current page, total, page window)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			list.GoToPage(page)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"current": list.CurrentPage(),
					"total":   list.TotalPages(),
					"window":  list.PageNumbers(),
				},
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based; clamped)")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <topic-id>",
		Short: "Show a topic (any depth) with its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := findTopic(list, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Append a root topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			list.StartAddingTopic()
			list.SetNewTopicName(strings.Join(args, " "))
			if !list.AddNewTopic() {
				return writeErr(cmd, blankNameError{})
			}
			roots := list.Topics()
			return writeOut(cmd, app, map[string]any{
				"data": roots[len(roots)-1],
				"meta": pageMeta(list),
			})
		},
	}
}

func newAddSubCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-sub <parent-id> <name>",
		Short: "Append a subtopic under any topic (expands the parent)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			parentID := strings.TrimSpace(args[0])
			if _, err := findTopic(list, parentID); err != nil {
				return writeErr(cmd, err)
			}
			list.StartAddingSubtopic(parentID)
			list.SetNewSubtopicName(strings.Join(args[1:], " "))
			if !list.SaveNewSubtopic() {
				return writeErr(cmd, blankNameError{})
			}
			parent, _ := list.Find(parentID)
			return writeOut(cmd, app, map[string]any{
				"data": parent.Subtopics[len(parent.Subtopics)-1],
			})
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	var withChildren bool

	cmd := &cobra.Command{
		Use:   "toggle <topic-id>",
		Short: "Flip a topic's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if _, err := findTopic(list, id); err != nil {
				return writeErr(cmd, err)
			}
			list.ToggleComplete(id, withChildren)
			t, _ := list.Find(id)
			return writeOut(cmd, app, map[string]any{
				"data": t,
				"meta": map[string]any{"completion": list.CompletionPercentage()},
			})
		},
	}
	cmd.Flags().BoolVar(&withChildren, "with-children", false, "Set every descendant to the topic's new value")
	return cmd
}

func newExpandCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <topic-id>",
		Short: "Flip a topic's expanded flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if _, err := findTopic(list, id); err != nil {
				return writeErr(cmd, err)
			}
			list.ToggleExpanded(id)
			t, _ := list.Find(id)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <topic-id> <name>",
		Short: "Rename a topic (name is trimmed; blank is rejected)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if _, err := findTopic(list, id); err != nil {
				return writeErr(cmd, err)
			}
			list.StartEditingSubtopic(id, "")
			list.SetSubtopicEdit(id, strings.Join(args[1:], " "))
			if !list.SaveSubtopicName(id) {
				return writeErr(cmd, blankNameError{})
			}
			t, _ := list.Find(id)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show completion across the whole tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			topics := list.Topics()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"completed":  model.CountCompleted(topics),
					"total":      model.CountTotal(topics),
					"percentage": list.CompletionPercentage(),
				},
			})
		},
	}
}

func newDeleteSubCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-sub <parent-id> <topic-id>",
		Short: "Request subtopic deletion (requires permission; never deletes)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.open()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeErr(cmd, list.DeleteSubtopic(strings.TrimSpace(args[0]), strings.TrimSpace(args[1])))
		},
	}
}

func findTopic(list *viewmodel.TopicsList, id string) (model.Topic, error) {
	id = strings.TrimSpace(id)
	t, ok := list.Find(id)
	if !ok {
		return model.Topic{}, errNotFound("topic", id)
	}
	return t, nil
}

func nonNilTopics(ts []model.Topic) []model.Topic {
	if ts == nil {
		return []model.Topic{}
	}
	return ts
}
