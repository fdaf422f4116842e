package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"devops-topics/internal/model"
	"devops-topics/internal/publish"
	"devops-topics/internal/viewmodel"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tools holds the handlers for every topics_* tool.
type Tools struct {
	mu   sync.Mutex
	list *viewmodel.TopicsList
}

func NewTools(list *viewmodel.TopicsList) *Tools {
	return &Tools{list: list}
}

func (t *Tools) ListDefinition() mcp.Tool {
	return mcp.NewTool("topics_list",
		mcp.WithDescription("List root topics on one page, each with its nested subtopics, plus pagination metadata."),
		mcp.WithNumber("page",
			mcp.Description("1-based page number (default: 1; out-of-range values are clamped)"),
		),
	)
}

func (t *Tools) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.list.GoToPage(intArg(req, "page", 1))
	topics := t.list.PageTopics()
	if topics == nil {
		topics = []model.Topic{}
	}
	return jsonResult(map[string]any{
		"topics":      topics,
		"page":        t.list.CurrentPage(),
		"totalPages":  t.list.TotalPages(),
		"pageNumbers": t.list.PageNumbers(),
	})
}

func (t *Tools) TreeDefinition() mcp.Tool {
	return mcp.NewTool("topics_tree",
		mcp.WithDescription("Render the whole tree as a Markdown checklist with a progress line."),
	)
}

func (t *Tools) HandleTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	md := publish.RenderChecklistMarkdown(t.list.Topics(), publish.RenderOptions{
		Title:      "DevOps Topics",
		IncludeIDs: true,
	})
	return mcp.NewToolResultText(md), nil
}

func (t *Tools) AddDefinition() mcp.Tool {
	return mcp.NewTool("topics_add",
		mcp.WithDescription("Append a new root topic. The name is trimmed and must not be blank."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Topic name"),
		),
	)
}

func (t *Tools) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.list.StartAddingTopic()
	t.list.SetNewTopicName(req.GetString("name", ""))
	if !t.list.AddNewTopic() {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	roots := t.list.Topics()
	return jsonResult(roots[len(roots)-1])
}

func (t *Tools) AddSubtopicDefinition() mcp.Tool {
	return mcp.NewTool("topics_add_subtopic",
		mcp.WithDescription("Append a subtopic under any existing topic. The parent is expanded."),
		mcp.WithString("parent_id",
			mcp.Required(),
			mcp.Description("Id of the parent topic (any depth)"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Subtopic name"),
		),
	)
}

func (t *Tools) HandleAddSubtopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parentID := strings.TrimSpace(req.GetString("parent_id", ""))
	if _, ok := t.list.Find(parentID); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("topic not found: %q", parentID)), nil
	}
	t.list.StartAddingSubtopic(parentID)
	t.list.SetNewSubtopicName(req.GetString("name", ""))
	if !t.list.SaveNewSubtopic() {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	parent, _ := t.list.Find(parentID)
	return jsonResult(parent.Subtopics[len(parent.Subtopics)-1])
}

func (t *Tools) ToggleDefinition() mcp.Tool {
	return mcp.NewTool("topics_toggle",
		mcp.WithDescription("Flip a topic's completed flag. With with_children, every descendant takes the topic's new value."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Topic id"),
		),
		mcp.WithBoolean("with_children",
			mcp.Description("Cascade the new value to all descendants (default: false)"),
		),
	)
}

func (t *Tools) HandleToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := strings.TrimSpace(req.GetString("id", ""))
	if _, ok := t.list.Find(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("topic not found: %q", id)), nil
	}
	t.list.ToggleComplete(id, boolArg(req, "with_children", false))
	topic, _ := t.list.Find(id)
	return jsonResult(topic)
}

func (t *Tools) RenameDefinition() mcp.Tool {
	return mcp.NewTool("topics_rename",
		mcp.WithDescription("Rename a topic. The name is trimmed and must not be blank."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Topic id"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("New name"),
		),
	)
}

func (t *Tools) HandleRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := strings.TrimSpace(req.GetString("id", ""))
	if _, ok := t.list.Find(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("topic not found: %q", id)), nil
	}
	if !t.list.UpdateTopicName(id, req.GetString("name", "")) {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	topic, _ := t.list.Find(id)
	return jsonResult(topic)
}

func (t *Tools) ProgressDefinition() mcp.Tool {
	return mcp.NewTool("topics_progress",
		mcp.WithDescription("Report completed/total counts across the whole tree and the rounded percentage."),
	)
}

func (t *Tools) HandleProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	topics := t.list.Topics()
	return jsonResult(map[string]any{
		"completed":  model.CountCompleted(topics),
		"total":      model.CountTotal(topics),
		"percentage": t.list.CompletionPercentage(),
	})
}

// intArg extracts an integer argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
