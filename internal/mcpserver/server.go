// Package mcpserver exposes the topic tree as MCP tools over stdio.
//
// The view-model is single-threaded; every handler runs under one mutex.
package mcpserver

import (
	"devops-topics/internal/viewmodel"

	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New registers every topic tool on a fresh MCP server.
func New(list *viewmodel.TopicsList) *server.MCPServer {
	s := server.NewMCPServer(
		"devops-topics",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	t := NewTools(list)
	s.AddTool(t.ListDefinition(), t.HandleList)
	s.AddTool(t.TreeDefinition(), t.HandleTree)
	s.AddTool(t.AddDefinition(), t.HandleAdd)
	s.AddTool(t.AddSubtopicDefinition(), t.HandleAddSubtopic)
	s.AddTool(t.ToggleDefinition(), t.HandleToggle)
	s.AddTool(t.RenameDefinition(), t.HandleRename)
	s.AddTool(t.ProgressDefinition(), t.HandleProgress)
	return s
}

// Serve blocks serving MCP over stdin/stdout.
func Serve(list *viewmodel.TopicsList) error {
	return server.ServeStdio(New(list))
}

const instructions = `Tracks a DevOps learning checklist as a tree of topics.
Use topics_list or topics_tree to read, then topics_toggle to mark progress.
Topic ids are stable; numbers like "3.2" are display labels only.`
