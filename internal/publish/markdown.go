package publish

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"devops-topics/internal/model"
)

type RenderOptions struct {
	// Title heads the document. Default: "Topics".
	Title string
	// IncludeIDs appends each topic id as inline code.
	IncludeIDs bool
	// CollapsedOnly hides the children of topics that are not expanded,
	// mirroring what the interactive list shows.
	CollapsedOnly bool
}

// RenderChecklistMarkdown renders the forest as a GitHub-style task list.
func RenderChecklistMarkdown(topics []model.Topic, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Topics"
	}
	writeLn("# " + title)
	writeLn("")

	total := model.CountTotal(topics)
	done := model.CountCompleted(topics)
	writeLn(fmt.Sprintf("Progress: %d/%d (%d%%)", done, total, percent(done, total)))
	writeLn("")

	writeTopicList(&buf, topics, 0, opt)
	return buf.String()
}

// RenderTopicMarkdown renders a single topic and its subtree as its own page.
func RenderTopicMarkdown(topics []model.Topic, id string, opt RenderOptions) (string, error) {
	id = strings.TrimSpace(id)
	var found *model.Topic
	model.Walk(topics, func(t model.Topic, _ int) bool {
		if t.ID == id {
			tc := t
			found = &tc
			return false
		}
		return true
	})
	if found == nil {
		return "", fmt.Errorf("topic not found: %s", id)
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + found.Number + " " + strings.TrimSpace(found.Name))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + found.ID)
	if found.ParentID != "" {
		writeLn("- Parent: " + found.ParentID)
	}
	writeLn(fmt.Sprintf("- Completed: %t", found.Completed))

	if len(found.Subtopics) > 0 {
		sub := found.Subtopics
		total := model.CountTotal(sub)
		done := model.CountCompleted(sub)
		writeLn(fmt.Sprintf("- Subtopics: %d/%d done", done, total))
		writeLn("")
		writeLn("## Subtopics")
		writeLn("")
		opt.CollapsedOnly = false
		writeTopicList(&buf, sub, 0, opt)
	}
	return buf.String(), nil
}

func writeTopicList(buf *bytes.Buffer, topics []model.Topic, depth int, opt RenderOptions) {
	for _, t := range topics {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := strings.Repeat("  ", depth) + "- " + box + " " + t.Number + " " + escapeInline(t.Name)
		if opt.IncludeIDs {
			line += " `" + t.ID + "`"
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		if len(t.Subtopics) == 0 {
			continue
		}
		if opt.CollapsedOnly && !t.Expanded {
			continue
		}
		writeTopicList(buf, t.Subtopics, depth+1, opt)
	}
}

func escapeInline(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
