package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"devops-topics/internal/model"
)

func fixtureTopics() []model.Topic {
	return []model.Topic{
		{
			ID: "1", Name: "Linux", Number: "1", Completed: true, Expanded: false,
			Subtopics: []model.Topic{
				{ID: "1-a", Name: "Shell", Number: "1.1", Completed: true, ParentID: "1", Subtopics: []model.Topic{}},
				{ID: "1-b", Name: "Systemd", Number: "1.2", ParentID: "1", Subtopics: []model.Topic{}},
			},
		},
		{ID: "2", Name: "Networking", Number: "2", Subtopics: []model.Topic{}},
	}
}

func TestRenderChecklistMarkdown_NestsAndCounts(t *testing.T) {
	t.Parallel()

	md := RenderChecklistMarkdown(fixtureTopics(), RenderOptions{})
	for _, want := range []string{
		"# Topics\n",
		"Progress: 2/4 (50%)",
		"- [x] 1 Linux\n",
		"  - [x] 1.1 Shell\n",
		"  - [ ] 1.2 Systemd\n",
		"- [ ] 2 Networking\n",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "`1-a`") {
		t.Fatalf("ids should be omitted by default:\n%s", md)
	}
}

func TestRenderChecklistMarkdown_CollapsedOnlyHidesChildren(t *testing.T) {
	t.Parallel()

	md := RenderChecklistMarkdown(fixtureTopics(), RenderOptions{Title: "DevOps", CollapsedOnly: true, IncludeIDs: true})
	if !strings.HasPrefix(md, "# DevOps\n") {
		t.Fatalf("expected custom title:\n%s", md)
	}
	if strings.Contains(md, "Shell") {
		t.Fatalf("collapsed topic children should be hidden:\n%s", md)
	}
	if !strings.Contains(md, "- [x] 1 Linux `1`") {
		t.Fatalf("expected id suffix:\n%s", md)
	}
}

func TestRenderTopicMarkdown(t *testing.T) {
	t.Parallel()

	md, err := RenderTopicMarkdown(fixtureTopics(), "1", RenderOptions{})
	if err != nil {
		t.Fatalf("RenderTopicMarkdown: %v", err)
	}
	for _, want := range []string{"# 1 Linux", "- Subtopics: 1/2 done", "- [ ] 1.2 Systemd"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}

	sub, err := RenderTopicMarkdown(fixtureTopics(), "1-b", RenderOptions{})
	if err != nil {
		t.Fatalf("RenderTopicMarkdown(sub): %v", err)
	}
	if !strings.Contains(sub, "- Parent: 1") || strings.Contains(sub, "## Subtopics") {
		t.Fatalf("unexpected leaf page:\n%s", sub)
	}

	if _, err := RenderTopicMarkdown(fixtureTopics(), "nope", RenderOptions{}); err == nil {
		t.Fatalf("expected error for missing topic")
	}
}

func TestWriteChecklist_WritesPagesAndRespectsOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := WriteChecklist(fixtureTopics(), dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteChecklist: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Written)
	}
	for _, p := range []string{
		filepath.Join(dir, "checklist.md"),
		filepath.Join(dir, "topics", "1.md"),
		filepath.Join(dir, "topics", "2.md"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}

	if _, err := WriteChecklist(fixtureTopics(), dir, WriteOptions{}); err == nil {
		t.Fatalf("expected error when files exist")
	}
	if _, err := WriteChecklist(fixtureTopics(), dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("WriteChecklist overwrite: %v", err)
	}
}

func TestWriteChecklist_ConflictWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pages := filepath.Join(dir, "topics")
	if err := os.MkdirAll(pages, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	existing := filepath.Join(pages, "2.md")
	if err := os.WriteFile(existing, []byte("keep"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := WriteChecklist(fixtureTopics(), dir, WriteOptions{})
	if err == nil || !strings.Contains(err.Error(), existing) {
		t.Fatalf("expected conflict on %s; err = %v", existing, err)
	}
	for _, p := range []string{filepath.Join(dir, "checklist.md"), filepath.Join(pages, "1.md")} {
		if _, err := os.Stat(p); err == nil {
			t.Fatalf("partial export: %s was written", p)
		}
	}
	if b, _ := os.ReadFile(existing); string(b) != "keep" {
		t.Fatalf("existing page modified: %q", b)
	}
}

func TestWriteChecklist_RequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := WriteChecklist(nil, "  ", WriteOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}
