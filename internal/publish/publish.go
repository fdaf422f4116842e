package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"devops-topics/internal/model"
)

type WriteOptions struct {
	Title      string
	IncludeIDs bool
	Overwrite  bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteChecklist writes <toDir>/checklist.md plus one page per root topic
// under <toDir>/topics/<number>.md.
func WriteChecklist(topics []model.Topic, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	pagesDir := filepath.Join(toDir, "topics")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	ropt := RenderOptions{Title: opt.Title, IncludeIDs: opt.IncludeIDs}
	files := []pendingFile{{
		path: filepath.Join(toDir, "checklist.md"),
		body: RenderChecklistMarkdown(topics, ropt),
	}}
	for _, t := range topics {
		md, err := RenderTopicMarkdown(topics, t.ID, ropt)
		if err != nil {
			return WriteResult{}, err
		}
		files = append(files, pendingFile{path: filepath.Join(pagesDir, pageFileName(t)+".md"), body: md})
	}

	// Refuse before writing anything so a conflict never leaves a partial export.
	if !opt.Overwrite {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return WriteResult{}, errors.New("file exists (use --overwrite): " + f.path)
			}
		}
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.body), 0o644); err != nil {
			return WriteResult{}, err
		}
		written = append(written, f.path)
	}

	return WriteResult{Written: written}, nil
}

func pageFileName(t model.Topic) string {
	name := strings.TrimSpace(t.Number)
	if name == "" {
		name = t.ID
	}
	return strings.NewReplacer("/", "-", "\\", "-", " ", "-").Replace(name)
}

type pendingFile struct {
	path string
	body string
}
