package tui

import "devops-topics/internal/model"

// row is one selectable line: a root of the current page or a descendant
// reachable through expanded ancestors.
type row struct {
	topic    model.Topic
	depth    int
	parentID string
}

func (r row) isSubtopic() bool { return r.depth > 0 }

func visibleRows(page []model.Topic) []row {
	var out []row
	var walk func(ts []model.Topic, depth int, parentID string)
	walk = func(ts []model.Topic, depth int, parentID string) {
		for _, t := range ts {
			out = append(out, row{topic: t, depth: depth, parentID: parentID})
			if t.Expanded && len(t.Subtopics) > 0 {
				walk(t.Subtopics, depth+1, t.ID)
			}
		}
	}
	walk(page, 0, "")
	return out
}
