package model

import "strconv"

// Topic is one checklist node. Roots have an empty ParentID.
//
// Number is the dotted positional label assigned at creation ("3.1"). It is
// never recomputed, so it can go stale if the tree is ever reshaped.
type Topic struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Number    string  `json:"number"`
	Completed bool    `json:"completed"`
	Expanded  bool    `json:"expanded"`
	Subtopics []Topic `json:"subtopics"`
	ParentID  string  `json:"parentId,omitempty"`
}

// HasSubtopics reports whether t has at least one child.
func (t Topic) HasSubtopics() bool { return len(t.Subtopics) > 0 }

// CloneTopics returns a deep copy of topics. Subtopic slices are always non-nil
// in the copy, so a cloned forest serializes "subtopics": [] rather than null.
func CloneTopics(topics []Topic) []Topic {
	if topics == nil {
		return nil
	}
	out := make([]Topic, len(topics))
	for i, t := range topics {
		out[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of t.
func (t Topic) Clone() Topic {
	c := t
	c.Subtopics = make([]Topic, len(t.Subtopics))
	for i, s := range t.Subtopics {
		c.Subtopics[i] = s.Clone()
	}
	return c
}

// CountTotal counts every node in the forest at every depth.
func CountTotal(topics []Topic) int {
	n := len(topics)
	for _, t := range topics {
		n += CountTotal(t.Subtopics)
	}
	return n
}

// CountCompleted counts completed nodes in the forest at every depth.
func CountCompleted(topics []Topic) int {
	n := 0
	for _, t := range topics {
		if t.Completed {
			n++
		}
		n += CountCompleted(t.Subtopics)
	}
	return n
}

// Walk visits every node depth-first, pre-order. depth is 0 for roots.
// Returning false from fn stops the walk.
func Walk(topics []Topic, fn func(t Topic, depth int) bool) {
	walk(topics, 0, fn)
}

func walk(topics []Topic, depth int, fn func(t Topic, depth int) bool) bool {
	for _, t := range topics {
		if !fn(t, depth) {
			return false
		}
		if !walk(t.Subtopics, depth+1, fn) {
			return false
		}
	}
	return true
}

var defaultTopicNames = []string{
	"Linux",
	"Networking",
	"Docker",
	"AWS Basics",
	"ECR",
	"RDS",
	"ECS",
	"Terraform",
	"Github Actions",
	"Kubernetes",
}

// DefaultTopics returns the built-in forest used when nothing is persisted:
// ten incomplete, collapsed roots numbered "1".."10".
func DefaultTopics() []Topic {
	out := make([]Topic, 0, len(defaultTopicNames))
	for i, name := range defaultTopicNames {
		n := strconv.Itoa(i + 1)
		out = append(out, Topic{
			ID:        n,
			Name:      name,
			Number:    n,
			Subtopics: []Topic{},
		})
	}
	return out
}

