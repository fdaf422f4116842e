// Package viewmodel holds the paginated, editable view of the topic forest
// that front-ends (TUI, CLI, MCP) drive.
package viewmodel

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"

	"devops-topics/internal/model"
	"devops-topics/internal/store"
)

// ErrPermissionRequired is returned by actions reserved for authorised users.
var ErrPermissionRequired = errors.New("permission required")

// maxVisiblePages bounds the page-number window returned by PageNumbers.
const maxVisiblePages = 5

// TopicStore is the part of store.Store the view-model depends on.
type TopicStore interface {
	Subscribe(fn func([]model.Topic)) (unsubscribe func())
	Find(id string) (model.Topic, bool)
	AddTopic(name string)
	AddSubtopic(parentID, name string)
	ToggleComplete(id string)
	ToggleCompleteWithChildren(id string)
	ToggleExpanded(id string)
	UpdateTopicName(id, name string)
}

var _ TopicStore = (*store.Store)(nil)

// TopicsList mirrors the store's forest, paginates its roots, and buffers
// in-progress edits. It is single-threaded like the store it wraps.
type TopicsList struct {
	store TopicStore
	log   *slog.Logger
	unsub func()

	topics     []model.Topic
	page       []model.Topic
	current    int
	pageSize   int
	totalPages int

	addingTopic  bool
	newTopicName string

	editing map[string]string

	addingSubtopicFor string
	addingSubtopic    bool
	newSubtopicName   string
}

// New subscribes to s. pageSize <= 0 uses store.DefaultPageSize. A nil logger
// discards output.
func New(s TopicStore, pageSize int, logger *slog.Logger) *TopicsList {
	if pageSize <= 0 {
		pageSize = store.DefaultPageSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &TopicsList{
		store:    s,
		log:      logger,
		current:  1,
		pageSize: pageSize,
		editing:  map[string]string{},
	}
	l.unsub = s.Subscribe(func(topics []model.Topic) {
		l.topics = topics
		l.updatePagination()
	})
	return l
}

// Close releases the store subscription.
func (l *TopicsList) Close() {
	if l.unsub != nil {
		l.unsub()
		l.unsub = nil
	}
}

func (l *TopicsList) updatePagination() {
	n := len(l.topics)
	l.totalPages = (n + l.pageSize - 1) / l.pageSize
	if l.current < 1 {
		l.current = 1
	}
	start := (l.current - 1) * l.pageSize
	if start > n {
		start = n
	}
	end := start + l.pageSize
	if end > n {
		end = n
	}
	l.page = l.topics[start:end:end]
}

func (l *TopicsList) Topics() []model.Topic     { return l.topics }
func (l *TopicsList) PageTopics() []model.Topic { return l.page }
func (l *TopicsList) CurrentPage() int          { return l.current }
func (l *TopicsList) TotalPages() int           { return l.totalPages }
func (l *TopicsList) PageSize() int             { return l.pageSize }

// Find looks a topic up in the mirrored forest.
func (l *TopicsList) Find(id string) (model.Topic, bool) {
	var found model.Topic
	ok := false
	model.Walk(l.topics, func(t model.Topic, _ int) bool {
		if t.ID == id {
			found, ok = t, true
			return false
		}
		return true
	})
	return found, ok
}

// GoToPage moves to page, clamped to [1, max(TotalPages, 1)].
func (l *TopicsList) GoToPage(page int) {
	l.current = clampPage(page, l.totalPages)
	l.updatePagination()
}

func (l *TopicsList) PreviousPage() {
	if l.current > 1 {
		l.current--
		l.updatePagination()
	}
}

func (l *TopicsList) NextPage() {
	if l.current < l.totalPages {
		l.current++
		l.updatePagination()
	}
}

func (l *TopicsList) GoToLastPage() {
	l.GoToPage(l.totalPages)
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// PageNumbers returns up to five contiguous page numbers around the current
// page, sliding the window at either end so it keeps its full width.
func (l *TopicsList) PageNumbers() []int {
	return pageWindow(l.current, l.totalPages)
}

func pageWindow(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= maxVisiblePages {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	start := current - maxVisiblePages/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisiblePages - 1
	if end > total {
		end = total
		start = end - maxVisiblePages + 1
	}
	out := make([]int, 0, maxVisiblePages)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}

// CompletionPercentage is the rounded share of completed nodes across the
// whole forest at every depth. An empty forest is 0.
func (l *TopicsList) CompletionPercentage() int {
	return completionPercentage(l.topics)
}

func completionPercentage(topics []model.Topic) int {
	total := model.CountTotal(topics)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(model.CountCompleted(topics)) / float64(total)))
}

// ToggleComplete flips one topic, or the topic and its whole subtree when
// isParent is set.
func (l *TopicsList) ToggleComplete(id string, isParent bool) {
	if isParent {
		l.store.ToggleCompleteWithChildren(id)
		return
	}
	l.store.ToggleComplete(id)
}

func (l *TopicsList) ToggleExpanded(id string) {
	l.store.ToggleExpanded(id)
}

// UpdateTopicName renames id to the trimmed value. Blank values are ignored.
func (l *TopicsList) UpdateTopicName(id, value string) bool {
	name := strings.TrimSpace(value)
	if name == "" {
		return false
	}
	l.store.UpdateTopicName(id, name)
	return true
}

func (l *TopicsList) StartEditingSubtopic(id, currentName string) {
	l.editing[id] = currentName
}

// SetSubtopicEdit replaces the buffered name. It has no effect unless an edit
// for id is in progress.
func (l *TopicsList) SetSubtopicEdit(id, value string) {
	if _, ok := l.editing[id]; ok {
		l.editing[id] = value
	}
}

func (l *TopicsList) SubtopicEdit(id string) (string, bool) {
	v, ok := l.editing[id]
	return v, ok
}

// SaveSubtopicName commits the trimmed buffer when it is non-blank. The edit
// ends either way.
func (l *TopicsList) SaveSubtopicName(id string) bool {
	value, ok := l.editing[id]
	delete(l.editing, id)
	if !ok {
		return false
	}
	return l.UpdateTopicName(id, value)
}

func (l *TopicsList) CancelEditingSubtopic(id string) {
	delete(l.editing, id)
}

func (l *TopicsList) IsEditingSubtopic(id string) bool {
	_, ok := l.editing[id]
	return ok
}

// StartAddingSubtopic opens the add-subtopic input under parentID and makes
// sure the parent is expanded so the input is visible.
func (l *TopicsList) StartAddingSubtopic(parentID string) {
	l.addingSubtopicFor = parentID
	l.addingSubtopic = true
	l.newSubtopicName = ""
	if parent, ok := l.store.Find(parentID); ok && !parent.Expanded {
		l.store.ToggleExpanded(parentID)
	}
}

func (l *TopicsList) SetNewSubtopicName(value string) {
	l.newSubtopicName = value
}

func (l *TopicsList) NewSubtopicName() string { return l.newSubtopicName }

// SaveNewSubtopic adds the buffered subtopic when the trimmed name is
// non-blank. The add flow ends either way.
func (l *TopicsList) SaveNewSubtopic() bool {
	parentID, adding := l.addingSubtopicFor, l.addingSubtopic
	name := strings.TrimSpace(l.newSubtopicName)
	l.CancelAddingSubtopic()
	if !adding || name == "" {
		return false
	}
	l.store.AddSubtopic(parentID, name)
	return true
}

func (l *TopicsList) CancelAddingSubtopic() {
	l.addingSubtopicFor = ""
	l.addingSubtopic = false
	l.newSubtopicName = ""
}

func (l *TopicsList) IsAddingSubtopicFor(parentID string) bool {
	return l.addingSubtopic && l.addingSubtopicFor == parentID
}

// AddingSubtopicFor returns the parent id of the open add-subtopic flow.
func (l *TopicsList) AddingSubtopicFor() (string, bool) {
	return l.addingSubtopicFor, l.addingSubtopic
}

func (l *TopicsList) StartAddingTopic() {
	l.addingTopic = true
}

func (l *TopicsList) SetNewTopicName(value string) {
	l.newTopicName = value
}

func (l *TopicsList) NewTopicName() string { return l.newTopicName }

func (l *TopicsList) IsAddingTopic() bool { return l.addingTopic }

// AddNewTopic appends the trimmed name as a root and jumps to the last page.
// A blank name just closes the add flow.
func (l *TopicsList) AddNewTopic() bool {
	name := strings.TrimSpace(l.newTopicName)
	l.CancelAddingTopic()
	if name == "" {
		return false
	}
	l.store.AddTopic(name)
	l.GoToLastPage()
	return true
}

func (l *TopicsList) CancelAddingTopic() {
	l.addingTopic = false
	l.newTopicName = ""
}

// DeleteSubtopic is reserved for users with delete permission. It only
// records the request; the forest is never changed.
func (l *TopicsList) DeleteSubtopic(parentID, subtopicID string) error {
	l.log.Info("delete subtopic requested; permission required",
		"parent_id", parentID,
		"subtopic_id", subtopicID,
	)
	return ErrPermissionRequired
}
