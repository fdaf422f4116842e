package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"devops-topics/internal/model"
)

// StorageKey is the backend key holding the JSON-encoded forest.
const StorageKey = "devops-topics"

// Store owns the canonical topic forest.
//
// All change flows through the mutation methods: each one clones the current
// forest, edits the clone, then commits it (persist, then notify). Snapshots
// handed out are deep copies, so holders cannot reach the committed tree.
//
// A Store is not safe for concurrent use; callers that share one across
// goroutines must serialise access themselves.
type Store struct {
	backend Backend
	log     *slog.Logger
	newID   IDGenerator

	topics  []model.Topic
	version int

	subs    []subscriber
	nextSub int

	// Emissions committed while subscribers are running wait here and are
	// delivered in commit order once the current round finishes.
	notifying bool
	pending   []emission
}

type subscriber struct {
	id    int
	since int
	fn    func([]model.Topic)
}

type emission struct {
	version int
	topics  []model.Topic
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.newID = g
		}
	}
}

// New builds a store and restores the forest from backend. A nil or
// unavailable backend, a missing key, or an unreadable value all fall back to
// model.DefaultTopics; load failures are logged and never returned.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:   newTopicID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.topics = s.loadInitial()
	return s
}

func (s *Store) available() bool {
	return s.backend != nil && s.backend.Available()
}

func (s *Store) loadInitial() []model.Topic {
	if !s.available() {
		return model.DefaultTopics()
	}
	raw, err := s.backend.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Warn("load topics failed; using defaults", "key", StorageKey, "err", err)
		}
		return model.DefaultTopics()
	}
	topics, err := DecodeTopics(raw)
	if err != nil {
		s.log.Warn("decode topics failed; using defaults", "key", StorageKey, "err", err)
		return model.DefaultTopics()
	}
	return topics
}

// DecodeTopics parses the persisted form. Anything other than a JSON array of
// topics (including null, the empty string and null elements at any depth) is
// an error.
func DecodeTopics(raw string) ([]model.Topic, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty value")
	}
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("decode %s: %w", StorageKey, err)
	}
	if err := checkTopicElements(generic, "$"); err != nil {
		return nil, err
	}
	var topics []model.Topic
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, fmt.Errorf("decode %s: %w", StorageKey, err)
	}
	if topics == nil {
		return nil, errors.New("value is not an array")
	}
	return model.CloneTopics(topics), nil
}

// checkTopicElements rejects null entries in a topic array and in every
// nested subtopics array.
func checkTopicElements(v any, path string) error {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	for i, el := range list {
		at := fmt.Sprintf("%s[%d]", path, i)
		if el == nil {
			return fmt.Errorf("null topic at %s", at)
		}
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if err := checkTopicElements(obj["subtopics"], at+".subtopics"); err != nil {
			return err
		}
	}
	return nil
}

// EncodeTopics returns the persisted form of topics.
func EncodeTopics(topics []model.Topic) (string, error) {
	if topics == nil {
		topics = []model.Topic{}
	}
	b, err := json.Marshal(topics)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Snapshot returns a deep copy of the current forest.
func (s *Store) Snapshot() []model.Topic {
	return model.CloneTopics(s.topics)
}

// Subscribe registers fn and immediately calls it with the current forest.
// fn is then called with a fresh snapshot after every committed mutation, in
// subscription order. The returned func removes the subscription.
func (s *Store) Subscribe(fn func([]model.Topic)) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, since: s.version, fn: fn})
	fn(s.Snapshot())
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Find returns a copy of the topic with id, searching the whole forest.
func (s *Store) Find(id string) (model.Topic, bool) {
	t, ok := findTopic(s.topics, id)
	if !ok {
		return model.Topic{}, false
	}
	return t.Clone(), true
}

func (s *Store) AddTopic(name string) {
	next := model.CloneTopics(s.topics)
	next = append(next, model.Topic{
		ID:        s.newID(),
		Name:      name,
		Number:    strconv.Itoa(len(next) + 1),
		Subtopics: []model.Topic{},
	})
	s.commit(next)
}

func (s *Store) AddSubtopic(parentID, name string) {
	s.mutate(parentID, func(parent *model.Topic) {
		parent.Subtopics = append(parent.Subtopics, model.Topic{
			ID:        subtopicID(parent.ID, s.newID()),
			Name:      name,
			Number:    parent.Number + "." + strconv.Itoa(len(parent.Subtopics)+1),
			Subtopics: []model.Topic{},
			ParentID:  parent.ID,
		})
		parent.Expanded = true
	})
}

func (s *Store) ToggleComplete(id string) {
	s.mutate(id, func(t *model.Topic) {
		t.Completed = !t.Completed
	})
}

// ToggleCompleteWithChildren flips the topic and forces every descendant to
// the topic's new value.
func (s *Store) ToggleCompleteWithChildren(id string) {
	s.mutate(id, func(t *model.Topic) {
		t.Completed = !t.Completed
		setCompletedDeep(t.Subtopics, t.Completed)
	})
}

func (s *Store) ToggleExpanded(id string) {
	s.mutate(id, func(t *model.Topic) {
		t.Expanded = !t.Expanded
	})
}

// UpdateTopicName sets the name as given; callers trim and validate.
func (s *Store) UpdateTopicName(id, name string) {
	s.mutate(id, func(t *model.Topic) {
		t.Name = name
	})
}

func setCompletedDeep(topics []model.Topic, completed bool) {
	for i := range topics {
		topics[i].Completed = completed
		setCompletedDeep(topics[i].Subtopics, completed)
	}
}

// mutate applies fn to the topic with id on a working copy and commits it.
// A missing id is a no-op: nothing is persisted and nobody is notified.
func (s *Store) mutate(id string, fn func(t *model.Topic)) {
	next := model.CloneTopics(s.topics)
	t, ok := findTopic(next, id)
	if !ok {
		s.log.Debug("topic not found; skipping", "id", id)
		return
	}
	fn(t)
	s.commit(next)
}

// findTopic is a depth-first pre-order search. The returned pointer aliases
// an element of topics.
func findTopic(topics []model.Topic, id string) (*model.Topic, bool) {
	for i := range topics {
		if topics[i].ID == id {
			return &topics[i], true
		}
		if t, ok := findTopic(topics[i].Subtopics, id); ok {
			return t, true
		}
	}
	return nil, false
}

func (s *Store) commit(next []model.Topic) {
	s.topics = next
	s.version++
	s.persist()
	s.notify()
}

func (s *Store) persist() {
	if !s.available() {
		return
	}
	raw, err := EncodeTopics(s.topics)
	if err != nil {
		s.log.Warn("encode topics failed", "err", err)
		return
	}
	if err := s.backend.Set(StorageKey, raw); err != nil {
		s.log.Warn("persist topics failed", "key", StorageKey, "err", err)
	}
}

// notify queues the committed state for every subscriber. A mutation made from
// inside a callback is queued behind the current round, so every subscriber
// sees each committed state once and in commit order.
func (s *Store) notify() {
	s.pending = append(s.pending, emission{version: s.version, topics: model.CloneTopics(s.topics)})
	if s.notifying {
		return
	}
	s.notifying = true
	defer func() {
		s.notifying = false
		s.pending = nil
	}()

	for len(s.pending) > 0 {
		e := s.pending[0]
		s.pending = s.pending[1:]
		subs := append([]subscriber(nil), s.subs...)
		for _, sub := range subs {
			if !s.subscribed(sub.id) || e.version <= sub.since {
				continue
			}
			sub.fn(model.CloneTopics(e.topics))
		}
	}
}

func (s *Store) subscribed(id int) bool {
	for _, sub := range s.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

// Close releases the backend when it holds resources.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
