package store

import (
	"github.com/google/uuid"
)

// IDGenerator returns a fresh, process-unique token for a new topic.
type IDGenerator func() string

// newTopicID returns a time-ordered UUIDv7, falling back to a random v4
// if the clock-based generator fails.
func newTopicID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func subtopicID(parentID, token string) string {
	return parentID + "-" + token
}
