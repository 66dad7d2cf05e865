package types

import "github.com/google/uuid"

// NewID returns a new random identifier for a persisted record
func NewID() string {
	return uuid.New().String()
}
