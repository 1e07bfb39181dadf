package core

import "github.com/google/uuid"

// NewID generates a new unique identifier used for request correlation.
func NewID() string { return uuid.NewString() }
