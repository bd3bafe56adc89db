package utils

import "github.com/google/uuid"

// NewID returns an opaque random identifier, used for CSRF state nonces.
func NewID() string { return uuid.NewString() }
