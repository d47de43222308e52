package model

import (
	"strings"

	"github.com/google/uuid"
)

// Aggregate is the persistence contract shared by Account, User and Product.
type Aggregate interface {
	AggregateID() string
	Audit() *AuditInfo
}

// NewID returns a random opaque identifier (32 hex characters).
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
