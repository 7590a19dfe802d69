package domain

import (
	"errors"
	"time"
)

// Service-side session errors.
var (
	ErrSessionNotFound          = errors.New("session not found")
	ErrSessionExpired           = errors.New("session expired")
	ErrNotAwaitingClarification = errors.New("session is not in clarification state")
	ErrSessionNotReady          = errors.New("session is not ready for execution")
)

// SessionRecord is the service-side unit of work spanning
// parse -> (clarify) -> execute -> report.
type SessionRecord struct {
	ID              string
	Instruction     string
	Workflows       []string
	Parameters      map[string]string
	Cluster         ClusterConfig
	Status          Status
	CurrentWorkflow string
	// Progress is a 0-100 percentage across the workflow chain.
	Progress      int
	Steps         []ExecutionStep
	ErrorMessage  string
	Clarification *ClarificationQuestion
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the session passed its TTL at the given instant.
func (r *SessionRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
