// Package domain defines core business entities and value objects for the
// E2E testing agent.
//
// This file contains the test session model shared by the client and the
// orchestration service. The domain layer is independent of infrastructure
// concerns and represents pure business logic and data structures.
package domain

import "time"

// Status is a session lifecycle status. The same value set travels over the
// wire between the client and the orchestration service.
type Status string

const (
	// StatusIdle is the client-local resting state before any submission.
	StatusIdle Status = "idle"
	// StatusCreated means the service accepted the instruction and began parsing.
	StatusCreated Status = "created"
	// StatusParsing means parsing is in progress or a clarification is pending
	// service-side resolution.
	StatusParsing Status = "parsing"
	// StatusParsed means the workflow chain is resolved and ready to execute.
	StatusParsed Status = "parsed"
	// StatusNeedsClarification means the service raised a question the user
	// must answer or skip before execution can proceed.
	StatusNeedsClarification Status = "needs_clarification"
	// StatusLoadingTemplates means the service is loading TDD templates.
	StatusLoadingTemplates Status = "loading_templates"
	// StatusGenerating means the service is customizing test plans.
	StatusGenerating Status = "generating"
	// StatusExecuting means the test plan is running.
	StatusExecuting Status = "executing"
	// StatusCompleted is the success terminal state.
	StatusCompleted Status = "completed"
	// StatusFailed is the failure terminal state.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status ends a session.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// clientTransitions is the client-observed state machine. Poll responses are
// applied as-is because the service is authoritative once execution starts;
// this table governs the transitions the client itself initiates.
var clientTransitions = map[Status][]Status{
	StatusIdle:               {StatusCreated},
	StatusCreated:            {StatusNeedsClarification, StatusExecuting, StatusFailed},
	StatusNeedsClarification: {StatusParsing, StatusFailed},
	StatusParsing:            {StatusExecuting, StatusFailed},
	StatusExecuting:          {StatusCompleted, StatusFailed},
	StatusCompleted:          {StatusIdle, StatusCreated},
	StatusFailed:             {StatusIdle, StatusCreated},
}

// CanTransition reports whether the client may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range clientTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TestSession is the client-side record of one orchestrated run. At most one
// session is live at a time; a new submission replaces the previous one.
type TestSession struct {
	SessionID    string          `json:"session_id"`
	State        Status          `json:"status"`
	Command      string          `json:"command"`
	Workflows    []string        `json:"workflows"`
	Steps        []ExecutionStep `json:"steps,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StatusReport is one poll response from the orchestration service.
type StatusReport struct {
	SessionID       string          `json:"session_id"`
	Status          Status          `json:"status"`
	Workflows       []string        `json:"workflows"`
	CurrentWorkflow string          `json:"current_workflow,omitempty"`
	Progress        int             `json:"progress"`
	Steps           []ExecutionStep `json:"steps,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
}

// ApplyStatus merges a poll response into the session. The workflow list is
// preserved when the report omits it; status and error message are taken
// verbatim from the service.
func (t *TestSession) ApplyStatus(report StatusReport, now time.Time) {
	t.State = report.Status
	t.ErrorMessage = report.ErrorMessage
	if len(report.Workflows) > 0 {
		t.Workflows = report.Workflows
	}
	if len(report.Steps) > 0 {
		t.Steps = report.Steps
	}
	t.UpdatedAt = now
}

// Fail forces the session into the failure terminal state.
func (t *TestSession) Fail(message string, now time.Time) {
	t.State = StatusFailed
	t.ErrorMessage = message
	t.UpdatedAt = now
}
