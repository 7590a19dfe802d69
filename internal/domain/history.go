package domain

import "time"

// RunRecord captures the outcome of one finished client run for history.
type RunRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id"`
	Instruction string    `json:"instruction"`
	ClusterIP   string    `json:"cluster_ip"`
	Workflows   string    `json:"workflows"`
	Status      Status    `json:"status"`
	ErrorMsg    string    `json:"error_message,omitempty"`
	StepsTotal  int       `json:"steps_total"`
	StepsPassed int       `json:"steps_passed"`
	DurationMS  int64     `json:"duration_ms"`
}
