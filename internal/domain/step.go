package domain

// StepStatus is the outcome of one executed test step.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// ExecutionStep is one reported unit of test execution, correlated to a
// workflow and a TDD step label. Steps are appended by the executor and
// surfaced to the client through status reports.
type ExecutionStep struct {
	StepID       string     `json:"step_id"`
	Workflow     string     `json:"workflow"`
	TDDStep      string     `json:"tdd_step"`
	Status       StepStatus `json:"status"`
	Timestamp    string     `json:"timestamp"`
	ErrorDetails string     `json:"error_details,omitempty"`
}
