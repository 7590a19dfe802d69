// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces allow the application to remain
// independent of specific implementations like HTTP transports, databases,
// or CLI frameworks.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Orchestrator, SessionStore)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/catalystqa/e2eagent/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.e2eagent/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ParseRequest carries an instruction and cluster credentials to the service.
type ParseRequest struct {
	Prompt  string
	Cluster domain.ClusterConfig
}

// ParseResult is the service's answer to a parse request: either a resolved
// workflow chain or a clarification question that must be answered first.
type ParseResult struct {
	SessionID         string
	Status            domain.Status
	Workflows         []string
	Parameters        map[string]string
	EstimatedDuration int
	Clarification     *domain.ClarificationQuestion
	Message           string
}

// ClarificationResult is the service's answer after a clarification is
// provided or skipped: the updated workflow chain to execute.
type ClarificationResult struct {
	Status    string
	Workflows []string
	Message   string
}

// Orchestrator is the client-side view of the Test Orchestration Service.
// Each method maps to one HTTP call; implementations surface non-2xx
// responses as errors carrying the HTTP status text.
type Orchestrator interface {
	ParseInstructions(ctx context.Context, req ParseRequest) (ParseResult, error)
	ProvideClarification(ctx context.Context, sessionID string, answer domain.ClarificationResponse) (ClarificationResult, error)
	SkipClarification(ctx context.Context, sessionID string) (ClarificationResult, error)
	ExecuteTestPlan(ctx context.Context, sessionID string) error
	SessionStatus(ctx context.Context, sessionID string) (domain.StatusReport, error)
}

// Poller drives a repeating status check with a hard time ceiling.
// Run blocks until the tick function reports stop, the ceiling expires,
// the tick returns an error, or the context is canceled. The ceiling case
// is reported as an error so callers can distinguish it from a clean stop.
type Poller interface {
	Run(ctx context.Context, tick func(ctx context.Context) (stop bool, err error)) error
}

// OptionPrompter asks the user to choose a clarification option.
// A skipped=true return means the user declined to choose and wants the
// service to apply its default resolution.
type OptionPrompter interface {
	SelectOption(question domain.ClarificationQuestion) (choice string, skipped bool, err error)
	Enabled() bool
}

// RunRepository persists finished run records for the history command.
type RunRepository interface {
	Save(record domain.RunRecord) error
	Records(limit int, search string) ([]domain.RunRecord, error)
	Clear() error
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}

// InstructionAnalysis is the parser's scoring breakdown, kept for the
// analyze endpoint and for debugging.
type InstructionAnalysis struct {
	WorkflowScores     map[string]WorkflowScore
	DetectedParameters map[string]string
	Complexity         ComplexityReport
	Confidence         float64
	SuggestedPrimary   string
	MissingCommon      []string
}

// WorkflowScore explains how one workflow matched the instruction.
type WorkflowScore struct {
	Score           float64
	MatchedKeywords []string
	PatternBoost    float64
}

// ComplexityReport summarizes instruction complexity.
type ComplexityReport struct {
	WordCount      int
	ActionCount    int
	Level          string
	EstimatedSteps int
}

// InstructionParser turns a natural-language instruction into candidate
// workflows and extracted parameters.
type InstructionParser interface {
	Parse(instruction string, cluster domain.ClusterConfig) (workflows []string, parameters map[string]string, analysis InstructionAnalysis)
	Analyze(instruction string) InstructionAnalysis
}

// TemplateRegistry owns the TDD templates and their dependency graph.
type TemplateRegistry interface {
	Template(name string) (domain.Template, error)
	List() []domain.Template
	Dependencies(name string) []string
	Metadata(name string) (domain.WorkflowMetadata, bool)
	Customize(content string, parameters map[string]string) string
	Close() error
}

// WorkflowResolver resolves a workflow chain, detecting clarifications and
// ordering dependencies.
type WorkflowResolver interface {
	Resolve(sessionID string, primary []string, parameters map[string]string, cluster domain.ClusterConfig) (domain.ExecutionPlan, error)
	ProcessClarification(sessionID string, answer domain.ClarificationResponse, workflows []string, parameters map[string]string, cluster domain.ClusterConfig) (domain.ExecutionPlan, error)
	EstimateDuration(workflows []string) int
}

// SessionStore keeps service-side session records. Get returns a snapshot
// copy; Update applies the mutation under the store's lock so concurrent
// executor and handler writes never interleave.
type SessionStore interface {
	Create(record domain.SessionRecord)
	Get(id string) (domain.SessionRecord, error)
	Update(id string, mutate func(*domain.SessionRecord)) error
	ListActive() []domain.SessionRecord
	CleanupExpired() int
}

// StepRequest identifies one TDD step to run against a cluster.
type StepRequest struct {
	Workflow string
	TestCase string
	Step     string
	Cluster  domain.ClusterConfig
}

// Runner executes a single test step. The shipped implementation simulates
// execution; a real browser-automation runner would satisfy the same port.
type Runner interface {
	RunStep(ctx context.Context, req StepRequest) error
}

// Inventory reports resources already present on the target cluster, used
// to decide whether a clarification question is needed.
type Inventory interface {
	Fabrics(cluster domain.ClusterConfig) []domain.Fabric
}
