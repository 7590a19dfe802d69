package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/infrastructure/sessions"
	"github.com/catalystqa/e2eagent/internal/ports"
)

type stubParser struct {
	workflows  []string
	parameters map[string]string
}

func (p *stubParser) Parse(string, domain.ClusterConfig) ([]string, map[string]string, ports.InstructionAnalysis) {
	return p.workflows, p.parameters, ports.InstructionAnalysis{SuggestedPrimary: p.workflows[0]}
}

func (p *stubParser) Analyze(string) ports.InstructionAnalysis {
	return ports.InstructionAnalysis{Confidence: 0.9}
}

type stubResolver struct {
	plan        domain.ExecutionPlan
	clarified   domain.ExecutionPlan
	resolveErr  error
	lastAnswer  domain.ClarificationResponse
	clarifyHits int
}

func (r *stubResolver) Resolve(sessionID string, primary []string, parameters map[string]string, _ domain.ClusterConfig) (domain.ExecutionPlan, error) {
	if r.resolveErr != nil {
		return domain.ExecutionPlan{}, r.resolveErr
	}
	plan := r.plan
	plan.SessionID = sessionID
	plan.PrimaryWorkflows = primary
	plan.Parameters = parameters
	return plan, nil
}

func (r *stubResolver) ProcessClarification(sessionID string, answer domain.ClarificationResponse, _ []string, parameters map[string]string, _ domain.ClusterConfig) (domain.ExecutionPlan, error) {
	r.clarifyHits++
	r.lastAnswer = answer
	plan := r.clarified
	plan.SessionID = sessionID
	if plan.Parameters == nil {
		plan.Parameters = parameters
	}
	return plan, nil
}

func (r *stubResolver) EstimateDuration(workflows []string) int {
	return len(workflows) * 60
}

type stubExecutor struct {
	mu       sync.Mutex
	executed []string
}

func (e *stubExecutor) Execute(_ context.Context, sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, sessionID)
}

func (e *stubExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

func newService(resolver *stubResolver) (*Service, *sessions.Manager, *stubExecutor) {
	store := sessions.NewManager(time.Hour, nil)
	executor := &stubExecutor{}
	svc := &Service{
		Parser:   &stubParser{workflows: []string{domain.WorkflowL3VNManagement}, parameters: map[string]string{}},
		Resolver: resolver,
		Store:    store,
		Executor: executor,
		Logger:   nopLogger{},
		NewID:    func() string { return "sess-1" },
	}
	return svc, store, executor
}

func TestParseStoresResolvedChain(t *testing.T) {
	resolver := &stubResolver{plan: domain.ExecutionPlan{
		Chain:             []string{domain.WorkflowLoginFlow, domain.WorkflowL3VNManagement},
		EstimatedDuration: 150,
	}}
	svc, store, _ := newService(resolver)

	outcome, err := svc.Parse(ParseCommand{Prompt: "configure l3vn", URL: "https://10.0.0.5", Username: "admin"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if outcome.Status != domain.StatusParsed {
		t.Errorf("Status = %q, want parsed", outcome.Status)
	}
	if outcome.EstimatedDuration != 150 {
		t.Errorf("EstimatedDuration = %d", outcome.EstimatedDuration)
	}

	record, err := store.Get("sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []string{domain.WorkflowLoginFlow, domain.WorkflowL3VNManagement}
	if diff := cmp.Diff(want, record.Workflows); diff != "" {
		t.Errorf("stored workflows mismatch (-want +got):\n%s", diff)
	}
	if record.Status != domain.StatusParsed {
		t.Errorf("stored status = %q", record.Status)
	}
}

func TestParseRejectsEmptyPrompt(t *testing.T) {
	svc, _, _ := newService(&stubResolver{})

	_, err := svc.Parse(ParseCommand{Prompt: "   "})
	if !errors.Is(err, domain.ErrEmptyInstruction) {
		t.Fatalf("Parse() error = %v, want ErrEmptyInstruction", err)
	}
}

func clarificationPlan() domain.ExecutionPlan {
	return domain.ExecutionPlan{
		RequiresClarification: true,
		Question: &domain.ClarificationQuestion{
			Type:    domain.ClarificationFabricSelection,
			Message: "Which fabric do you want to use for this workflow?",
			Options: []domain.ClarificationOption{
				{Value: "existing_fab-7", Label: "Use existing fabric: Campus"},
				{Value: domain.DefaultChoice, Label: "Create new fabric"},
			},
		},
	}
}

func TestParseKeepsPrimariesWhenClarificationNeeded(t *testing.T) {
	resolver := &stubResolver{plan: clarificationPlan()}
	svc, store, _ := newService(resolver)

	outcome, err := svc.Parse(ParseCommand{Prompt: "configure l3vn"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if outcome.Status != domain.StatusNeedsClarification {
		t.Errorf("Status = %q, want needs_clarification", outcome.Status)
	}
	if outcome.Clarification == nil {
		t.Fatal("Clarification = nil")
	}

	record, _ := store.Get("sess-1")
	if record.Status != domain.StatusNeedsClarification || record.Clarification == nil {
		t.Errorf("record = %+v, want pending question stored", record)
	}
	want := []string{domain.WorkflowL3VNManagement}
	if diff := cmp.Diff(want, record.Workflows); diff != "" {
		t.Errorf("primaries mismatch (-want +got):\n%s", diff)
	}
}

func TestProvideClarificationResolvesAndStores(t *testing.T) {
	resolver := &stubResolver{
		plan: clarificationPlan(),
		clarified: domain.ExecutionPlan{
			Chain:      []string{domain.WorkflowLoginFlow, domain.WorkflowL3VNManagement},
			Parameters: map[string]string{"fabric_id": "fab-7"},
		},
	}
	svc, store, _ := newService(resolver)
	if _, err := svc.Parse(ParseCommand{Prompt: "configure l3vn"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	outcome, err := svc.ProvideClarification("sess-1", domain.ClarificationResponse{
		Type:   domain.ClarificationFabricSelection,
		Choice: "existing_fab-7",
	})
	if err != nil {
		t.Fatalf("ProvideClarification() error = %v", err)
	}
	if outcome.Status != "clarification_resolved" {
		t.Errorf("Status = %q", outcome.Status)
	}

	record, _ := store.Get("sess-1")
	if record.Status != domain.StatusParsed {
		t.Errorf("stored status = %q, want parsed", record.Status)
	}
	if record.Clarification != nil {
		t.Error("Clarification still stored after resolution")
	}
	if record.Parameters["fabric_id"] != "fab-7" {
		t.Errorf("parameters = %v, want fabric_id merged", record.Parameters)
	}
}

func TestProvideClarificationRejectsWrongState(t *testing.T) {
	resolver := &stubResolver{plan: domain.ExecutionPlan{Chain: []string{domain.WorkflowLoginFlow}}}
	svc, _, _ := newService(resolver)
	if _, err := svc.Parse(ParseCommand{Prompt: "login"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	_, err := svc.ProvideClarification("sess-1", domain.ClarificationResponse{Choice: "create_new"})
	if !errors.Is(err, domain.ErrNotAwaitingClarification) {
		t.Fatalf("error = %v, want ErrNotAwaitingClarification", err)
	}
}

func TestProvideClarificationRejectsEmptyChoice(t *testing.T) {
	svc, _, _ := newService(&stubResolver{})

	_, err := svc.ProvideClarification("sess-1", domain.ClarificationResponse{})
	if !errors.Is(err, domain.ErrNoOptionSelected) {
		t.Fatalf("error = %v, want ErrNoOptionSelected", err)
	}
}

func TestSkipClarificationUsesDefaultChoice(t *testing.T) {
	resolver := &stubResolver{
		plan: clarificationPlan(),
		clarified: domain.ExecutionPlan{
			Chain: []string{domain.WorkflowLoginFlow, domain.WorkflowFabricCreation, domain.WorkflowL3VNManagement},
		},
	}
	svc, _, _ := newService(resolver)
	if _, err := svc.Parse(ParseCommand{Prompt: "configure l3vn"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	outcome, err := svc.SkipClarification("sess-1")
	if err != nil {
		t.Fatalf("SkipClarification() error = %v", err)
	}
	if resolver.lastAnswer.Choice != domain.DefaultChoice {
		t.Errorf("choice = %q, want create_new", resolver.lastAnswer.Choice)
	}
	if outcome.Status != "clarification_skipped" {
		t.Errorf("Status = %q", outcome.Status)
	}
	if len(outcome.Workflows) != 3 {
		t.Errorf("Workflows = %v, want full creation chain", outcome.Workflows)
	}
}

func TestExecuteRejectsPendingClarification(t *testing.T) {
	resolver := &stubResolver{plan: clarificationPlan()}
	svc, _, executor := newService(resolver)
	if _, err := svc.Parse(ParseCommand{Prompt: "configure l3vn"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	_, err := svc.Execute(context.Background(), "sess-1")
	if !errors.Is(err, domain.ErrSessionNotReady) {
		t.Fatalf("Execute() error = %v, want ErrSessionNotReady", err)
	}
	if executor.count() != 0 {
		t.Error("executor launched for an unready session")
	}
}

func TestExecuteLaunchesBackgroundRun(t *testing.T) {
	resolver := &stubResolver{plan: domain.ExecutionPlan{Chain: []string{domain.WorkflowLoginFlow}}}
	svc, _, executor := newService(resolver)
	if _, err := svc.Parse(ParseCommand{Prompt: "login"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	outcome, err := svc.Execute(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.WorkflowCount != 1 {
		t.Errorf("WorkflowCount = %d", outcome.WorkflowCount)
	}

	deadline := time.After(time.Second)
	for executor.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("executor never launched")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestExecuteUnknownSession(t *testing.T) {
	svc, _, _ := newService(&stubResolver{})

	_, err := svc.Execute(context.Background(), "missing")
	if !NotFound(err) {
		t.Fatalf("Execute() error = %v, want not-found", err)
	}
}

func TestStatusMirrorsSessionRecord(t *testing.T) {
	resolver := &stubResolver{plan: domain.ExecutionPlan{Chain: []string{domain.WorkflowLoginFlow}}}
	svc, store, _ := newService(resolver)
	if _, err := svc.Parse(ParseCommand{Prompt: "login"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	store.Update("sess-1", func(r *domain.SessionRecord) {
		r.Status = domain.StatusExecuting
		r.Progress = 60
		r.CurrentWorkflow = domain.WorkflowLoginFlow
	})

	report, err := svc.Status("sess-1")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if report.Status != domain.StatusExecuting || report.Progress != 60 {
		t.Errorf("report = %+v", report)
	}
	if report.CurrentWorkflow != domain.WorkflowLoginFlow {
		t.Errorf("CurrentWorkflow = %q", report.CurrentWorkflow)
	}
}
