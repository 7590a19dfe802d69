// Package orchestration is the service-side application core: it wires the
// instruction parser, workflow resolver, session store and executor into the
// operations the HTTP handlers expose.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// Executor launches the background execution of a parsed session.
type Executor interface {
	Execute(ctx context.Context, sessionID string)
}

// Service orchestrates the session lifecycle on the server side.
type Service struct {
	Parser   ports.InstructionParser
	Resolver ports.WorkflowResolver
	Store    ports.SessionStore
	Registry ports.TemplateRegistry
	Executor Executor
	Logger   ports.Logger
	NewID    func() string
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// ParseCommand is the input of Parse.
type ParseCommand struct {
	Prompt   string
	URL      string
	Username string
	Password string
}

// ParseOutcome reports either a resolved chain or a pending clarification.
type ParseOutcome struct {
	SessionID         string
	Status            domain.Status
	Workflows         []string
	Parameters        map[string]string
	EstimatedDuration int
	Clarification     *domain.ClarificationQuestion
	Message           string
}

// Parse creates a session for the instruction, resolves its workflow chain
// and stores the result. A clarification leaves the session in
// needs_clarification with the primary workflows kept for re-resolution.
func (s *Service) Parse(cmd ParseCommand) (ParseOutcome, error) {
	if strings.TrimSpace(cmd.Prompt) == "" {
		return ParseOutcome{}, domain.ErrEmptyInstruction
	}

	sessionID := s.newID()
	cluster := domain.ClusterConfig{
		URL:      cmd.URL,
		Username: cmd.Username,
		Password: cmd.Password,
	}

	workflows, parameters, _ := s.Parser.Parse(cmd.Prompt, cluster)
	plan, err := s.Resolver.Resolve(sessionID, workflows, parameters, cluster)
	if err != nil {
		return ParseOutcome{}, err
	}

	record := domain.SessionRecord{
		ID:          sessionID,
		Instruction: cmd.Prompt,
		Parameters:  parameters,
		Cluster:     cluster,
	}

	if plan.RequiresClarification {
		record.Workflows = plan.PrimaryWorkflows
		record.Status = domain.StatusNeedsClarification
		record.Clarification = plan.Question
		s.Store.Create(record)

		s.Logger.Info("clarification required", map[string]interface{}{
			"session_id": sessionID,
			"type":       string(plan.Question.Type),
		})
		return ParseOutcome{
			SessionID:     sessionID,
			Status:        domain.StatusNeedsClarification,
			Workflows:     plan.PrimaryWorkflows,
			Parameters:    parameters,
			Clarification: plan.Question,
			Message:       "User clarification required before proceeding",
		}, nil
	}

	record.Workflows = plan.Chain
	record.Status = domain.StatusParsed
	s.Store.Create(record)

	s.Logger.Info("instruction parsed", map[string]interface{}{
		"session_id": sessionID,
		"workflows":  plan.Chain,
	})
	return ParseOutcome{
		SessionID:         sessionID,
		Status:            domain.StatusParsed,
		Workflows:         plan.Chain,
		Parameters:        plan.Parameters,
		EstimatedDuration: plan.EstimatedDuration,
		Message:           fmt.Sprintf("Identified %d workflow(s) to execute", len(plan.Chain)),
	}, nil
}

// ClarifyOutcome reports the chain after a clarification round.
type ClarifyOutcome struct {
	SessionID     string
	Status        string
	Workflows     []string
	Parameters    map[string]string
	Clarification *domain.ClarificationQuestion
	Message       string
}

// ProvideClarification applies the user's answer and re-resolves the chain.
func (s *Service) ProvideClarification(sessionID string, answer domain.ClarificationResponse) (ClarifyOutcome, error) {
	if strings.TrimSpace(answer.Choice) == "" {
		return ClarifyOutcome{}, domain.ErrNoOptionSelected
	}

	record, err := s.Store.Get(sessionID)
	if err != nil {
		return ClarifyOutcome{}, err
	}
	if record.Status != domain.StatusNeedsClarification {
		return ClarifyOutcome{}, fmt.Errorf("%w: current status %q", domain.ErrNotAwaitingClarification, record.Status)
	}

	plan, err := s.Resolver.ProcessClarification(sessionID, answer, record.Workflows, record.Parameters, record.Cluster)
	if err != nil {
		return ClarifyOutcome{}, err
	}

	if plan.RequiresClarification {
		s.Store.Update(sessionID, func(r *domain.SessionRecord) {
			r.Clarification = plan.Question
		})
		return ClarifyOutcome{
			SessionID:     sessionID,
			Status:        "needs_more_clarification",
			Clarification: plan.Question,
			Message:       "Additional clarification required",
		}, nil
	}

	err = s.Store.Update(sessionID, func(r *domain.SessionRecord) {
		r.Status = domain.StatusParsed
		r.Workflows = plan.Chain
		r.Clarification = nil
		for k, v := range plan.Parameters {
			r.Parameters[k] = v
		}
	})
	if err != nil {
		return ClarifyOutcome{}, err
	}

	s.Logger.Info("clarification processed", map[string]interface{}{
		"session_id": sessionID,
		"workflows":  plan.Chain,
	})
	return ClarifyOutcome{
		SessionID:  sessionID,
		Status:     "clarification_resolved",
		Workflows:  plan.Chain,
		Parameters: plan.Parameters,
		Message:    fmt.Sprintf("Clarification processed successfully. %d workflows ready for execution.", len(plan.Chain)),
	}, nil
}

// SkipClarification resolves the pending question with the default choice.
func (s *Service) SkipClarification(sessionID string) (ClarifyOutcome, error) {
	record, err := s.Store.Get(sessionID)
	if err != nil {
		return ClarifyOutcome{}, err
	}
	if record.Status != domain.StatusNeedsClarification {
		return ClarifyOutcome{}, fmt.Errorf("%w: current status %q", domain.ErrNotAwaitingClarification, record.Status)
	}

	answerType := domain.ClarificationFabricSelection
	if record.Clarification != nil {
		answerType = record.Clarification.Type
	}
	outcome, err := s.ProvideClarification(sessionID, domain.ClarificationResponse{
		Type:   answerType,
		Choice: domain.DefaultChoice,
	})
	if err != nil {
		return ClarifyOutcome{}, err
	}
	outcome.Status = "clarification_skipped"
	outcome.Message = "Proceeded with default choices (create new resources)"
	return outcome, nil
}

// ExecuteOutcome describes a started execution.
type ExecuteOutcome struct {
	SessionID         string
	WorkflowCount     int
	EstimatedDuration int
}

// Execute validates the session and launches its background execution.
func (s *Service) Execute(ctx context.Context, sessionID string) (ExecuteOutcome, error) {
	record, err := s.Store.Get(sessionID)
	if err != nil {
		return ExecuteOutcome{}, err
	}
	switch record.Status {
	case domain.StatusParsed, domain.StatusCreated:
	case domain.StatusNeedsClarification:
		return ExecuteOutcome{}, fmt.Errorf("%w: session requires clarification", domain.ErrSessionNotReady)
	default:
		return ExecuteOutcome{}, fmt.Errorf("%w: current status %q", domain.ErrSessionNotReady, record.Status)
	}
	if len(record.Workflows) == 0 {
		return ExecuteOutcome{}, domain.ErrNoWorkflows
	}

	go s.Executor.Execute(context.WithoutCancel(ctx), sessionID)

	return ExecuteOutcome{
		SessionID:         sessionID,
		WorkflowCount:     len(record.Workflows),
		EstimatedDuration: s.Resolver.EstimateDuration(record.Workflows),
	}, nil
}

// Status builds the poll response for a session.
func (s *Service) Status(sessionID string) (domain.StatusReport, error) {
	record, err := s.Store.Get(sessionID)
	if err != nil {
		return domain.StatusReport{}, err
	}
	return domain.StatusReport{
		SessionID:       record.ID,
		Status:          record.Status,
		Workflows:       record.Workflows,
		CurrentWorkflow: record.CurrentWorkflow,
		Progress:        record.Progress,
		Steps:           record.Steps,
		ErrorMessage:    record.ErrorMessage,
	}, nil
}

// Analyze scores an instruction without creating a session.
func (s *Service) Analyze(instruction string) (ports.InstructionAnalysis, error) {
	if strings.TrimSpace(instruction) == "" {
		return ports.InstructionAnalysis{}, domain.ErrEmptyInstruction
	}
	return s.Parser.Analyze(instruction), nil
}

// ActiveSessions lists unexpired sessions.
func (s *Service) ActiveSessions() []domain.SessionRecord {
	return s.Store.ListActive()
}

// ClarificationStatus reports whether a session has a pending question.
func (s *Service) ClarificationStatus(sessionID string) (domain.SessionRecord, bool, error) {
	record, err := s.Store.Get(sessionID)
	if err != nil {
		return domain.SessionRecord{}, false, err
	}
	pending := record.Status == domain.StatusNeedsClarification && record.Clarification != nil
	return record, pending, nil
}

// NotFound reports whether err maps to a missing session.
func NotFound(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired)
}
