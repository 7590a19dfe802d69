// Package run implements the client-side session lifecycle: submit an
// instruction, resolve clarifications, kick off execution, and poll the
// orchestration service until the session reaches a terminal state.
package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// Service owns the single live test session. A new Submit replaces any
// previous session; poll responses from an abandoned session are fenced off
// by an epoch counter so they can never overwrite the current one.
type Service struct {
	Orchestrator ports.Orchestrator
	Poller       ports.Poller
	Prompter     ports.OptionPrompter
	History      ports.RunRepository
	Logger       ports.Logger
	Now          func() time.Time

	mu          sync.Mutex
	session     domain.TestSession
	question    *domain.ClarificationQuestion
	epoch       uint64
	instruction string
	cluster     domain.ClusterConfig
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Session returns a snapshot of the current session.
func (s *Service) Session() domain.TestSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// PendingClarification returns the open clarification question, if any.
func (s *Service) PendingClarification() *domain.ClarificationQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.question == nil {
		return nil
	}
	q := *s.question
	return &q
}

// Submit validates and submits an instruction, then drives the session as far
// as it can go. Validation failures leave the current session untouched and
// never reach the service. When the service raises a clarification and the
// prompter is interactive, the question is answered inline; otherwise the
// session is returned in needs_clarification for the caller to resolve.
func (s *Service) Submit(ctx context.Context, instruction string, cluster domain.ClusterConfig) (domain.TestSession, error) {
	if s.Orchestrator == nil || s.Poller == nil || s.Logger == nil {
		return domain.TestSession{}, errors.New("run.Service dependencies not satisfied")
	}

	if strings.TrimSpace(instruction) == "" {
		return s.Session(), domain.ErrEmptyInstruction
	}
	if err := cluster.Validate(); err != nil {
		return s.Session(), err
	}

	now := s.now()
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.instruction = instruction
	s.cluster = cluster
	s.question = nil
	s.session = domain.TestSession{
		State:     domain.StatusCreated,
		Command:   instruction,
		StartedAt: now,
		UpdatedAt: now,
	}
	s.mu.Unlock()

	s.Logger.Info("submitting instruction", map[string]interface{}{
		"cluster": cluster.IP,
	})

	result, err := s.Orchestrator.ParseInstructions(ctx, ports.ParseRequest{
		Prompt:  instruction,
		Cluster: cluster,
	})
	if err != nil {
		return s.fail(epoch, err), err
	}

	s.mu.Lock()
	s.session.SessionID = result.SessionID
	if len(result.Workflows) > 0 {
		s.session.Workflows = result.Workflows
	}
	s.mu.Unlock()

	if result.Clarification != nil {
		s.mu.Lock()
		s.session.State = domain.StatusNeedsClarification
		s.session.UpdatedAt = s.now()
		q := *result.Clarification
		s.question = &q
		s.mu.Unlock()

		if s.Prompter == nil || !s.Prompter.Enabled() {
			return s.Session(), nil
		}
		return s.resolveInteractively(ctx, *result.Clarification)
	}

	return s.execute(ctx, epoch)
}

func (s *Service) resolveInteractively(ctx context.Context, question domain.ClarificationQuestion) (domain.TestSession, error) {
	choice, skipped, err := s.Prompter.SelectOption(question)
	if err != nil {
		return s.Session(), err
	}
	if skipped {
		return s.SkipClarification(ctx)
	}
	return s.AnswerClarification(ctx, choice)
}

// AnswerClarification sends the chosen option and resumes the session.
func (s *Service) AnswerClarification(ctx context.Context, choice string) (domain.TestSession, error) {
	if strings.TrimSpace(choice) == "" {
		return s.Session(), domain.ErrNoOptionSelected
	}

	s.mu.Lock()
	if s.question == nil {
		s.mu.Unlock()
		return s.Session(), domain.ErrNoOpenClarification
	}
	question := *s.question
	sessionID := s.session.SessionID
	epoch := s.epoch
	s.session.State = domain.StatusParsing
	s.session.UpdatedAt = s.now()
	s.mu.Unlock()

	result, err := s.Orchestrator.ProvideClarification(ctx, sessionID, domain.ClarificationResponse{
		Type:   question.Type,
		Choice: choice,
	})
	if err != nil {
		return s.fail(epoch, err), err
	}

	s.finishClarification(epoch, result)
	return s.execute(ctx, epoch)
}

// SkipClarification asks the service to apply its default resolution and
// resumes the session with the workflow chain the service returns.
func (s *Service) SkipClarification(ctx context.Context) (domain.TestSession, error) {
	s.mu.Lock()
	if s.question == nil {
		s.mu.Unlock()
		return s.Session(), domain.ErrNoOpenClarification
	}
	sessionID := s.session.SessionID
	epoch := s.epoch
	s.session.State = domain.StatusParsing
	s.session.UpdatedAt = s.now()
	s.mu.Unlock()

	result, err := s.Orchestrator.SkipClarification(ctx, sessionID)
	if err != nil {
		return s.fail(epoch, err), err
	}

	s.finishClarification(epoch, result)
	return s.execute(ctx, epoch)
}

func (s *Service) finishClarification(epoch uint64, result ports.ClarificationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.question = nil
	if len(result.Workflows) > 0 {
		s.session.Workflows = result.Workflows
	}
	s.session.UpdatedAt = s.now()
}

func (s *Service) execute(ctx context.Context, epoch uint64) (domain.TestSession, error) {
	s.mu.Lock()
	sessionID := s.session.SessionID
	s.mu.Unlock()

	if err := s.Orchestrator.ExecuteTestPlan(ctx, sessionID); err != nil {
		return s.fail(epoch, err), err
	}

	s.mu.Lock()
	if epoch == s.epoch {
		s.session.State = domain.StatusExecuting
		s.session.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	err := s.Poller.Run(ctx, func(ctx context.Context) (bool, error) {
		report, err := s.Orchestrator.SessionStatus(ctx, sessionID)
		if err != nil {
			return false, err
		}
		return s.applyReport(epoch, report), nil
	})
	if err != nil {
		last := s.Session().State
		message := fmt.Sprintf("status polling failed: %v (last status %q)", err, last)
		session := s.fail(epoch, errors.New(message))
		return session, err
	}

	session := s.Session()
	s.record(session)
	return session, nil
}

// applyReport merges a poll response into the session and reports whether
// polling should stop. Reports from a superseded epoch are discarded.
func (s *Service) applyReport(epoch uint64, report domain.StatusReport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return true
	}
	s.session.ApplyStatus(report, s.now())
	return s.session.State.Terminal()
}

func (s *Service) fail(epoch uint64, cause error) domain.TestSession {
	s.mu.Lock()
	if epoch == s.epoch {
		s.session.Fail(cause.Error(), s.now())
	}
	session := s.session
	s.mu.Unlock()

	s.Logger.Error("session failed", cause, map[string]interface{}{
		"session_id": session.SessionID,
	})
	s.record(session)
	return session
}

func (s *Service) record(session domain.TestSession) {
	if s.History == nil || !session.State.Terminal() {
		return
	}

	passed := 0
	for _, step := range session.Steps {
		if step.Status == domain.StepPassed {
			passed++
		}
	}

	s.mu.Lock()
	instruction := s.instruction
	clusterIP := s.cluster.IP
	s.mu.Unlock()

	record := domain.RunRecord{
		Timestamp:   session.StartedAt,
		SessionID:   session.SessionID,
		Instruction: instruction,
		ClusterIP:   clusterIP,
		Workflows:   strings.Join(session.Workflows, ","),
		Status:      session.State,
		ErrorMsg:    session.ErrorMessage,
		StepsTotal:  len(session.Steps),
		StepsPassed: passed,
		DurationMS:  session.UpdatedAt.Sub(session.StartedAt).Milliseconds(),
	}
	if err := s.History.Save(record); err != nil {
		s.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
	}
}

// Status fetches the latest report for the current session without waiting
// for the poll loop, for the status command.
func (s *Service) Status(ctx context.Context) (domain.StatusReport, error) {
	s.mu.Lock()
	sessionID := s.session.SessionID
	s.mu.Unlock()

	if sessionID == "" {
		return domain.StatusReport{}, domain.ErrSessionNotFound
	}
	return s.Orchestrator.SessionStatus(ctx, sessionID)
}
