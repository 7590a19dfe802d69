// Package executor drives a session's workflow chain through its execution
// phases: loading_templates, generating, executing, and finally completed or
// failed. Step results and progress are written back to the session store
// after every step so status polls always see fresh state.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// Engine executes sessions with bounded concurrency.
type Engine struct {
	store    ports.SessionStore
	registry ports.TemplateRegistry
	runner   ports.Runner
	logger   ports.Logger
	now      func() time.Time
	sem      chan struct{}
}

// NewEngine builds an engine. maxConcurrent bounds simultaneous executions;
// non-positive falls back to the default of 5.
func NewEngine(store ports.SessionStore, registry ports.TemplateRegistry, runner ports.Runner, logger ports.Logger, maxConcurrent int) *Engine {
	if maxConcurrent <= 0 {
		maxConcurrent = domain.DefaultMaxConcurrentExecutions
	}
	return &Engine{
		store:    store,
		registry: registry,
		runner:   runner,
		logger:   logger,
		now:      time.Now,
		sem:      make(chan struct{}, maxConcurrent),
	}
}

type plannedStep struct {
	id       string
	workflow string
	testCase string
	text     string
}

// Execute runs the session to a terminal state. It blocks while the
// concurrency limit is saturated, so callers usually run it in a goroutine.
func (e *Engine) Execute(ctx context.Context, sessionID string) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		e.failSession(sessionID, ctx.Err().Error())
		return
	}
	defer func() { <-e.sem }()

	session, err := e.store.Get(sessionID)
	if err != nil {
		e.logger.Error("execution aborted", err, map[string]interface{}{"session_id": sessionID})
		return
	}
	if len(session.Workflows) == 0 {
		e.failSession(sessionID, domain.ErrNoWorkflows.Error())
		return
	}

	e.logger.Info("starting workflow execution", map[string]interface{}{
		"session_id": sessionID,
		"workflows":  session.Workflows,
	})

	e.setStatus(sessionID, domain.StatusLoadingTemplates)
	loaded := make(map[string]domain.Template, len(session.Workflows))
	for _, name := range session.Workflows {
		tmpl, err := e.registry.Template(name)
		if err != nil {
			e.failSession(sessionID, err.Error())
			return
		}
		loaded[name] = tmpl
	}

	e.setStatus(sessionID, domain.StatusGenerating)
	plan := e.generate(session, loaded)

	e.setStatus(sessionID, domain.StatusExecuting)
	e.run(ctx, sessionID, session.Cluster, plan)
}

// generate customizes each template with the session parameters and flattens
// the test cases into an ordered step plan.
func (e *Engine) generate(session domain.SessionRecord, loaded map[string]domain.Template) []plannedStep {
	var plan []plannedStep
	for _, name := range session.Workflows {
		tmpl := loaded[name]
		stepIndex := 0
		for _, testCase := range tmpl.TestCases {
			for _, step := range testCase.Steps {
				stepIndex++
				plan = append(plan, plannedStep{
					id:       fmt.Sprintf("%s-%d", name, stepIndex),
					workflow: name,
					testCase: testCase.Name,
					text:     e.registry.Customize(step, session.Parameters),
				})
			}
		}
	}
	return plan
}

func (e *Engine) run(ctx context.Context, sessionID string, cluster domain.ClusterConfig, plan []plannedStep) {
	total := len(plan)
	if total == 0 {
		e.failSession(sessionID, "workflow templates contain no test steps")
		return
	}

	for i, step := range plan {
		err := e.runner.RunStep(ctx, ports.StepRequest{
			Workflow: step.workflow,
			TestCase: step.testCase,
			Step:     step.text,
			Cluster:  cluster,
		})

		result := domain.ExecutionStep{
			StepID:    step.id,
			Workflow:  step.workflow,
			TDDStep:   step.text,
			Status:    domain.StepPassed,
			Timestamp: e.now().UTC().Format(time.RFC3339),
		}
		if err != nil {
			result.Status = domain.StepFailed
			result.ErrorDetails = err.Error()
		}

		progress := (i + 1) * 100 / total
		updateErr := e.store.Update(sessionID, func(r *domain.SessionRecord) {
			r.Steps = append(r.Steps, result)
			r.CurrentWorkflow = step.workflow
			r.Progress = progress
		})
		if updateErr != nil {
			e.logger.Error("step result dropped", updateErr, map[string]interface{}{
				"session_id": sessionID,
				"step_id":    step.id,
			})
			return
		}

		if err != nil {
			e.skipRemaining(sessionID, plan[i+1:])
			e.failSession(sessionID, fmt.Sprintf("step %s failed: %v", step.id, err))
			return
		}
	}

	e.store.Update(sessionID, func(r *domain.SessionRecord) {
		r.Status = domain.StatusCompleted
		r.Progress = 100
		r.CurrentWorkflow = ""
	})
	e.logger.Info("workflow execution completed", map[string]interface{}{
		"session_id": sessionID,
		"steps":      total,
	})
}

func (e *Engine) skipRemaining(sessionID string, remaining []plannedStep) {
	if len(remaining) == 0 {
		return
	}
	timestamp := e.now().UTC().Format(time.RFC3339)
	e.store.Update(sessionID, func(r *domain.SessionRecord) {
		for _, step := range remaining {
			r.Steps = append(r.Steps, domain.ExecutionStep{
				StepID:    step.id,
				Workflow:  step.workflow,
				TDDStep:   step.text,
				Status:    domain.StepSkipped,
				Timestamp: timestamp,
			})
		}
	})
}

func (e *Engine) setStatus(sessionID string, status domain.Status) {
	if err := e.store.Update(sessionID, func(r *domain.SessionRecord) {
		r.Status = status
	}); err != nil {
		e.logger.Warn("status update failed", map[string]interface{}{
			"session_id": sessionID,
			"status":     string(status),
			"error":      err.Error(),
		})
	}
}

func (e *Engine) failSession(sessionID, message string) {
	e.store.Update(sessionID, func(r *domain.SessionRecord) {
		r.Status = domain.StatusFailed
		r.ErrorMessage = message
	})
	e.logger.Error("workflow execution failed", fmt.Errorf("%s", message), map[string]interface{}{
		"session_id": sessionID,
	})
}
