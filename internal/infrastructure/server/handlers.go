package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/catalystqa/e2eagent/internal/application/orchestration"
	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

type handlers struct {
	svc     *orchestration.Service
	logger  ports.Logger
	started time.Time
}

type parseRequest struct {
	Prompt   string `json:"prompt"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type clarificationRequest struct {
	SessionID string                       `json:"session_id" binding:"required"`
	Response  domain.ClarificationResponse `json:"clarification_response"`
}

type analyzeRequest struct {
	Instruction string `json:"instruction"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).String(),
	})
}

func (h *handlers) parseInstructions(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	outcome, err := h.svc.Parse(orchestration.ParseCommand{
		Prompt:   req.Prompt,
		URL:      req.URL,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error("parse failed", err, map[string]interface{}{})
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to parse instructions: " + err.Error()})
		return
	}

	if outcome.Clarification != nil {
		c.JSON(http.StatusOK, gin.H{
			"session_id":           outcome.SessionID,
			"status":               outcome.Status,
			"message":              outcome.Message,
			"clarification":        outcome.Clarification,
			"detected_workflows":   outcome.Workflows,
			"extracted_parameters": outcome.Parameters,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":         outcome.SessionID,
		"status":             outcome.Status,
		"workflows":          outcome.Workflows,
		"parameters":         outcome.Parameters,
		"estimated_duration": outcome.EstimatedDuration,
		"message":            outcome.Message,
	})
}

func (h *handlers) executeTestPlan(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	outcome, err := h.svc.Execute(c.Request.Context(), req.SessionID)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":         outcome.SessionID,
		"status":             "started",
		"workflows_count":    outcome.WorkflowCount,
		"estimated_duration": outcome.EstimatedDuration,
	})
}

func (h *handlers) sessionStatus(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	report, err := h.svc.Status(req.SessionID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handlers) analyzeInstruction(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	analysis, err := h.svc.Analyze(req.Instruction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	scores := make(gin.H, len(analysis.WorkflowScores))
	for name, ws := range analysis.WorkflowScores {
		scores[name] = gin.H{
			"score":            ws.Score,
			"matched_keywords": ws.MatchedKeywords,
			"pattern_boost":    ws.PatternBoost,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"workflow_scores":            scores,
		"detected_parameters":        analysis.DetectedParameters,
		"analysis_confidence":        analysis.Confidence,
		"suggested_primary_workflow": analysis.SuggestedPrimary,
		"missing_common_parameters":  analysis.MissingCommon,
		"instruction_complexity": gin.H{
			"word_count":       analysis.Complexity.WordCount,
			"action_count":     analysis.Complexity.ActionCount,
			"complexity_level": analysis.Complexity.Level,
			"estimated_steps":  analysis.Complexity.EstimatedSteps,
		},
	})
}

func (h *handlers) listActiveSessions(c *gin.Context) {
	records := h.svc.ActiveSessions()
	out := make([]gin.H, 0, len(records))
	for _, record := range records {
		out = append(out, gin.H{
			"session_id": record.ID,
			"status":     record.Status,
			"workflows":  record.Workflows,
			"progress":   record.Progress,
			"created_at": record.CreatedAt.UTC().Format(time.RFC3339),
			"updated_at": record.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out, "total": len(out)})
}

func (h *handlers) listTemplates(c *gin.Context) {
	templates := h.svc.Registry.List()
	out := make([]gin.H, 0, len(templates))
	for _, tmpl := range templates {
		out = append(out, gin.H{
			"name":                     tmpl.Name,
			"workflow_type":            tmpl.Type,
			"dependencies":             tmpl.Metadata.Dependencies,
			"can_run_standalone":       tmpl.Metadata.CanRunStandalone,
			"requires_existing_fabric": tmpl.Metadata.RequiresExistingFabric,
			"estimated_duration":       tmpl.Metadata.EstimatedDuration,
			"test_cases":               len(tmpl.TestCases),
			"parameters":               tmpl.Parameters,
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out, "total": len(out)})
}

func (h *handlers) workflowDependencies(c *gin.Context) {
	graph := make(gin.H)
	for _, tmpl := range h.svc.Registry.List() {
		deps := tmpl.Metadata.Dependencies
		if deps == nil {
			deps = []string{}
		}
		graph[tmpl.Name] = deps
	}
	c.JSON(http.StatusOK, gin.H{"dependencies": graph})
}

func (h *handlers) provideClarification(c *gin.Context) {
	var req clarificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	outcome, err := h.svc.ProvideClarification(req.SessionID, req.Response)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":         outcome.SessionID,
		"status":             outcome.Status,
		"message":            outcome.Message,
		"updated_workflows":  outcome.Workflows,
		"updated_parameters": outcome.Parameters,
		"clarification":      outcome.Clarification,
	})
}

func (h *handlers) clarificationStatus(c *gin.Context) {
	record, pending, err := h.svc.ClarificationStatus(c.Param("session_id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	resp := gin.H{
		"session_id":           record.ID,
		"status":               record.Status,
		"has_pending_question": pending,
	}
	if pending {
		resp["question"] = record.Clarification
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) skipClarification(c *gin.Context) {
	outcome, err := h.svc.SkipClarification(c.Param("session_id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": outcome.SessionID,
		"status":     outcome.Status,
		"message":    outcome.Message,
		"workflows":  outcome.Workflows,
	})
}

func (h *handlers) clarificationTypes(c *gin.Context) {
	types := []gin.H{
		{
			"type":        domain.ClarificationFabricSelection,
			"name":        "Fabric Selection",
			"description": "Choose between an existing fabric or creating a new one",
		},
		{
			"type":        domain.ClarificationDeviceSelection,
			"name":        "Device Selection",
			"description": "Select specific devices for operations",
		},
		{
			"type":        domain.ClarificationResourceCreation,
			"name":        "Resource Creation",
			"description": "Choose resource creation options",
		},
		{
			"type":        domain.ClarificationParameterSpecification,
			"name":        "Parameter Specification",
			"description": "Provide missing required parameters",
		},
	}
	c.JSON(http.StatusOK, gin.H{"supported_types": types, "total_types": len(types)})
}

// sessionError maps domain errors to HTTP statuses: missing or expired
// sessions are 404, everything else about session state is 400.
func (h *handlers) sessionError(c *gin.Context, err error) {
	switch {
	case orchestration.NotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrNotAwaitingClarification),
		errors.Is(err, domain.ErrSessionNotReady),
		errors.Is(err, domain.ErrNoWorkflows),
		errors.Is(err, domain.ErrNoOptionSelected):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		h.logger.Error("request failed", err, map[string]interface{}{"path": c.FullPath()})
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
