// Package server exposes the orchestration service over HTTP with gin.
// Endpoint paths and payload shapes match what the e2eagent client expects.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/catalystqa/e2eagent/internal/application/orchestration"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// NewRouter wires all routes. Debug mode keeps gin's request logging;
// production runs in release mode with only panic recovery.
func NewRouter(svc *orchestration.Service, logger ports.Logger, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	h := &handlers{svc: svc, logger: logger, started: time.Now()}

	r.GET("/health", h.health)
	r.POST("/parse_test_instructions", h.parseInstructions)
	r.POST("/execute_test_plan", h.executeTestPlan)
	r.POST("/get_session_status", h.sessionStatus)
	r.POST("/analyze_instruction", h.analyzeInstruction)
	r.GET("/list_active_sessions", h.listActiveSessions)
	r.GET("/templates/list", h.listTemplates)
	r.GET("/workflows/dependencies", h.workflowDependencies)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/provide_clarification", h.provideClarification)
		v1.GET("/session/:session_id/clarification_status", h.clarificationStatus)
		v1.POST("/session/:session_id/skip_clarification", h.skipClarification)
		v1.GET("/clarification_types", h.clarificationTypes)
	}

	return r
}
