// Package orchestrator is the HTTP adapter for the Test Orchestration
// Service. Each method issues one JSON POST and maps non-2xx responses to a
// StatusError carrying the HTTP status text.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// StatusError reports a non-2xx response. Error() is the HTTP status text,
// which becomes the session error message.
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return e.Text
}

// Client talks to the orchestration service at a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client. A nil httpClient falls back to a default with the
// standard request timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: domain.DefaultRequestTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type parseRequestBody struct {
	Prompt   string `json:"prompt"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type parseResponseBody struct {
	SessionID         string                        `json:"session_id"`
	Status            domain.Status                 `json:"status"`
	Workflows         []string                      `json:"workflows"`
	DetectedWorkflows []string                      `json:"detected_workflows"`
	Parameters        map[string]string             `json:"parameters"`
	EstimatedDuration int                           `json:"estimated_duration"`
	Clarification     *domain.ClarificationQuestion `json:"clarification"`
	Message           string                        `json:"message"`
}

// ParseInstructions implements ports.Orchestrator.
func (c *Client) ParseInstructions(ctx context.Context, req ports.ParseRequest) (ports.ParseResult, error) {
	body := parseRequestBody{
		Prompt:   req.Prompt,
		URL:      req.Cluster.EffectiveURL(),
		Username: req.Cluster.Username,
		Password: req.Cluster.Password,
	}
	var decoded parseResponseBody
	if err := c.post(ctx, "/parse_test_instructions", body, &decoded); err != nil {
		return ports.ParseResult{}, err
	}

	workflows := decoded.Workflows
	if len(workflows) == 0 {
		workflows = decoded.DetectedWorkflows
	}
	return ports.ParseResult{
		SessionID:         decoded.SessionID,
		Status:            decoded.Status,
		Workflows:         workflows,
		Parameters:        decoded.Parameters,
		EstimatedDuration: decoded.EstimatedDuration,
		Clarification:     decoded.Clarification,
		Message:           decoded.Message,
	}, nil
}

type clarificationRequestBody struct {
	SessionID string                       `json:"session_id"`
	Response  domain.ClarificationResponse `json:"clarification_response"`
}

type clarificationResponseBody struct {
	SessionID        string   `json:"session_id"`
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	UpdatedWorkflows []string `json:"updated_workflows"`
	Workflows        []string `json:"workflows"`
}

// ProvideClarification implements ports.Orchestrator.
func (c *Client) ProvideClarification(ctx context.Context, sessionID string, answer domain.ClarificationResponse) (ports.ClarificationResult, error) {
	body := clarificationRequestBody{SessionID: sessionID, Response: answer}
	var decoded clarificationResponseBody
	if err := c.post(ctx, "/api/v1/provide_clarification", body, &decoded); err != nil {
		return ports.ClarificationResult{}, err
	}
	return ports.ClarificationResult{
		Status:    decoded.Status,
		Workflows: decoded.UpdatedWorkflows,
		Message:   decoded.Message,
	}, nil
}

// SkipClarification implements ports.Orchestrator.
func (c *Client) SkipClarification(ctx context.Context, sessionID string) (ports.ClarificationResult, error) {
	path := fmt.Sprintf("/api/v1/session/%s/skip_clarification", sessionID)
	var decoded clarificationResponseBody
	if err := c.post(ctx, path, nil, &decoded); err != nil {
		return ports.ClarificationResult{}, err
	}
	return ports.ClarificationResult{
		Status:    decoded.Status,
		Workflows: decoded.Workflows,
		Message:   decoded.Message,
	}, nil
}

type sessionRequestBody struct {
	SessionID string `json:"session_id"`
}

// ExecuteTestPlan implements ports.Orchestrator.
func (c *Client) ExecuteTestPlan(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/execute_test_plan", sessionRequestBody{SessionID: sessionID}, nil)
}

// SessionStatus implements ports.Orchestrator.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (domain.StatusReport, error) {
	var report domain.StatusReport
	if err := c.post(ctx, "/get_session_status", sessionRequestBody{SessionID: sessionID}, &report); err != nil {
		return domain.StatusReport{}, err
	}
	return report, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{Code: resp.StatusCode, Text: resp.Status}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ ports.Orchestrator = (*Client)(nil)
