package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status   Status
		terminal bool
	}{
		{StatusIdle, false},
		{StatusCreated, false},
		{StatusNeedsClarification, false},
		{StatusParsing, false},
		{StatusGenerating, false},
		{StatusExecuting, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Errorf("Terminal(%s) = %v, want %v", tc.status, got, tc.terminal)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusIdle, StatusCreated},
		{StatusCreated, StatusNeedsClarification},
		{StatusCreated, StatusExecuting},
		{StatusCreated, StatusFailed},
		{StatusNeedsClarification, StatusParsing},
		{StatusNeedsClarification, StatusFailed},
		{StatusParsing, StatusExecuting},
		{StatusParsing, StatusFailed},
		{StatusExecuting, StatusCompleted},
		{StatusExecuting, StatusFailed},
		{StatusCompleted, StatusIdle},
		{StatusFailed, StatusCreated},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusIdle, StatusExecuting},
		{StatusNeedsClarification, StatusExecuting},
		{StatusExecuting, StatusNeedsClarification},
		{StatusCompleted, StatusExecuting},
		{StatusFailed, StatusFailed},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestApplyStatusPreservesWorkflowsWhenOmitted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := TestSession{
		SessionID: "s1",
		State:     StatusExecuting,
		Workflows: []string{WorkflowLoginFlow, WorkflowNetworkHierarchy},
	}

	session.ApplyStatus(StatusReport{Status: StatusExecuting, Progress: 50}, now)

	want := []string{WorkflowLoginFlow, WorkflowNetworkHierarchy}
	if diff := cmp.Diff(want, session.Workflows); diff != "" {
		t.Errorf("workflows mismatch (-want +got):\n%s", diff)
	}
	if !session.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", session.UpdatedAt, now)
	}
}

func TestApplyStatusOverwritesFromReport(t *testing.T) {
	now := time.Now()
	session := TestSession{SessionID: "s1", State: StatusExecuting}

	report := StatusReport{
		Status:       StatusCompleted,
		Workflows:    []string{WorkflowNetworkHierarchy},
		Steps:        []ExecutionStep{{StepID: "1", Workflow: WorkflowNetworkHierarchy, TDDStep: "create area", Status: StepPassed, Timestamp: "t"}},
		ErrorMessage: "",
	}
	session.ApplyStatus(report, now)

	if session.State != StatusCompleted {
		t.Fatalf("State = %s, want %s", session.State, StatusCompleted)
	}
	if len(session.Steps) != 1 || session.Steps[0].TDDStep != "create area" {
		t.Fatalf("unexpected steps: %+v", session.Steps)
	}
}

func TestClusterConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     ClusterConfig
		wantErr error
	}{
		{"valid", ClusterConfig{IP: "192.168.1.100", Username: "admin", Password: "x"}, nil},
		{"missing ip", ClusterConfig{Username: "admin"}, ErrMissingClusterIP},
		{"blank ip", ClusterConfig{IP: "   ", Username: "admin"}, ErrMissingClusterIP},
		{"missing username", ClusterConfig{IP: "192.168.1.100"}, ErrMissingUsername},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err != tc.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestClusterConfigEffectiveURL(t *testing.T) {
	cfg := ClusterConfig{IP: "10.0.0.5"}
	if got := cfg.EffectiveURL(); got != "https://10.0.0.5" {
		t.Errorf("EffectiveURL() = %q", got)
	}
	cfg.URL = "https://dnac.example.com"
	if got := cfg.EffectiveURL(); got != "https://dnac.example.com" {
		t.Errorf("EffectiveURL() = %q", got)
	}
}
