package parser

import (
	"testing"

	"github.com/catalystqa/e2eagent/internal/domain"
)

func TestParseDetectsFabricCreation(t *testing.T) {
	p := New()

	workflows, _, analysis := p.Parse("create a fabric site with border and leaf devices", domain.ClusterConfig{})
	if len(workflows) == 0 || workflows[0] != domain.WorkflowFabricCreation {
		t.Fatalf("workflows = %v, want fabric_creation first", workflows)
	}
	if analysis.SuggestedPrimary != domain.WorkflowFabricCreation {
		t.Errorf("SuggestedPrimary = %q", analysis.SuggestedPrimary)
	}
	ws := analysis.WorkflowScores[domain.WorkflowFabricCreation]
	if ws.PatternBoost == 0 {
		t.Error("PatternBoost = 0, want create.*fabric boost applied")
	}
}

func TestParseFallsBackToLoginFlow(t *testing.T) {
	p := New()

	workflows, _, _ := p.Parse("do something unrelated", domain.ClusterConfig{})
	if len(workflows) != 1 || workflows[0] != domain.WorkflowLoginFlow {
		t.Fatalf("workflows = %v, want login_flow fallback", workflows)
	}
}

func TestParseInfersHierarchyFromCreationWords(t *testing.T) {
	p := New()

	// "make" plus "area" never clears the scoring threshold but the
	// inference pass still picks the hierarchy workflow.
	workflows, _, _ := p.Parse("make one more area", domain.ClusterConfig{})
	found := false
	for _, w := range workflows {
		if w == domain.WorkflowNetworkHierarchy {
			found = true
		}
	}
	if !found {
		t.Fatalf("workflows = %v, want network_hierarchy_creation inferred", workflows)
	}
}

func TestParseMergesClusterCredentials(t *testing.T) {
	p := New()

	_, params, _ := p.Parse("run the login flow", domain.ClusterConfig{
		IP:       "192.168.1.10",
		Username: "admin",
		Password: "secret",
	})
	if params["cluster_url"] != "https://192.168.1.10" {
		t.Errorf("cluster_url = %q", params["cluster_url"])
	}
	if params["cluster_ip"] != "192.168.1.10" {
		t.Errorf("cluster_ip = %q, want derived from the url", params["cluster_ip"])
	}
	if params["username"] != "admin" || params["password"] != "secret" {
		t.Errorf("credentials = %q/%q", params["username"], params["password"])
	}
}

func TestAnalyzeExtractsParameters(t *testing.T) {
	p := New()

	analysis := p.Analyze(`create fabric "test-fabric" with bgp 65001 and import 5 devices`)
	got := analysis.DetectedParameters
	if got["fabric_name"] != "test-fabric" {
		t.Errorf("fabric_name = %q", got["fabric_name"])
	}
	if got["bgp_asn"] != "65001" {
		t.Errorf("bgp_asn = %q", got["bgp_asn"])
	}
	if got["device_count"] != "5" {
		t.Errorf("device_count = %q", got["device_count"])
	}
}

func TestAnalyzeReportsMissingCommonParameters(t *testing.T) {
	p := New()

	analysis := p.Analyze("create a fabric")
	want := map[string]bool{"cluster_url": true, "cluster_ip": true, "username": true, "password": true}
	for _, missing := range analysis.MissingCommon {
		delete(want, missing)
	}
	if len(want) != 0 {
		t.Errorf("MissingCommon missed %v", want)
	}
}

func TestAnalyzeComplexityLevels(t *testing.T) {
	p := New()

	cases := []struct {
		instruction string
		level       string
	}{
		{"login", "low"},
		{"create a fabric and add devices then verify the result please", "medium"},
		{"go to the design page, create an area, create a building, add devices, create a fabric, verify settings and confirm everything works end to end", "high"},
	}
	for _, tc := range cases {
		got := p.Analyze(tc.instruction).Complexity.Level
		if got != tc.level {
			t.Errorf("Complexity(%q) = %q, want %q", tc.instruction, got, tc.level)
		}
	}
}

func TestScoreIsCappedAtOne(t *testing.T) {
	p := New()

	analysis := p.Analyze("login log in sign in authenticate credentials username password access home page")
	if score := analysis.WorkflowScores[domain.WorkflowLoginFlow].Score; score > 1.0 {
		t.Errorf("score = %v, want capped at 1.0", score)
	}
	if analysis.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9 for a clear winner", analysis.Confidence)
	}
}
