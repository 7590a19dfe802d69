package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/catalystqa/e2eagent/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(t.TempDir(), nopLogger{})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSeedsBuiltinTemplates(t *testing.T) {
	r := newTestRegistry(t)

	list := r.List()
	if len(list) != len(builtinTemplates) {
		t.Fatalf("len(List()) = %d, want %d", len(list), len(builtinTemplates))
	}
	for _, name := range []string{
		domain.WorkflowLoginFlow,
		domain.WorkflowNetworkHierarchy,
		domain.WorkflowInventory,
		domain.WorkflowFabricCreation,
		domain.WorkflowL3VNManagement,
		domain.WorkflowFabricSettings,
	} {
		if _, err := r.Template(name); err != nil {
			t.Errorf("Template(%q) error = %v", name, err)
		}
	}
}

func TestTemplateMetadataAndCases(t *testing.T) {
	r := newTestRegistry(t)

	tmpl, err := r.Template(domain.WorkflowLoginFlow)
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}
	if tmpl.Metadata.WorkflowType != domain.WorkflowCreation {
		t.Errorf("WorkflowType = %q", tmpl.Metadata.WorkflowType)
	}
	if !tmpl.Metadata.CanRunStandalone || tmpl.Metadata.RequiresExistingFabric {
		t.Errorf("metadata flags = %+v", tmpl.Metadata)
	}
	if tmpl.Metadata.EstimatedDuration != 30 {
		t.Errorf("EstimatedDuration = %d, want 30", tmpl.Metadata.EstimatedDuration)
	}

	var names []string
	for _, tc := range tmpl.TestCases {
		names = append(names, tc.Name)
	}
	want := []string{"test_valid_login", "test_invalid_login"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("test case names mismatch (-want +got):\n%s", diff)
	}
	if len(tmpl.TestCases[0].Steps) != 5 {
		t.Errorf("len(Steps) = %d, want the Given/When/Then lines", len(tmpl.TestCases[0].Steps))
	}

	wantParams := []string{"cluster_url", "password", "username"}
	if diff := cmp.Diff(wantParams, tmpl.Parameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestDependenciesComeFromMetadata(t *testing.T) {
	r := newTestRegistry(t)

	deps := r.Dependencies(domain.WorkflowL3VNManagement)
	want := []string{domain.WorkflowLoginFlow, domain.WorkflowFabricCreation}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("Dependencies() mismatch (-want +got):\n%s", diff)
	}
	if deps := r.Dependencies("unknown_workflow"); deps != nil {
		t.Errorf("Dependencies(unknown) = %v, want nil", deps)
	}
}

func TestCustomizeAppliesParametersThenDefaults(t *testing.T) {
	r := newTestRegistry(t)

	content := "Navigate to {{cluster_url}} as {{username}} and create fabric {{fabric_name}} with ASN {{bgp_asn}}"
	got := r.Customize(content, map[string]string{
		"cluster_url": "https://10.0.0.5",
		"username":    "operator",
	})
	if strings.Contains(got, "{{") {
		t.Errorf("Customize() left placeholders: %q", got)
	}
	if !strings.Contains(got, "https://10.0.0.5") || !strings.Contains(got, "operator") {
		t.Errorf("Customize() ignored provided parameters: %q", got)
	}
	if !strings.Contains(got, "TestFabric") || !strings.Contains(got, "1200") {
		t.Errorf("Customize() skipped defaults: %q", got)
	}
}

func TestTemplateNotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Template("nonexistent")
	if !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Fatalf("Template() error = %v, want ErrTemplateNotFound", err)
	}
}

func TestCircularDependencyRejected(t *testing.T) {
	dir := t.TempDir()
	creation := filepath.Join(dir, "creation")
	if err := os.MkdirAll(creation, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(name, deps string) {
		content := "# " + name + "\n\n## Workflow Metadata\nworkflow_type: creation\ndependencies: [" + deps + "]\n\n## Test Cases\n\ntest_case_one\nGiven: something\n"
		if err := os.WriteFile(filepath.Join(creation, name+".TDD.md"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("alpha", "beta")
	write("beta", "alpha")

	_, err := NewRegistry(dir, nopLogger{})
	if !errors.Is(err, domain.ErrCircularDependency) {
		t.Fatalf("NewRegistry() error = %v, want ErrCircularDependency", err)
	}
}

func TestExistingTemplatesSuppressSeeding(t *testing.T) {
	dir := t.TempDir()
	creationDir := filepath.Join(dir, "creation")
	if err := os.MkdirAll(creationDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "# Custom Query\n\n## Workflow Metadata\nworkflow_type: query\ndependencies: []\n\n## Test Cases\n\ntest_custom\nGiven: a cluster\n"
	if err := os.WriteFile(filepath.Join(creationDir, "custom_query.TDD.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistry(dir, nopLogger{})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	defer r.Close()

	if _, err := r.Template("custom_query"); err != nil {
		t.Errorf("Template(custom_query) error = %v", err)
	}
	if len(r.List()) != 1 {
		t.Errorf("List() = %d templates, want only the custom one", len(r.List()))
	}
}
