package domain

import "errors"

// Workflow resolution errors.
var (
	ErrTemplateNotFound   = errors.New("tdd template not found")
	ErrCircularDependency = errors.New("circular dependency in workflow templates")
	ErrNoWorkflows        = errors.New("session has no workflows to execute")
)

// WorkflowType classifies what a workflow does to the cluster.
type WorkflowType string

const (
	WorkflowCreation     WorkflowType = "creation"
	WorkflowQuery        WorkflowType = "query"
	WorkflowModification WorkflowType = "modification"
)

// Canonical workflow names recognized by the instruction parser and template
// registry.
const (
	WorkflowLoginFlow        = "login_flow"
	WorkflowNetworkHierarchy = "network_hierarchy_creation"
	WorkflowInventory        = "inventory_workflow"
	WorkflowFabricCreation   = "fabric_creation"
	WorkflowL3VNManagement   = "l3vn_management"
	WorkflowFabricSettings   = "fabric_settings"
)

// WorkflowMetadata is the metadata block of a TDD template.
type WorkflowMetadata struct {
	WorkflowType           WorkflowType `yaml:"workflow_type"`
	Dependencies           []string     `yaml:"dependencies"`
	CanRunStandalone       bool         `yaml:"can_run_standalone"`
	RequiresExistingFabric bool         `yaml:"requires_existing_fabric"`
	// EstimatedDuration is in seconds.
	EstimatedDuration int                `yaml:"estimated_duration"`
	Parameters        TemplateParameters `yaml:"parameters"`
}

// TemplateParameters mirrors the nested parameters block in template metadata.
type TemplateParameters struct {
	Required []string `yaml:"required"`
	Optional []string `yaml:"optional"`
}

// Template is a TDD template: Given/When/Then test cases for one workflow.
type Template struct {
	Name       string
	Type       WorkflowType
	Metadata   WorkflowMetadata
	Content    string
	TestCases  []TestCase
	Parameters []string
	FilePath   string
}

// TestCase is one named scenario inside a TDD template.
type TestCase struct {
	Name  string
	Steps []string
}

// ExecutionPlan is the resolved workflow chain for a session, or a pending
// clarification when the chain cannot be resolved without user input.
type ExecutionPlan struct {
	SessionID             string
	PrimaryWorkflows      []string
	Chain                 []string
	Parameters            map[string]string
	EstimatedDuration     int
	RequiresClarification bool
	Question              *ClarificationQuestion
}

// Fabric is an existing SD-Access fabric discovered on the target cluster,
// offered as a clarification option.
type Fabric struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
}
