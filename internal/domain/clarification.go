package domain

import "errors"

// Clarification errors.
var (
	ErrNoOpenClarification = errors.New("no clarification question is open")
	ErrNoOptionSelected    = errors.New("no clarification option selected")
)

// ClarificationType identifies what kind of disambiguation the service needs.
type ClarificationType string

const (
	ClarificationFabricSelection        ClarificationType = "fabric_selection"
	ClarificationDeviceSelection        ClarificationType = "device_selection"
	ClarificationResourceCreation       ClarificationType = "resource_creation"
	ClarificationParameterSpecification ClarificationType = "parameter_specification"
)

// ClarificationOption is one selectable answer to a clarification question.
type ClarificationOption struct {
	Value       string         `json:"value"`
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// ClarificationQuestion is a service-issued disambiguation request. It exists
// client-side only while the session status is needs_clarification and is
// discarded once a choice is submitted or skipped.
type ClarificationQuestion struct {
	Type            ClarificationType     `json:"type"`
	Message         string                `json:"message"`
	Options         []ClarificationOption `json:"options"`
	WorkflowContext string                `json:"workflow_context"`
	ParameterName   string                `json:"parameter_name,omitempty"`
}

// ClarificationResponse is the user's answer bound to the open question.
type ClarificationResponse struct {
	Type   ClarificationType `json:"type"`
	Choice string            `json:"choice"`
}

// DefaultChoice is the answer applied when the user skips a clarification:
// always create new resources rather than reuse existing ones.
const DefaultChoice = "create_new"
