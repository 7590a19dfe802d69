// Package workflows resolves a set of primary workflows into an ordered
// execution chain: dependencies are collected recursively, ambiguities turn
// into clarification questions, and the final order comes from a topological
// sort broken by fixed workflow priorities.
package workflows

import (
	"fmt"
	"sort"
	"strings"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// workflowPriority breaks ordering ties in the topological sort. Lower runs
// first.
var workflowPriority = map[string]int{
	domain.WorkflowLoginFlow:        1,
	domain.WorkflowNetworkHierarchy: 2,
	domain.WorkflowInventory:        3,
	domain.WorkflowFabricCreation:   4,
	domain.WorkflowL3VNManagement:   6,
	domain.WorkflowFabricSettings:   7,
}

func priority(name string) int {
	if p, ok := workflowPriority[name]; ok {
		return p
	}
	return 999
}

// Resolver implements ports.WorkflowResolver on top of the template
// registry's dependency metadata and the cluster inventory.
type Resolver struct {
	Registry  ports.TemplateRegistry
	Inventory ports.Inventory
	Logger    ports.Logger
}

// Resolve builds the execution plan for the primary workflows. When a
// fabric-dependent workflow has no fabric bound and the cluster already has
// fabrics, the plan carries a fabric selection question instead of a chain.
func (r *Resolver) Resolve(sessionID string, primary []string, parameters map[string]string, cluster domain.ClusterConfig) (domain.ExecutionPlan, error) {
	if len(primary) == 0 {
		return domain.ExecutionPlan{}, domain.ErrNoWorkflows
	}

	required := r.collectDependencies(primary)

	if question := r.detectClarification(required, parameters, cluster); question != nil {
		return domain.ExecutionPlan{
			SessionID:             sessionID,
			PrimaryWorkflows:      primary,
			Parameters:            parameters,
			RequiresClarification: true,
			Question:              question,
		}, nil
	}

	chain, err := r.topologicalSort(required)
	if err != nil {
		return domain.ExecutionPlan{}, err
	}
	r.warnMissingParameters(sessionID, chain, parameters)

	return domain.ExecutionPlan{
		SessionID:         sessionID,
		PrimaryWorkflows:  primary,
		Chain:             chain,
		Parameters:        parameters,
		EstimatedDuration: r.EstimateDuration(chain),
	}, nil
}

// warnMissingParameters logs each required template parameter the session
// has no value for. Execution still proceeds; the template defaults fill the
// gaps during customization.
func (r *Resolver) warnMissingParameters(sessionID string, chain []string, parameters map[string]string) {
	for _, name := range chain {
		meta, ok := r.Registry.Metadata(name)
		if !ok {
			continue
		}
		for _, param := range meta.Parameters.Required {
			if _, ok := parameters[param]; !ok {
				r.Logger.Warn("missing required parameter", map[string]interface{}{
					"session_id": sessionID,
					"workflow":   name,
					"parameter":  param,
				})
			}
		}
	}
}

// ProcessClarification applies the user's answer and re-resolves. Choosing
// an existing fabric binds its id and drops fabric_creation from the chain;
// create_new keeps the chain as detected.
func (r *Resolver) ProcessClarification(sessionID string, answer domain.ClarificationResponse, primary []string, parameters map[string]string, cluster domain.ClusterConfig) (domain.ExecutionPlan, error) {
	updated := make(map[string]string, len(parameters)+2)
	for k, v := range parameters {
		updated[k] = v
	}

	if answer.Type == domain.ClarificationFabricSelection {
		switch {
		case answer.Choice == domain.DefaultChoice:
			// Marking the decision keeps re-resolution from asking again.
			updated["existing_fabric"] = domain.DefaultChoice
			r.Logger.Info("clarification resolved to new fabric", map[string]interface{}{
				"session_id": sessionID,
			})
		case strings.HasPrefix(answer.Choice, "existing_"):
			fabricID := strings.TrimPrefix(answer.Choice, "existing_")
			updated["fabric_id"] = fabricID
			updated["use_existing_fabric"] = "true"

			filtered := primary[:0:0]
			for _, w := range primary {
				if w != domain.WorkflowFabricCreation {
					filtered = append(filtered, w)
				}
			}
			primary = filtered
			r.Logger.Info("clarification resolved to existing fabric", map[string]interface{}{
				"session_id": sessionID,
				"fabric_id":  fabricID,
			})
		}
	}

	plan, err := r.Resolve(sessionID, primary, updated, cluster)
	if err != nil {
		return domain.ExecutionPlan{}, err
	}
	// Binding a fabric removes fabric_creation from the dependency closure
	// as well, not just from the primaries.
	if updated["use_existing_fabric"] == "true" {
		chain := plan.Chain[:0:0]
		for _, w := range plan.Chain {
			if w != domain.WorkflowFabricCreation {
				chain = append(chain, w)
			}
		}
		plan.Chain = chain
		plan.EstimatedDuration = r.EstimateDuration(chain)
	}
	return plan, nil
}

// EstimateDuration sums the metadata durations of the chain in seconds.
func (r *Resolver) EstimateDuration(workflows []string) int {
	total := 0
	for _, name := range workflows {
		if metadata, ok := r.Registry.Metadata(name); ok {
			total += metadata.EstimatedDuration
		} else {
			total += domain.DefaultWorkflowDuration
		}
	}
	return total
}

// collectDependencies returns the dependency closure of the primaries,
// depth-first so dependencies land before their dependents.
func (r *Resolver) collectDependencies(primary []string) []string {
	seen := make(map[string]bool)
	var ordered []string

	var add func(name string)
	add = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		for _, dep := range r.Registry.Dependencies(name) {
			add(dep)
		}
		ordered = append(ordered, name)
	}
	for _, w := range primary {
		add(w)
	}
	return ordered
}

func (r *Resolver) detectClarification(required []string, parameters map[string]string, cluster domain.ClusterConfig) *domain.ClarificationQuestion {
	var fabricDependent string
	for _, name := range required {
		metadata, ok := r.Registry.Metadata(name)
		if ok && metadata.RequiresExistingFabric {
			fabricDependent = name
			break
		}
	}
	if fabricDependent == "" {
		return nil
	}

	for _, key := range []string{"fabric_name", "fabric_id", "existing_fabric"} {
		if _, ok := parameters[key]; ok {
			return nil
		}
	}

	fabrics := r.Inventory.Fabrics(cluster)
	if len(fabrics) == 0 {
		// Nothing to choose from; the chain will create a new fabric.
		return nil
	}

	options := make([]domain.ClarificationOption, 0, len(fabrics)+1)
	for _, fabric := range fabrics {
		options = append(options, domain.ClarificationOption{
			Value:       "existing_" + fabric.ID,
			Label:       "Use existing fabric: " + fabric.Name,
			Description: "Status: " + fabric.Status,
			Data:        map[string]any{"id": fabric.ID, "name": fabric.Name, "status": fabric.Status},
		})
	}
	options = append(options, domain.ClarificationOption{
		Value:       domain.DefaultChoice,
		Label:       "Create new fabric",
		Description: "Create a new fabric with devices and settings",
	})

	return &domain.ClarificationQuestion{
		Type:            domain.ClarificationFabricSelection,
		Message:         "Which fabric do you want to use for this workflow?",
		Options:         options,
		WorkflowContext: fabricDependent,
	}
}

// topologicalSort orders the workflows by dependency, with the priority map
// deciding between workflows that are otherwise free to run.
func (r *Resolver) topologicalSort(workflows []string) ([]string, error) {
	inSet := make(map[string]bool, len(workflows))
	for _, w := range workflows {
		inSet[w] = true
	}

	graph := make(map[string][]string)
	inDegree := make(map[string]int, len(workflows))
	for _, w := range workflows {
		inDegree[w] = 0
	}
	for _, w := range workflows {
		for _, dep := range r.Registry.Dependencies(w) {
			if inSet[dep] {
				graph[dep] = append(graph[dep], w)
				inDegree[w]++
			}
		}
	}

	var queue []string
	for _, w := range workflows {
		if inDegree[w] == 0 {
			queue = append(queue, w)
		}
	}

	var result []string
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool { return priority(queue[i]) < priority(queue[j]) })
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)
		for _, next := range graph[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result) != len(workflows) {
		var remaining []string
		seen := make(map[string]bool, len(result))
		for _, w := range result {
			seen[w] = true
		}
		for _, w := range workflows {
			if !seen[w] {
				remaining = append(remaining, w)
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrCircularDependency, strings.Join(remaining, ", "))
	}
	return result, nil
}

var _ ports.WorkflowResolver = (*Resolver)(nil)
