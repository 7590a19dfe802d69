// Package templates owns the TDD templates and their dependency graph.
// Templates live on disk as Markdown files with a "## Workflow Metadata"
// YAML block; the registry seeds a built-in set on first run and hot-reloads
// edits through fsnotify so template authors never restart the service.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

var (
	metadataBlock = regexp.MustCompile(`(?s)##? Workflow Metadata\s*\n(.*?)(\n##|\z)`)
	placeholder   = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	testCaseName  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// defaultValues fills placeholders the caller did not supply, so a template
// always customizes into something runnable.
var defaultValues = map[string]string{
	"cluster_ip":    "192.168.1.100",
	"cluster_url":   "https://192.168.1.100",
	"username":      "admin",
	"password":      "admin123",
	"fabric_name":   "TestFabric",
	"area_name":     "TestArea",
	"building_name": "TestBuilding",
	"device_count":  "1",
	"l3vn_count":    "1",
	"timeout":       "30000",
	"file_name":     "devices.csv",
	"bgp_asn":       "1200",
}

var typeDirs = map[domain.WorkflowType]string{
	domain.WorkflowCreation:     "creation",
	domain.WorkflowQuery:        "query",
	domain.WorkflowModification: "modification",
}

// Registry implements ports.TemplateRegistry over a templates directory.
type Registry struct {
	dir     string
	logger  ports.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu        sync.RWMutex
	templates map[string]domain.Template
}

// NewRegistry loads all templates under dir, seeding the built-in set when
// the directory is empty, and starts watching for file changes. A cycle in
// the dependency graph fails construction.
func NewRegistry(dir string, logger ports.Logger) (*Registry, error) {
	r := &Registry{
		dir:       dir,
		logger:    logger,
		done:      make(chan struct{}),
		templates: make(map[string]domain.Template),
	}

	if err := r.seedIfEmpty(); err != nil {
		return nil, fmt.Errorf("seed templates: %w", err)
	}
	if err := r.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("template hot reload disabled", map[string]interface{}{"error": err.Error()})
		return r, nil
	}
	r.watcher = watcher
	for _, sub := range typeDirs {
		if err := watcher.Add(filepath.Join(dir, sub)); err != nil {
			logger.Warn("watch template dir failed", map[string]interface{}{
				"dir":   sub,
				"error": err.Error(),
			})
		}
	}
	go r.watch()
	return r, nil
}

func (r *Registry) watch() {
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := r.reload(); err != nil {
				r.logger.Error("template reload failed", err, map[string]interface{}{
					"trigger": event.Name,
				})
				continue
			}
			r.logger.Info("templates reloaded", map[string]interface{}{
				"trigger": filepath.Base(event.Name),
			})
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("template watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Close stops the file watcher.
func (r *Registry) Close() error {
	close(r.done)
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

func (r *Registry) seedIfEmpty() error {
	for _, sub := range typeDirs {
		if err := os.MkdirAll(filepath.Join(r.dir, sub), domain.DirectoryPermissions); err != nil {
			return err
		}
	}

	for _, sub := range typeDirs {
		entries, err := filepath.Glob(filepath.Join(r.dir, sub, "*.TDD.md"))
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return nil
		}
	}

	for name, builtin := range builtinTemplates {
		sub := typeDirs[builtin.workflowType]
		path := filepath.Join(r.dir, sub, name+".TDD.md")
		if err := os.WriteFile(path, []byte(builtin.content), 0o644); err != nil {
			return err
		}
	}
	r.logger.Info("seeded built-in templates", map[string]interface{}{
		"count": len(builtinTemplates),
		"dir":   r.dir,
	})
	return nil
}

func (r *Registry) reload() error {
	loaded := make(map[string]domain.Template)

	for workflowType, sub := range typeDirs {
		dir := filepath.Join(r.dir, sub)
		upper, _ := filepath.Glob(filepath.Join(dir, "*.TDD.md"))
		lower, _ := filepath.Glob(filepath.Join(dir, "*.tdd.md"))
		for _, path := range append(upper, lower...) {
			tmpl, err := loadTemplate(path, workflowType)
			if err != nil {
				r.logger.Warn("skipping unreadable template", map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				})
				continue
			}
			loaded[tmpl.Name] = tmpl
		}
	}

	if err := checkCycles(loaded); err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = loaded
	r.mu.Unlock()
	return nil
}

func loadTemplate(path string, workflowType domain.WorkflowType) (domain.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Template{}, err
	}
	content := string(raw)

	name := filepath.Base(path)
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".TDD.md"), ".tdd.md")

	metadata := domain.WorkflowMetadata{
		WorkflowType:      workflowType,
		CanRunStandalone:  true,
		EstimatedDuration: domain.DefaultWorkflowDuration,
	}
	if m := metadataBlock.FindStringSubmatch(content); m != nil {
		if err := yaml.Unmarshal([]byte(m[1]), &metadata); err != nil {
			return domain.Template{}, fmt.Errorf("template %s metadata: %w", name, err)
		}
	}
	if metadata.WorkflowType == "" {
		metadata.WorkflowType = workflowType
	}
	if metadata.EstimatedDuration <= 0 {
		metadata.EstimatedDuration = domain.DefaultWorkflowDuration
	}

	return domain.Template{
		Name:       name,
		Type:       metadata.WorkflowType,
		Metadata:   metadata,
		Content:    content,
		TestCases:  extractTestCases(content),
		Parameters: extractPlaceholders(content),
		FilePath:   path,
	}, nil
}

// extractTestCases collects named scenarios and their Given/When/Then steps.
// A test case is a bare snake_case line; the steps that follow belong to it
// until the next case or section heading.
func extractTestCases(content string) []domain.TestCase {
	var cases []domain.TestCase
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "Given:") || strings.HasPrefix(line, "When:") || strings.HasPrefix(line, "Then:") {
			if len(cases) > 0 {
				last := &cases[len(cases)-1]
				last.Steps = append(last.Steps, line)
			}
			continue
		}
		if testCaseName.MatchString(line) {
			cases = append(cases, domain.TestCase{Name: line})
		}
	}
	return cases
}

func extractPlaceholders(content string) []string {
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(content, -1) {
		seen[strings.TrimSpace(m[1])] = true
	}
	params := make([]string, 0, len(seen))
	for p := range seen {
		params = append(params, p)
	}
	sort.Strings(params)
	return params
}

func checkCycles(templates map[string]domain.Template) error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(templates))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: %s", domain.ErrCircularDependency, name)
		case visited:
			return nil
		}
		state[name] = visiting
		if tmpl, ok := templates[name]; ok {
			for _, dep := range tmpl.Metadata.Dependencies {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[name] = visited
		return nil
	}

	for name := range templates {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Template implements ports.TemplateRegistry.
func (r *Registry) Template(name string) (domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[name]
	if !ok {
		return domain.Template{}, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, name)
	}
	return tmpl, nil
}

// List returns all loaded templates sorted by name.
func (r *Registry) List() []domain.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Template, 0, len(r.templates))
	for _, tmpl := range r.templates {
		out = append(out, tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dependencies returns the direct dependencies of a workflow, or nil when
// the workflow has no template.
func (r *Registry) Dependencies(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[name]
	if !ok {
		return nil
	}
	return append([]string(nil), tmpl.Metadata.Dependencies...)
}

// Metadata implements ports.TemplateRegistry.
func (r *Registry) Metadata(name string) (domain.WorkflowMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[name]
	return tmpl.Metadata, ok
}

// Customize substitutes {{placeholder}} values, falling back to the default
// table for anything the caller did not provide.
func (r *Registry) Customize(content string, parameters map[string]string) string {
	for name, value := range parameters {
		content = strings.ReplaceAll(content, "{{"+name+"}}", value)
	}
	for name, value := range defaultValues {
		content = strings.ReplaceAll(content, "{{"+name+"}}", value)
	}
	return content
}

var _ ports.TemplateRegistry = (*Registry)(nil)
