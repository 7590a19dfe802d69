// Package parser turns natural-language test instructions into workflow
// candidates and extracted parameters. Matching is keyword scoring with
// regex pattern boosts; no language model is involved.
package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// scoreThreshold is the minimum normalized score for a workflow to be
// selected as a primary candidate.
const scoreThreshold = 0.3

// workflowKeywords maps each workflow to the vocabulary that suggests it.
var workflowKeywords = map[string][]string{
	domain.WorkflowLoginFlow: {
		"login", "log in", "sign in", "authenticate", "credentials",
		"username", "password", "access", "home page",
	},
	domain.WorkflowNetworkHierarchy: {
		"network hierarchy", "create area", "create building", "hierarchy",
		"area", "building", "site", "global", "design",
	},
	domain.WorkflowInventory: {
		"inventory", "import devices", "add device", "provision device",
		"device", "import", "csv", "file", "upload",
	},
	domain.WorkflowFabricCreation: {
		"fabric", "create fabric", "fabric site", "sd access",
		"device group", "border", "leaf", "spine", "bgp",
	},
	domain.WorkflowL3VNManagement: {
		"l3vn", "l3 vn", "virtual network", "vn", "overlay",
		"anycast", "ip pool", "vrf",
	},
	domain.WorkflowFabricSettings: {
		"fabric settings", "settings", "configuration", "fabric config",
		"get fabric", "view fabric", "fabric details",
	},
}

type boostRule struct {
	re    *regexp.Regexp
	boost float64
}

// patternBoosts rewards instructions whose phrasing clearly targets one
// workflow, capped at 0.5 per workflow.
var patternBoosts = map[string][]boostRule{
	domain.WorkflowLoginFlow: {
		{regexp.MustCompile(`log\s*in`), 0.3},
		{regexp.MustCompile(`sign\s*in`), 0.3},
		{regexp.MustCompile(`authenticate`), 0.2},
		{regexp.MustCompile(`home\s*page`), 0.2},
	},
	domain.WorkflowNetworkHierarchy: {
		{regexp.MustCompile(`create.*(?:area|building|hierarchy)`), 0.4},
		{regexp.MustCompile(`network\s*hierarchy`), 0.5},
		{regexp.MustCompile(`design.*(?:area|building)`), 0.3},
	},
	domain.WorkflowInventory: {
		{regexp.MustCompile(`import.*device`), 0.4},
		{regexp.MustCompile(`add.*device`), 0.3},
		{regexp.MustCompile(`provision.*device`), 0.4},
		{regexp.MustCompile(`csv|file|upload`), 0.2},
	},
	domain.WorkflowFabricCreation: {
		{regexp.MustCompile(`create.*fabric`), 0.5},
		{regexp.MustCompile(`fabric.*site`), 0.4},
		{regexp.MustCompile(`sd\s*access`), 0.3},
		{regexp.MustCompile(`device\s*group`), 0.3},
	},
	domain.WorkflowL3VNManagement: {
		{regexp.MustCompile(`create.*l3vn`), 0.5},
		{regexp.MustCompile(`l3\s*vn`), 0.4},
		{regexp.MustCompile(`virtual\s*network`), 0.3},
		{regexp.MustCompile(`\d+\s*l3vn`), 0.3},
	},
	domain.WorkflowFabricSettings: {
		{regexp.MustCompile(`get.*fabric`), 0.4},
		{regexp.MustCompile(`view.*fabric`), 0.3},
		{regexp.MustCompile(`fabric.*settings`), 0.5},
		{regexp.MustCompile(`fabric.*details`), 0.3},
	},
}

// parameterPatterns extracts named parameters from the instruction text.
// Ordered so the most specific patterns win when names collide.
var parameterPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"cluster_url", regexp.MustCompile(`(?i)(?:cluster|url|ip|address)[\s:]*['"]?(https?://[^\s'"]+|(?:\d{1,3}\.){3}\d{1,3})['"]?`)},
	{"cluster_ip", regexp.MustCompile(`(?i)(?:ip|address)[\s:]*['"]?((?:\d{1,3}\.){3}\d{1,3})['"]?`)},
	{"username", regexp.MustCompile(`(?i)(?:username|user|login)[\s:]*['"]?([a-zA-Z0-9_]+)['"]?`)},
	{"password", regexp.MustCompile(`(?i)(?:password|pwd|pass)[\s:]*['"]?([^\s'"]+)['"]?`)},
	{"fabric_name", regexp.MustCompile(`(?i)(?:fabric[\s_]name|fabric)[\s:]+['"]?([a-zA-Z0-9_\-]+)['"]?`)},
	{"area_name", regexp.MustCompile(`(?i)(?:area[\s_]name|area)[\s:]+['"]?([a-zA-Z0-9_\-]+)['"]?`)},
	{"building_name", regexp.MustCompile(`(?i)(?:building[\s_]name|building|site)[\s:]+['"]?([a-zA-Z0-9_\-]+)['"]?`)},
	{"file_name", regexp.MustCompile(`(?i)(?:file|filename|csv)[\s:]+['"]?([a-zA-Z0-9_\-.]+)['"]?`)},
	{"device_count", regexp.MustCompile(`(?i)(\d+)\s+devices?`)},
	{"l3vn_count", regexp.MustCompile(`(?i)(\d+)\s+l3vns?`)},
	{"bgp_asn", regexp.MustCompile(`(?i)(?:bgp|asn)[\s:]*['"]?(\d+)['"]?`)},
	{"timeout", regexp.MustCompile(`(?i)timeout[\s:]*['"]?(\d+)['"]?`)},
}

var (
	ipInURLPattern = regexp.MustCompile(`(?:https?://)?(\d{1,3}(?:\.\d{1,3}){3})`)

	creationWords     = regexp.MustCompile(`(?i)\b(?:create|add|build|make|new)\b`)
	navigationWords   = regexp.MustCompile(`(?i)\b(?:go|navigate|visit|open)\b`)
	interactionWords  = regexp.MustCompile(`(?i)\b(?:click|select|choose|enter|fill)\b`)
	verificationWords = regexp.MustCompile(`(?i)\b(?:verify|check|confirm|ensure)\b`)
)

// commonParameters are reported as missing when the instruction does not
// carry them; the caller usually supplies them from the cluster config.
var commonParameters = []string{"cluster_url", "cluster_ip", "username", "password"}

// KeywordParser implements ports.InstructionParser with keyword scoring.
type KeywordParser struct{}

// New returns a ready parser.
func New() *KeywordParser {
	return &KeywordParser{}
}

// Parse scores the instruction against every known workflow, picks those
// above the threshold, and merges extracted parameters with the cluster
// credentials. When nothing scores high enough a coarse inference runs, and
// login_flow is the final fallback.
func (p *KeywordParser) Parse(instruction string, cluster domain.ClusterConfig) ([]string, map[string]string, ports.InstructionAnalysis) {
	analysis := p.Analyze(instruction)

	type scored struct {
		name  string
		score float64
	}
	var candidates []scored
	for name, ws := range analysis.WorkflowScores {
		if ws.Score > scoreThreshold {
			candidates = append(candidates, scored{name, ws.Score})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	workflows := make([]string, 0, len(candidates))
	for _, c := range candidates {
		workflows = append(workflows, c.name)
	}
	if len(workflows) == 0 {
		workflows = inferWorkflows(instruction)
	}

	parameters := make(map[string]string, len(analysis.DetectedParameters)+4)
	for k, v := range analysis.DetectedParameters {
		parameters[k] = v
	}
	if url := cluster.EffectiveURL(); url != "" && cluster.IP != "" {
		parameters["cluster_url"] = url
	}
	if cluster.Username != "" {
		parameters["username"] = cluster.Username
	}
	if cluster.Password != "" {
		parameters["password"] = cluster.Password
	}
	if _, ok := parameters["cluster_ip"]; !ok {
		if m := ipInURLPattern.FindStringSubmatch(parameters["cluster_url"]); m != nil {
			parameters["cluster_ip"] = m[1]
		}
	}

	return workflows, parameters, analysis
}

// Analyze produces the scoring breakdown without selecting workflows.
func (p *KeywordParser) Analyze(instruction string) ports.InstructionAnalysis {
	lower := strings.ToLower(instruction)

	scores := make(map[string]ports.WorkflowScore)
	for name, keywords := range workflowKeywords {
		ws := scoreWorkflow(lower, name, keywords)
		if ws.Score > 0 {
			scores[name] = ws
		}
	}

	detected := extractParameters(instruction)

	var missing []string
	for _, param := range commonParameters {
		if _, ok := detected[param]; !ok {
			missing = append(missing, param)
		}
	}

	return ports.InstructionAnalysis{
		WorkflowScores:     scores,
		DetectedParameters: detected,
		Complexity:         analyzeComplexity(instruction),
		Confidence:         overallConfidence(scores),
		SuggestedPrimary:   highestScoring(scores),
		MissingCommon:      missing,
	}
}

func scoreWorkflow(lower, name string, keywords []string) ports.WorkflowScore {
	var score float64
	var matched []string

	trimmed := strings.TrimSpace(lower)
	for _, keyword := range keywords {
		if !strings.Contains(lower, keyword) {
			continue
		}
		switch {
		case keyword == trimmed:
			score += 1.0
		case regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`).MatchString(lower):
			score += 0.8
		default:
			score += 0.3
		}
		matched = append(matched, keyword)
	}
	if len(keywords) > 0 {
		score /= float64(len(keywords))
	}

	var boost float64
	for _, rule := range patternBoosts[name] {
		if rule.re.MatchString(lower) {
			boost += rule.boost
		}
	}
	if boost > 0.5 {
		boost = 0.5
	}
	score += boost
	if score > 1.0 {
		score = 1.0
	}

	return ports.WorkflowScore{Score: score, MatchedKeywords: matched, PatternBoost: boost}
}

func extractParameters(instruction string) map[string]string {
	detected := make(map[string]string)
	for _, pp := range parameterPatterns {
		if _, ok := detected[pp.name]; ok {
			continue
		}
		if m := pp.re.FindStringSubmatch(instruction); m != nil {
			value := strings.TrimSpace(strings.Trim(m[1], `'"`))
			if value != "" {
				detected[pp.name] = value
			}
		}
	}
	return detected
}

// inferWorkflows is the coarse fallback when no workflow clears the
// threshold. login_flow is always a safe default because every other
// workflow depends on being logged in.
func inferWorkflows(instruction string) []string {
	lower := strings.ToLower(instruction)
	var inferred []string

	for _, kw := range []string{"login", "log in", "sign in", "authenticate"} {
		if strings.Contains(lower, kw) {
			inferred = append(inferred, domain.WorkflowLoginFlow)
			break
		}
	}

	if creationWords.MatchString(lower) {
		switch {
		case strings.Contains(lower, "hierarchy") || strings.Contains(lower, "area") || strings.Contains(lower, "building"):
			inferred = append(inferred, domain.WorkflowNetworkHierarchy)
		case strings.Contains(lower, "fabric"):
			inferred = append(inferred, domain.WorkflowFabricCreation)
		case strings.Contains(lower, "l3vn") || strings.Contains(lower, "vn"):
			inferred = append(inferred, domain.WorkflowL3VNManagement)
		}
	}

	for _, kw := range []string{"import", "inventory", "device"} {
		if strings.Contains(lower, kw) {
			inferred = append(inferred, domain.WorkflowInventory)
			break
		}
	}

	if len(inferred) == 0 {
		inferred = append(inferred, domain.WorkflowLoginFlow)
	}
	return inferred
}

func analyzeComplexity(instruction string) ports.ComplexityReport {
	wordCount := len(strings.Fields(instruction))
	actionCount := len(creationWords.FindAllString(instruction, -1)) +
		len(navigationWords.FindAllString(instruction, -1)) +
		len(interactionWords.FindAllString(instruction, -1)) +
		len(verificationWords.FindAllString(instruction, -1))

	level := "low"
	switch {
	case wordCount > 20 || actionCount > 5:
		level = "high"
	case wordCount > 10 || actionCount > 2:
		level = "medium"
	}

	steps := actionCount
	if steps < 1 {
		steps = 1
	}
	return ports.ComplexityReport{
		WordCount:      wordCount,
		ActionCount:    actionCount,
		Level:          level,
		EstimatedSteps: steps,
	}
}

func overallConfidence(scores map[string]ports.WorkflowScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	var max float64
	for _, ws := range scores {
		if ws.Score > max {
			max = ws.Score
		}
	}
	switch {
	case max > 0.7:
		return 0.9
	case max > 0.5:
		return 0.7
	case max > 0.3:
		return 0.5
	default:
		return 0.3
	}
}

func highestScoring(scores map[string]ports.WorkflowScore) string {
	var best string
	var bestScore float64
	for name, ws := range scores {
		if ws.Score > bestScore || (ws.Score == bestScore && (best == "" || name < best)) {
			best = name
			bestScore = ws.Score
		}
	}
	return best
}

var _ ports.InstructionParser = (*KeywordParser)(nil)
