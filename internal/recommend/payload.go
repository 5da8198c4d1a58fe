package recommend

import "encoding/json"

// StatusCompleted is the producer status that contributes candidates; any
// other status (skipped, failed, missing) contributes none.
const StatusCompleted = "completed"

// PlanPayload is the per-section plan producer output.
type PlanPayload struct {
	Status string     `json:"status"`
	Note   string     `json:"note,omitempty"`
	Reason string     `json:"reason,omitempty"`
	Items  []PlanItem `json:"items,omitempty"`
}

// PlanItem is one section's plan.
type PlanItem struct {
	Title    string       `json:"title"`
	PlanMode string       `json:"plan_mode,omitempty"`
	Plan     *SectionPlan `json:"plan,omitempty"`
}

// SectionPlan carries the planner's per-section advice.
type SectionPlan struct {
	Summary               string        `json:"summary,omitempty"`
	Improvements          []Improvement `json:"improvements,omitempty"`
	ReferenceIntegrations []Integration `json:"reference_integrations,omitempty"`
	Questions             []string      `json:"questions,omitempty"`
}

// Improvement is one planner suggestion for strengthening existing prose.
type Improvement struct {
	Priority    PriorityHint `json:"priority,omitempty"`
	ActionType  string       `json:"action_type,omitempty"`
	Action      string       `json:"action,omitempty"`
	Why         string       `json:"why,omitempty"`
	Where       string       `json:"where,omitempty"`
	AnchorQuote string       `json:"anchor_quote,omitempty"`
	RIDs        []string     `json:"rids,omitempty"`
}

// Integration is one planner suggestion to weave a specific reference in.
type Integration struct {
	RID         string       `json:"rid,omitempty"`
	Priority    PriorityHint `json:"priority,omitempty"`
	ActionType  string       `json:"action_type,omitempty"`
	Action      string       `json:"action,omitempty"`
	Why         string       `json:"why,omitempty"`
	Where       string       `json:"where,omitempty"`
	AnchorQuote string       `json:"anchor_quote,omitempty"`
	Example     string       `json:"example,omitempty"`
}

// SuggestionPayload is the global suggestion producer output.
type SuggestionPayload struct {
	Status   string           `json:"status"`
	Note     string           `json:"note,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Overview string           `json:"overview,omitempty"`
	Items    []SuggestionItem `json:"items,omitempty"`
}

// SuggestionItem is one global recommendation keyed by section and reference.
type SuggestionItem struct {
	SectionTitle string       `json:"section_title"`
	RID          string       `json:"rid,omitempty"`
	ActionType   string       `json:"action_type,omitempty"`
	Priority     PriorityHint `json:"priority,omitempty"`
	Action       string       `json:"action,omitempty"`
	Why          string       `json:"why,omitempty"`
	Where        string       `json:"where,omitempty"`
	AnchorQuote  string       `json:"anchor_quote,omitempty"`
}

// ReferenceStatus is the per-reference signal consulted during scoring.
// Malformed entries (non-object values) decode to the zero value, which reads
// as "status unknown" rather than an error.
type ReferenceStatus struct {
	InPaper bool `json:"in_paper"`
}

// UnmarshalJSON tolerates non-object reference records.
func (r *ReferenceStatus) UnmarshalJSON(data []byte) error {
	*r = ReferenceStatus{}
	type plain ReferenceStatus
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*r = ReferenceStatus(p)
	}
	return nil
}

// Options bounds the selector output. Values below 1 fall back to defaults.
type Options struct {
	MaxGlobalActions     int `json:"max_global_actions,omitempty"`
	MaxActionsPerSection int `json:"max_actions_per_section,omitempty"`
}

// Selector defaults.
const (
	DefaultMaxGlobalActions     = 5
	DefaultMaxActionsPerSection = 3
)

// normalized clamps the options to their minimums, applying defaults for
// unset values.
func (o Options) normalized() Options {
	if o.MaxGlobalActions == 0 {
		o.MaxGlobalActions = DefaultMaxGlobalActions
	}
	if o.MaxGlobalActions < 1 {
		o.MaxGlobalActions = 1
	}
	if o.MaxActionsPerSection == 0 {
		o.MaxActionsPerSection = DefaultMaxActionsPerSection
	}
	if o.MaxActionsPerSection < 1 {
		o.MaxActionsPerSection = 1
	}
	return o
}

// Input is one invocation's snapshot: the two producer payloads, the
// reference status lookup, and optional per-run selector overrides.
type Input struct {
	SectionPlans *PlanPayload               `json:"section_plans,omitempty"`
	Suggestions  *SuggestionPayload         `json:"suggestions,omitempty"`
	References   map[string]ReferenceStatus `json:"references,omitempty"`
	Options      *Options                   `json:"options,omitempty"`
}

// Report statuses.
const (
	StatusReportCompleted = "completed"
	StatusReportSkipped   = "skipped"
)

// Action is the public projection of one recommendation.
type Action struct {
	SectionTitle string   `json:"section_title"`
	ActionType   string   `json:"action_type"`
	Action       string   `json:"action"`
	Why          string   `json:"why"`
	Where        string   `json:"where"`
	AnchorQuote  string   `json:"anchor_quote"`
	RIDs         []string `json:"rids"`
}

// Section is a per-section bucket of recommendations not already shown
// globally.
type Section struct {
	Title   string   `json:"title"`
	Actions []Action `json:"actions"`
}

// Report is the assembled output consumed by the report renderer.
type Report struct {
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	Overview      string    `json:"overview,omitempty"`
	GlobalActions []Action  `json:"global_actions,omitempty"`
	Sections      []Section `json:"sections,omitempty"`
	Note          string    `json:"note,omitempty"`
}
