package recommend

import (
	"strings"

	"github.com/ma-ji/miscite-sub001/internal/textnorm"
)

// fallbackIntegrationAction is used when a reference integration arrives
// without action text.
const fallbackIntegrationAction = "Integrate this reference where the claim is introduced."

// sectionRegistry is the insertion-ordered mapping from section key to the
// canonical display title. The first title seen for a key wins; later
// spellings of the same key (e.g. a bold-formatted duplicate) do not
// override it. Registry order defines the output section order.
type sectionRegistry struct {
	order  []string
	titles map[string]string
}

func newSectionRegistry() *sectionRegistry {
	return &sectionRegistry{titles: make(map[string]string)}
}

// register records a section title in encounter order. Empty titles are
// ignored.
func (r *sectionRegistry) register(rawTitle string) {
	title := textnorm.TrimTitle(rawTitle)
	if title == "" {
		return
	}
	key := textnorm.Key(title)
	if key == "" {
		return
	}
	if _, seen := r.titles[key]; seen {
		return
	}
	r.titles[key] = title
	r.order = append(r.order, key)
}

// canonicalTitle returns the registered display title for key, or "".
func (r *sectionRegistry) canonicalTitle(key string) string {
	return r.titles[key]
}

// position returns the first-appearance index of key, or -1 when the key was
// never registered.
func (r *sectionRegistry) position(key string) int {
	for i, k := range r.order {
		if k == key {
			return i
		}
	}
	return -1
}

// rawCandidate is a producer item flattened into the common candidate shape,
// before normalization.
type rawCandidate struct {
	sectionTitle string
	actionType   string
	action       string
	why          string
	where        string
	anchorQuote  string
	rids         []string
	hint         PriorityHint
	source       string
}

// extract flattens the two producer payloads into raw candidates, builds the
// section registry, and collects the payloads' note texts. A payload only
// contributes candidates when its status is "completed" (case-insensitive);
// its note (or failure reason) is surfaced either way.
func extract(plans *PlanPayload, suggestions *SuggestionPayload) ([]rawCandidate, *sectionRegistry, []string) {
	var raws []rawCandidate
	var notes []string
	registry := newSectionRegistry()

	if plans != nil {
		if note := payloadNote(plans.Note, plans.Reason); note != "" {
			notes = append(notes, note)
		}
		if payloadCompleted(plans.Status) {
			for _, item := range plans.Items {
				registry.register(item.Title)
				raws = append(raws, planCandidates(item)...)
			}
		}
	}

	if suggestions != nil {
		if note := payloadNote(suggestions.Note, suggestions.Reason); note != "" {
			notes = append(notes, note)
		}
		if payloadCompleted(suggestions.Status) {
			for _, item := range suggestions.Items {
				registry.register(item.SectionTitle)
				raws = append(raws, suggestionCandidate(item))
			}
		}
	}

	return raws, registry, notes
}

// planCandidates maps one section plan to raw candidates: one per
// improvement (default type strengthen) and one per reference integration
// (default type add, with a fallback action text).
func planCandidates(item PlanItem) []rawCandidate {
	if item.Plan == nil {
		return nil
	}
	sectionTitle := textnorm.Clean(item.Title)
	planMode := strings.ToLower(textnorm.Clean(item.PlanMode))
	if planMode == "" {
		planMode = "unknown"
	}
	source := "section_plan_" + planMode

	var out []rawCandidate
	for _, imp := range item.Plan.Improvements {
		actionType := cleanActionType(imp.ActionType)
		if actionType == "" {
			actionType = ActionStrengthen
		}
		out = append(out, rawCandidate{
			sectionTitle: sectionTitle,
			actionType:   actionType,
			action:       textnorm.Clean(imp.Action),
			why:          textnorm.Clean(imp.Why),
			where:        textnorm.Clean(imp.Where),
			anchorQuote:  textnorm.Clean(imp.AnchorQuote),
			rids:         cleanRIDs(imp.RIDs),
			hint:         imp.Priority,
			source:       source,
		})
	}
	for _, integ := range item.Plan.ReferenceIntegrations {
		actionType := cleanActionType(integ.ActionType)
		if actionType == "" {
			actionType = ActionAdd
		}
		action := textnorm.Clean(integ.Action)
		if action == "" {
			action = fallbackIntegrationAction
		}
		out = append(out, rawCandidate{
			sectionTitle: sectionTitle,
			actionType:   actionType,
			action:       action,
			why:          textnorm.Clean(integ.Why),
			where:        textnorm.Clean(integ.Where),
			anchorQuote:  textnorm.Clean(integ.AnchorQuote),
			rids:         cleanRIDs([]string{integ.RID}),
			hint:         integ.Priority,
			source:       source,
		})
	}
	return out
}

// suggestionCandidate maps one global suggestion item to a raw candidate.
func suggestionCandidate(item SuggestionItem) rawCandidate {
	return rawCandidate{
		sectionTitle: textnorm.Clean(item.SectionTitle),
		actionType:   cleanActionType(item.ActionType),
		action:       textnorm.Clean(item.Action),
		why:          textnorm.Clean(item.Why),
		where:        textnorm.Clean(item.Where),
		anchorQuote:  textnorm.Clean(item.AnchorQuote),
		rids:         cleanRIDs([]string{item.RID}),
		hint:         item.Priority,
		source:       "group_suggestion",
	}
}

func payloadCompleted(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusCompleted)
}

func payloadNote(note, reason string) string {
	if cleaned := textnorm.Clean(note); cleaned != "" {
		return cleaned
	}
	return textnorm.Clean(reason)
}
