package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_OnlyCompletedPayloadsContribute(t *testing.T) {
	plans := &PlanPayload{
		Status: "failed",
		Note:   "planner crashed",
		Items: []PlanItem{
			{Title: "Introduction", Plan: &SectionPlan{
				Improvements: []Improvement{{Action: "Tighten the claim."}},
			}},
		},
	}
	suggestions := &SuggestionPayload{
		Status: "Completed", // case-insensitive
		Items: []SuggestionItem{
			{SectionTitle: "Methods", RID: "R1", Action: "Add a citation."},
		},
	}

	raws, registry, notes := extract(plans, suggestions)

	require.Len(t, raws, 1, "failed payload must contribute no candidates")
	assert.Equal(t, "Methods", raws[0].sectionTitle)
	assert.Equal(t, "group_suggestion", raws[0].source)
	assert.Equal(t, []string{"planner crashed"}, notes, "note survives a failed payload")
	assert.Equal(t, -1, registry.position("introduction"), "failed payload registers nothing")
	assert.Equal(t, 0, registry.position("methods"))
}

func TestExtract_ReasonSurfacedWhenNoteMissing(t *testing.T) {
	plans := &PlanPayload{Status: "skipped", Reason: "No sections detected."}

	_, _, notes := extract(plans, nil)

	assert.Equal(t, []string{"No sections detected."}, notes)
}

func TestExtract_PlanCandidates(t *testing.T) {
	plans := &PlanPayload{
		Status: "completed",
		Items: []PlanItem{
			{
				Title:    "Discussion",
				PlanMode: "LLM",
				Plan: &SectionPlan{
					Improvements: []Improvement{
						{ActionType: "justify", Action: "Explain the link.", RIDs: []string{"r3", "[R4]", "r3", "x9"}},
						{Action: "Sharpen the wording."}, // no type -> strengthen
					},
					ReferenceIntegrations: []Integration{
						{RID: "r7"}, // no action -> fallback text, type add
					},
				},
			},
		},
	}

	raws, registry, _ := extract(plans, nil)

	require.Len(t, raws, 3)
	assert.Equal(t, "justify", raws[0].actionType)
	assert.Equal(t, []string{"R3", "R4"}, raws[0].rids, "rids uppercased, brackets stripped, deduped, non-R dropped")
	assert.Equal(t, "section_plan_llm", raws[0].source)
	assert.Equal(t, "strengthen", raws[1].actionType)
	assert.Equal(t, "add", raws[2].actionType)
	assert.Equal(t, fallbackIntegrationAction, raws[2].action)
	assert.Equal(t, []string{"R7"}, raws[2].rids)
	assert.Equal(t, 0, registry.position("discussion"))
}

func TestExtract_PlanModeDefaultsToUnknown(t *testing.T) {
	plans := &PlanPayload{
		Status: "completed",
		Items: []PlanItem{
			{Title: "Results", Plan: &SectionPlan{Improvements: []Improvement{{Action: "Do something."}}}},
		},
	}

	raws, _, _ := extract(plans, nil)

	require.Len(t, raws, 1)
	assert.Equal(t, "section_plan_unknown", raws[0].source)
}

func TestExtract_RegistryKeepsFirstTitleAndOrder(t *testing.T) {
	plans := &PlanPayload{
		Status: "completed",
		Items: []PlanItem{
			{Title: "**Introduction**"},
			{Title: "Methods"},
		},
	}
	suggestions := &SuggestionPayload{
		Status: "completed",
		Items: []SuggestionItem{
			{SectionTitle: "Introduction", RID: "R1", Action: "Add."}, // same key, later spelling
			{SectionTitle: "Discussion", RID: "R2", Action: "Add."},
		},
	}

	_, registry, _ := extract(plans, suggestions)

	assert.Equal(t, "Introduction", registry.canonicalTitle("introduction"), "first registration wins, emphasis stripped")
	assert.Equal(t, 0, registry.position("introduction"))
	assert.Equal(t, 1, registry.position("methods"))
	assert.Equal(t, 2, registry.position("discussion"))
}

func TestExtract_ItemWithoutPlanStillRegistersTitle(t *testing.T) {
	plans := &PlanPayload{
		Status: "completed",
		Items:  []PlanItem{{Title: "Limitations"}},
	}

	raws, registry, _ := extract(plans, nil)

	assert.Empty(t, raws)
	assert.Equal(t, 0, registry.position("limitations"))
}

func TestExtract_NilPayloads(t *testing.T) {
	raws, registry, notes := extract(nil, nil)

	assert.Empty(t, raws)
	assert.Empty(t, notes)
	assert.Empty(t, registry.order)
}
