package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Defaults(t *testing.T) {
	policy := DefaultNormalizePolicy()
	registry := newSectionRegistry()

	cand := policy.normalize(rawCandidate{action: "Add a citation."}, registry, policy.hiddenKeys())

	require.NotNil(t, cand)
	assert.Equal(t, defaultSectionTitle, cand.SectionTitle)
	assert.Equal(t, ActionStrengthen, cand.ActionType)
	assert.Equal(t, DefaultWhy, cand.Why)
	assert.Equal(t, DefaultWhere, cand.Where)
	assert.Equal(t, defaultSource, cand.Source)
	assert.Equal(t, "section", cand.SectionKey)
	assert.Equal(t, "add a citation", cand.ActionKey)
}

func TestNormalize_EmptyActionDropped(t *testing.T) {
	policy := DefaultNormalizePolicy()

	cand := policy.normalize(rawCandidate{sectionTitle: "Intro", action: "   "}, newSectionRegistry(), policy.hiddenKeys())

	assert.Nil(t, cand)
}

func TestNormalize_HiddenSectionDropped(t *testing.T) {
	policy := DefaultNormalizePolicy()
	hidden := policy.hiddenKeys()

	for _, title := range []string{"opening", "Opening", "**Opening**"} {
		cand := policy.normalize(rawCandidate{sectionTitle: title, action: "Add a citation."}, newSectionRegistry(), hidden)
		assert.Nil(t, cand, "title %q must map to the hidden preamble section", title)
	}
}

func TestNormalize_CanonicalTitleRewrite(t *testing.T) {
	policy := DefaultNormalizePolicy()
	registry := newSectionRegistry()
	registry.register("Introduction")

	cand := policy.normalize(rawCandidate{sectionTitle: "**Introduction**", action: "Add a citation."}, registry, policy.hiddenKeys())

	require.NotNil(t, cand)
	assert.Equal(t, "Introduction", cand.SectionTitle)
	assert.Equal(t, "introduction", cand.SectionKey)
}

func TestNormalize_Idempotent(t *testing.T) {
	policy := DefaultNormalizePolicy()
	registry := newSectionRegistry()
	registry.register("## Results")
	hidden := policy.hiddenKeys()

	first := policy.normalize(rawCandidate{
		sectionTitle: "## **Results**",
		actionType:   "JUSTIFY",
		action:       "Explain  why `this`   citation fits.",
		anchorQuote:  "The effect was significant.",
		rids:         []string{"[r2]", "R2"},
		source:       "group_suggestion",
	}, registry, hidden)
	require.NotNil(t, first)

	second := policy.normalize(rawCandidate{
		sectionTitle: first.SectionTitle,
		actionType:   first.ActionType,
		action:       first.Action,
		why:          first.Why,
		where:        first.Where,
		anchorQuote:  first.AnchorQuote,
		rids:         first.RIDs,
		source:       first.Source,
	}, registry, hidden)
	require.NotNil(t, second)

	assert.Equal(t, first, second, "normalization must be a fixed point on its own output")
}

func TestNormalizeAll_DropsExactDuplicates(t *testing.T) {
	policy := DefaultNormalizePolicy()
	registry := newSectionRegistry()
	raw := rawCandidate{
		sectionTitle: "Methods",
		actionType:   "add",
		action:       "Add a citation for the sampling procedure.",
		rids:         []string{"R1"},
	}

	out := policy.normalizeAll([]rawCandidate{raw, raw}, registry)

	assert.Len(t, out, 1)
}

func TestNormalizeAll_KeepsNearDuplicatesForMerger(t *testing.T) {
	policy := DefaultNormalizePolicy()
	registry := newSectionRegistry()
	a := rawCandidate{sectionTitle: "Methods", actionType: "add", action: "Add a citation.", rids: []string{"R1"}}
	b := a
	b.actionType = "justify" // differs in one dedupe component

	out := policy.normalizeAll([]rawCandidate{a, b}, registry)

	assert.Len(t, out, 2, "near duplicates are the merger's job, not the normalizer's")
}
