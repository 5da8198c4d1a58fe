package recommend

import (
	"github.com/ma-ji/miscite-sub001/internal/textnorm"
)

// Default texts substituted for missing free-text fields so the rendered
// report never shows blanks.
const (
	DefaultWhy   = "This change improves how evidence supports the claim."
	DefaultWhere = "Near the sentence where the claim is made."

	defaultSectionTitle = "Section"
	defaultSource       = "recommendation"
)

// hiddenSectionTitle is the title the manuscript splitter gives the
// pre-heading preamble; recommendations against it are never shown.
const hiddenSectionTitle = "opening"

// NormalizePolicy is the immutable configuration of the candidate
// normalizer.
type NormalizePolicy struct {
	HiddenSections []string
	DefaultWhy     string
	DefaultWhere   string
}

// DefaultNormalizePolicy returns the production normalization policy.
func DefaultNormalizePolicy() NormalizePolicy {
	return NormalizePolicy{
		HiddenSections: []string{hiddenSectionTitle},
		DefaultWhy:     DefaultWhy,
		DefaultWhere:   DefaultWhere,
	}
}

// hiddenKeys derives the normalized key set of the hidden sections.
func (p NormalizePolicy) hiddenKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(p.HiddenSections))
	for _, title := range p.HiddenSections {
		if key := textnorm.Key(title); key != "" {
			keys[key] = struct{}{}
		}
	}
	return keys
}

// normalize validates and canonicalizes one raw candidate. It returns nil
// when the candidate is dropped: empty action text, or a hidden section.
// Section titles are rewritten to the registry's canonical spelling so that
// differently formatted duplicates of the same heading converge.
func (p NormalizePolicy) normalize(raw rawCandidate, registry *sectionRegistry, hidden map[string]struct{}) *Candidate {
	action := textnorm.Clean(raw.action)
	if action == "" {
		return nil
	}

	title := textnorm.TrimTitle(raw.sectionTitle)
	if title == "" {
		title = defaultSectionTitle
	}
	key := textnorm.Key(title)
	if _, drop := hidden[key]; drop {
		return nil
	}
	if canonical := registry.canonicalTitle(key); canonical != "" {
		title = canonical
	}

	actionType := cleanActionType(raw.actionType)
	if actionType == "" {
		actionType = ActionStrengthen
	}

	why := textnorm.Clean(raw.why)
	if why == "" {
		why = p.DefaultWhy
	}
	where := textnorm.Clean(raw.where)
	if where == "" {
		where = p.DefaultWhere
	}

	source := textnorm.Clean(raw.source)
	if source == "" {
		source = defaultSource
	}

	cand := &Candidate{
		SectionTitle: title,
		ActionType:   actionType,
		Action:       action,
		Why:          why,
		Where:        where,
		AnchorQuote:  textnorm.Clean(raw.anchorQuote),
		RIDs:         cleanRIDs(raw.rids),
		Hint:         raw.hint,
		Source:       source,
	}
	cand.refreshKeys()
	return cand
}

// normalizeAll runs the normalizer over every raw candidate and suppresses
// exact duplicates: the later of two candidates agreeing on
// (section_key, action_type, sorted rids, action_key) is dropped.
func (p NormalizePolicy) normalizeAll(raws []rawCandidate, registry *sectionRegistry) []*Candidate {
	hidden := p.hiddenKeys()
	seen := make(map[string]struct{})
	var out []*Candidate
	for _, raw := range raws {
		cand := p.normalize(raw, registry, hidden)
		if cand == nil {
			continue
		}
		key := cand.dedupeKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cand)
	}
	return out
}
