package recommend

import (
	"github.com/ma-ji/miscite-sub001/internal/textnorm"
)

// MergePolicy holds the redundancy thresholds. The values are empirically
// tuned and preserved verbatim for behavioral compatibility; do not re-derive
// them.
type MergePolicy struct {
	// Same action type: rid intersection plus one of these text overlaps.
	SameTypeActionSim float64 `yaml:"same_type_action_sim"`
	SameTypeWhySim    float64 `yaml:"same_type_why_sim"`
	// Same action type, identical rid sets: anchor agreement bar.
	SameTypeAnchorSim float64 `yaml:"same_type_anchor_sim"`
	// Different action types collapse only on near-identical text.
	CrossTypeAnchorActionSim float64 `yaml:"cross_type_anchor_action_sim"`
	CrossTypeRIDActionSim    float64 `yaml:"cross_type_rid_action_sim"`
	// Texts at least this similar are reconciled by length.
	DetailSim float64 `yaml:"detail_sim"`

	// Placeholder texts, needed by the prefer-detail rule.
	defaultWhy   string
	defaultWhere string
}

// DefaultMergePolicy returns the production merge thresholds.
func DefaultMergePolicy() MergePolicy {
	return MergePolicy{
		SameTypeActionSim:        0.42,
		SameTypeWhySim:           0.38,
		SameTypeAnchorSim:        0.45,
		CrossTypeAnchorActionSim: 0.8,
		CrossTypeRIDActionSim:    0.9,
		DetailSim:                0.82,
		defaultWhy:               DefaultWhy,
		defaultWhere:             DefaultWhere,
	}
}

// mergeAll folds redundant candidates together. The input must already be
// score-sorted: the scan is greedy first-match, so earlier (higher-scored)
// candidates anchor the surviving text of a merge chain. Cross-section
// merges never happen.
func (p MergePolicy) mergeAll(in []*Candidate) []*Candidate {
	out := make([]*Candidate, 0, len(in))
	for _, cand := range in {
		merged := false
		for _, target := range out {
			if p.redundant(target, cand) {
				p.mergeInto(target, cand)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, cand)
		}
	}
	return out
}

// redundant reports whether two candidates describe the same underlying
// recommendation. Candidates in different sections are never redundant.
func (p MergePolicy) redundant(a, b *Candidate) bool {
	if a.SectionKey != b.SectionKey {
		return false
	}
	if a.ActionType == b.ActionType {
		return p.sameTypeRedundant(a, b)
	}
	return p.crossTypeRedundant(a, b)
}

func (p MergePolicy) sameTypeRedundant(a, b *Candidate) bool {
	if a.AnchorKey != "" && a.AnchorKey == b.AnchorKey {
		return true
	}
	if ridsIntersect(a.RIDs, b.RIDs) {
		if textnorm.Overlap(a.Action, b.Action) >= p.SameTypeActionSim {
			return true
		}
		if textnorm.Overlap(a.Why, b.Why) >= p.SameTypeWhySim {
			return true
		}
	}
	if len(a.RIDs) > 0 && a.ridKey() == b.ridKey() {
		if a.AnchorQuote == "" || b.AnchorQuote == "" {
			return true
		}
		if textnorm.Overlap(a.AnchorQuote, b.AnchorQuote) >= p.SameTypeAnchorSim {
			return true
		}
	}
	return false
}

// crossTypeRedundant applies the stricter bars for candidates whose action
// verbs differ: only a clearly-identical recommendation collapses.
func (p MergePolicy) crossTypeRedundant(a, b *Candidate) bool {
	if a.AnchorKey != "" && a.AnchorKey == b.AnchorKey &&
		textnorm.Overlap(a.Action, b.Action) >= p.CrossTypeAnchorActionSim {
		return true
	}
	if ridsIntersect(a.RIDs, b.RIDs) &&
		textnorm.Overlap(a.Action, b.Action) >= p.CrossTypeRIDActionSim {
		return true
	}
	return false
}

// mergeInto folds incoming into target. The stronger action framing wins,
// rids union, free-text fields reconcile by the prefer-detail rule, and the
// higher-priority hint survives. Derived keys are recomputed afterwards.
func (p MergePolicy) mergeInto(target, incoming *Candidate) {
	if actionPrecedence[incoming.ActionType] > actionPrecedence[target.ActionType] {
		target.ActionType = incoming.ActionType
		target.Action = incoming.Action
	}
	if target.Action == "" {
		target.Action = incoming.Action
	}

	target.RIDs = unionRIDs(target.RIDs, incoming.RIDs)

	target.Why = p.preferDetail(target.Why, incoming.Why, p.defaultWhy)
	target.Where = p.preferDetail(target.Where, incoming.Where, p.defaultWhere)
	target.AnchorQuote = p.preferDetail(target.AnchorQuote, incoming.AnchorQuote, "")

	if incoming.Hint.weight() > target.Hint.weight() {
		target.Hint = incoming.Hint
	}
	if target.Source == "" {
		target.Source = incoming.Source
	}

	target.refreshKeys()
}

// preferDetail reconciles two versions of a free-text field: a non-empty
// side beats an empty one, real text beats the default placeholder, and
// otherwise the longer text wins with ties kept on the target.
func (p MergePolicy) preferDetail(target, incoming, placeholder string) string {
	if target == "" {
		return incoming
	}
	if incoming == "" {
		return target
	}
	if placeholder != "" {
		if target == placeholder && incoming != placeholder {
			return incoming
		}
		if incoming == placeholder && target != placeholder {
			return target
		}
	}
	if textnorm.Overlap(target, incoming) >= p.DetailSim {
		if len(incoming) > len(target) {
			return incoming
		}
		return target
	}
	if len(incoming) > len(target) {
		return incoming
	}
	return target
}

func ridsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, rid := range a {
		set[rid] = struct{}{}
	}
	for _, rid := range b {
		if _, ok := set[rid]; ok {
			return true
		}
	}
	return false
}

// unionRIDs merges two rid lists, keeping first-appearance order.
func unionRIDs(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]struct{}, len(a))
	for _, rid := range a {
		seen[rid] = struct{}{}
	}
	for _, rid := range b {
		if _, dup := seen[rid]; dup {
			continue
		}
		seen[rid] = struct{}{}
		out = append(out, rid)
	}
	return out
}
