package recommend

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source tag suffixes consulted by the scorer. Provenance is a tiebreak
// signal only, never a correctness input.
const (
	llmSourceSuffix       = "_llm"
	heuristicSourceSuffix = "_heuristic"
)

// ScorePolicy holds the scoring weights. The defaults reproduce the tuned
// production values; a yaml policy file may override individual fields so
// alternate policies are testable in isolation.
type ScorePolicy struct {
	ActionWeights map[string]int `yaml:"action_weights"`
	DefaultWeight int            `yaml:"default_weight"`

	// Integer rank hint p contributes max(0, ceiling - max(1,p)*step).
	RankBonusCeiling int `yaml:"rank_bonus_ceiling"`
	RankBonusStep    int `yaml:"rank_bonus_step"`

	HighBonus   int `yaml:"high_bonus"`
	MediumBonus int `yaml:"medium_bonus"`

	UncitedBonus          int `yaml:"uncited_bonus"`
	AnchorBonus           int `yaml:"anchor_bonus"`
	NoAnchorPenalty       int `yaml:"no_anchor_penalty"`
	NoRIDPenalty          int `yaml:"no_rid_penalty"`
	LLMSourceBonus        int `yaml:"llm_source_bonus"`
	HeuristicNoRIDPenalty int `yaml:"heuristic_no_rid_penalty"`
	DefaultWherePenalty   int `yaml:"default_where_penalty"`
}

// DefaultScorePolicy returns the production scoring weights.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		ActionWeights: map[string]int{
			ActionReconsider: 95,
			ActionJustify:    90,
			ActionAdd:        85,
			ActionStrengthen: 80,
		},
		DefaultWeight:         75,
		RankBonusCeiling:      25,
		RankBonusStep:         5,
		HighBonus:             18,
		MediumBonus:           9,
		UncitedBonus:          8,
		AnchorBonus:           6,
		NoAnchorPenalty:       4,
		NoRIDPenalty:          6,
		LLMSourceBonus:        2,
		HeuristicNoRIDPenalty: 3,
		DefaultWherePenalty:   3,
	}
}

// LoadScorePolicy reads a yaml policy file and overlays it on the defaults.
func LoadScorePolicy(path string) (ScorePolicy, error) {
	policy := DefaultScorePolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read score policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return DefaultScorePolicy(), fmt.Errorf("parse score policy: %w", err)
	}
	if policy.ActionWeights == nil {
		policy.ActionWeights = DefaultScorePolicy().ActionWeights
	}
	return policy, nil
}

// Score computes the candidate's integer priority score from its action
// type, priority hint, reference-status signals, anchoring, and provenance.
// Deterministic and side-effect free; may be negative. defaultWhere is the
// normalizer's placeholder text, which scores as "location unknown".
func (p ScorePolicy) Score(c *Candidate, refs map[string]ReferenceStatus, defaultWhere string) int {
	score, ok := p.ActionWeights[c.ActionType]
	if !ok {
		score = p.DefaultWeight
	}

	switch c.Hint.Kind {
	case HintRank:
		r := c.Hint.Rank
		if r < 1 {
			r = 1
		}
		if bonus := p.RankBonusCeiling - r*p.RankBonusStep; bonus > 0 {
			score += bonus
		}
	case HintLabel:
		switch c.Hint.Label {
		case "high":
			score += p.HighBonus
		case "medium":
			score += p.MediumBonus
		}
	}

	// References absent from the lookup or not cited in the paper make the
	// recommendation more urgent, not less.
	for _, rid := range c.RIDs {
		if !refs[rid].InPaper {
			score += p.UncitedBonus
			break
		}
	}

	if c.AnchorQuote != "" {
		score += p.AnchorBonus
	} else {
		score -= p.NoAnchorPenalty
	}

	if len(c.RIDs) == 0 {
		score -= p.NoRIDPenalty
	}

	if strings.HasSuffix(c.Source, llmSourceSuffix) {
		score += p.LLMSourceBonus
	}
	if strings.HasSuffix(c.Source, heuristicSourceSuffix) && len(c.RIDs) == 0 {
		score -= p.HeuristicNoRIDPenalty
	}

	if c.Where == "" || c.Where == defaultWhere {
		score -= p.DefaultWherePenalty
	}

	return score
}
