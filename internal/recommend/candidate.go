// Package recommend aggregates machine-generated editorial suggestions about
// a manuscript's citations into a deduplicated, ranked report. Two upstream
// producers feed it: a per-section planning pass and a global suggestion pass.
// The pipeline is normalize -> score -> merge -> rescore -> select, and is a
// pure transformation: no I/O, no state across invocations.
package recommend

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/ma-ji/miscite-sub001/internal/textnorm"
)

// Recognized action types, ordered by precedence (strongest first).
const (
	ActionReconsider = "reconsider"
	ActionJustify    = "justify"
	ActionAdd        = "add"
	ActionStrengthen = "strengthen"
)

// actionPrecedence ranks action types for merge conflicts. Unknown types
// rank below everything.
var actionPrecedence = map[string]int{
	ActionReconsider: 4,
	ActionJustify:    3,
	ActionAdd:        2,
	ActionStrengthen: 1,
}

// ridPattern matches a normalized reference identifier token.
var ridPattern = regexp.MustCompile(`^R[0-9A-Z]+$`)

// HintKind discriminates the priority hint variants.
type HintKind int

const (
	// HintNone means the producer supplied no usable priority hint.
	HintNone HintKind = iota
	// HintRank is an integer rank; lower means higher priority.
	HintRank
	// HintLabel is one of the "high"/"medium"/"low" labels.
	HintLabel
)

// PriorityHint is the tagged form of the producers' free-form priority field,
// which arrives as either an integer rank or a string label.
type PriorityHint struct {
	Kind  HintKind
	Rank  int
	Label string
}

// UnmarshalJSON accepts a number, a string, or anything else (treated as no
// hint). It never fails: malformed hints degrade to HintNone per the
// error-handling contract.
func (h *PriorityHint) UnmarshalJSON(data []byte) error {
	*h = PriorityHint{}
	if string(data) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		h.Kind = HintRank
		h.Rank = int(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			h.Kind = HintLabel
			h.Label = s
		}
		return nil
	}
	return nil
}

// weight maps a hint to a comparable priority score used by merge conflicts:
// rank h -> max(0, 100-max(1,h)*10); high/medium/low -> 30/20/10; else 0.
func (h PriorityHint) weight() int {
	switch h.Kind {
	case HintRank:
		r := h.Rank
		if r < 1 {
			r = 1
		}
		w := 100 - r*10
		if w < 0 {
			w = 0
		}
		return w
	case HintLabel:
		switch h.Label {
		case "high":
			return 30
		case "medium":
			return 20
		case "low":
			return 10
		}
	}
	return 0
}

// Candidate is one normalized editorial recommendation flowing through the
// pipeline. Derived keys are pure functions of their source fields and are
// recomputed whenever a merge rewrites them.
type Candidate struct {
	SectionTitle string
	SectionKey   string
	ActionType   string
	Action       string
	ActionKey    string
	Why          string
	Where        string
	AnchorQuote  string
	AnchorKey    string
	RIDs         []string
	Hint         PriorityHint
	Source       string

	score int
}

// refreshKeys recomputes the derived identity keys from the current field
// values.
func (c *Candidate) refreshKeys() {
	c.SectionKey = textnorm.Key(c.SectionTitle)
	c.ActionKey = textnorm.Key(c.Action)
	c.AnchorKey = textnorm.Key(c.AnchorQuote)
}

// sortedRIDs returns the candidate's reference ids sorted for identity
// comparisons; display order (first appearance) is kept in RIDs itself.
func (c *Candidate) sortedRIDs() []string {
	out := append([]string(nil), c.RIDs...)
	sort.Strings(out)
	return out
}

// ridKey is the sorted, comma-joined rid set used inside identity signatures.
func (c *Candidate) ridKey() string {
	return strings.Join(c.sortedRIDs(), ",")
}

// dedupeKey identifies exact duplicates after normalization.
func (c *Candidate) dedupeKey() string {
	return strings.Join([]string{c.SectionKey, c.ActionType, c.ridKey(), c.ActionKey}, "\x1f")
}

// signature identifies a candidate across the global and per-section views;
// the two views must never share a signature.
func (c *Candidate) signature() string {
	return strings.Join([]string{c.SectionKey, c.ActionType, c.ridKey(), c.ActionKey, c.AnchorKey}, "\x1f")
}

// public projects the candidate to its output shape, stripping internal
// score and keys.
func (c *Candidate) public() Action {
	rids := c.RIDs
	if rids == nil {
		rids = []string{}
	}
	return Action{
		SectionTitle: c.SectionTitle,
		ActionType:   c.ActionType,
		Action:       c.Action,
		Why:          c.Why,
		Where:        c.Where,
		AnchorQuote:  c.AnchorQuote,
		RIDs:         rids,
	}
}

// cleanRIDs normalizes reference id tokens: trimmed, uppercased, brackets
// stripped, matching R<digits/letters>, duplicates removed, first-appearance
// order preserved.
func cleanRIDs(rids []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, rid := range rids {
		text := strings.ToUpper(strings.TrimSpace(rid))
		text = strings.NewReplacer("[", "", "]", "").Replace(text)
		if !ridPattern.MatchString(text) {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

// cleanActionType returns the recognized action type or "".
func cleanActionType(s string) string {
	text := strings.ToLower(textnorm.Clean(s))
	if _, ok := actionPrecedence[text]; ok {
		return text
	}
	return ""
}
