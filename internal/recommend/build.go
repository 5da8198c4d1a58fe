package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ma-ji/miscite-sub001/internal/metrics"
	"github.com/ma-ji/miscite-sub001/internal/textnorm"
)

// skipReason doubles as the skipped-run reason and the empty overview text.
const skipReason = "No recommendations were generated for this run."

// BuilderConfig configures a Builder. Zero-value policies fall back to the
// production defaults.
type BuilderConfig struct {
	Options   Options
	Normalize NormalizePolicy
	Score     ScorePolicy
	Merge     MergePolicy
}

// Builder assembles recommendation reports. Safe for concurrent use: Build
// operates only on its arguments and local state.
type Builder struct {
	opts   Options
	norm   NormalizePolicy
	score  ScorePolicy
	merge  MergePolicy
	logger *zap.Logger
}

// NewBuilder constructs a Builder. A nil logger disables logging.
func NewBuilder(cfg BuilderConfig, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	norm := cfg.Normalize
	if norm.DefaultWhy == "" && norm.DefaultWhere == "" && norm.HiddenSections == nil {
		norm = DefaultNormalizePolicy()
	}
	score := cfg.Score
	if score.ActionWeights == nil {
		score = DefaultScorePolicy()
	}
	merge := cfg.Merge
	if merge.SameTypeActionSim == 0 {
		merge = DefaultMergePolicy()
	}
	merge.defaultWhy = norm.DefaultWhy
	merge.defaultWhere = norm.DefaultWhere
	return &Builder{
		opts:   cfg.Options.normalized(),
		norm:   norm,
		score:  score,
		merge:  merge,
		logger: logger,
	}
}

// Build turns one snapshot of producer payloads into a report. It never
// fails: malformed input degrades to defaults and the only terminal states
// are "completed" and "skipped".
func (b *Builder) Build(in Input) Report {
	started := time.Now()

	opts := b.opts
	if in.Options != nil {
		opts = in.Options.normalized()
	}

	raws, registry, notes := extract(in.SectionPlans, in.Suggestions)
	candidates := b.norm.normalizeAll(raws, registry)

	if len(candidates) == 0 {
		metrics.RunsTotal.WithLabelValues(StatusReportSkipped).Inc()
		b.logger.Info("recommendation run skipped", zap.Int("raw_candidates", len(raws)))
		return Report{Status: StatusReportSkipped, Reason: skipReason}
	}

	b.rescore(candidates, in.References)
	merged := b.merge.mergeAll(candidates)
	b.rescore(merged, in.References)

	mergeCount := len(candidates) - len(merged)
	metrics.CandidatesPerRun.Observe(float64(len(candidates)))
	metrics.MergesTotal.Add(float64(mergeCount))

	report := b.assemble(merged, registry, in.Suggestions, notes, opts)

	metrics.RunsTotal.WithLabelValues(report.Status).Inc()
	metrics.BuildDuration.Observe(time.Since(started).Seconds())
	b.logger.Info("recommendation run completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("merged", mergeCount),
		zap.Int("global_actions", len(report.GlobalActions)),
		zap.Int("sections", len(report.Sections)),
	)
	return report
}

// rescore recomputes and re-sorts by (-score, section_key, action_key);
// the lexicographic tiebreaks keep output deterministic.
func (b *Builder) rescore(candidates []*Candidate, refs map[string]ReferenceStatus) {
	for _, cand := range candidates {
		cand.score = b.score.Score(cand, refs, b.norm.DefaultWhere)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, c := candidates[i], candidates[j]
		if a.score != c.score {
			return a.score > c.score
		}
		if a.SectionKey != c.SectionKey {
			return a.SectionKey < c.SectionKey
		}
		return a.ActionKey < c.ActionKey
	})
}

// assemble splits the sorted candidates into the capped global list and the
// capped per-section buckets. The two views never share a candidate: every
// global signature is skipped during the section walk.
func (b *Builder) assemble(sorted []*Candidate, registry *sectionRegistry, suggestions *SuggestionPayload, notes []string, opts Options) Report {
	globalCount := opts.MaxGlobalActions
	if globalCount > len(sorted) {
		globalCount = len(sorted)
	}

	globalActions := make([]Action, 0, globalCount)
	globalKeys := make(map[string]struct{}, globalCount)
	for _, cand := range sorted[:globalCount] {
		globalActions = append(globalActions, cand.public())
		globalKeys[cand.signature()] = struct{}{}
	}

	buckets := make(map[string][]Action)
	bucketTitle := make(map[string]string)
	for _, cand := range sorted {
		if _, shown := globalKeys[cand.signature()]; shown {
			continue
		}
		key := cand.SectionKey
		if len(buckets[key]) >= opts.MaxActionsPerSection {
			continue
		}
		buckets[key] = append(buckets[key], cand.public())
		bucketTitle[key] = cand.SectionTitle
	}

	sectionKeys := make([]string, 0, len(buckets))
	for key := range buckets {
		sectionKeys = append(sectionKeys, key)
	}
	sort.Slice(sectionKeys, func(i, j int) bool {
		pi, pj := registry.position(sectionKeys[i]), registry.position(sectionKeys[j])
		if pi < 0 && pj < 0 {
			return sectionKeys[i] < sectionKeys[j]
		}
		if pi < 0 {
			return false
		}
		if pj < 0 {
			return true
		}
		return pi < pj
	})

	sections := make([]Section, 0, len(sectionKeys))
	for _, key := range sectionKeys {
		sections = append(sections, Section{Title: bucketTitle[key], Actions: buckets[key]})
	}

	overview := ""
	if suggestions != nil {
		overview = textnorm.Clean(suggestions.Overview)
	}
	if overview == "" {
		overview = defaultOverview(globalActions)
	}

	return Report{
		Status:        StatusReportCompleted,
		Overview:      overview,
		GlobalActions: globalActions,
		Sections:      sections,
		Note:          joinNotes(notes),
	}
}

// defaultOverview synthesizes an overview from the top global action.
func defaultOverview(actions []Action) string {
	if len(actions) == 0 {
		return skipReason
	}
	top := actions[0]
	action := top.Action
	if action == "" {
		action = "Review the manuscript claims and citations."
	}
	section := top.SectionTitle
	if section == "" {
		section = "the manuscript"
	}
	return fmt.Sprintf("Start with %s: %s", section, action)
}

// joinNotes space-joins the producers' notes, deduplicated in order.
func joinNotes(notes []string) string {
	var out []string
	seen := make(map[string]struct{}, len(notes))
	for _, note := range notes {
		if note == "" {
			continue
		}
		if _, dup := seen[note]; dup {
			continue
		}
		seen[note] = struct{}{}
		out = append(out, note)
	}
	return strings.Join(out, " ")
}
