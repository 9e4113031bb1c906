// internal/engine/engine.go

// Package engine implements the rule matching engine: it turns declarative
// two-sided proximity conditions into concrete text spans and extracted
// fields, against a periodically refreshed lexicon of domain terms.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/graintel/graintel/internal/types"
)

/*
 * Engine orchestration and rule/lexicon cache.
 *
 * The cache is a single atomically swapped pointer to an immutable
 * cacheState (rules + lexicon snapshot + refresh time). Refresh builds the
 * replacement state off to the side and publishes it with one pointer
 * store; concurrent matchers always read one consistent state, never a
 * partially rebuilt one. Concurrent refreshes are idempotent and
 * last-writer-wins.
 *
 * Refresh failures are logged and suppressed: the previous state stays
 * live (stale-but-valid) and extraction continues. No I/O happens on the
 * matching path itself.
 */

// DefaultCacheTTL is the maximum snapshot age before a matching call
// attempts a refresh.
const DefaultCacheTTL = 5 * time.Minute

// RuleSource fetches the active rule set. Implementations return rules
// ordered by priority descending then creation time ascending; the engine
// re-sorts anyway so the cache invariant does not depend on the source.
type RuleSource interface {
	ActiveRules(ctx context.Context) ([]types.Rule, error)
}

// LexiconSource fetches the externally maintained word lists.
type LexiconSource interface {
	CollectionPoints(ctx context.Context) ([]types.CollectionPoint, error)
	Regions(ctx context.Context) ([]types.Region, error)
}

// cacheState is one immutable generation of rules + lexicon.
// Never mutated after publication.
type cacheState struct {
	rules       []types.Rule
	lexicon     types.LexiconSnapshot
	refreshedAt time.Time
}

// Engine applies the cached rule set to input texts. Safe for concurrent
// use: matching is pure read-after-snapshot and the cache swap is atomic.
type Engine struct {
	ruleSource    RuleSource
	lexiconSource LexiconSource
	ttl           time.Duration
	now           func() time.Time
	log           *slog.Logger

	state atomic.Pointer[cacheState]
}

// Option configures an Engine.
type Option func(*Engine)

// WithTTL overrides the snapshot time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithClock injects the time source. Tests use this to drive staleness.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger injects the structured logger used for refresh diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine over the given rule and lexicon sources.
// The cache starts empty; the first matching call triggers the initial
// refresh.
func New(rules RuleSource, lexicon LexiconSource, opts ...Option) *Engine {
	e := &Engine{
		ruleSource:    rules,
		lexiconSource: lexicon,
		ttl:           DefaultCacheTTL,
		now:           time.Now,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyAll applies every cached rule to text and returns all matches,
// stably sorted ascending by SourceStart (ties keep cache/priority order).
// Overlapping matches from different rules are expected and preserved.
// Never returns an error: refresh failures fall back to the previous
// snapshot, and an engine with no snapshot at all simply matches nothing.
func (e *Engine) ApplyAll(ctx context.Context, text string) []types.MatchResult {
	st := e.ensureFresh(ctx)
	if st == nil {
		return nil
	}

	runes := []rune(text)
	var results []types.MatchResult
	for i := range st.rules {
		results = append(results, applyRule(&st.lexicon, &st.rules[i], runes)...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SourceStart < results[j].SourceStart
	})
	return results
}

// TestCondition runs each condition in conds independently against text
// and concatenates the fragments, without rule-identity wrapping. This is
// the interactive "test my rule" side channel: unlike production matching
// it evaluates every condition in the input, and the conditions need not
// be persisted. The lexicon snapshot is still used so lexicon-typed sides
// resolve; with no snapshot yet, keyword conditions still work.
func (e *Engine) TestCondition(ctx context.Context, conds []types.Condition, text string) []Fragment {
	st := e.ensureFresh(ctx)
	if st == nil {
		st = &cacheState{}
	}

	runes := []rune(text)
	var fragments []Fragment
	for _, cond := range conds {
		fragments = append(fragments, matchCondition(&st.lexicon, cond, runes)...)
	}
	return fragments
}

// ForceRefresh rebuilds the cache immediately, bypassing the TTL.
// Administrative "invalidate now" hook for use after rule edits; unlike
// the matching path it surfaces the refresh error to the caller.
func (e *Engine) ForceRefresh(ctx context.Context) error {
	return e.refresh(ctx)
}

// Snapshot returns the current lexicon snapshot, or false if no refresh
// has ever succeeded.
func (e *Engine) Snapshot() (types.LexiconSnapshot, bool) {
	st := e.state.Load()
	if st == nil {
		return types.LexiconSnapshot{}, false
	}
	return st.lexicon, true
}

// applyRule evaluates one rule's condition and attaches rule identity to
// each fragment. Only Conditions[0] is evaluated: the persisted shape
// allows more, but production matching is single-condition. Changing this
// to AND/OR composition is a behavior change, not a fix.
func applyRule(snap *types.LexiconSnapshot, rule *types.Rule, text []rune) []types.MatchResult {
	if len(rule.Conditions) == 0 {
		return nil
	}

	fragments := matchCondition(snap, rule.Conditions[0], text)
	if len(fragments) == 0 {
		return nil
	}

	results := make([]types.MatchResult, 0, len(fragments))
	for _, f := range fragments {
		results = append(results, types.MatchResult{
			RuleID:       rule.ID,
			RuleName:     rule.Name,
			TargetType:   rule.TargetType,
			TypeID:       rule.TypeID(),
			SourceText:   f.SourceText,
			SourceStart:  f.SourceStart,
			SourceEnd:    f.SourceEnd,
			Extracted:    f.Extracted,
			OutputConfig: rule.OutputConfig,
		})
	}
	return results
}

// ensureFresh returns the current state, refreshing first when stale or
// absent. Multiple callers may race into refresh; that is acceptable
// (refresh is idempotent, last writer wins). Returns nil only when no
// refresh has ever succeeded.
func (e *Engine) ensureFresh(ctx context.Context) *cacheState {
	st := e.state.Load()
	if st != nil && e.now().Sub(st.refreshedAt) <= e.ttl {
		return st
	}

	if err := e.refresh(ctx); err != nil {
		// Freshness failures must never interrupt extraction.
		e.log.Warn("cache refresh failed, serving previous snapshot",
			"error", err,
			"have_snapshot", st != nil)
	}
	return e.state.Load()
}

// refresh fetches rules and lexicon sources, builds the replacement state
// off to the side, and publishes it atomically. Any fetch error aborts the
// whole refresh and leaves the previous state untouched.
func (e *Engine) refresh(ctx context.Context) error {
	rules, err := e.ruleSource.ActiveRules(ctx)
	if err != nil {
		return fmt.Errorf("fetch active rules: %w", err)
	}

	points, err := e.lexiconSource.CollectionPoints(ctx)
	if err != nil {
		return fmt.Errorf("fetch collection points: %w", err)
	}

	regions, err := e.lexiconSource.Regions(ctx)
	if err != nil {
		return fmt.Errorf("fetch regions: %w", err)
	}

	// Priority desc, createdAt asc. Stable so equal rules keep source order.
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})

	now := e.now()
	next := &cacheState{
		rules: rules,
		lexicon: types.LexiconSnapshot{
			CollectionPointNames: flattenCollectionPoints(points),
			RegionNames:          flattenRegions(regions),
			Commodities:          CommodityList(),
			FetchedAt:            now,
		},
		refreshedAt: now,
	}
	e.state.Store(next)

	e.log.Debug("cache refreshed",
		"rules", len(rules),
		"collection_point_names", len(next.lexicon.CollectionPointNames),
		"region_names", len(next.lexicon.RegionNames))
	return nil
}

// flattenCollectionPoints expands each point into name, short name and
// aliases, in source order, skipping blanks.
func flattenCollectionPoints(points []types.CollectionPoint) []string {
	var out []string
	for _, p := range points {
		if p.Name != "" {
			out = append(out, p.Name)
		}
		if p.ShortName != "" {
			out = append(out, p.ShortName)
		}
		for _, a := range p.Aliases {
			if a != "" {
				out = append(out, a)
			}
		}
	}
	return out
}

// flattenRegions expands each region into name and short name, in source
// order, skipping blanks.
func flattenRegions(regions []types.Region) []string {
	var out []string
	for _, r := range regions {
		if r.Name != "" {
			out = append(out, r.Name)
		}
		if r.ShortName != "" {
			out = append(out, r.ShortName)
		}
	}
	return out
}
