// internal/engine/match.go
package engine

import (
	"github.com/graintel/graintel/internal/types"
)

/*
 * Condition matching scan loop.
 *
 * For one condition: resolve both candidate sides, enumerate every
 * occurrence of every distinct left candidate left-to-right, compute the
 * connector window per occurrence, and take the first right candidate (in
 * declared order) whose first occurrence at or after the window start lies
 * strictly before the window end. First-match-wins, not best-match: the
 * order of rule literals and lexicon entries is load-bearing.
 *
 * The left cursor advances by one rune after each hit so overlapping left
 * matches are found. After a successful right match for a left occurrence
 * the scan moves to the next left occurrence.
 *
 * Matching is pure read-after-snapshot: no I/O, no mutation, deterministic
 * for a given (snapshot, condition, text) triple.
 */

// Fragment is a rule-agnostic condition match: a text span plus extracted
// fields, before rule identity is attached. TestCondition returns these
// directly; ApplyAll wraps them into MatchResults.
type Fragment struct {
	SourceText  string              `json:"sourceText"`
	SourceStart int                 `json:"sourceStart"`
	SourceEnd   int                 `json:"sourceEnd"`
	Extracted   types.ExtractedData `json:"extractedData"`
}

// matchCondition scans text for one condition and returns all fragments.
// An empty candidate side yields nil: partially authored conditions are
// inert, not erroneous.
func matchCondition(snap *types.LexiconSnapshot, cond types.Condition, text []rune) []Fragment {
	left := distinctNonEmpty(resolveCandidates(snap, cond.LeftType, cond.LeftValue))
	right := nonEmpty(resolveCandidates(snap, cond.RightType, cond.RightValue))
	if len(left) == 0 || len(right) == 0 {
		return nil
	}

	rightRunes := make([][]rune, len(right))
	for i, rc := range right {
		rightRunes[i] = []rune(rc)
	}

	var fragments []Fragment
	for _, lc := range left {
		needle := []rune(lc)
		cursor := 0
		for {
			leftStart := indexRunes(text, needle, cursor)
			if leftStart < 0 {
				break
			}
			leftEnd := leftStart + len(needle)

			if w, ok := resolveWindow(cond.Connector, text, leftStart, len(needle)); ok {
				for i, rr := range rightRunes {
					rightStart := indexRunes(text, rr, w.start)
					if rightStart < 0 || rightStart >= w.end {
						continue
					}
					rightEnd := rightStart + len(rr)

					// Span is the offset union of both sides: equals
					// [leftStart, rightEnd) for forward connectors and
					// stays a valid range when the right side precedes
					// the left (PRECEDED_BY).
					start := min(leftStart, rightStart)
					end := max(leftEnd, rightEnd)

					fragments = append(fragments, Fragment{
						SourceText:  string(text[start:end]),
						SourceStart: start,
						SourceEnd:   end,
						Extracted:   extractFields(cond.ExtractFields, lc, right[i]),
					})
					break
				}
			}

			// Advance by one rune, not past the match: overlapping left
			// occurrences are distinct match anchors.
			cursor = leftStart + 1
		}
	}

	return fragments
}

// extractFields copies the literal matched candidate strings into the
// configured output fields. The copy is the candidate itself, never the
// surrounding rule context.
func extractFields(cfg *types.ExtractFields, leftCand, rightCand string) types.ExtractedData {
	var out types.ExtractedData
	if cfg == nil {
		return out
	}
	out.Subject = pickSide(cfg.Subject, leftCand, rightCand)
	out.Action = pickSide(cfg.Action, leftCand, rightCand)
	out.Value = pickSide(cfg.Value, leftCand, rightCand)
	return out
}

func pickSide(src types.ExtractSource, leftCand, rightCand string) string {
	switch src {
	case types.ExtractLeft:
		return leftCand
	case types.ExtractRight:
		return rightCand
	}
	return ""
}

// indexRunes returns the rune offset of the first occurrence of needle in
// text at or after from, or -1. Naive scan: candidate lists are short and
// documents are bounded, so the constant factor beats building a searcher
// per candidate.
func indexRunes(text, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	if from < 0 {
		from = 0
	}
	last := len(text) - len(needle)
	for i := from; i <= last; i++ {
		if text[i] != needle[0] {
			continue
		}
		match := true
		for j := 1; j < len(needle); j++ {
			if text[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// distinctNonEmpty drops empty strings and duplicates, preserving first
// occurrence order. Duplicate left candidates would emit duplicate
// fragments for the same span.
func distinctNonEmpty(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// nonEmpty drops empty strings, preserving order. Right candidates keep
// duplicates: only the first occurrence in declared order can ever win, so
// duplicates are harmless and source order stays untouched.
func nonEmpty(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
