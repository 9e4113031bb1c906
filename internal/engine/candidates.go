// internal/engine/candidates.go
package engine

import (
	"github.com/graintel/graintel/internal/types"
)

/*
 * Candidate resolution.
 *
 * Maps a condition side's declared type to the concrete literal strings the
 * matcher scans for. KEYWORD sides carry their own literals on the rule;
 * COLLECTION_POINT, REGION and COMMODITY sides resolve against the lexicon
 * snapshot; NUMBER and DATE sides resolve to a single sentinel token.
 *
 * Sentinel tokens are a preserved limitation: numeric/date sides degrade to
 * a literal substring search for the sentinel itself rather than true value
 * recognition. True recognition would slot in here as a per-type matching
 * strategy without touching the scan loop.
 *
 * An empty candidate list is a normal outcome (partially authored rule),
 * never an error: the condition is silently inert.
 */

// Sentinel tokens standing in for value-kind matching.
const (
	NumberSentinel = "__NUMBER__"
	DateSentinel   = "__DATE__"
)

// resolveCandidates returns the candidate strings for one condition side.
// Source order is significant and preserved: the matcher's first-match-wins
// policy depends on it. Unknown types resolve to nil (inert side).
func resolveCandidates(snap *types.LexiconSnapshot, t types.CandidateType, literals []string) []string {
	switch t {
	case types.CandidateKeyword:
		return literals
	case types.CandidateCollectionPoint:
		return snap.CollectionPointNames
	case types.CandidateRegion:
		return snap.RegionNames
	case types.CandidateCommodity:
		return snap.Commodities
	case types.CandidateNumber:
		return []string{NumberSentinel}
	case types.CandidateDate:
		return []string{DateSentinel}
	default:
		return nil
	}
}
