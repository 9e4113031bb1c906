// internal/engine/window.go
package engine

import (
	"github.com/graintel/graintel/internal/types"
)

/*
 * Scan window computation.
 *
 * Given a connector and the position of a left-side match, computes the
 * half-open rune range [start, end) within which a right-side candidate
 * must begin. Character-count connectors use fixed widths; linguistic
 * connectors locate the nearest sentence/paragraph boundary around the
 * left match.
 *
 * All offsets are rune offsets. The ingested bulletins are Chinese text;
 * the fixed widths only hold their intended meaning ("within 50
 * characters") when counted in runes, not bytes.
 */

// Connector window widths, in runes.
const (
	followedByWidth       = 50
	followedContainsWidth = 100
	precededByWidth       = 100
)

// window is a half-open rune range [start, end) in the input text.
type window struct {
	start int
	end   int
}

// sentence terminators for SAME_SENTENCE boundary detection.
// Covers both fullwidth (。！？) and ASCII (.!?) punctuation; a newline
// always terminates a sentence.
func isSentenceTerminator(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?', '\n':
		return true
	}
	return false
}

// resolveWindow computes the right-candidate scan window for one left match.
// Returns ok=false when the window is empty (nothing can match inside it).
// Unknown connectors fall back to the FOLLOWED_CONTAINS width: rules are
// user-authored and a missing connector must degrade, not error.
func resolveWindow(connector types.Connector, text []rune, leftStart, leftLen int) (window, bool) {
	n := len(text)
	leftEnd := leftStart + leftLen

	var w window
	switch connector {
	case types.ConnectorFollowedBy:
		w = window{start: leftEnd, end: min(leftEnd+followedByWidth, n)}
	case types.ConnectorPrecededBy:
		w = window{start: max(leftStart-precededByWidth, 0), end: leftStart}
	case types.ConnectorSameSentence:
		w = sentenceWindow(text, leftStart, leftEnd)
	case types.ConnectorSameParagraph:
		w = paragraphWindow(text, leftStart, leftEnd)
	default:
		// FOLLOWED_CONTAINS and anything unrecognized.
		w = window{start: leftEnd, end: min(leftEnd+followedContainsWidth, n)}
	}

	if w.start >= w.end {
		return window{}, false
	}
	return w, true
}

// sentenceWindow bounds the window by the nearest sentence terminator
// before and after the left match. Start is the rune immediately after the
// preceding terminator (or 0); end is immediately after the following
// terminator (or end-of-text), so the terminator itself stays in range.
func sentenceWindow(text []rune, leftStart, leftEnd int) window {
	start := 0
	for i := leftStart - 1; i >= 0; i-- {
		if isSentenceTerminator(text[i]) {
			start = i + 1
			break
		}
	}

	end := len(text)
	for i := leftEnd; i < len(text); i++ {
		if isSentenceTerminator(text[i]) {
			end = i + 1
			break
		}
	}

	return window{start: start, end: end}
}

// paragraphWindow bounds the window by the nearest newline before (start)
// and after (end) the left match.
func paragraphWindow(text []rune, leftStart, leftEnd int) window {
	start := 0
	for i := leftStart - 1; i >= 0; i-- {
		if text[i] == '\n' {
			start = i + 1
			break
		}
	}

	end := len(text)
	for i := leftEnd; i < len(text); i++ {
		if text[i] == '\n' {
			end = i + 1
			break
		}
	}

	return window{start: start, end: end}
}
