// internal/engine/match_test.go
package engine

import (
	"testing"

	"github.com/graintel/graintel/internal/types"
)

func TestMatchCondition_FollowedByScenario(t *testing.T) {
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"玉米"},
		Connector:  types.ConnectorFollowedBy,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"上涨"},
	}

	frags := matchCondition(&types.LexiconSnapshot{}, cond, []rune("玉米价格今日上涨明显"))
	if len(frags) != 1 {
		t.Fatalf("matchCondition() returned %d fragments, want 1", len(frags))
	}

	f := frags[0]
	if f.SourceText != "玉米价格今日上涨" {
		t.Errorf("SourceText = %q, want %q", f.SourceText, "玉米价格今日上涨")
	}
	if f.SourceStart != 0 || f.SourceEnd != 8 {
		t.Errorf("span = [%d, %d), want [0, 8)", f.SourceStart, f.SourceEnd)
	}
	if f.Extracted != (types.ExtractedData{}) {
		t.Errorf("Extracted = %+v, want empty without extractFields", f.Extracted)
	}
}

func TestMatchCondition_FollowedByWindowBoundary(t *testing.T) {
	// Right candidate beginning exactly at leftEnd+49 matches; at
	// leftEnd+50 it is outside the window.
	filler := func(n int) string {
		runes := make([]rune, n)
		for i := range runes {
			runes[i] = '-'
		}
		return string(runes)
	}

	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"X"},
		Connector:  types.ConnectorFollowedBy,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"Y"},
	}

	snap := &types.LexiconSnapshot{}

	if frags := matchCondition(snap, cond, []rune("X"+filler(49)+"Y")); len(frags) != 1 {
		t.Errorf("right at leftEnd+49: got %d fragments, want 1", len(frags))
	}
	if frags := matchCondition(snap, cond, []rune("X"+filler(50)+"Y")); len(frags) != 0 {
		t.Errorf("right at leftEnd+50: got %d fragments, want 0", len(frags))
	}
}

func TestMatchCondition_PrecededByScenario(t *testing.T) {
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"下跌"},
		Connector:  types.ConnectorPrecededBy,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"玉米"},
	}

	frags := matchCondition(&types.LexiconSnapshot{}, cond, []rune("玉米大幅下跌"))
	if len(frags) != 1 {
		t.Fatalf("matchCondition() returned %d fragments, want 1", len(frags))
	}

	// Right precedes left; span is the offset union, never re-ordered.
	f := frags[0]
	if f.SourceText != "玉米大幅下跌" {
		t.Errorf("SourceText = %q, want %q", f.SourceText, "玉米大幅下跌")
	}
	if f.SourceStart != 0 || f.SourceEnd != 6 {
		t.Errorf("span = [%d, %d), want [0, 6)", f.SourceStart, f.SourceEnd)
	}
}

func TestMatchCondition_SameSentenceBoundary(t *testing.T) {
	snap := &types.LexiconSnapshot{}
	text := []rune("A发生于B。C提到D。")

	inSentence := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"发生于"},
		Connector:  types.ConnectorSameSentence,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"B"},
	}
	if frags := matchCondition(snap, inSentence, text); len(frags) != 1 {
		t.Errorf("right in same sentence: got %d fragments, want 1", len(frags))
	}

	// D appears only after the first 。 and must not match.
	acrossSentence := inSentence
	acrossSentence.RightValue = []string{"D"}
	if frags := matchCondition(snap, acrossSentence, text); len(frags) != 0 {
		t.Errorf("right beyond sentence boundary: got %d fragments, want 0", len(frags))
	}
}

func TestMatchCondition_EmptyCandidateSides(t *testing.T) {
	snap := &types.LexiconSnapshot{}
	text := []rune("玉米价格今日上涨明显")

	tests := []struct {
		name string
		cond types.Condition
	}{
		{
			name: "empty left keyword list",
			cond: types.Condition{
				LeftType: types.CandidateKeyword, LeftValue: []string{},
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateKeyword, RightValue: []string{"上涨"},
			},
		},
		{
			name: "nil right keyword list",
			cond: types.Condition{
				LeftType: types.CandidateKeyword, LeftValue: []string{"玉米"},
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateKeyword,
			},
		},
		{
			name: "unknown left type",
			cond: types.Condition{
				LeftType:  types.CandidateType("ENTITY"),
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateKeyword, RightValue: []string{"上涨"},
			},
		},
		{
			name: "blank-only keyword literals",
			cond: types.Condition{
				LeftType: types.CandidateKeyword, LeftValue: []string{"", ""},
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateKeyword, RightValue: []string{"上涨"},
			},
		},
		{
			name: "empty collection point lexicon",
			cond: types.Condition{
				LeftType:  types.CandidateCollectionPoint,
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateKeyword, RightValue: []string{"上涨"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if frags := matchCondition(snap, tt.cond, text); len(frags) != 0 {
				t.Errorf("matchCondition() returned %d fragments, want 0", len(frags))
			}
		})
	}
}

func TestMatchCondition_FirstRightCandidateWins(t *testing.T) {
	// "高" occurs before "涨" in the window, but "涨" is declared first:
	// declared order wins over text order.
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"玉米"},
		Connector:  types.ConnectorFollowedContains,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"涨", "高"},
		ExtractFields: &types.ExtractFields{
			Action: types.ExtractRight,
		},
	}

	frags := matchCondition(&types.LexiconSnapshot{}, cond, []rune("玉米价格走高后续涨"))
	if len(frags) != 1 {
		t.Fatalf("matchCondition() returned %d fragments, want 1", len(frags))
	}
	if frags[0].Extracted.Action != "涨" {
		t.Errorf("Extracted.Action = %q, want %q (declared order, not text order)", frags[0].Extracted.Action, "涨")
	}
}

func TestMatchCondition_OverlappingLeftOccurrences(t *testing.T) {
	// Left "aa" occurs at 0 and 1 in "aaa"; the cursor advances by one
	// rune, so both anchor a match.
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"aa"},
		Connector:  types.ConnectorFollowedBy,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"b"},
	}

	frags := matchCondition(&types.LexiconSnapshot{}, cond, []rune("aaab"))
	if len(frags) != 2 {
		t.Fatalf("matchCondition() returned %d fragments, want 2", len(frags))
	}
	if frags[0].SourceStart != 0 || frags[1].SourceStart != 1 {
		t.Errorf("fragment starts = %d, %d, want 0, 1", frags[0].SourceStart, frags[1].SourceStart)
	}
}

func TestMatchCondition_DuplicateLeftCandidatesDeduplicated(t *testing.T) {
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"玉米", "玉米"},
		Connector:  types.ConnectorFollowedBy,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"上涨"},
	}

	frags := matchCondition(&types.LexiconSnapshot{}, cond, []rune("玉米上涨"))
	if len(frags) != 1 {
		t.Errorf("matchCondition() returned %d fragments, want 1 (duplicate literal deduplicated)", len(frags))
	}
}

func TestMatchCondition_ExtractFieldsCopyCandidates(t *testing.T) {
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"玉米"},
		Connector:  types.ConnectorFollowedBy,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"上涨"},
		ExtractFields: &types.ExtractFields{
			Subject: types.ExtractLeft,
			Action:  types.ExtractRight,
		},
	}

	frags := matchCondition(&types.LexiconSnapshot{}, cond, []rune("玉米价格今日上涨明显"))
	if len(frags) != 1 {
		t.Fatalf("matchCondition() returned %d fragments, want 1", len(frags))
	}

	got := frags[0].Extracted
	want := types.ExtractedData{Subject: "玉米", Action: "上涨"}
	if got != want {
		t.Errorf("Extracted = %+v, want %+v", got, want)
	}
}

func TestMatchCondition_RightMayExtendPastWindowEnd(t *testing.T) {
	// Only the right candidate's start offset must fall inside the
	// window; the candidate itself may run past the window end.
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"价格"},
		Connector:  types.ConnectorSameSentence,
		RightType:  types.CandidateKeyword,
		RightValue: []string{"上涨。幅"},
	}

	frags := matchCondition(&types.LexiconSnapshot{}, cond, []rune("价格上涨。幅度很大"))
	if len(frags) != 1 {
		t.Errorf("matchCondition() returned %d fragments, want 1", len(frags))
	}
}

// NUMBER and DATE sides degrade to a literal search for the sentinel token
// itself; there is no numeric or date recognition. Preserved limitation,
// not intended semantics: digits in the text do not match.
func TestMatchCondition_NumberSentinelLiteralOnly(t *testing.T) {
	cond := types.Condition{
		LeftType:   types.CandidateKeyword,
		LeftValue:  []string{"上涨"},
		Connector:  types.ConnectorFollowedBy,
		RightType:  types.CandidateNumber,
		RightValue: nil,
	}

	snap := &types.LexiconSnapshot{}
	if frags := matchCondition(snap, cond, []rune("上涨20元")); len(frags) != 0 {
		t.Errorf("digits matched a NUMBER side: got %d fragments, want 0", len(frags))
	}
	if frags := matchCondition(snap, cond, []rune("上涨__NUMBER__")); len(frags) != 1 {
		t.Errorf("sentinel literal: got %d fragments, want 1", len(frags))
	}
}

func TestMatchCondition_LexiconBackedSides(t *testing.T) {
	snap := &types.LexiconSnapshot{
		CollectionPointNames: []string{"青冈县收购点", "青冈"},
		RegionNames:          []string{"黑龙江省", "黑龙江"},
		Commodities:          []string{"玉米"},
	}

	tests := []struct {
		name     string
		cond     types.Condition
		text     string
		wantText string
	}{
		{
			name: "collection point left side",
			cond: types.Condition{
				LeftType:  types.CandidateCollectionPoint,
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateKeyword, RightValue: []string{"挂牌"},
			},
			text:     "青冈县收购点今日挂牌",
			wantText: "青冈县收购点今日挂牌",
		},
		{
			name: "region right side",
			cond: types.Condition{
				LeftType: types.CandidateKeyword, LeftValue: []string{"产自"},
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateRegion,
			},
			text:     "新粮产自黑龙江省北部",
			wantText: "产自黑龙江省",
		},
		{
			name: "commodity left side",
			cond: types.Condition{
				LeftType:  types.CandidateCommodity,
				Connector: types.ConnectorFollowedBy,
				RightType: types.CandidateKeyword, RightValue: []string{"上涨"},
			},
			text:     "今日玉米上涨",
			wantText: "玉米上涨",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := matchCondition(snap, tt.cond, []rune(tt.text))
			if len(frags) == 0 {
				t.Fatalf("matchCondition() returned no fragments")
			}
			if frags[0].SourceText != tt.wantText {
				t.Errorf("SourceText = %q, want %q", frags[0].SourceText, tt.wantText)
			}
		})
	}
}

func TestIndexRunes(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		needle string
		from   int
		want   int
	}{
		{"found at start", "玉米上涨", "玉米", 0, 0},
		{"found mid-text", "今日玉米上涨", "玉米", 0, 2},
		{"respects from offset", "玉米又见玉米", "玉米", 1, 4},
		{"not found", "小麦下跌", "玉米", 0, -1},
		{"empty needle never matches", "玉米", "", 0, -1},
		{"needle longer than text", "米", "玉米", 0, -1},
		{"negative from clamped", "玉米", "玉米", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indexRunes([]rune(tt.text), []rune(tt.needle), tt.from)
			if got != tt.want {
				t.Errorf("indexRunes(%q, %q, %d) = %d, want %d", tt.text, tt.needle, tt.from, got, tt.want)
			}
		})
	}
}
