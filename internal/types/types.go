// Package types provides domain models shared across graintel components.
//
// Zero-dependency design: types.go and errors.go use only encoding/json so
// downstream consumers of MatchResult don't pull in driver or CLI deps.
// ID utilities in ids.go import uuid but are isolated for selective inclusion.
package types

import (
	"encoding/json"
	"time"
)

// RuleID represents a UUIDv7 rule identifier.
// String alias enables type safety while maintaining JSON string serialization.
type RuleID string

// TargetType declares which record kind a rule extracts.
type TargetType string

const (
	TargetEvent   TargetType = "EVENT"
	TargetInsight TargetType = "INSIGHT"
)

// CandidateType declares how a condition side resolves to candidate strings.
type CandidateType string

const (
	CandidateKeyword         CandidateType = "KEYWORD"
	CandidateCollectionPoint CandidateType = "COLLECTION_POINT"
	CandidateNumber          CandidateType = "NUMBER"
	CandidateDate            CandidateType = "DATE"
	CandidateRegion          CandidateType = "REGION"
	CandidateCommodity       CandidateType = "COMMODITY"
)

// Connector declares the proximity relationship between a condition's two sides.
type Connector string

const (
	ConnectorFollowedBy       Connector = "FOLLOWED_BY"
	ConnectorFollowedContains Connector = "FOLLOWED_CONTAINS"
	ConnectorPrecededBy       Connector = "PRECEDED_BY"
	ConnectorSameSentence     Connector = "SAME_SENTENCE"
	ConnectorSameParagraph    Connector = "SAME_PARAGRAPH"
)

// ExtractSource names which matched side a field copies its value from.
type ExtractSource string

const (
	ExtractLeft  ExtractSource = "LEFT"
	ExtractRight ExtractSource = "RIGHT"
)

// ExtractFields maps output fields to the condition side they copy from.
// Unset fields stay empty in the extracted data.
type ExtractFields struct {
	Subject ExtractSource `json:"subject,omitempty"`
	Action  ExtractSource `json:"action,omitempty"`
	Value   ExtractSource `json:"value,omitempty"`
}

// Condition is a left/right typed pair joined by a proximity connector.
// LeftValue/RightValue carry rule-supplied literals for KEYWORD sides and
// are ignored for lexicon-backed sides.
type Condition struct {
	ID            string         `json:"id,omitempty"`
	LeftType      CandidateType  `json:"leftType"`
	LeftValue     []string       `json:"leftValue,omitempty"`
	Connector     Connector      `json:"connector"`
	RightType     CandidateType  `json:"rightType"`
	RightValue    []string       `json:"rightValue,omitempty"`
	ExtractFields *ExtractFields `json:"extractFields,omitempty"`
}

// Rule is a persisted declarative extraction unit.
// Only Conditions[0] is evaluated in production matching; the slice shape
// is kept for wire compatibility with the rule-authoring workflow.
type Rule struct {
	ID            RuleID
	Name          string
	TargetType    TargetType
	EventTypeID   string
	InsightTypeID string
	Conditions    []Condition
	OutputConfig  json.RawMessage
	Priority      int
	CreatedAt     time.Time
}

// TypeID resolves the rule's output type identifier: EventTypeID first,
// then InsightTypeID, else empty.
func (r *Rule) TypeID() string {
	if r.EventTypeID != "" {
		return r.EventTypeID
	}
	return r.InsightTypeID
}

// CollectionPoint is a lexicon entry for a physical collection point.
type CollectionPoint struct {
	Name      string
	ShortName string
	Aliases   []string
}

// Region is a lexicon entry for an administrative region.
type Region struct {
	Name      string
	ShortName string
}

// LexiconSnapshot is an immutable bundle of resolved word lists.
// Produced atomically by a cache refresh; matchers always read one
// consistent snapshot, never a partially rebuilt one.
type LexiconSnapshot struct {
	CollectionPointNames []string
	RegionNames          []string
	Commodities          []string
	FetchedAt            time.Time
}

// ExtractedData holds the fields copied out of a matched condition.
type ExtractedData struct {
	Subject string `json:"subject,omitempty"`
	Action  string `json:"action,omitempty"`
	Value   string `json:"value,omitempty"`
}

// MatchResult is a concrete text span plus rule metadata produced when a
// rule's condition is satisfied. Ephemeral: produced per call, never
// persisted by the engine. Offsets are rune offsets into the input text.
type MatchResult struct {
	RuleID       RuleID          `json:"ruleId"`
	RuleName     string          `json:"ruleName"`
	TargetType   TargetType      `json:"targetType"`
	TypeID       string          `json:"typeId"`
	SourceText   string          `json:"sourceText"`
	SourceStart  int             `json:"sourceStart"`
	SourceEnd    int             `json:"sourceEnd"`
	Extracted    ExtractedData   `json:"extractedData"`
	OutputConfig json.RawMessage `json:"outputConfig,omitempty"`
}

// Resource limits enforced at the ingestion boundary.
const (
	// MaxDocumentBytes limits input document size. Matching is O(rules x
	// candidates x text); 1MB covers daily reports and price bulletins
	// while bounding a single ApplyAll call.
	MaxDocumentBytes = 1024 * 1024
)
