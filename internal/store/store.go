// Package store adapts the database layer to the engine's source
// interfaces. It owns row decoding: JSON columns and RFC3339 timestamps
// come back as strings and are parsed here, and malformed rows are
// skipped with a warning so one bad edit cannot take down extraction.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/graintel/graintel/internal/core/db"
	"github.com/graintel/graintel/internal/types"
)

// Store implements engine.RuleSource and engine.LexiconSource over the
// named-query layer.
type Store struct {
	q   *db.Queries
	log *slog.Logger
}

// New creates a store over loaded queries.
func New(q *db.Queries, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{q: q, log: log}
}

// ActiveRules returns all active rules, priority descending then creation
// time ascending. Rows with undecodable conditions or timestamps are
// skipped, not fatal.
func (s *Store) ActiveRules(ctx context.Context) ([]types.Rule, error) {
	var rows []struct {
		RuleID        string `db:"rule_id"`
		Name          string `db:"name"`
		TargetType    string `db:"target_type"`
		EventTypeID   string `db:"event_type_id"`
		InsightTypeID string `db:"insight_type_id"`
		Conditions    string `db:"conditions"`
		OutputConfig  string `db:"output_config"`
		Priority      int    `db:"priority"`
		CreatedAt     string `db:"created_at"`
	}

	if err := s.q.SelectContext(ctx, "list-active-rules", &rows, true); err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	rules := make([]types.Rule, 0, len(rows))
	for _, r := range rows {
		var conditions []types.Condition
		if r.Conditions != "" {
			if err := json.Unmarshal([]byte(r.Conditions), &conditions); err != nil {
				// Skip malformed rule - continue processing others
				s.log.Warn("skipping rule with malformed conditions",
					"rule_id", r.RuleID, "error", err)
				continue
			}
		}

		createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			// Skip malformed rule - continue processing others
			s.log.Warn("skipping rule with malformed created_at",
				"rule_id", r.RuleID, "error", err)
			continue
		}

		var outputConfig json.RawMessage
		if r.OutputConfig != "" {
			outputConfig = json.RawMessage(r.OutputConfig)
		}

		rules = append(rules, types.Rule{
			ID:            types.RuleID(r.RuleID),
			Name:          r.Name,
			TargetType:    types.TargetType(r.TargetType),
			EventTypeID:   r.EventTypeID,
			InsightTypeID: r.InsightTypeID,
			Conditions:    conditions,
			OutputConfig:  outputConfig,
			Priority:      r.Priority,
			CreatedAt:     createdAt,
		})
	}

	return rules, nil
}

// CollectionPoints returns all active collection points in creation order.
// Aliases are stored as a JSON string array; a row with an undecodable
// aliases column keeps its names but drops the aliases.
func (s *Store) CollectionPoints(ctx context.Context) ([]types.CollectionPoint, error) {
	var rows []struct {
		Name      string `db:"name"`
		ShortName string `db:"short_name"`
		Aliases   string `db:"aliases"`
	}

	if err := s.q.SelectContext(ctx, "list-collection-points", &rows, true); err != nil {
		return nil, fmt.Errorf("failed to query collection points: %w", err)
	}

	points := make([]types.CollectionPoint, 0, len(rows))
	for _, r := range rows {
		var aliases []string
		if r.Aliases != "" {
			if err := json.Unmarshal([]byte(r.Aliases), &aliases); err != nil {
				s.log.Warn("dropping malformed collection point aliases",
					"name", r.Name, "error", err)
				aliases = nil
			}
		}

		points = append(points, types.CollectionPoint{
			Name:      r.Name,
			ShortName: r.ShortName,
			Aliases:   aliases,
		})
	}

	return points, nil
}

// Regions returns all active regions in creation order.
func (s *Store) Regions(ctx context.Context) ([]types.Region, error) {
	var rows []struct {
		Name      string `db:"name"`
		ShortName string `db:"short_name"`
	}

	if err := s.q.SelectContext(ctx, "list-regions", &rows, true); err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}

	regions := make([]types.Region, 0, len(rows))
	for _, r := range rows {
		regions = append(regions, types.Region{
			Name:      r.Name,
			ShortName: r.ShortName,
		})
	}

	return regions, nil
}

// InsertRule persists a new rule. Conditions and output config are
// serialized to JSON; created_at/updated_at are stored as RFC3339 text so
// both drivers round-trip identically.
func (s *Store) InsertRule(ctx context.Context, rule *types.Rule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to serialize conditions: %w", err)
	}

	outputConfig := "{}"
	if len(rule.OutputConfig) > 0 {
		outputConfig = string(rule.OutputConfig)
	}

	now := rule.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	ts := now.UTC().Format(time.RFC3339)

	return s.q.ExecContext(ctx, "insert-rule",
		string(rule.ID), rule.Name, string(rule.TargetType),
		rule.EventTypeID, rule.InsightTypeID,
		string(conditions), outputConfig, rule.Priority, true, ts, ts)
}

// InsertCollectionPoint persists a new lexicon collection point.
func (s *Store) InsertCollectionPoint(ctx context.Context, point *types.CollectionPoint) error {
	aliases, err := json.Marshal(point.Aliases)
	if err != nil {
		return fmt.Errorf("failed to serialize aliases: %w", err)
	}
	if point.Aliases == nil {
		aliases = []byte("[]")
	}

	return s.q.ExecContext(ctx, "insert-collection-point",
		point.Name, point.ShortName, string(aliases), true,
		time.Now().UTC().Format(time.RFC3339))
}

// InsertRegion persists a new lexicon region.
func (s *Store) InsertRegion(ctx context.Context, region *types.Region) error {
	return s.q.ExecContext(ctx, "insert-region",
		region.Name, region.ShortName, true,
		time.Now().UTC().Format(time.RFC3339))
}
