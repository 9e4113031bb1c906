package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/graintel/graintel/internal/core/config"
	"github.com/graintel/graintel/internal/core/db"
	"github.com/graintel/graintel/internal/engine"
	"github.com/graintel/graintel/internal/store"
	"github.com/graintel/graintel/internal/types"
)

var testConditionCmd = &cobra.Command{
	Use:   "test-condition [file]",
	Short: "Run ad-hoc conditions against a document",
	Long: `Test-condition evaluates a JSON array of conditions against a document
from a file (or stdin when no file is given), without persisting a rule.
Every condition in the array runs independently; fragments are written
one per line as JSON to stdout.

Lexicon-typed sides (COLLECTION_POINT, REGION) resolve against the
database when one is reachable; keyword conditions work without it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTestCondition,
}

func init() {
	rootCmd.AddCommand(testConditionCmd)
	testConditionCmd.Flags().String("conditions", "", "path to JSON file with an array of conditions (required)")
	testConditionCmd.MarkFlagRequired("conditions")
}

func runTestCondition(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, err := newLogger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	condPath, _ := cmd.Flags().GetString("conditions")
	condData, err := os.ReadFile(condPath)
	if err != nil {
		return fmt.Errorf("failed to read conditions: %w", err)
	}
	var conds []types.Condition
	if err := json.Unmarshal(condData, &conds); err != nil {
		return fmt.Errorf("failed to parse conditions: %w", err)
	}

	text, err := readDocument(args, cfg.MaxDocumentBytes)
	if err != nil {
		return err
	}

	eng, cleanup, err := testEngine(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	fragments := eng.TestCondition(ctx, conds, text)
	log.Info("condition test complete", "conditions", len(conds), "fragments", len(fragments))

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, f := range fragments {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("failed to encode fragment: %w", err)
		}
	}
	return nil
}

// testEngine wires an engine over the configured database, falling back to
// a source-less engine when the database is unreachable. Condition testing
// must not require a live rule store.
func testEngine(cfg *config.EngineConfig, log *slog.Logger) (*engine.Engine, func(), error) {
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Warn("database unreachable, lexicon-typed sides will not resolve", "error", err)
		eng := engine.New(emptySource{}, emptySource{}, engine.WithLogger(log))
		return eng, func() {}, nil
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}

	st := store.New(queries, log)
	eng := engine.New(st, st,
		engine.WithTTL(cfg.CacheTTL),
		engine.WithLogger(log))
	return eng, func() { database.Close() }, nil
}

// emptySource satisfies both engine source interfaces with no data.
type emptySource struct{}

func (emptySource) ActiveRules(ctx context.Context) ([]types.Rule, error) { return nil, nil }
func (emptySource) CollectionPoints(ctx context.Context) ([]types.CollectionPoint, error) {
	return nil, nil
}
func (emptySource) Regions(ctx context.Context) ([]types.Region, error) { return nil, nil }
