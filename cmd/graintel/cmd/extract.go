package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/graintel/graintel/internal/core/config"
	"github.com/graintel/graintel/internal/core/db"
	"github.com/graintel/graintel/internal/engine"
	"github.com/graintel/graintel/internal/store"
	"github.com/graintel/graintel/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Apply all active rules to a document",
	Long: `Extract reads a market report document from a file (or stdin when no
file is given), applies every active rule, and writes one match result
per line as JSON to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	text, err := readDocument(args, cfg.MaxDocumentBytes)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	st := store.New(queries, log)
	eng := engine.New(st, st,
		engine.WithTTL(cfg.CacheTTL),
		engine.WithLogger(log))

	// One-shot invocation: surface the initial load error instead of the
	// long-running service's stale-cache fallback.
	if err := eng.ForceRefresh(ctx); err != nil {
		return fmt.Errorf("failed to load rules and lexicon: %w", err)
	}

	results := eng.ApplyAll(ctx, text)
	log.Info("extraction complete", "matches", len(results))

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	return nil
}

// readDocument loads the input text from the named file or stdin,
// enforcing the document size limit before any matching work happens.
func readDocument(args []string, maxBytes int) (string, error) {
	var r io.Reader = os.Stdin
	name := "stdin"
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		r = f
		name = args[0]
	}

	// Read one byte past the limit to distinguish at-limit from over.
	data, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if len(data) > maxBytes {
		return "", fmt.Errorf("%s: %w (limit %d bytes)", name, types.ErrDocumentTooLarge, maxBytes)
	}
	return string(data), nil
}
