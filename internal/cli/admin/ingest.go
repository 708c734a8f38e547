package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/aula/internal/config"
	"github.com/cloo-solutions/aula/internal/corpus"
	"github.com/cloo-solutions/aula/internal/service"
)

func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the corpus and rebuild the vector snapshot",
		Long: `Read theory files (<data-dir>/temas/*.md) and exercise tables
(<data-dir>/ejercicios/*.csv), store new documents and rebuild the embedding
snapshot for every stored document. A running server keeps the snapshot it
already loaded until restarted.`,
		RunE: runIngest,
	}

	cmd.Flags().String("data-dir", "", "Corpus directory (default from AULA_DATA_DIR)")
	cmd.Flags().Bool("reset", false, "Delete stored documents and the snapshot before ingesting")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ai := newAIClient(cfg)
	if ai == nil {
		return fmt.Errorf("AULA_OPENAI_API_KEY is required to embed the corpus")
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	reset, _ := cmd.Flags().GetBool("reset")
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	outputFormat, _ := cmd.Flags().GetString("output")

	docs, err := corpus.Read(dataDir)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	b, err := openBackend(ctx, cfg, !noMigrate)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := service.NewIngestService(b.Documents, b.Tx, ai, b.Snapshots, service.IngestConfig{
		BatchSize:         cfg.IngestBatchSize,
		Concurrency:       cfg.IngestConcurrency,
		RequestsPerSecond: cfg.IngestRPS,
	})

	result, err := svc.Run(ctx, service.IngestInput{Documents: docs, Reset: reset})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"read":      result.Read,
			"inserted":  result.Inserted,
			"documents": result.Documents,
			"dim":       result.Dim,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Read %d documents, %d new\n", result.Read, result.Inserted)
		fmt.Printf("Snapshot: %d vectors of dimension %d\n", result.Documents, result.Dim)
	}

	return nil
}
