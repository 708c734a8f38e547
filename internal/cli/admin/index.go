package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/aula/internal/config"
	"github.com/cloo-solutions/aula/internal/index"
)

func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the document index",
	}

	cmd.AddCommand(IndexVerifyCmd())
	cmd.AddCommand(IndexSearchCmd())

	return cmd
}

func IndexVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Load the index and check documents and vectors line up",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			ctx := context.Background()

			snap, closeFn, err := loadSnapshot(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if outputFormat == "json" {
				data := map[string]interface{}{
					"documents": len(snap.Documents),
					"dim":       snap.Matrix.Dim(),
					"topics":    snap.Topics(),
				}
				jsonBytes, _ := json.MarshalIndent(data, "", "  ")
				fmt.Println(string(jsonBytes))
				return nil
			}

			fmt.Printf("Index OK: %d documents, dimension %d\n", len(snap.Documents), snap.Matrix.Dim())
			fmt.Printf("Topics: %s\n", strings.Join(snap.Topics(), ", "))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func IndexSearchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the documents retrieved for a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ai := newAIClient(cfg)
			if ai == nil {
				return fmt.Errorf("AULA_OPENAI_API_KEY is required to embed the query")
			}

			snap, closeFn, err := loadSnapshot(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			query, err := ai.GenerateEmbedding(ctx, args[0])
			if err != nil {
				return err
			}
			results, err := snap.Search(query, k)
			if err != nil {
				return err
			}

			for i, r := range results {
				fmt.Printf("%d. [%.4f] #%d %s\n", i+1, r.Score, r.Document.ID, r.Document.Header())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 3, "Number of documents to retrieve")

	return cmd
}

func loadSnapshot(ctx context.Context) (*index.Snapshot, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	b, err := openBackend(ctx, cfg, false)
	if err != nil {
		return nil, nil, err
	}

	handle := index.NewHandle(b.Documents, b.Snapshots)
	if err := handle.Load(ctx); err != nil {
		b.Close()
		return nil, nil, err
	}

	snap, err := handle.Snapshot()
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return snap, b.Close, nil
}
