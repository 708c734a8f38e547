package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/aula/internal/config"
	"github.com/cloo-solutions/aula/internal/service"
)

func InteractionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactions",
		Short: "Inspect logged interactions",
	}

	cmd.AddCommand(InteractionsListCmd())

	return cmd
}

func InteractionsListCmd() *cobra.Command {
	var (
		studentID string
		limit     int
		cursor    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a student's interactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runInteractionsList(outputFormat, studentID, limit, cursor)
		},
	}

	cmd.Flags().StringVarP(&studentID, "student", "s", "", "Student ID")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultHistoryLimit, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	_ = cmd.MarkFlagRequired("student")

	return cmd
}

func runInteractionsList(outputFormat, studentID string, limit int, cursor string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	b, err := openBackend(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := service.NewHistoryService(b.Interactions, b.Students)
	result, err := svc.List(ctx, service.ListInteractionsInput{
		StudentID: studentID,
		Cursor:    cursor,
		Limit:     limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(result.Items))
		for i, it := range result.Items {
			data[i] = map[string]interface{}{
				"id":         it.ID,
				"timestamp":  it.Timestamp,
				"intent":     it.Intent,
				"topic":      it.Topic,
				"difficulty": it.Difficulty,
				"prompt":     it.Prompt,
				"response":   it.Response,
			}
		}
		output := map[string]interface{}{
			"items":    data,
			"cursor":   result.NextCursor,
			"has_more": result.HasMore,
		}
		jsonBytes, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	if len(result.Items) == 0 {
		fmt.Println("No interactions found")
		return nil
	}
	fmt.Println("Interactions:")
	for _, it := range result.Items {
		fmt.Printf("  %s [%s/%s] %s\n", it.Timestamp.Format("2006-01-02 15:04:05"), it.Intent, it.Topic, it.Prompt)
	}
	if result.HasMore && result.NextCursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", result.NextCursor)
	}

	return nil
}
