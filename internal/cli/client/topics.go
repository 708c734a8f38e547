package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// TopicsResponse represents the topics API response.
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// Interaction is one logged exchange.
type Interaction struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	Timestamp  string `json:"timestamp"`
	Prompt     string `json:"prompt"`
	Response   string `json:"response"`
	Intent     string `json:"intent"`
	Topic      string `json:"topic,omitempty"`
	Difficulty *int   `json:"difficulty,omitempty"`
}

// InteractionListResponse represents the interactions API response.
type InteractionListResponse struct {
	Items   []Interaction `json:"items"`
	Cursor  string        `json:"cursor,omitempty"`
	HasMore bool          `json:"has_more"`
}

// TopicsCmd creates the topics command.
func TopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List available topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/topics", nil)
			if err != nil {
				return fmt.Errorf("failed to list topics: %w", err)
			}

			var topics TopicsResponse
			if err := json.Unmarshal(resp.Data, &topics); err != nil {
				return fmt.Errorf("failed to parse topics: %w", err)
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				output, _ := json.MarshalIndent(topics, "", "  ")
				fmt.Println(string(output))
				return nil
			}
			for _, t := range topics.Topics {
				fmt.Println(t)
			}
			return nil
		},
	}
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the current student's recent interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if api.StudentID() == "" {
				return fmt.Errorf("no student set (use --student, %s or 'aula config set --id')", envStudentID)
			}

			query := url.Values{"student_id": {api.StudentID()}}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if cursor != "" {
				query.Set("cursor", cursor)
			}

			resp, err := api.Get("/interactions", query)
			if err != nil {
				return fmt.Errorf("failed to list interactions: %w", err)
			}

			var list InteractionListResponse
			if err := json.Unmarshal(resp.Data, &list); err != nil {
				return fmt.Errorf("failed to parse interactions: %w", err)
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				output, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(list.Items) == 0 {
				fmt.Println("No interactions yet.")
				return nil
			}
			for _, it := range list.Items {
				fmt.Printf("%s [%s] %s\n", it.Timestamp, it.Intent, it.Prompt)
			}
			if list.HasMore && list.Cursor != "" {
				fmt.Printf("\nMore results available. Use --cursor %s\n", list.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}
