package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// StudentRequest identifies a student by name when no id is configured.
type StudentRequest struct {
	Name  string `json:"name,omitempty"`
	Age   int    `json:"age,omitempty"`
	Grade string `json:"grade,omitempty"`
}

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string          `json:"question"`
	Topic    string          `json:"topic,omitempty"`
	Student  *StudentRequest `json:"student,omitempty"`
}

// ExercisesRequest represents the exercises API request.
type ExercisesRequest struct {
	Topic      string          `json:"topic,omitempty"`
	Difficulty int             `json:"difficulty,omitempty"`
	Student    *StudentRequest `json:"student,omitempty"`
}

// Source is a retrieved document behind an answer.
type Source struct {
	ID    int64   `json:"id"`
	Kind  string  `json:"kind"`
	Title string  `json:"title"`
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// AnswerResponse represents the ask and exercises API response.
type AnswerResponse struct {
	Answer        string   `json:"answer"`
	Topic         string   `json:"topic"`
	Difficulty    int      `json:"difficulty,omitempty"`
	VideoURL      string   `json:"video_url,omitempty"`
	InteractionID string   `json:"interaction_id,omitempty"`
	StudentID     string   `json:"student_id,omitempty"`
	Sources       []Source `json:"sources,omitempty"`
}

func studentFlags(cmd *cobra.Command, req *StudentRequest) {
	cmd.Flags().StringVar(&req.Name, "name", "", "Student name (used when no student id is set)")
	cmd.Flags().IntVar(&req.Age, "age", 0, "Student age")
	cmd.Flags().StringVar(&req.Grade, "grade", "", "Student grade, e.g. 4º")
}

func studentBody(req StudentRequest) *StudentRequest {
	if req == (StudentRequest{}) {
		return nil
	}
	return &req
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		topic   string
		student StudentRequest
		sources bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the tutor a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/ask", AskRequest{
				Question: strings.Join(args, " "),
				Topic:    topic,
				Student:  studentBody(student),
			})
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			return printAnswer(api, resp, outputJSON, sources)
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic hint (sumas, restas, ...)")
	cmd.Flags().BoolVar(&sources, "sources", false, "Show the retrieved documents")
	studentFlags(cmd, &student)

	return cmd
}

// ExercisesCmd creates the exercises command.
func ExercisesCmd() *cobra.Command {
	var (
		difficulty int
		student    StudentRequest
	)

	cmd := &cobra.Command{
		Use:   "exercises [topic]",
		Short: "Generate practice exercises",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			req := ExercisesRequest{
				Difficulty: difficulty,
				Student:    studentBody(student),
			}
			if len(args) == 1 {
				req.Topic = args[0]
			}

			resp, err := api.Post("/exercises", req)
			if err != nil {
				return fmt.Errorf("exercises failed: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			return printAnswer(api, resp, outputJSON, false)
		},
	}

	cmd.Flags().IntVarP(&difficulty, "difficulty", "d", 0, "Difficulty from 1 to 5 (default 2)")
	studentFlags(cmd, &student)

	return cmd
}

func printAnswer(api *APIClient, resp *APIResponse, outputJSON, sources bool) error {
	var answer AnswerResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Answer)
	fmt.Println()
	fmt.Printf("Topic: %s\n", answer.Topic)
	if answer.Difficulty > 0 {
		fmt.Printf("Difficulty: %d\n", answer.Difficulty)
	}
	if answer.VideoURL != "" {
		fmt.Printf("Video: %s%s\n", api.baseURL, answer.VideoURL)
	}
	if sources && len(answer.Sources) > 0 {
		fmt.Println(strings.Repeat("-", 40))
		for i, s := range answer.Sources {
			fmt.Printf("%d. %s (%.2f)\n", i+1, s.Title, s.Score)
		}
	}
	return nil
}
