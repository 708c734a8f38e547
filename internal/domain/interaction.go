package domain

import (
	"fmt"
	"time"
)

// Intent values recorded with each interaction
const (
	IntentQuestion  = "duda"
	IntentExercises = "ejercicios"
)

// Interaction is one logged question/answer exchange. It is append-only.
type Interaction struct {
	ID         string
	StudentID  string
	Timestamp  time.Time
	Prompt     string
	Response   string
	Intent     string
	Topic      string
	Difficulty *int
	Solved     *bool
}

// NewInteraction creates a new Interaction instance
func NewInteraction(studentID, prompt, response, intent, topic string, difficulty *int, ts time.Time) *Interaction {
	return &Interaction{
		StudentID:  studentID,
		Timestamp:  ts,
		Prompt:     prompt,
		Response:   response,
		Intent:     intent,
		Topic:      topic,
		Difficulty: difficulty,
	}
}

// ValidateInteraction validates an Interaction before it is recorded
func ValidateInteraction(i *Interaction) error {
	if i == nil {
		return fmt.Errorf("interaction cannot be nil")
	}

	if i.StudentID == "" {
		return fmt.Errorf("interaction StudentID is required")
	}

	if i.Timestamp.IsZero() {
		return fmt.Errorf("interaction Timestamp is required")
	}

	if i.Difficulty != nil && (*i.Difficulty < 1 || *i.Difficulty > 5) {
		return fmt.Errorf("interaction Difficulty out of range: %d", *i.Difficulty)
	}

	return nil
}
