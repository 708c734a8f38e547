package domain

import "fmt"

// DocumentKind represents the kind of a corpus document
type DocumentKind string

const (
	DocumentKindTheory   DocumentKind = "teoria"
	DocumentKindExercise DocumentKind = "ejercicio"
)

// Document is one retrievable corpus entry. Documents are ordered by ID and
// row i of the embedding matrix belongs to the i-th document in that order.
type Document struct {
	ID    int64
	Kind  DocumentKind
	Title string
	Topic string
	Grade string
	Text  string
}

// NewDocument creates a new Document instance
func NewDocument(id int64, kind DocumentKind, title, topic, grade, text string) *Document {
	return &Document{
		ID:    id,
		Kind:  kind,
		Title: title,
		Topic: topic,
		Grade: grade,
		Text:  text,
	}
}

// Header renders the bracketed metadata line used in retrieval context.
func (d *Document) Header() string {
	return fmt.Sprintf("[%s | %s | %s | %s]", d.Kind, d.Title, d.Topic, d.Grade)
}

// Snippet returns at most maxChars runes of the document text.
func (d *Document) Snippet(maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	r := []rune(d.Text)
	if len(r) <= maxChars {
		return d.Text
	}
	return string(r[:maxChars])
}

// ValidateDocument validates a Document before it is stored
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.Kind != DocumentKindTheory && d.Kind != DocumentKindExercise {
		return fmt.Errorf("document Kind is invalid: %s", d.Kind)
	}

	if d.Text == "" {
		return fmt.Errorf("document Text is required")
	}

	return nil
}
