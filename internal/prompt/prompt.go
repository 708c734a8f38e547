// Package prompt renders the generation prompts. Templates ship embedded
// and can be replaced by a YAML file at startup.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Templates holds the raw template sources.
type Templates struct {
	System    string `yaml:"system"`
	Style     string `yaml:"style"`
	Question  string `yaml:"question"`
	Exercises string `yaml:"exercises"`
}

// QuestionData fills the question template.
type QuestionData struct {
	Style    string
	Topic    string
	Intent   string
	Question string
	Context  string
}

// ExerciseData fills the exercise request template.
type ExerciseData struct {
	Topic      string
	Difficulty int
}

// Renderer renders parsed templates.
type Renderer struct {
	system    string
	style     string
	question  *template.Template
	exercises *template.Template
}

// Load parses the embedded templates, overlaid with the YAML file at path
// when path is non-empty. Keys missing from the file keep their defaults.
func Load(path string) (*Renderer, error) {
	var t Templates
	if err := yaml.Unmarshal(defaultTemplates, &t); err != nil {
		return nil, fmt.Errorf("failed to parse default templates: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts file: %w", err)
		}
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
		}
	}

	return New(t)
}

// MustLoadDefault returns the embedded templates and panics if they do not
// parse.
func MustLoadDefault() *Renderer {
	r, err := Load("")
	if err != nil {
		panic(err)
	}
	return r
}

// New parses t.
func New(t Templates) (*Renderer, error) {
	question, err := template.New("question").Option("missingkey=error").Parse(t.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to parse question template: %w", err)
	}
	exercises, err := template.New("exercises").Option("missingkey=error").Parse(t.Exercises)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exercises template: %w", err)
	}
	return &Renderer{
		system:    t.System,
		style:     t.Style,
		question:  question,
		exercises: exercises,
	}, nil
}

// System returns the system message sent with every request.
func (r *Renderer) System() string {
	return r.system
}

// Question renders the user prompt. An empty Style is filled with the
// configured style block.
func (r *Renderer) Question(d QuestionData) (string, error) {
	if d.Style == "" {
		d.Style = r.style
	}
	var buf bytes.Buffer
	if err := r.question.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to render question prompt: %w", err)
	}
	return buf.String(), nil
}

// Exercises renders the exercise request that is then asked as a question.
func (r *Renderer) Exercises(d ExerciseData) (string, error) {
	var buf bytes.Buffer
	if err := r.exercises.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to render exercises prompt: %w", err)
	}
	return buf.String(), nil
}
