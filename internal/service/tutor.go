package service

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/index"
	"github.com/cloo-solutions/aula/internal/prompt"
	"github.com/cloo-solutions/aula/internal/telemetry"
	"github.com/cloo-solutions/aula/internal/textfix"
	"github.com/cloo-solutions/aula/internal/topic"
)

const (
	DefaultRetrievalK    = 3
	DefaultSnippetChars  = 400
	DefaultVideoBasePath = "/videos/"

	contextSeparator = "\n\n---\n\n"
)

// Embedder turns a question into a query vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Generator produces the raw answer for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// SnapshotProvider exposes the loaded document index.
type SnapshotProvider interface {
	Snapshot() (*index.Snapshot, error)
}

// AssetSelector picks a companion video file name.
type AssetSelector interface {
	Select(ctx context.Context, t topic.Topic, question string) (string, bool)
}

// StudentInput identifies the learner behind a request. ID wins over Name;
// when both are empty the default student is used.
type StudentInput struct {
	ID    string
	Name  string
	Age   int
	Grade string
}

// AskInput is a free-form student question.
type AskInput struct {
	Question string
	Topic    string
	Student  StudentInput
}

// Answer is the delivered response.
type Answer struct {
	Text          string
	Topic         topic.Topic
	VideoFile     string
	VideoURL      string
	InteractionID string
	StudentID     string
	Sources       []index.Result
}

// TutorConfig tunes retrieval and asset links.
type TutorConfig struct {
	K             int
	SnippetChars  int
	VideoBasePath string
}

// TutorService answers questions by retrieving context, generating and
// cleaning a response, attaching a video and logging the exchange.
type TutorService struct {
	index     SnapshotProvider
	embedder  Embedder
	generator Generator
	prompts   *prompt.Renderer
	assets    AssetSelector
	students  StudentRepository
	recorder  *Recorder
	cfg       TutorConfig
	now       func() time.Time
}

// NewTutorService creates a TutorService. assets, students and recorder may
// be nil, which disables videos and interaction logging.
func NewTutorService(
	idx SnapshotProvider,
	embedder Embedder,
	generator Generator,
	prompts *prompt.Renderer,
	assets AssetSelector,
	students StudentRepository,
	recorder *Recorder,
	cfg TutorConfig,
) *TutorService {
	if cfg.K <= 0 {
		cfg.K = DefaultRetrievalK
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = DefaultSnippetChars
	}
	if cfg.VideoBasePath == "" {
		cfg.VideoBasePath = DefaultVideoBasePath
	}
	return &TutorService{
		index:     idx,
		embedder:  embedder,
		generator: generator,
		prompts:   prompts,
		assets:    assets,
		students:  students,
		recorder:  recorder,
		cfg:       cfg,
		now:       time.Now,
	}
}

// turn is one pass through the pipeline.
type turn struct {
	question   string
	assetQuery string
	topic      topic.Topic
	intent     string
	difficulty *int
	student    StudentInput
}

// Ask answers a question. The topic is inferred from the question, falling
// back to the normalized hint.
func (s *TutorService) Ask(ctx context.Context, in AskInput) (*Answer, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	return s.run(ctx, turn{
		question:   question,
		assetQuery: question,
		topic:      topic.Resolve(question, in.Topic),
		intent:     domain.IntentQuestion,
		student:    in.Student,
	})
}

func (s *TutorService) run(ctx context.Context, t turn) (*Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "TutorService.Answer", telemetry.SpanAttributes{
		StudentID: t.student.ID,
		Topic:     string(t.topic),
		Intent:    t.intent,
	})
	defer span.End()

	// An unknown explicit student is a client error; anything else about
	// student lookup only disables recording.
	studentID, err := s.resolveStudent(ctx, t.student)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	snap, err := s.index.Snapshot()
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	query, err := s.embedder.GenerateEmbedding(ctx, t.question)
	if err != nil {
		span.SetError(err)
		return nil, asCode(err, domain.ErrCodeEmbeddingService, "failed to embed question")
	}

	results, err := snap.Search(query, s.cfg.K)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	userPrompt, err := s.prompts.Question(prompt.QuestionData{
		Topic:    string(t.topic),
		Intent:   t.intent,
		Question: t.question,
		Context:  BuildContext(results, s.cfg.SnippetChars),
	})
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to render prompt", err)
	}

	raw, err := s.generator.Generate(ctx, s.prompts.System(), userPrompt)
	if err != nil {
		span.SetError(err)
		return nil, asCode(err, domain.ErrCodeGenerationService, "failed to generate answer")
	}

	answer := &Answer{
		Text:      textfix.Clean(raw),
		Topic:     t.topic,
		StudentID: studentID,
		Sources:   results,
	}

	if s.assets != nil {
		if file, ok := s.assets.Select(ctx, t.topic, t.assetQuery); ok {
			answer.VideoFile = file
			answer.VideoURL = s.cfg.VideoBasePath + url.PathEscape(file)
		}
	}

	if studentID != "" {
		answer.InteractionID = s.recorder.Record(ctx, domain.NewInteraction(
			studentID, t.question, answer.Text, t.intent, string(t.topic), t.difficulty, s.now(),
		))
	}

	return answer, nil
}

// resolveStudent returns the id to record under, or "" when recording is
// not possible.
func (s *TutorService) resolveStudent(ctx context.Context, in StudentInput) (string, error) {
	if s.students == nil || s.recorder == nil {
		return "", nil
	}

	if in.ID != "" {
		st, err := s.students.GetByID(ctx, in.ID)
		if err != nil {
			if errors.Is(err, domain.ErrStudentNotFound) {
				return "", err
			}
			log.Printf("tutor: student lookup failed, not recording: %v", err)
			return "", nil
		}
		return st.ID, nil
	}

	name := strings.TrimSpace(in.Name)
	age := in.Age
	grade := in.Grade
	if name == "" {
		name = domain.DefaultStudentName
	}
	if age <= 0 {
		age = domain.DefaultStudentAge
	}
	if grade == "" {
		grade = domain.DefaultStudentGrade
	}

	st, err := s.students.EnsureStudent(ctx, name, age, grade)
	if err != nil {
		log.Printf("tutor: failed to ensure student %q, not recording: %v", name, err)
		return "", nil
	}
	return st.ID, nil
}

// BuildContext renders retrieved documents as header plus snippet blocks.
func BuildContext(results []index.Result, snippetChars int) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Document.Header()+"\n"+r.Document.Snippet(snippetChars))
	}
	return strings.Join(parts, contextSeparator)
}

// asCode keeps err when it already carries a domain code and wraps it with
// code otherwise.
func asCode(err error, code, message string) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.NewDomainErrorWithCause(code, message, err)
}
