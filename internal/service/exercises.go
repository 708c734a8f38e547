package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/prompt"
	"github.com/cloo-solutions/aula/internal/topic"
)

const (
	DefaultExerciseTopic      = "sumas llevando"
	DefaultExerciseDifficulty = 2
	MinDifficulty             = 1
	MaxDifficulty             = 5
)

// ExerciseInput requests a set of practice exercises. Zero values select
// the defaults.
type ExerciseInput struct {
	Topic      string
	Difficulty int
	Student    StudentInput
}

// ExerciseSet is a generated exercise sheet.
type ExerciseSet struct {
	*Answer
	Difficulty int
}

// ExerciseService builds exercise requests and answers them through the
// tutor pipeline.
type ExerciseService struct {
	tutor   *TutorService
	prompts *prompt.Renderer
}

func NewExerciseService(tutor *TutorService, prompts *prompt.Renderer) *ExerciseService {
	return &ExerciseService{tutor: tutor, prompts: prompts}
}

// Generate renders the exercise request for the topic and difficulty and
// answers it with intent "ejercicios".
func (s *ExerciseService) Generate(ctx context.Context, in ExerciseInput) (*ExerciseSet, error) {
	requested := strings.TrimSpace(in.Topic)
	if requested == "" {
		requested = DefaultExerciseTopic
	}

	difficulty := in.Difficulty
	if difficulty == 0 {
		difficulty = DefaultExerciseDifficulty
	}
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return nil, domain.ErrInvalidDifficulty
	}

	request, err := s.prompts.Exercises(prompt.ExerciseData{
		Topic:      requested,
		Difficulty: difficulty,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to render exercise request", err)
	}

	answer, err := s.tutor.run(ctx, turn{
		question:   request,
		assetQuery: requested,
		topic:      topic.Normalize(requested),
		intent:     domain.IntentExercises,
		difficulty: &difficulty,
		student:    in.Student,
	})
	if err != nil {
		return nil, err
	}

	return &ExerciseSet{Answer: answer, Difficulty: difficulty}, nil
}
