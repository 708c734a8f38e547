package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cloo-solutions/aula/internal/api"
	"github.com/cloo-solutions/aula/internal/api/middleware"
	"github.com/cloo-solutions/aula/internal/service"
)

type TutorService interface {
	Ask(ctx context.Context, in service.AskInput) (*service.Answer, error)
}

type ExerciseService interface {
	Generate(ctx context.Context, in service.ExerciseInput) (*service.ExerciseSet, error)
}

type TutorHandler struct {
	tutor     TutorService
	exercises ExerciseService
}

func NewTutorHandler(tutor TutorService, exercises ExerciseService) *TutorHandler {
	return &TutorHandler{tutor: tutor, exercises: exercises}
}

type StudentRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Grade string `json:"grade"`
}

type AskRequest struct {
	Question string          `json:"question"`
	Topic    string          `json:"topic"`
	Student  *StudentRequest `json:"student"`
}

type ExercisesRequest struct {
	Topic      string          `json:"topic"`
	Difficulty int             `json:"difficulty"`
	Student    *StudentRequest `json:"student"`
}

type SourceResponse struct {
	ID    int64   `json:"id"`
	Kind  string  `json:"kind"`
	Title string  `json:"title"`
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

type AnswerResponse struct {
	Answer        string           `json:"answer"`
	Topic         string           `json:"topic"`
	Difficulty    int              `json:"difficulty,omitempty"`
	VideoURL      string           `json:"video_url,omitempty"`
	InteractionID string           `json:"interaction_id,omitempty"`
	StudentID     string           `json:"student_id,omitempty"`
	Sources       []SourceResponse `json:"sources,omitempty"`
}

func answerToResponse(a *service.Answer) *AnswerResponse {
	resp := &AnswerResponse{
		Answer:        a.Text,
		Topic:         string(a.Topic),
		VideoURL:      a.VideoURL,
		InteractionID: a.InteractionID,
		StudentID:     a.StudentID,
	}
	for _, s := range a.Sources {
		resp.Sources = append(resp.Sources, SourceResponse{
			ID:    s.Document.ID,
			Kind:  string(s.Document.Kind),
			Title: s.Document.Title,
			Topic: s.Document.Topic,
			Score: s.Score,
		})
	}
	return resp
}

func (h *TutorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.tutor.Ask(r.Context(), service.AskInput{
		Question: req.Question,
		Topic:    req.Topic,
		Student:  studentInput(r, req.Student),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answerToResponse(answer))
}

func (h *TutorHandler) Exercises(w http.ResponseWriter, r *http.Request) {
	var req ExercisesRequest
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set, err := h.exercises.Generate(r.Context(), service.ExerciseInput{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Student:    studentInput(r, req.Student),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := answerToResponse(set.Answer)
	resp.Difficulty = set.Difficulty
	api.Success(w, http.StatusOK, resp)
}

// decodeBody accepts an empty body as the zero request.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// studentInput prefers the body's student and falls back to the
// X-Student-ID header.
func studentInput(r *http.Request, req *StudentRequest) service.StudentInput {
	var in service.StudentInput
	if req != nil {
		in = service.StudentInput{ID: req.ID, Name: req.Name, Age: req.Age, Grade: req.Grade}
	}
	if in.ID == "" && in.Name == "" {
		in.ID = middleware.GetStudentID(r.Context())
	}
	return in
}

