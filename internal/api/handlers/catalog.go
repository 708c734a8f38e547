package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/aula/internal/api"
	"github.com/cloo-solutions/aula/internal/api/middleware"
	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/service"
)

type TopicService interface {
	List() ([]string, error)
}

type HistoryService interface {
	List(ctx context.Context, in service.ListInteractionsInput) (*service.InteractionPageResult, error)
}

type CatalogHandler struct {
	topics  TopicService
	history HistoryService
}

func NewCatalogHandler(topics TopicService, history HistoryService) *CatalogHandler {
	return &CatalogHandler{topics: topics, history: history}
}

type TopicsResponse struct {
	Topics []string `json:"topics"`
}

func (h *CatalogHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.List()
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, TopicsResponse{Topics: topics})
}

type InteractionResponse struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	Timestamp  string `json:"timestamp"`
	Prompt     string `json:"prompt"`
	Response   string `json:"response"`
	Intent     string `json:"intent"`
	Topic      string `json:"topic,omitempty"`
	Difficulty *int   `json:"difficulty,omitempty"`
	Solved     *bool  `json:"solved,omitempty"`
}

type InteractionListResponse struct {
	Items   []*InteractionResponse `json:"items"`
	Cursor  string                 `json:"cursor,omitempty"`
	HasMore bool                   `json:"has_more"`
}

func interactionToResponse(i *domain.Interaction) *InteractionResponse {
	return &InteractionResponse{
		ID:         i.ID,
		StudentID:  i.StudentID,
		Timestamp:  i.Timestamp.UTC().Format(time.RFC3339),
		Prompt:     i.Prompt,
		Response:   i.Response,
		Intent:     i.Intent,
		Topic:      i.Topic,
		Difficulty: i.Difficulty,
		Solved:     i.Solved,
	}
}

func (h *CatalogHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		studentID = middleware.GetStudentID(r.Context())
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	page, err := h.history.List(r.Context(), service.ListInteractionsInput{
		StudentID: studentID,
		Cursor:    r.URL.Query().Get("cursor"),
		Limit:     limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*InteractionResponse, len(page.Items))
	for i, it := range page.Items {
		items[i] = interactionToResponse(it)
	}

	api.Success(w, http.StatusOK, InteractionListResponse{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}
