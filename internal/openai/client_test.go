package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/aula/internal/domain"
)

// MockOpenAIAPI is a mock for the OpenAI API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockOpenAIAPI) CreateChatCompletion(ctx context.Context, req ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func vector(dim int, seed float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(i) * seed
	}
	return v
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, mockAPI, Config{})

	ctx := context.Background()
	text := "¿Cómo se suma llevando?"
	expected := vector(1536, 0.001)

	mockAPI.On("CreateEmbeddings", ctx, []string{text}).Return([][]float32{expected}, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, 1536)
	assert.Equal(t, expected, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, mockAPI, Config{})

	for _, text := range []string{"", "   \n"} {
		embedding, err := client.GenerateEmbedding(context.Background(), text)
		assert.Nil(t, embedding)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	mockAPI.AssertNotCalled(t, "CreateEmbeddings", mock.Anything, mock.Anything)
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, mockAPI, Config{})

	ctx := context.Background()
	apiErr := errors.New("API rate limit exceeded")
	mockAPI.On("CreateEmbeddings", ctx, []string{"Test text"}).Return(nil, apiErr).Once()

	embedding, err := client.GenerateEmbedding(ctx, "Test text")

	assert.Nil(t, embedding)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertNumberOfCalls(t, "CreateEmbeddings", 1)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, mockAPI, Config{EmbeddingDimensions: 8})

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"hola"}).Return([][]float32{vector(4, 1)}, nil)

	_, err := client.GenerateEmbedding(ctx, "hola")
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestClient_GenerateEmbeddings_Batch(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, mockAPI, Config{EmbeddingDimensions: 3})

	ctx := context.Background()
	texts := []string{"uno", "dos"}
	mockAPI.On("CreateEmbeddings", ctx, texts).Return([][]float32{{1, 0, 0}, {0, 1, 0}}, nil)

	out, err := client.GenerateEmbeddings(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, out)

	_, err = client.GenerateEmbeddings(ctx, []string{"uno", ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mockAPI.On("CreateEmbeddings", ctx, []string{"tres"}).Return([][]float32{}, nil)
	_, err = client.GenerateEmbeddings(ctx, []string{"tres"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestClient_Generate(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, mockAPI, Config{})

	ctx := context.Background()
	req := ChatRequest{
		System:      "Eres un profesor de Primaria",
		Prompt:      "Pregunta: 2+2",
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	mockAPI.On("CreateChatCompletion", ctx, req).Return("2 + 2 = 4", nil)

	out, err := client.Generate(ctx, req.System, req.Prompt)
	require.NoError(t, err)
	assert.Equal(t, "2 + 2 = 4", out)
	mockAPI.AssertExpectations(t)
}

func TestClient_Generate_Error(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, mockAPI, Config{Temperature: 0.5, MaxTokens: 100})

	ctx := context.Background()
	mockAPI.On("CreateChatCompletion", ctx, mock.MatchedBy(func(r ChatRequest) bool {
		return r.Temperature == 0.5 && r.MaxTokens == 100
	})).Return("", errors.New("503 service unavailable"))

	_, err := client.Generate(ctx, "sys", "prompt")
	assert.ErrorIs(t, err, domain.ErrGenerationService)

	_, err = client.Generate(ctx, "sys", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key")

	assert.NotNil(t, client)
	assert.NotNil(t, client.api)
	assert.NotNil(t, client.chat)
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
	assert.Equal(t, float32(DefaultTemperature), client.temperature)
	assert.Equal(t, DefaultMaxTokens, client.maxTokens)
}

func TestNewClientFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	client, err := NewClientFromEnv()
	require.NoError(t, err)
	assert.NotNil(t, client)
}
