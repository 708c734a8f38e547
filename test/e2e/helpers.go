//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/aula/internal/api/handlers"
	"github.com/cloo-solutions/aula/internal/corpus"
	"github.com/cloo-solutions/aula/internal/index"
	"github.com/cloo-solutions/aula/internal/media"
	"github.com/cloo-solutions/aula/internal/prompt"
	"github.com/cloo-solutions/aula/internal/repository"
	"github.com/cloo-solutions/aula/internal/server"
	"github.com/cloo-solutions/aula/internal/service"
	"github.com/cloo-solutions/aula/internal/snapshot"
	"github.com/cloo-solutions/aula/internal/storage"
	"github.com/cloo-solutions/aula/internal/testutil"
	"github.com/cloo-solutions/aula/internal/topic"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	Snapshots    snapshot.Store
	Generator    *scriptedGenerator
	DataDir      string
	VideoDir     string
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// APIResponse is the response envelope
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// SetupE2EEnv starts Postgres and an S3 store, ingests a small corpus with a
// keyword embedder and serves the API against it
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.S3AccessKey,
		SecretAccessKey: testutil.S3SecretKey,
		Bucket:          "aula-snapshots",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		Snapshots:  snapshot.NewObjectStoreSnapshot(s3Client, "vecs/all_emb.npy"),
		Generator:  &scriptedGenerator{},
		DataDir:    writeCorpus(t),
		VideoDir:   writeVideos(t),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	env.Ingest()

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}
	env.ServerURL, env.ServerCloser = env.startServer(port)

	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Ingest loads DataDir into the database and snapshot
func (e *E2ETestEnv) Ingest() *service.IngestResult {
	docs, err := corpus.Read(e.DataDir)
	if err != nil {
		e.T.Fatalf("failed to read corpus: %v", err)
	}

	svc := service.NewIngestService(
		repository.NewDocumentRepository(e.Pool),
		repository.NewTxRunner(e.Pool),
		keywordEmbedder{},
		e.Snapshots,
		service.IngestConfig{BatchSize: 2, Concurrency: 2},
	)
	result, err := svc.Run(e.Ctx, service.IngestInput{Documents: docs})
	if err != nil {
		e.T.Fatalf("ingest failed: %v", err)
	}
	return result
}

func (e *E2ETestEnv) startServer(port int) (string, func()) {
	docs := repository.NewDocumentRepository(e.Pool)
	students := repository.NewStudentRepository(e.Pool)
	interactions := repository.NewInteractionRepository(e.Pool)

	handle := index.NewHandle(docs, e.Snapshots)
	if err := handle.Load(e.Ctx); err != nil {
		e.T.Fatalf("failed to load index: %v", err)
	}

	prompts := prompt.MustLoadDefault()
	tutor := service.NewTutorService(
		handle,
		keywordEmbedder{},
		e.Generator,
		prompts,
		media.NewMatcher(e.VideoDir),
		students,
		service.NewRecorder(interactions),
		service.TutorConfig{K: 2},
	)

	router := server.NewRouter(server.RouterConfig{
		Readiness: handle,
		TutorHandler: handlers.NewTutorHandler(
			tutor,
			service.NewExerciseService(tutor, prompts),
		),
		CatalogHandler: handlers.NewCatalogHandler(
			service.NewTopicService(handle),
			service.NewHistoryService(interactions, students),
		),
		HealthHandler: handlers.NewHealthHandler(handle),
		VideoDir:      e.VideoDir,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.T.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, studentID string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, studentID)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, studentID string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, studentID)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, studentID string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if studentID != "" {
		req.Header.Set("X-Student-ID", studentID)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := APIResponse{Status: resp.StatusCode}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return &apiResp, nil
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func writeCorpus(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"temas/sumas_llevando_3º.md": "Para sumar llevando, sumamos las unidades y si pasan de 9 llevamos una decena.",
		"temas/restas_4º.md":         "Para restar colocamos el número mayor arriba y quitamos unidad a unidad.",
		"temas/multiplicaciones.md":  "Multiplicar es sumar varias veces el mismo número. Repasa las tablas.",
		"temas/vacio.md":             "   ",
		"ejercicios/sumas.csv": "topic;grade;enunciado;solucion\n" +
			"sumas;3º;27 + 15;42\n" +
			"sumas;3º;38 + 46;84\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create corpus dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write corpus file: %v", err)
		}
	}
	return dir
}

func writeVideos(t *testing.T) string {
	dir := t.TempDir()
	for _, name := range []string{"suma_llevando.mp4", "tablas multiplicar.mp4", "notas.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("video:"+name), 0o644); err != nil {
			t.Fatalf("failed to write video: %v", err)
		}
	}
	return dir
}

// keywordEmbedder maps text onto counts of topic stems plus a constant
// component, so related texts land close together without a model.
type keywordEmbedder struct{}

var embedStems = []string{"sum", "llev", "rest", "multiplic", "tabla", "divi"}

func (keywordEmbedder) embed(text string) []float32 {
	folded := topic.Fold(text)
	v := make([]float32, len(embedStems)+1)
	for i, stem := range embedStems {
		v[i] = float32(strings.Count(folded, stem))
	}
	v[len(embedStems)] = 0.1
	return v
}

func (k keywordEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return k.embed(text), nil
}

func (k keywordEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = k.embed(text)
	}
	return out, nil
}

// scriptedGenerator returns a fixed reply and keeps the last prompt.
type scriptedGenerator struct {
	mu         sync.Mutex
	lastPrompt string
}

const scriptedReply = "Una suma con llevadas es fácil.  Primero   sumas las unidades; si pasan de 9, no hay que quitar nada."

func (g *scriptedGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastPrompt = prompt
	return scriptedReply, nil
}

func (g *scriptedGenerator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPrompt
}
