package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/aula/internal/api/handlers"
	"github.com/cloo-solutions/aula/internal/config"
	"github.com/cloo-solutions/aula/internal/index"
	"github.com/cloo-solutions/aula/internal/jobs"
	"github.com/cloo-solutions/aula/internal/media"
	"github.com/cloo-solutions/aula/internal/prompt"
	"github.com/cloo-solutions/aula/internal/server"
	"github.com/cloo-solutions/aula/internal/service"
	"github.com/cloo-solutions/aula/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the tutor API server. The document index is loaded at startup and retried in the background until it succeeds.",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate(),
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
	} else {
		defer shutdownTelemetry()
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetString("port")
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	b, err := openBackend(ctx, cfg, !noMigrate)
	if err != nil {
		return err
	}
	defer b.Close()

	prompts, err := prompt.Load(cfg.PromptsFile)
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	var embedder service.Embedder = NoOpAI{}
	var generator service.Generator = NoOpAI{}
	if ai := newAIClient(cfg); ai != nil {
		embedder, generator = ai, ai
	} else {
		log.Println("AULA_OPENAI_API_KEY not set: answers are disabled")
	}

	var assets service.AssetSelector
	videoDir := ""
	if info, err := os.Stat(cfg.VideoDir); err == nil && info.IsDir() {
		assets = media.NewMatcher(cfg.VideoDir)
		videoDir = cfg.VideoDir
	} else {
		log.Printf("video directory %s not found: videos disabled", cfg.VideoDir)
	}

	handle := index.NewHandle(b.Documents, b.Snapshots)
	var loader *jobs.Worker
	if err := handle.Load(ctx); err != nil {
		log.Printf("index not loaded, retrying every %s: %v", cfg.IndexRetryInterval, err)
		loader = jobs.NewWorker("index-loader", jobs.NewIndexLoader(handle), cfg.IndexRetryInterval)
		go loader.Start(ctx)
	}

	tutorSvc := service.NewTutorService(
		handle,
		embedder,
		generator,
		prompts,
		assets,
		b.Students,
		service.NewRecorder(b.Interactions),
		service.TutorConfig{
			K:            cfg.RetrievalK,
			SnippetChars: cfg.SnippetChars,
		},
	)
	exerciseSvc := service.NewExerciseService(tutorSvc, prompts)
	topicSvc := service.NewTopicService(handle)
	historySvc := service.NewHistoryService(b.Interactions, b.Students)

	router := server.NewRouter(server.RouterConfig{
		Readiness:      handle,
		TutorHandler:   handlers.NewTutorHandler(tutorSvc, exerciseSvc),
		CatalogHandler: handlers.NewCatalogHandler(topicSvc, historySvc),
		HealthHandler:  handlers.NewHealthHandler(handle),
		VideoDir:       videoDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if loader != nil {
		loader.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
