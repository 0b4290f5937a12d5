package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-chat/cmd"
	"support-chat/internal/api"
	"support-chat/internal/chat"
	"support-chat/internal/config"
	"support-chat/internal/messaging"
	"support-chat/internal/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func createServer(cfg *config.Config, handler *api.ChatService, limiter *ratelimit.FixedWindow) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(ratelimit.Middleware(limiter))

	r.Route("/api", handler.AddRoutes)
	handler.AddRoutes(r)

	return &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
}

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(cfg.Root, os.ModePerm); err != nil {
		log.Fatalf("error creating directory for log file: %v", err)
	}

	f, err := os.OpenFile(cfg.LogFile(), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(f, os.Stderr))

	slog.Info("starting support chat server", "root", cfg.Root, "port", cfg.Port, "llm_provider", cfg.LLMProvider, "corpus_source", cfg.CorpusSource)

	db := cmd.CreateDatabase(cfg)
	docs := cmd.LoadCorpus(cfg)
	gateway := cmd.CreateGateway(cfg)

	publisher, receiver := cmd.CreateQueue(cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tracker := messaging.NewUsageTracker()
	trackerDone := make(chan struct{})
	go func() {
		defer close(trackerDone)
		tracker.Run(ctx, receiver)
	}()

	limiter := ratelimit.NewFixedWindow(cfg.RateLimitWindow, cfg.RateLimitMax)
	limiter.StartSweeper(ctx, cfg.RateLimitWindow)

	conversations := chat.NewConversationService(db, docs, gateway, cfg.HistoryWindow, publisher)
	server := createServer(cfg, api.NewChatService(conversations, tracker), limiter)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.Port, err)
	}

	stop()
	publisher.Close()
	receiver.Close()
	<-trackerDone

	slog.Info("server stopped")
}
