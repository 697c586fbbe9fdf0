package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/config"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/handlers"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/logger"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/repository"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/router"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/services"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := run(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func run() error {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.DateTime,
		AddSource:  cfg.Env == "development",
		NoColor:    cfg.LogNoColor,
	})))
	slog.Info("configuration loaded", "env", cfg.Env, "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ──── Step 2: Emotion Detection ────
	detectors := []services.EmotionDetector{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiEmotionDetector(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("gemini emotion detector unavailable, using lexicon only", logger.Err(err))
		} else {
			defer gemini.Close()
			detectors = append(detectors, gemini)
			slog.Info("gemini emotion detector initialized", "model", cfg.GeminiModel)
		}
	}
	detectors = append(detectors, services.NewLexiconEmotionDetector())
	classifier := services.NewEmotionClassifier(cfg.EmotionTimeout, detectors...)

	// ──── Step 3: Online and Offline Responders ────
	groq := services.NewGroqService(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.GroqTimeout)
	if cfg.OnlineEnabled() {
		slog.Info("online responder ready", "model", groq.Model(), "base_url", cfg.GroqBaseURL)
	} else {
		slog.Warn("GROQ_API_KEY is not set, every reply will come from the offline responder")
	}

	ollama := services.NewOllamaService(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout)
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := ollama.Ping(pingCtx); err != nil {
		slog.Warn("offline responder not ready", "endpoint", ollama.Endpoint(), logger.Err(err))
	} else {
		slog.Info("offline responder ready", "endpoint", ollama.Endpoint(), "model", ollama.Model())
	}
	pingCancel()

	// ──── Step 4: Conversation Memory and Chat Service ────
	memory := repository.NewConversationRepo(cfg.MemoryLimit)
	chatService := services.NewChatService(classifier, groq, ollama, memory)

	// ──── Step 5: Start HTTP Server ────
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router.New(handlers.NewChatHandler(chatService)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigChan:
			slog.Info("shutting down due to signal", "signal", s.String())
		case <-ctx.Done():
			return
		}

		shutdownServer(server, 30*time.Second)
	}()

	slog.Info("chat backend ready", "url", fmt.Sprintf("http://localhost:%s/chat", cfg.Port))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownServer drains in-flight requests and logs a forced shutdown.
func shutdownServer(server shutdowner, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown did not complete", logger.Err(err))
		return err
	}
	slog.Info("server stopped")
	return nil
}
