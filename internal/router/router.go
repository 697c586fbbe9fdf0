package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/handlers"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/middleware"
)

func New(chatHandler *handlers.ChatHandler) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Health check
	r.Get("/health", handlers.Health)

	r.Post("/chat", chatHandler.Chat)

	return r
}
