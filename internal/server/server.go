// Package server exposes the commitfind HTTP surface (spec.md §6): kicking
// indexing runs, querying commit/localization matches, retrieving file
// contents and summaries, and reporting project status.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/ziadkadry99/commitfind/internal/config"
	"github.com/ziadkadry99/commitfind/internal/embeddings"
	"github.com/ziadkadry99/commitfind/internal/llmchat"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	BaseDir  string
	AllowAll bool // allow all CORS origins (dev mode)
}

// ProviderFactory builds a Chat backend for a provider/model pair. Swapped
// out in tests for a fixed mock.
type ProviderFactory func(providerType, model string) (llmchat.Chat, error)

// EmbedderFactory builds an Embedder for a provider/model pair.
type EmbedderFactory func(providerType, model string) (embeddings.Embedder, error)

// Server is the commitfind HTTP server: one process serves every project
// under cfg.BaseDir, each isolated by its own on-disk store and lock.
type Server struct {
	cfg        Config
	serviceCfg *config.Config
	chatFor    ProviderFactory
	embedFor   EmbedderFactory
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server wired to real provider/embedder factories.
func New(cfg Config, serviceCfg *config.Config) *Server {
	return newServer(cfg, serviceCfg, defaultChatFactory, defaultEmbedderFactory)
}

// NewWithFactories creates a Server with injected provider/embedder
// factories, used by tests to avoid any network calls.
func NewWithFactories(cfg Config, serviceCfg *config.Config, chatFor ProviderFactory, embedFor EmbedderFactory) *Server {
	return newServer(cfg, serviceCfg, chatFor, embedFor)
}

func newServer(cfg Config, serviceCfg *config.Config, chatFor ProviderFactory, embedFor EmbedderFactory) *Server {
	s := &Server{cfg: cfg, serviceCfg: serviceCfg, chatFor: chatFor, embedFor: embedFor}
	s.router = s.buildRouter()
	return s
}

func defaultChatFactory(providerType, model string) (llmchat.Chat, error) {
	provider, err := llmchat.NewProvider(providerType, model)
	if err != nil {
		return nil, err
	}
	return llmchat.NewChat(provider), nil
}

func defaultEmbedderFactory(providerType, model string) (embeddings.Embedder, error) {
	return embeddings.NewEmbedder(providerType, model)
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(requestCorrelation)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/load", s.handleLoad)
	r.Post("/add-repository", s.handleAddRepository)
	r.Post("/fetch-and-checkout", s.handleFetchAndCheckout)
	r.Post("/infer-file", s.handleInferFile)
	r.Post("/retrieve-file-contents", s.handleRetrieveFileContents)
	r.Get("/status", s.handleStatus)
	r.Get("/get-file-summary", s.handleGetFileSummary)
	r.Post("/load/token-count", s.handleTokenCount)
	r.Post("/add-repository/token-count", s.handleTokenCount)
	r.Post("/fetch-and-checkout/token-count", s.handleTokenCount)

	return r
}

// requestCorrelation tags every response with a fresh uuid in the
// X-Correlation-Id header, separate from the non-uuid counter that chi's
// middleware.RequestID generates by default.
func requestCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Correlation-Id", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

// Router returns the chi router, exported for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Printf("commitfind server listening on %s", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
