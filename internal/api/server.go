// Package api exposes the advice service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"health-advisor/internal/advice"
	"health-advisor/internal/history"
	"health-advisor/internal/llm"
)

// Advisor is what the handlers need from *advice.Service.
type Advisor interface {
	Advise(ctx context.Context, userID, issue string) (advice.Result, error)
	History(ctx context.Context, userID string) []history.Interaction
	DeleteHistory(ctx context.Context, userID string, index int) error
	Status() llm.KeyStatus
}

type Options struct {
	Port          int
	RatePerMinute int
	// AdviceTimeout bounds one upstream call; the write deadline leaves
	// room for it.
	AdviceTimeout time.Duration
}

const (
	defaultWriteTimeout = 60 * time.Second
	writeTimeoutMargin  = 15 * time.Second
)

func writeTimeout(adviceTimeout time.Duration) time.Duration {
	if d := adviceTimeout + writeTimeoutMargin; d > defaultWriteTimeout {
		return d
	}
	return defaultWriteTimeout
}

type Server struct {
	advisor Advisor
	log     *zap.Logger
	router  chi.Router
	server  *http.Server
	port    int
}

func NewServer(advisor Advisor, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		advisor: advisor,
		log:     log.With(zap.String("component", "api")),
		port:    opts.Port,
	}
	s.router = s.routes(opts)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout(opts.AdviceTimeout),
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.log))
	r.Use(recoverer(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", userIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.With(rateLimit(opts.RatePerMinute)).Post("/health-advice", s.handleAdvice)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleDeleteHistory)
		r.Delete("/history/{index}", s.handleDeleteHistory)
		r.Get("/test", s.handleKeyStatus)
	})
	return r
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.log.Info("health advisor listening", zap.Int("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests for up to 5 seconds.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
