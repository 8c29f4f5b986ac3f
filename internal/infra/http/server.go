package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"tgbot-adapter/internal/config"
	"tgbot-adapter/internal/domain"
	"tgbot-adapter/internal/domain/model"
	"tgbot-adapter/internal/infra/logging"
	"tgbot-adapter/internal/infra/metrics"
	"tgbot-adapter/internal/infra/worker"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler is the part of the bot facade the webhook needs.
type UpdateHandler interface {
	Decode(raw []byte) (*model.Session, error)
	Dispatch(ctx context.Context, sess *model.Session) (model.Outcome, error)
}

// Server receives Telegram webhook deliveries and hands each decoded update
// to the worker pool as its own cycle.
type Server struct {
	cfg     *config.Config
	updates UpdateHandler
	pool    *worker.Pool
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(cfg *config.Config, updates UpdateHandler, pool *worker.Pool, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{cfg: cfg, updates: updates, pool: pool, log: logger}
}

// Routes builds the router: POST <webhook.path>, GET /health, GET /metrics.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(middleware.Recoverer)

	r.Post(s.cfg.Webhook.Path, s.handleUpdate)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:     s.Routes(),
		ReadTimeout: s.cfg.HTTP.ReadTimeout,
	}
	s.log.Info().Str("addr", s.server.Addr).Str("path", s.cfg.Webhook.Path).Msg("webhook server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)

	if secret := s.cfg.Webhook.SecretToken; secret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			metrics.IncUpdate("unauthorized")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.HTTP.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.IncUpdate("too_large")
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		metrics.IncUpdate("read_error")
		l.Warn().Err(err).Msg("read update body")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	sess, err := s.updates.Decode(raw)
	if err != nil {
		// Telegram redelivers on non-2xx; an undecodable update never improves.
		metrics.IncUpdate("decode_error")
		l.Warn().Err(err).Msg("dropping update")
		w.WriteHeader(http.StatusOK)
		return
	}

	traceID := logging.TraceID(r.Context())
	task := func(ctx context.Context) error {
		_, err := s.updates.Dispatch(logging.WithTraceID(ctx, traceID), sess)
		return err
	}
	if err := s.pool.Submit(task); err != nil {
		if errors.Is(err, domain.ErrQueueFull) {
			metrics.IncUpdate("queue_full")
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		l.Error().Err(err).Msg("submit update")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	metrics.IncUpdate("accepted")
	w.WriteHeader(http.StatusOK)
}
