package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"channelguard/internal/constants"
	"channelguard/internal/metrics"
	"channelguard/internal/middleware"
	"channelguard/internal/service"
	"channelguard/pkg/telegram/types"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server receives Bot API updates over HTTP when the bot runs in webhook
// mode instead of long polling.
type Server struct {
	router     *mux.Router
	logger     *logrus.Logger
	dispatcher *service.Router
	server     *http.Server
	port       int
}

func NewServer(port int, dispatcher *service.Router, logger *logrus.Logger) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		logger:     logger,
		dispatcher: dispatcher,
		port:       port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)
	s.router.HandleFunc("/webhook/telegram", s.handleUpdate()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  constants.DefaultServerReadTimeoutSec * time.Second,
		WriteTimeout: constants.DefaultServerWriteTimeoutSec * time.Second,
		IdleTimeout:  constants.DefaultServerIdleTimeoutSec * time.Second,
	}

	s.logger.Infof("Starting webhook server on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics.GetRegistry().Snapshot()); err != nil {
			s.logger.WithError(err).Warn("Failed to encode metrics snapshot")
		}
	}
}

// handleUpdate decodes one Bot API update and dispatches it. Telegram
// retries deliveries that fail, so malformed payloads are acknowledged with
// 400 rather than left to retry forever.
func (s *Server) handleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update types.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			s.logger.WithError(err).Warn("Failed to decode webhook update")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.dispatcher.Dispatch(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	}
}
