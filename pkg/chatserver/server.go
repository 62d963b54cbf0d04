package chatserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	middlewarestd "github.com/slok/go-http-metrics/middleware/std"

	"github.com/agustogpt/chatstore/pkg/sessionstore"
)

const (
	// UserHeader carries the authenticated user id, set by the fronting auth proxy.
	UserHeader = "X-Forwarded-User"

	// MaxConversationSizeBytes is the maximum size of a request body in bytes (4MB)
	MaxConversationSizeBytes = 4194304
)

type Server struct {
	listenAddr string
	manager    *sessionstore.Manager
	metrics    middleware.Middleware
	httpServer *http.Server
}

// NewServer builds the chat history API. HTTP request metrics are registered with reg.
func NewServer(listenAddr string, manager *sessionstore.Manager, reg prometheus.Registerer) *Server {
	s := &Server{
		listenAddr: listenAddr,
		manager:    manager,
		metrics: middleware.New(middleware.Config{
			Recorder: metrics.NewRecorder(metrics.Config{Registry: reg}),
		}),
	}
	s.httpServer = &http.Server{
		Addr:              listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func getUserForRequest(req *http.Request) string {
	return req.Header.Get(UserHeader)
}

// Handler returns the routed API. Each route is measured under its own handler id so chat ids
// do not end up as metric labels.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	route := func(id string, h http.HandlerFunc) http.Handler {
		return middlewarestd.Handler(id, s.metrics, h)
	}

	r.Handle("/api/health", route("health", s.jsonHealth)).Methods(http.MethodGet)
	r.Handle("/api/chats", route("new_chat", s.jsonNewChat)).Methods(http.MethodPost)
	r.Handle("/api/chats", route("list_chats", s.jsonListChats)).Methods(http.MethodGet)
	r.Handle("/api/chats/{id}", route("save_chat", s.jsonSaveChat)).Methods(http.MethodPut)
	r.Handle("/api/chats/{id}", route("get_chat", s.jsonGetChat)).Methods(http.MethodGet)
	r.Handle("/api/chats/{id}", route("delete_chat", s.jsonDeleteChat)).Methods(http.MethodDelete)
	r.Handle("/api/chats/{id}/queries", route("log_query", s.jsonLogQuery)).Methods(http.MethodPost)
	return r
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	log.WithFields(log.Fields{
		"addr":                s.listenAddr,
		"persistence_enabled": s.manager.Enabled(),
	}).Info("serving chat history API")

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetHTTPServer() *http.Server {
	return s.httpServer
}
