// Package server carries the HTTP plumbing shared by the action and
// remote-schema services.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Server struct {
	*http.Server
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func New(host string, port int) *Server {
	s := &Server{
		Server: &http.Server{},
		Host:   host,
		Port:   port,
	}
	s.Addr = s.GetListenAddr()
	return s
}

func (s *Server) GetListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// NewRouter returns a router preloaded with the shared middleware and the
// /status health endpoint. Service names the process in health responses
// and log lines.
func NewRouter(service string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RedirectSlashes)
	r.Use(RequestLogger)
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		data := map[string]any{
			"code":    200,
			"message": fmt.Sprintf("%s is healthy", service),
		}
		err := json.NewEncoder(w).Encode(data)
		if err != nil {
			slog.Error("failed to encode JSON", "error", err)
			return
		}
	})
	return r
}

// RequestLogger tags each request with an id and logs the outcome.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.New().String()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request handled",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
