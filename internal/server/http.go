package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPServer serves health and metrics.
type HTTPServer struct {
	Server *http.Server
}

// New builds the daemon's HTTP server with the standard routes.
func New(addr string, registry *prometheus.Registry) *HTTPServer {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.Handle("/metrics", MetricsHandler(registry))
	return &HTTPServer{Server: &http.Server{Addr: addr, Handler: mux}}
}

func (s *HTTPServer) ListenAndServe() error {
	return s.Server.ListenAndServe()
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
