// Package server provides the ngvet dashboard: a local web page showing
// the current lint report, with live updates pushed over WebSocket
// whenever watch mode re-lints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/ngvet/internal/config"
	"github.com/conneroisu/ngvet/internal/logging"
	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/rules"
	"github.com/conneroisu/ngvet/internal/version"
)

// shutdownGrace bounds how long in-flight requests may run after the
// serve context is cancelled.
const shutdownGrace = 5 * time.Second

// DashboardServer serves the lint report UI with live reload.
type DashboardServer struct {
	config       *config.Config
	logger       logging.Logger
	hub          *hub
	httpServer   *http.Server
	serverMutex  sync.RWMutex
	reportMutex  sync.RWMutex
	current      *report.Report
	shutdownOnce sync.Once
}

// New creates a dashboard server for the given configuration.
func New(cfg *config.Config, logger logging.Logger) *DashboardServer {
	logger = logger.WithComponent("server")
	return &DashboardServer{
		config: cfg,
		logger: logger,
		hub:    newHub(logger),
	}
}

// Addr returns the host:port the server binds to.
func (s *DashboardServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// SetReport stores the report from the latest run and pushes it to
// connected dashboard pages.
func (s *DashboardServer) SetReport(r *report.Report) {
	s.reportMutex.Lock()
	s.current = r
	s.reportMutex.Unlock()

	if r == nil {
		return
	}

	payload, err := json.Marshal(updateMessage{RunID: r.RunID, Report: r})
	if err != nil {
		s.logger.Error(context.Background(), err, "Failed to marshal report update")
		return
	}
	s.hub.publish(payload)
}

// Report returns the report from the latest run, or nil before the
// first run completes.
func (s *DashboardServer) Report() *report.Report {
	s.reportMutex.RLock()
	defer s.reportMutex.RUnlock()
	return s.current
}

// updateMessage is pushed to dashboard pages after every re-lint.
type updateMessage struct {
	RunID  string         `json:"run_id"`
	Report *report.Report `json:"report"`
}

// Start runs the HTTP server and the WebSocket hub until ctx is
// cancelled, then shuts down gracefully.
func (s *DashboardServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/rules", s.handleRules)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer := s.httpServer
	s.serverMutex.Unlock()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.hub.run(gctx)
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		s.logger.Info(gctx, "Dashboard listening", "addr", s.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	})

	return group.Wait()
}

// Shutdown closes client connections and stops the HTTP server.
func (s *DashboardServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down dashboard")
		s.hub.closeAll()

		s.serverMutex.RLock()
		httpServer := s.httpServer
		s.serverMutex.RUnlock()

		if httpServer != nil {
			shutdownErr = httpServer.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// withRequestLog logs each request at debug level.
func (s *DashboardServer) withRequestLog(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}

func (s *DashboardServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{
		Title:   "ngvet dashboard",
		Version: version.GetShortVersion(),
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render dashboard page")
	}
}

func (s *DashboardServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	current := s.Report()
	w.Header().Set("Content-Type", "application/json")
	if current == nil {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"pending"}`)
		return
	}

	if err := json.NewEncoder(w).Encode(current); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode report")
	}
}

// ruleInfo is the /api/rules wire shape.
type ruleInfo struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Default  report.Severity `json:"default"`
	Summary  string          `json:"summary"`
}

func (s *DashboardServer) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all := rules.All()
	infos := make([]ruleInfo, 0, len(all))
	for _, rule := range all {
		meta := rule.Meta()
		infos = append(infos, ruleInfo{
			ID:       meta.ID,
			Category: meta.Category,
			Default:  meta.Default,
			Summary:  meta.Summary,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode rules")
	}
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"clients":   s.hub.count(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode health response")
	}
}

// checkOrigin validates the request origin. Only same-host and
// explicitly configured origins may open WebSocket connections.
func (s *DashboardServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	for _, allowed := range s.allowedHosts() {
		if originURL.Host == allowed {
			return true
		}
	}
	return false
}

// allowedHosts lists the origin hosts permitted to connect.
func (s *DashboardServer) allowedHosts() []string {
	port := s.config.Server.Port
	hosts := []string{
		s.Addr(),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("[::1]:%d", port),
	}

	for _, allowed := range s.config.Server.AllowedOrigins {
		if parsed, err := url.Parse(allowed); err == nil && parsed.Host != "" {
			hosts = append(hosts, parsed.Host)
		} else {
			hosts = append(hosts, allowed)
		}
	}
	return hosts
}
