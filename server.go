package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"go-image-labeler/detector"
	"go-image-labeler/labeling"
	"go-image-labeler/models"
)

const defaultMaxBodyBytes int64 = 10 << 20

const healthCheckTimeout = 5 * time.Second

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
	MaxBodyBytes   int64  `json:"max_body_bytes,omitempty"`
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func NewServer(handler *labeling.Handler, labelDetector detector.Detector, config ServerConfig) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("label handler is required")
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler: newRouter(handler, labelDetector, config.MaxBodyBytes),
		Addr:    addr,
		// Detector calls can take a while on large images.
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

func newRouter(handler *labeling.Handler, labelDetector detector.Detector, maxBodyBytes int64) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		handleHealth(labelDetector, w, r)
	}).Methods(http.MethodGet)

	// Method dispatch (OPTIONS vs everything else) belongs to the handler.
	router.HandleFunc("/api/labels", func(w http.ResponseWriter, r *http.Request) {
		handleLabels(handler, maxBodyBytes, w, r)
	})

	slog.Debug("Registered all API routes")
	return router
}

func handleLabels(handler *labeling.Handler, maxBodyBytes int64, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("Failed to read label request body", "error", err)
		writeEnvelope(w, labeling.ErrorResponse(&labeling.Error{
			Kind: labeling.MalformedPayloadError,
			Err:  fmt.Errorf("failed to read request body: %w", err),
		}))
		return
	}

	resp := handler.Handle(r.Context(), models.RequestEnvelope{
		Method: r.Method,
		Body:   string(body),
	})
	writeEnvelope(w, resp)
}

func handleHealth(labelDetector detector.Detector, w http.ResponseWriter, r *http.Request) {
	slog.Debug("Health check request received")

	checker, ok := labelDetector.(detector.HealthChecker)
	if !ok {
		if err := writeJSON(w, http.StatusOK, map[string]bool{"ok": true}); err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := checker.HealthCheck(ctx); err != nil {
		slog.Warn("Label detector health check failed", "error", err)
		_ = writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// helpers ------------

func writeEnvelope(w http.ResponseWriter, resp models.ResponseEnvelope) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.WriteString(w, resp.Body); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}
