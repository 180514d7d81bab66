package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"menu-extractor/extractor"
	"menu-extractor/internal/config"
	"menu-extractor/internal/types"
)

// APIRequest represents the request body for the API
type APIRequest struct {
	URL           string `json:"url"`
	Strategy      string `json:"strategy,omitempty"`
	FailurePolicy string `json:"failure_policy,omitempty"`
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool           `json:"success"`
	Data    *types.Catalog `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Server holds the API server configuration
type Server struct {
	logger       *logrus.Logger
	config       *types.Config
	newExtractor func(*types.Config, types.Logger) (extractor.CatalogExtractor, error)
}

// NewServer creates a new API server
func NewServer() *Server {
	// Load .env file if present
	_ = godotenv.Load()

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cfg, err := config.Load(os.Getenv("CRAWLER_CONFIG"))
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	return &Server{
		logger:       logger,
		config:       cfg,
		newExtractor: extractor.New,
	}
}

// handleExtract handles the extraction API endpoint
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Only allow POST requests
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request body
	var req APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Validate request
	req.URL = strings.TrimSpace(req.URL)
	if u, err := url.Parse(req.URL); err != nil || !u.IsAbs() {
		s.sendError(w, "An absolute url is required", http.StatusBadRequest)
		return
	}

	// Per-request copy; overrides must not touch the shared config
	cfg := *s.config
	if req.Strategy != "" {
		cfg.Strategy = types.Strategy(req.Strategy)
	}
	if req.FailurePolicy != "" {
		cfg.FailurePolicy = types.FailurePolicy(req.FailurePolicy)
	}
	if err := config.Validate(&cfg); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("API request received for %s (%s strategy)", req.URL, cfg.Strategy)

	catalogExtractor, err := s.newExtractor(&cfg, s.logger)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer catalogExtractor.Close()

	// Bounded by cfg.Timeout and by the client connection
	result, err := catalogExtractor.ExtractAll(r.Context(), req.URL)
	if err != nil {
		s.logger.Warnf("Failed to extract %s: %v", req.URL, err)
		status := http.StatusBadGateway
		if r.Context().Err() == context.Canceled {
			status = http.StatusRequestTimeout
		}
		s.sendError(w, err.Error(), status)
		return
	}

	// Send success response
	response := APIResponse{
		Success: true,
		Data:    result,
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Routes registers the endpoints on a new mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start starts the API server
func (s *Server) Start(port string) error {
	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /extract - Extract the menu catalog of a restaurant page")
	s.logger.Info("  GET  /health  - Health check")

	return http.ListenAndServe(":"+port, s.Routes())
}

func main() {
	// Get port from environment variable, default to 8080
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
		fmt.Printf("Using port from environment variable API_PORT: %s\n", serverPort)
	} else {
		fmt.Printf("No API_PORT environment variable found, using default: %s\n", serverPort)
	}

	server := NewServer()

	// Start the server
	log.Printf("Starting API server on port %s", serverPort)
	log.Fatal(server.Start(serverPort))
}
