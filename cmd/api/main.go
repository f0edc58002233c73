package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/checkfox/go_request/internal/config"
	"github.com/checkfox/go_request/internal/handlers"
	"github.com/checkfox/go_request/internal/logger"
	"github.com/checkfox/go_request/internal/repository"
	"github.com/checkfox/go_request/internal/services"
	"github.com/checkfox/go_request/internal/transport"
	"github.com/gorilla/mux"
)

func main() {
	// Initialize structured logger
	logger.Init()
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Info(ctx, "API Server starting",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
		"auth_enabled", cfg.Auth.Enabled)

	// Wire the transport client over the remote API connections
	connections := map[transport.AuthMode]transport.Connection{
		transport.AuthModeAPIKey: transport.NewAPIKeyConnection(
			cfg.Remote.Endpoint, cfg.Remote.APIKey, cfg.Remote.Timeout),
	}
	if cfg.Remote.SessionToken != "" {
		connections[transport.AuthModeUserSession] = transport.NewSessionConnection(
			cfg.Remote.Endpoint, cfg.Remote.SessionToken, cfg.Remote.Timeout)
	}

	client := transport.NewClient(connections, transport.ClientOptions{
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.BaseDelay,
		Timeout:        cfg.Remote.Timeout,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsSize:    cfg.Metrics.BufferSize,
	})

	logger.Info(ctx, "Remote API client initialized",
		"endpoint", cfg.Remote.Endpoint,
		"max_retries", cfg.Retry.MaxRetries)

	// Initialize repositories
	requestRepo := repository.NewRequestRepository(client, repository.Options{
		DefaultLimit:      cfg.Repository.DefaultLimit,
		MaxLimit:          cfg.Repository.MaxLimit,
		ValidationEnabled: cfg.Repository.ValidationEnabled,
		AuditFields:       cfg.Repository.AuditFields,
	})

	// Initialize the request service. Notification, audit, and directory
	// collaborators are optional and wired by the deployment.
	requestService := services.NewRequestService(requestRepo, nil, nil, nil, nil)

	// Initialize handlers
	requestHandler := handlers.NewRequestHandler(requestService, requestRepo)
	statsHandler := handlers.NewStatsHandler(client, requestRepo)

	// Initialize middleware
	authMiddleware := handlers.NewAuthMiddleware(cfg)
	correlationMiddleware := handlers.NewCorrelationMiddleware()
	recoveryMiddleware := handlers.NewRecoveryMiddleware()

	// Set up HTTP routes
	router := mux.NewRouter()
	router.Use(correlationMiddleware.Middleware)
	router.Use(recoveryMiddleware.Middleware)

	api := router.PathPrefix("/").Subrouter()
	api.Use(authMiddleware.Middleware)

	api.HandleFunc("/requests", requestHandler.HandleCreateRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/search", requestHandler.HandleSearchRequests).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}", requestHandler.HandleGetRequest).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}/status", requestHandler.HandleUpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/requests/{id}/quote", requestHandler.HandleGenerateQuote).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/assign", requestHandler.HandleAssignRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/score", requestHandler.HandleScoreRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/follow-up", requestHandler.HandleScheduleFollowUp).Methods(http.MethodPost)

	api.HandleFunc("/stats/metrics", statsHandler.HandleOperationMetrics).Methods(http.MethodGet)
	api.HandleFunc("/stats/metrics/clear", statsHandler.HandleClearMetrics).Methods(http.MethodPost)
	api.HandleFunc("/stats/requests/counts", statsHandler.HandleRequestCountsByStatus).Methods(http.MethodGet)

	// Health check endpoint stays outside authentication
	router.HandleFunc("/health", statsHandler.HandleHealth).Methods(http.MethodGet)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "address", addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)

	case sig := <-sigChan:
		logger.Info(ctx, "Received shutdown signal", "signal", sig.String())

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown error", "error", err.Error())
			server.Close()
		}

		logger.Info(ctx, "Server shutdown complete")
	}
}
