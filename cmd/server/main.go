// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the movie recommendation dashboard backend.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// over a movie catalog and a precomputed recommendation table: title and facet search, movie
// detail cards, the five "similar movies" of a title, poster images and the home page carousel.
// The server is instrumented with OpenTelemetry for logging, tracing, and metrics.
//
// The dataset is loaded once at start. When loading fails the server keeps running in degraded
// mode: every data endpoint answers 503 with the load error message and an empty payload.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server, configures routes,
//     loads the dataset, and handles graceful shutdown.
//   - NewRouter: Builds the gin engine with middleware and every API route.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-reco/internal/telemetry"
)

// main is the primary entry point for the application.
func main() {
	// A .env file may select the runtime (GCP_RUNTIME) or the config directory.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read .env: %v\n", err)
	}

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize structured logging for the application.
	closeLogs, err := telemetry.SetupLogging(config.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLogs()
	slog.Info("Logging initialized", "level", config.Logging.Level)

	// Create a new context that can be cancelled. This is the root context for the application.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all necessary service clients.
	if err := InitState(ctx); err != nil {
		slog.Error("Failed to initialize state", "error", err)
		log.Fatal(err)
	}
	defer state.cloud.Close()
	slog.Info("Initialized State")

	// Load the dataset once. A failure is logged and the server stays up in degraded mode.
	if _, err := state.store.Load(ctx); err != nil {
		slog.Warn("Serving in degraded mode", "message", model.UserMessage(err))
	}

	r := NewRouter(state, time.Now)

	srv := &http.Server{
		Addr:         config.Application.ListenAddress,
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("Server Ready", "address", config.Application.ListenAddress)

	// Block until an interrupt signal or a listener failure.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutdown Server ...")

	// Give active requests the configured grace period to complete.
	grace := time.Duration(config.Application.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), grace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed", "error", err)
	}

	log.Println("Server exiting")
}

// NewRouter builds the gin engine.
//
// Inputs:
//   - s: The state holding the services.
//   - now: The clock used for the seasonal theme flag.
//
// Outputs:
//   - *gin.Engine: the engine with tracing and CORS middleware and the
//     /api/v1 routes registered.
func NewRouter(s *StateManager, now func() time.Time) *gin.Engine {
	r := gin.Default()

	// Add OpenTelemetry middleware to the Gin router to trace incoming requests.
	r.Use(otelgin.Middleware(s.config.Application.Name))

	// The dashboard front end is served from another origin.
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		MovieRouter(apiV1, s)
		DashboardRouter(apiV1, s, now)
		HealthRouter(apiV1, s)
	}
	return r
}
