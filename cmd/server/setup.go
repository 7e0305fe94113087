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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies, such as configuration, Google Cloud service clients,
// and the dashboard services (search, recommendations, posters, home page).
//
// Functions:
//   - SetupOS: Configures the environment variables the config loader reads,
//     unless the process environment (or a .env file) already sets them.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files. It ensures the configuration is loaded only once.
//   - InitState: Creates the service clients, the dataset store and the services.
//   - NewStateManager: Wires the services over an already built dataset loader.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jaycherian/gcp-go-movie-reco/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/workflow"
)

// StateManager holds all the shared dependencies for the application, acting as a
// centralized container for service clients and configurations.
type StateManager struct {
	config                *cloud.Config
	cloud                 *cloud.ServiceClients
	store                 *services.DatasetStore
	searchService         *services.SearchService
	recommendationService *services.RecommendationService
	posterService         *services.PosterService
	dashboardService      *services.DashboardService
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the environment variables that the configuration loader uses
// to find the TOML files. Values already present in the environment win, so a
// deployment can select its own runtime with GCP_RUNTIME.
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// On the first call, it sets up the OS environment and loads the configuration
// from the TOML files. Subsequent calls return the cached configuration.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// NewStateManager wires the dashboard services around a dataset loader.
//
// Inputs:
//   - config: The application configuration.
//   - clients: The service clients. Nil or missing clients disable the matching
//     feature (poster cache, integrity events).
//   - loader: The source of the dataset.
//
// Outputs:
//   - *StateManager: the wired state. The dataset is not loaded yet.
func NewStateManager(config *cloud.Config, clients *cloud.ServiceClients, loader services.DatasetLoader) *StateManager {
	s := &StateManager{config: config, cloud: clients}
	s.store = services.NewDatasetStore(loader)

	var publisher cloud.Publisher
	var cache services.PosterCache
	if clients != nil {
		if clients.IntegrityPublisher != nil {
			publisher = clients.IntegrityPublisher
		}
		if clients.RedisClient != nil {
			cache = &services.RedisPosterCache{Client: clients.RedisClient}
		}
	}

	fetcher := cloud.NewRateLimitedFetcher(&http.Client{}, config.Posters.RateLimit, config.Posters.Timeout(), config.Posters.MaxRetries)

	s.searchService = services.NewSearchService(s.store)
	s.recommendationService = services.NewRecommendationService(s.store, services.NewIntegrityReporter(publisher))
	s.posterService = services.NewPosterService(config.Posters.BaseURL, fetcher, cache, config.Posters.CacheTTL())
	s.dashboardService = services.NewDashboardService(s.store, s.posterService, config.Dashboard.CarouselSize, config.Dashboard.MaxVotes)
	return s
}

// InitState initializes the entire application state.
//
// Inputs:
//   - ctx: The root context.Context for the application, used for managing
//     the lifecycle of client connections.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes the service clients the configuration asks for.
//  3. Builds the dataset loader workflow and the services on top of it.
func InitState(ctx context.Context) error {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return fmt.Errorf("service clients: %w", err)
	}

	loader, err := workflow.NewDatasetLoaderWorkflow(config, cloudClients)
	if err != nil {
		cloudClients.Close()
		return fmt.Errorf("dataset loader: %w", err)
	}

	state = NewStateManager(config, cloudClients, loader)
	return nil
}
