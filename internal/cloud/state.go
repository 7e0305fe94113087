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

// Package cloud provides components for interacting with external services.
// This file is responsible for initializing and holding the client objects
// needed to reach Google Cloud and Redis. It acts as a dependency injection
// container: a single, shared `ServiceClients` struct is created at startup and
// passed to the dataset loader and the services.
//
// Logic Flow:
//  1. The `NewCloudServiceClients` function is called at application startup.
//  2. It inspects the configuration and creates only the clients it calls for:
//     Storage when a dataset URI is a gs:// object, BigQuery when the dataset
//     source is "bigquery", Pub/Sub when an integrity topic is set and Redis
//     when a cache address is set.
//  3. All initialized clients are bundled into a single `ServiceClients` struct.
//
// Structs:
//   - ServiceClients: A container struct holding all initialized clients.
//
// Functions:
//   - Close: A convenience method to gracefully shut down all client connections.
//   - NewCloudServiceClients: A factory function that creates the clients the configuration needs.
package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
)

// ServiceClients is a struct that acts as a central container for all the clients
// that interact with external services. Any field may be nil when the
// configuration does not require that service.
type ServiceClients struct {
	StorageClient      *storage.Client     // Client for Google Cloud Storage (GCS).
	BigQueryClient     *bigquery.Client    // Client for Google Cloud BigQuery.
	PubsubClient       *pubsub.Client      // Client for Google Cloud Pub/Sub.
	RedisClient        *redis.Client       // Client for the poster cache.
	IntegrityPublisher *IntegrityPublisher // Publisher of data-integrity events.
}

// Close is a utility method to gracefully shut down all the active client connections.
func (c *ServiceClients) Close() {
	if c == nil {
		return
	}
	if c.IntegrityPublisher != nil {
		c.IntegrityPublisher.Stop()
	}
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
}

// NewCloudServiceClients is a factory function that initializes the service
// clients required by the provided configuration.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the initialized ServiceClients struct.
//   - error: An error if any of the required clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{}
	defer func() {
		if err != nil {
			cloud.Close()
			cloud = nil
		}
	}()

	if IsGCSURI(config.Dataset.CatalogURI) || IsGCSURI(config.Dataset.RecoURI) {
		cloud.StorageClient, err = storage.NewClient(ctx)
		if err != nil {
			return cloud, fmt.Errorf("storage client: %w", err)
		}
	}

	if config.Dataset.Source == SourceBigQuery {
		if config.Application.GoogleProjectId == "" {
			return cloud, fmt.Errorf("bigquery source requires application.google_project_id")
		}
		cloud.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return cloud, fmt.Errorf("bigquery client: %w", err)
		}
	}

	if config.Integrity.Topic != "" && config.Application.GoogleProjectId != "" {
		cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return cloud, fmt.Errorf("pubsub client: %w", err)
		}
		cloud.IntegrityPublisher = NewIntegrityPublisher(cloud.PubsubClient, config.Integrity.Topic)
	}

	if config.Cache.RedisAddress != "" {
		cloud.RedisClient = redis.NewClient(&redis.Options{
			Addr:     config.Cache.RedisAddress,
			Password: config.Cache.RedisPassword,
			DB:       config.Cache.RedisDB,
		})
		if pingErr := cloud.RedisClient.Ping(ctx).Err(); pingErr != nil {
			// The cache is optional; a dead Redis only costs refetches.
			slog.Warn("redis not reachable, poster cache disabled", "address", config.Cache.RedisAddress, "error", pingErr)
			_ = cloud.RedisClient.Close()
			cloud.RedisClient = nil
		}
	}

	return cloud, nil
}
