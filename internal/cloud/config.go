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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings for
// the dataset source, Google Cloud services, the poster fetcher, the Redis
// cache and the dashboard itself.
//
// Structs:
//   - Dataset: where the catalog and recommendation table are read from.
//   - BigQueryDataSource: BigQuery dataset and tables used when the source is "bigquery".
//   - Posters: settings for resolving and downloading poster images.
//   - Cache: Redis connection settings for the poster cache.
//   - Integrity: Pub/Sub topic that receives data-integrity events.
//   - Dashboard: presentation limits (carousel size, gauge maximum, page sizes).
//   - Logging: log level and optional log file.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor returning a Config populated with defaults.
package cloud

import "time"

// Dataset source kinds.
const (
	SourceCSV      = "csv"
	SourceBigQuery = "bigquery"
)

// Dataset represents where the two dataset resources live.
type Dataset struct {
	Source     string `toml:"source"`      // SourceCSV or SourceBigQuery.
	CatalogURI string `toml:"catalog_uri"` // Local path or gs://bucket/object of the catalog CSV.
	RecoURI    string `toml:"reco_uri"`    // Local path or gs://bucket/object of the recommendation CSV.
}

// BigQueryDataSource represents the configuration for a BigQuery data source.
type BigQueryDataSource struct {
	DatasetName  string `toml:"dataset"`       // The name of the BigQuery dataset.
	CatalogTable string `toml:"catalog_table"` // The table holding the movie catalog.
	RecoTable    string `toml:"reco_table"`    // The table holding the recommendation rows.
}

// Posters represents the configuration for poster URL resolution and downloads.
type Posters struct {
	BaseURL          string `toml:"base_url"`             // Prefix for relative poster paths.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`   // Timeout of a single download attempt.
	MaxRetries       int    `toml:"max_retries"`          // Extra attempts after a failed download.
	RateLimit        int    `toml:"rate_limit"`           // Downloads allowed per second (burst size).
	CacheTTLSeconds  int    `toml:"cache_ttl_in_seconds"` // Lifetime of a cached poster in Redis.
}

// Timeout returns the per-attempt download timeout.
func (p Posters) Timeout() time.Duration {
	return time.Duration(p.TimeoutInSeconds) * time.Second
}

// CacheTTL returns the Redis lifetime of a cached poster.
func (p Posters) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// Cache represents the Redis connection used to cache poster bytes. An empty
// address disables caching.
type Cache struct {
	RedisAddress  string `toml:"redis_address"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Integrity represents where data-integrity events are published. An empty
// topic means events are only logged.
type Integrity struct {
	Topic string `toml:"topic"`
}

// Dashboard holds presentation limits.
type Dashboard struct {
	CarouselSize   int   `toml:"carousel_size"`    // Number of random movies sampled for the home carousel.
	MaxVotes       int64 `toml:"max_votes"`        // Upper end of the vote count gauge.
	SearchPageSize int   `toml:"search_page_size"` // Default number of search results per page.
	MaxPageSize    int   `toml:"max_page_size"`    // Hard cap on the page size a client may request.
}

// Logging controls the structured logger.
type Logging struct {
	Level string `toml:"level"` // debug, info, warn or error.
	File  string `toml:"file"`  // Optional file that receives a copy of every log line.
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                   string `toml:"name"`                        // The name of the application.
		GoogleProjectId        string `toml:"google_project_id"`           // The Google Cloud project ID. Empty disables cloud exporters.
		GoogleLocation         string `toml:"location"`                    // The Google Cloud location.
		ListenAddress          string `toml:"listen_address"`              // The HTTP listen address, e.g. ":8080".
		ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_in_seconds"` // Grace period for in-flight requests on shutdown.
	} `toml:"application"`
	Dataset            Dataset            `toml:"dataset"`               // Dataset source configuration.
	BigQueryDataSource BigQueryDataSource `toml:"big_query_data_source"` // BigQuery data source configuration.
	Posters            Posters            `toml:"posters"`               // Poster fetcher configuration.
	Cache              Cache              `toml:"cache"`                 // Redis cache configuration.
	Integrity          Integrity          `toml:"integrity"`             // Integrity event configuration.
	Dashboard          Dashboard          `toml:"dashboard"`             // Dashboard limits.
	Logging            Logging            `toml:"logging"`               // Logger configuration.
}

// NewConfig is a constructor function that creates a new Config instance with
// the dashboard defaults. Values found in the TOML files
// overwrite these.
//
// Outputs:
//   - *Config: A pointer to a new Config struct.
func NewConfig() *Config {
	c := &Config{
		Dataset: Dataset{
			Source:     SourceCSV,
			CatalogURI: "df_complet.csv",
			RecoURI:    "df_reco.csv",
		},
		Posters: Posters{
			BaseURL:          "https://image.tmdb.org/t/p/w500",
			TimeoutInSeconds: 5,
			MaxRetries:       2,
			RateLimit:        10,
			CacheTTLSeconds:  3600,
		},
		Dashboard: Dashboard{
			CarouselSize:   30,
			MaxVotes:       3_000_000,
			SearchPageSize: 50,
			MaxPageSize:    500,
		},
	}
	c.Logging.Level = "info"
	c.Application.Name = "movie-reco-dashboard"
	c.Application.ListenAddress = ":8080"
	c.Application.ShutdownTimeoutSeconds = 5
	return c
}
