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

// Package services contains the business logic served by the HTTP layer.
// This file, `poster.go`, resolves poster paths to image URLs and downloads
// poster images on a best-effort basis. Downloads go through the rate-limited
// fetcher, are checked to really be images and are cached in Redis when a
// cache is configured. Every failure degrades to model.ErrPosterUnavailable.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/redis/go-redis/v9"
)

// PosterCacheKeyPrefix prefixes the Redis key of a cached poster.
const PosterCacheKeyPrefix = "poster:"

// ErrCacheMiss is returned by a PosterCache that has no entry for a key.
var ErrCacheMiss = errors.New("cache miss")

// Fetcher downloads the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PosterCache stores poster bytes by key.
type PosterCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RedisPosterCache is a PosterCache backed by Redis.
type RedisPosterCache struct {
	Client *redis.Client
}

func (c *RedisPosterCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisPosterCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, key, data, ttl).Err()
}

// PosterService builds poster URLs and downloads posters.
type PosterService struct {
	BaseURL string
	Fetcher Fetcher
	Cache   PosterCache // nil disables caching.
	TTL     time.Duration
}

// NewPosterService creates a PosterService. cache may be nil.
func NewPosterService(baseURL string, fetcher Fetcher, cache PosterCache, ttl time.Duration) *PosterService {
	return &PosterService{BaseURL: strings.TrimRight(baseURL, "/"), Fetcher: fetcher, Cache: cache, TTL: ttl}
}

// PosterURL turns a poster path into an absolute URL. Empty paths give "",
// absolute http(s) URLs are returned unchanged and anything else is appended
// to the base URL.
func (s *PosterService) PosterURL(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case strings.HasPrefix(path, "/"):
		return s.BaseURL + path
	default:
		return s.BaseURL + "/" + path
	}
}

// Fetch returns the poster image of m.
//
// Outputs:
//   - *model.Poster: the bytes, their sniffed content type and source URL.
//   - error: wraps model.ErrPosterUnavailable on any failure.
func (s *PosterService) Fetch(ctx context.Context, m *model.MovieRecord) (*model.Poster, error) {
	url := s.PosterURL(m.PosterPath)
	if url == "" {
		return nil, fmt.Errorf("%w: movie %d has no poster", model.ErrPosterUnavailable, m.ID)
	}
	key := PosterCacheKeyPrefix + url

	if s.Cache != nil {
		data, err := s.Cache.Get(ctx, key)
		switch {
		case err == nil:
			if poster, ok := sniff(url, data); ok {
				return poster, nil
			}
		case !errors.Is(err, ErrCacheMiss):
			slog.WarnContext(ctx, "poster cache read failed", "key", key, "error", err)
		}
	}

	if s.Fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", model.ErrPosterUnavailable)
	}
	data, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		slog.InfoContext(ctx, "poster download failed", "movie_id", m.ID, "url", url, "error", err)
		return nil, fmt.Errorf("%w: %w", model.ErrPosterUnavailable, err)
	}
	poster, ok := sniff(url, data)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an image", model.ErrPosterUnavailable, url)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
			slog.WarnContext(ctx, "poster cache write failed", "key", key, "error", err)
		}
	}
	return poster, nil
}

// sniff checks that data is an image and builds the Poster.
func sniff(url string, data []byte) (*model.Poster, bool) {
	if !filetype.IsImage(data) {
		return nil, false
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, false
	}
	return &model.Poster{URL: url, ContentType: kind.MIME.Value, Data: data}, true
}
