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
// This file, `dashboard.go`, assembles the dashboard views: the random poster
// carousel of the home page, the filter options of the search page, movie
// detail cards and dataset statistics.
package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// Home is the payload of the home page.
type Home struct {
	Carousel  []*model.MovieCard `json:"carousel"`
	Christmas bool               `json:"christmas"` // Seasonal theme flag.
}

// Stats summarizes the loaded dataset.
type Stats struct {
	Source          string          `json:"source"`
	LoadedAt        time.Time       `json:"loaded_at"`
	Movies          int             `json:"movies"`
	Recommendations int             `json:"recommendations"`
	WithPosters     int             `json:"with_posters"`
	Years           model.YearRange `json:"years"`
}

// DashboardService builds the dashboard views.
type DashboardService struct {
	Store        *DatasetStore
	Posters      *PosterService
	CarouselSize int
	MaxVotes     int64

	mu     sync.Mutex
	rng    *rand.Rand // nil uses the global source.
	facets *model.Facets
	stats  *Stats
}

// NewDashboardService creates a DashboardService. A non-positive carouselSize
// or maxVotes falls back to 30 and model.DefaultMaxVotes.
func NewDashboardService(store *DatasetStore, posters *PosterService, carouselSize int, maxVotes int64) *DashboardService {
	if carouselSize <= 0 {
		carouselSize = 30
	}
	if maxVotes <= 0 {
		maxVotes = model.DefaultMaxVotes
	}
	return &DashboardService{Store: store, Posters: posters, CarouselSize: carouselSize, MaxVotes: maxVotes}
}

// WithRand makes sampling deterministic; used by tests.
func (s *DashboardService) WithRand(rng *rand.Rand) *DashboardService {
	s.rng = rng
	return s
}

func (s *DashboardService) perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng != nil {
		return s.rng.Perm(n)
	}
	return rand.Perm(n)
}

// Card builds the detail card of m.
func (s *DashboardService) Card(m *model.MovieRecord) *model.MovieCard {
	return model.NewMovieCard(m, s.Posters.PosterURL(m.PosterPath), s.MaxVotes)
}

// Cards builds the cards of records, keeping their order.
func (s *DashboardService) Cards(records []*model.MovieRecord) []*model.MovieCard {
	out := make([]*model.MovieCard, 0, len(records))
	for _, m := range records {
		out = append(out, s.Card(m))
	}
	return out
}

// Carousel samples CarouselSize random records and keeps those that have a
// poster. Catalogs smaller than the sample size are sampled entirely.
func (s *DashboardService) Carousel(ctx context.Context) ([]*model.MovieCard, error) {
	dataset, err := s.Store.available(ctx)
	if err != nil {
		return []*model.MovieCard{}, err
	}
	all := dataset.Catalog.All()
	n := min(s.CarouselSize, len(all))

	out := make([]*model.MovieCard, 0, n)
	for _, i := range s.perm(len(all))[:n] {
		if all[i].HasPoster() {
			out = append(out, s.Card(all[i]))
		}
	}
	return out, nil
}

// Home builds the home page payload for the time now.
func (s *DashboardService) Home(ctx context.Context, now time.Time) (*Home, error) {
	carousel, err := s.Carousel(ctx)
	return &Home{Carousel: carousel, Christmas: IsChristmasPeriod(now)}, err
}

// Facets returns the filter options of the search page. They are computed
// once, since the dataset never changes after loading.
func (s *DashboardService) Facets(ctx context.Context) (*model.Facets, error) {
	dataset, err := s.Store.available(ctx)
	if err != nil {
		return &model.Facets{Genres: []string{}, Directors: []string{}, Actors: []string{}}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.facets == nil {
		s.facets = dataset.Catalog.Facets()
	}
	return s.facets, nil
}

// Stats returns statistics about the loaded dataset.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	dataset, err := s.Store.available(ctx)
	if err != nil {
		return &Stats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		withPosters := 0
		for _, m := range dataset.Catalog.All() {
			if m.HasPoster() {
				withPosters++
			}
		}
		s.stats = &Stats{
			Source:          dataset.Source,
			LoadedAt:        dataset.LoadedAt,
			Movies:          dataset.Catalog.Len(),
			Recommendations: dataset.RecoTable.Len(),
			WithPosters:     withPosters,
			Years:           dataset.Catalog.YearBounds(),
		}
	}
	return s.stats, nil
}

// IsChristmasPeriod reports whether t falls between December 1st 00:00 and
// January 1st 00:00 of the next year, in t's location. The window is built
// from t's own year, so New Year's midnight itself is already outside it.
func IsChristmasPeriod(t time.Time) bool {
	start := time.Date(t.Year(), time.December, 1, 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
	return !t.Before(start) && !t.After(end)
}
