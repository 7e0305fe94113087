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
// This file, `search.go`, defines the filter engine behind the search page:
// a case-insensitive title match combined with genre, director, actor and
// release year filters.
package services

import (
	"context"
	"strings"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// Search returns the catalog records matching criteria, in catalog order.
//
// A record matches when all of these hold:
//   - its lower-cased title contains the lower-cased term (an empty term matches all);
//   - for each of genres, directors and actors, the selection is empty or
//     shares at least one value with the record's decoded list;
//   - its release year lies in criteria.Years, bounds included.
//
// Records whose lists cannot be decoded behave as if the lists were empty.
func Search(catalog *model.Catalog, criteria model.SearchCriteria) []*model.MovieRecord {
	out := make([]*model.MovieRecord, 0)
	if catalog == nil {
		return out
	}
	term := strings.ToLower(criteria.Term)
	for _, m := range catalog.All() {
		if !criteria.Years.Contains(m.ReleaseYear) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(m.Title), term) {
			continue
		}
		if !intersects(criteria.Genres, m.Genres()) ||
			!intersects(criteria.Directors, m.Directors()) ||
			!intersects(criteria.Actors, m.Actors()) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// intersects reports whether selected is empty or contains one of values.
func intersects(selected map[string]struct{}, values []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, v := range values {
		if _, ok := selected[v]; ok {
			return true
		}
	}
	return false
}

// SearchService runs searches against the loaded catalog.
type SearchService struct {
	Store *DatasetStore
}

// NewSearchService creates a SearchService reading from store.
func NewSearchService(store *DatasetStore) *SearchService {
	return &SearchService{Store: store}
}

// Search filters the catalog.
//
// Inputs:
//   - ctx: The context for the request.
//   - criteria: the search term and filter selections.
//
// Outputs:
//   - []*model.MovieRecord: matching records in catalog order, never nil.
//   - error: ErrDatasetUnavailable when the dataset could not be loaded.
func (s *SearchService) Search(ctx context.Context, criteria model.SearchCriteria) ([]*model.MovieRecord, error) {
	dataset, err := s.Store.available(ctx)
	if err != nil {
		return []*model.MovieRecord{}, err
	}
	return Search(dataset.Catalog, criteria), nil
}

// FullYearRange returns the release year bounds of the catalog, the default
// year filter of the search page.
func (s *SearchService) FullYearRange(ctx context.Context) (model.YearRange, error) {
	dataset, err := s.Store.available(ctx)
	if err != nil {
		return model.YearRange{}, err
	}
	return dataset.Catalog.YearBounds(), nil
}

// Get returns the catalog record with the given id.
func (s *SearchService) Get(ctx context.Context, id int) (*model.MovieRecord, error) {
	dataset, err := s.Store.available(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := dataset.Catalog.Get(id)
	if !ok {
		return nil, model.ErrMovieNotFound
	}
	return m, nil
}
