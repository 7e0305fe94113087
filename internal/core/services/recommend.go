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
// This file, `recommend.go`, resolves the precomputed "similar movies" of a
// catalog entry into five ranked slots. No ranking happens here; the order
// comes from the recommendation table.
package services

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// ResolveRecommendations looks up the entry of movieID and resolves each of
// its five ranks against the catalog.
//
// Outputs:
//   - [model.MaxRecommendations]model.RecommendationSlot: ranks 1 to 5 in
//     order; Movie is nil where the entry has no id.
//   - error: wraps model.ErrUnknownMovie when there is no entry, or is a
//     *model.DanglingReferenceError when an id is missing from the catalog.
func ResolveRecommendations(movieID int, catalog *model.Catalog, table *model.RecoTable) ([model.MaxRecommendations]model.RecommendationSlot, error) {
	var slots [model.MaxRecommendations]model.RecommendationSlot
	entry, ok := table.Get(movieID)
	if !ok {
		return slots, fmt.Errorf("%w: movie %d", model.ErrUnknownMovie, movieID)
	}
	for i, recoID := range entry.RecoIDs {
		slots[i].Rank = i + 1
		if recoID == nil {
			continue
		}
		m, found := catalog.Get(*recoID)
		if !found {
			return slots, &model.DanglingReferenceError{MovieID: movieID, Rank: i + 1, RecoID: *recoID}
		}
		slots[i].Movie = m
	}
	return slots, nil
}

// RecommendationService serves the "similar movies" panel.
type RecommendationService struct {
	Store     *DatasetStore
	Integrity *IntegrityReporter
}

// NewRecommendationService creates a RecommendationService. integrity may be nil.
func NewRecommendationService(store *DatasetStore, integrity *IntegrityReporter) *RecommendationService {
	return &RecommendationService{Store: store, Integrity: integrity}
}

// RecommendationsFor resolves the recommendations of movieID. Integrity
// errors are reported before being returned so the caller only has to show
// "no recommendations available".
func (s *RecommendationService) RecommendationsFor(ctx context.Context, movieID int) ([model.MaxRecommendations]model.RecommendationSlot, error) {
	dataset, err := s.Store.available(ctx)
	if err != nil {
		return [model.MaxRecommendations]model.RecommendationSlot{}, err
	}
	slots, err := ResolveRecommendations(movieID, dataset.Catalog, dataset.RecoTable)
	if err != nil {
		s.Integrity.Report(ctx, movieID, err)
	}
	return slots, err
}
