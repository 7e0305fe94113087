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

// Package model defines the core data structures of the movie dashboard. This
// file, `reco.go`, holds the precomputed recommendation table. Each entry maps
// a catalog id to at most MaxRecommendations ranked ids; a nil slot means the
// upstream job produced nothing at that rank.
package model

import "fmt"

// MaxRecommendations is the fixed number of ranked slots per movie.
const MaxRecommendations = 5

// RecommendationEntry is one row of the recommendation table.
type RecommendationEntry struct {
	MovieID int                     // The catalog id the entry belongs to.
	RecoIDs [MaxRecommendations]*int // Ranked recommended ids; index 0 is rank 1. nil means absent.
}

// RecoTable indexes recommendation entries by movie id.
type RecoTable struct {
	entries map[int]*RecommendationEntry
}

// NewRecoTable indexes entries by MovieID.
//
// Outputs:
//   - *RecoTable: the indexed table.
//   - error: ErrDataEmpty when there are no entries, ErrDataFormat on a duplicate movie id.
func NewRecoTable(entries []*RecommendationEntry) (*RecoTable, error) {
	if len(entries) == 0 {
		return nil, NewDatasetError(ResourceRecoTable, ErrDataEmpty, nil)
	}
	t := &RecoTable{entries: make(map[int]*RecommendationEntry, len(entries))}
	for _, e := range entries {
		if _, dup := t.entries[e.MovieID]; dup {
			return nil, NewDatasetError(ResourceRecoTable, ErrDataFormat,
				fmt.Errorf("duplicate recommendation entry for movie %d", e.MovieID))
		}
		t.entries[e.MovieID] = e
	}
	return t, nil
}

// Len returns the number of entries.
func (t *RecoTable) Len() int {
	return len(t.entries)
}

// Get returns the entry for movieID.
func (t *RecoTable) Get(movieID int) (*RecommendationEntry, bool) {
	e, ok := t.entries[movieID]
	return e, ok
}
