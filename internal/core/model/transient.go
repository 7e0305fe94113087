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
// file, `transient.go`, contains the request-scoped objects that are built
// while serving a single search, lookup or poster fetch and are never stored
// with the dataset.
package model

// These objects live for one request only.

// SearchCriteria are the inputs of the search page: a free-text title term,
// three multi-select attribute filters and the year slider.
//
// An empty filter set accepts every record. Within one set any value may match
// (OR); the three sets must all accept a record (AND).
type SearchCriteria struct {
	Term      string              // Case-insensitive title substring. Empty matches all.
	Genres    map[string]struct{} // Selected genres.
	Directors map[string]struct{} // Selected directors.
	Actors    map[string]struct{} // Selected actors.
	Years     YearRange           // Inclusive release year range.
}

// NewSearchCriteria builds criteria from plain slices, the shape the HTTP layer
// receives them in.
func NewSearchCriteria(term string, genres, directors, actors []string, years YearRange) SearchCriteria {
	return SearchCriteria{
		Term:      term,
		Genres:    toSet(genres),
		Directors: toSet(directors),
		Actors:    toSet(actors),
		Years:     years,
	}
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// RecommendationSlot is one ranked position of the "similar movies" panel.
// Movie is nil when the recommendation table has no id at this rank.
type RecommendationSlot struct {
	Rank  int          // 1-based rank.
	Movie *MovieRecord // Resolved record, or nil for an empty slot.
}

// Poster holds downloaded poster bytes.
type Poster struct {
	URL         string // The URL the bytes were fetched from.
	ContentType string // Sniffed MIME type, e.g. "image/jpeg".
	Data        []byte // Raw image bytes.
}
