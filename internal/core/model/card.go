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
// file, `card.go`, defines MovieCard, the JSON shape of a movie detail card as
// the front-end renders it.
package model

// MovieCard is the serializable view of a MovieRecord plus the derived values
// a detail card needs.
type MovieCard struct {
	ID              int          `json:"id"`
	Title           string       `json:"title"`
	ReleaseYear     int          `json:"release_year"`
	DurationMinutes *int         `json:"duration_minutes,omitempty"`
	AverageRating   *float64     `json:"average_rating,omitempty"`
	VoteCount       *int64       `json:"vote_count,omitempty"`
	PosterURL       string       `json:"poster_url,omitempty"`
	Genres          []string     `json:"genres"`
	Directors       []string     `json:"directors"`
	Actors          []string     `json:"actors"`
	RatingGauge     *RatingGauge `json:"rating_gauge,omitempty"`
	VoteGauge       *VoteGauge   `json:"vote_gauge,omitempty"`
}

// NewMovieCard builds the card for m.
//
// Inputs:
//   - m: the record to present.
//   - posterURL: the resolved poster URL, empty when there is none.
//   - maxVotes: upper end of the vote gauge.
func NewMovieCard(m *MovieRecord, posterURL string, maxVotes int64) *MovieCard {
	return &MovieCard{
		ID:              m.ID,
		Title:           m.Title,
		ReleaseYear:     m.ReleaseYear,
		DurationMinutes: m.DurationMinutes,
		AverageRating:   m.AverageRating,
		VoteCount:       m.VoteCount,
		PosterURL:       posterURL,
		Genres:          m.Genres(),
		Directors:       m.Directors(),
		Actors:          m.Actors(),
		RatingGauge:     NewRatingGauge(m.AverageRating),
		VoteGauge:       NewVoteGauge(m.VoteCount, maxVotes),
	}
}
