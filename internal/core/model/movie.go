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
// file, `movie.go`, holds the catalog row type. A MovieRecord is built once by
// the dataset loader and is read-only afterwards, apart from the lazily decoded
// attribute lists which are computed on first use and cached on the record.
package model

import (
	"strings"
	"sync"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/literal"
)

// MovieRecord is one row of the movie catalog.
//
// The list attributes are kept in the textual form they were exported in
// (e.g. "['Drama', 'Crime']") and decoded on demand through Genres, Directors
// and Actors. Records are shared between concurrent requests, so they must
// always be handled by pointer.
type MovieRecord struct {
	ID              int      // Unique row identifier (natural key or load ordinal).
	Title           string   // Display title.
	ReleaseYear     int      // Release year.
	DurationMinutes *int     // Running time in minutes, nil when unknown.
	AverageRating   *float64 // Mean user rating on a 0-10 scale, nil when unknown.
	VoteCount       *int64   // Number of votes behind AverageRating, nil when unknown.
	PosterPath      string   // Relative poster fragment or absolute URL, empty when unknown.
	RawGenres       string   // Serialized genre list.
	RawDirectors    string   // Serialized director list.
	RawActors       string   // Serialized actor list.

	decodeOnce sync.Once
	genres     []string
	directors  []string
	actors     []string
}

func (m *MovieRecord) decode() {
	m.decodeOnce.Do(func() {
		m.genres = literal.DecodeList(m.RawGenres)
		m.directors = literal.DecodeList(m.RawDirectors)
		m.actors = literal.DecodeList(m.RawActors)
	})
}

// Genres returns the decoded genre list. Malformed or missing data yields an
// empty slice. The returned slice is shared and must not be modified.
func (m *MovieRecord) Genres() []string {
	m.decode()
	return m.genres
}

// Directors returns the decoded director list.
func (m *MovieRecord) Directors() []string {
	m.decode()
	return m.directors
}

// Actors returns the decoded actor list.
func (m *MovieRecord) Actors() []string {
	m.decode()
	return m.actors
}

// HasPoster reports whether the record carries a usable poster reference.
func (m *MovieRecord) HasPoster() bool {
	return strings.TrimSpace(m.PosterPath) != ""
}
