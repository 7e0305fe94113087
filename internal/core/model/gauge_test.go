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

package model_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

func ptrF(v float64) *float64 { return &v }
func ptrI64(v int64) *int64   { return &v }

func TestRatingGaugeBands(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
		band string
	}{
		{-1, 0, model.BandLow},
		{0, 0, model.BandLow},
		{2.9, 2.9, model.BandLow},
		{3, 3, model.BandMedium},
		{6.99, 6.99, model.BandMedium},
		{7, 7, model.BandHigh},
		{8.8, 8.8, model.BandHigh},
		{12, 10, model.BandHigh},
	}
	for _, tc := range cases {
		g := model.NewRatingGauge(ptrF(tc.in))
		if assert.NotNil(t, g) {
			assert.Equal(t, tc.want, g.Value, "input %v", tc.in)
			assert.Equal(t, tc.band, g.Band, "input %v", tc.in)
			assert.Equal(t, model.RatingScaleMax, g.Max)
		}
	}
	assert.Nil(t, model.NewRatingGauge(nil))
}

func TestVoteGaugeClampsAndBands(t *testing.T) {
	g := model.NewVoteGauge(ptrI64(-5), 0)
	assert.Equal(t, int64(0), g.Value)
	assert.Equal(t, model.DefaultMaxVotes, g.Max)
	assert.Equal(t, model.BandLow, g.Band)

	g = model.NewVoteGauge(ptrI64(5_000_000), 3_000_000)
	assert.Equal(t, int64(3_000_000), g.Value)
	assert.Equal(t, 1.0, g.Fraction)
	assert.Equal(t, model.BandHigh, g.Band)

	g = model.NewVoteGauge(ptrI64(1_500_000), 3_000_000)
	assert.Equal(t, 0.5, g.Fraction)
	assert.Equal(t, model.BandMedium, g.Band)

	assert.Nil(t, model.NewVoteGauge(nil, 100))
}

func TestDatasetErrorMatchesKindAndCause(t *testing.T) {
	err := model.NewDatasetError(model.ResourceCatalog, model.ErrDataNotFound, os.ErrNotExist)
	wrapped := fmt.Errorf("loading: %w", err)

	assert.True(t, errors.Is(wrapped, model.ErrDataNotFound))
	assert.True(t, errors.Is(wrapped, os.ErrNotExist))
	assert.False(t, errors.Is(wrapped, model.ErrDataEmpty))
	assert.Contains(t, err.Error(), "catalog")

	bare := model.NewDatasetError(model.ResourceRecoTable, model.ErrDataEmpty, nil)
	assert.ErrorIs(t, bare, model.ErrDataEmpty)
	assert.Equal(t, "recommendations: dataset resource is empty", bare.Error())
}

func TestDanglingReferenceError(t *testing.T) {
	var err error = &model.DanglingReferenceError{MovieID: 42, Rank: 3, RecoID: 999}
	assert.ErrorIs(t, err, model.ErrDanglingReference)
	assert.Contains(t, err.Error(), "rank 3")
	assert.Equal(t, "No recommendations available.", model.UserMessage(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", model.UserMessage(nil))
	assert.Equal(t, "Error: a data file could not be found.",
		model.UserMessage(model.NewDatasetError(model.ResourceCatalog, model.ErrDataNotFound, nil)))
	assert.Equal(t, "Error: a data file is empty.",
		model.UserMessage(model.NewDatasetError(model.ResourceCatalog, model.ErrDataEmpty, nil)))
	assert.Equal(t, "Error: a data file could not be parsed.",
		model.UserMessage(model.NewDatasetError(model.ResourceCatalog, model.ErrDataFormat, nil)))
	assert.Equal(t, "An unexpected error occurred.", model.UserMessage(errors.New("boom")))
}

func TestNewMovieCard(t *testing.T) {
	dur := 148
	m := &model.MovieRecord{
		ID: 42, Title: "Inception", ReleaseYear: 2010, DurationMinutes: &dur,
		AverageRating: ptrF(8.8), VoteCount: ptrI64(2_400_000),
		RawGenres: `['Sci-Fi', 'Thriller']`, RawDirectors: `['Christopher Nolan']`, RawActors: "nan",
	}
	card := model.NewMovieCard(m, "https://img/x.jpg", 3_000_000)
	assert.Equal(t, 42, card.ID)
	assert.Equal(t, []string{"Sci-Fi", "Thriller"}, card.Genres)
	assert.Equal(t, []string{"Christopher Nolan"}, card.Directors)
	assert.Empty(t, card.Actors)
	assert.Equal(t, model.BandHigh, card.RatingGauge.Band)
	assert.Equal(t, model.BandHigh, card.VoteGauge.Band)
	assert.Equal(t, "https://img/x.jpg", card.PosterURL)
}
