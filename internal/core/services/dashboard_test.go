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

package services_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-reco/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	zassert "github.com/zeebo/assert"
)

func newDashboard(t *testing.T, carouselSize int) *services.DashboardService {
	t.Helper()
	posters := services.NewPosterService(tmdbBase, nil, nil, 0)
	return services.NewDashboardService(newStore(t), posters, carouselSize, 0).
		WithRand(rand.New(rand.NewPCG(1, 2)))
}

func TestCarouselKeepsOnlyMoviesWithPosters(t *testing.T) {
	cards, err := newDashboard(t, 30).Carousel(context.Background())
	require.NoError(t, err)

	got := map[int]bool{}
	for _, c := range cards {
		assert.NotEmpty(t, c.PosterURL)
		got[c.ID] = true
	}
	assert.Equal(t, map[int]bool{
		test.Inception: true, test.Interstellar: true, test.Amelie: true,
		test.Prestige: true, test.LaHaine: true, test.Heat: true,
	}, got)
}

func TestCarouselSamplesAtMostCarouselSize(t *testing.T) {
	svc := newDashboard(t, 3)
	for i := 0; i < 10; i++ {
		cards, err := svc.Carousel(context.Background())
		require.NoError(t, err)
		assert.LessOrEqual(t, len(cards), 3)
	}
}

func TestFacets(t *testing.T) {
	facets, err := newDashboard(t, 30).Facets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Action", "Adventure", "Comedy", "Crime", "Drama", "Mystery", "Romance", "Sci-Fi"}, facets.Genres)
	assert.Equal(t, []string{"Christopher Nolan", "Francis Veber", "Jean-Pierre Jeunet", "Mathieu Kassovitz", "Michael Mann"}, facets.Directors)
	assert.Contains(t, facets.Actors, "Nobody")
	assert.Equal(t, model.YearRange{Min: 1995, Max: 2014}, facets.Years)
}

func TestCard(t *testing.T) {
	svc := newDashboard(t, 30)
	dataset := test.NewDataset(t)

	inception, _ := dataset.Catalog.Get(test.Inception)
	card := svc.Card(inception)
	zassert.Equal(t, card.PosterURL, tmdbBase+"/inception.jpg")
	zassert.Equal(t, card.RatingGauge.Band, model.BandHigh)
	zassert.Equal(t, card.VoteGauge.Band, model.BandHigh)
	zassert.Equal(t, card.VoteGauge.Max, model.DefaultMaxVotes)
	zassert.DeepEqual(t, card.Genres, []string{"Action", "Sci-Fi"})

	broken, _ := dataset.Catalog.Get(test.BrokenRow)
	card = svc.Card(broken)
	zassert.Equal(t, card.PosterURL, "")
	assert.Nil(t, card.RatingGauge)
	assert.Nil(t, card.VoteGauge)
	zassert.Equal(t, len(card.Genres), 0)

	heat, _ := dataset.Catalog.Get(test.Heat)
	zassert.Equal(t, svc.Card(heat).PosterURL, "https://example.org/heat.jpg")
}

func TestStats(t *testing.T) {
	stats, err := newDashboard(t, 30).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Movies)
	assert.Equal(t, 8, stats.Recommendations)
	assert.Equal(t, 6, stats.WithPosters)
	assert.Equal(t, "csv", stats.Source)
	assert.Equal(t, model.YearRange{Min: 1995, Max: 2014}, stats.Years)
}

func TestHomeCarriesSeasonalFlag(t *testing.T) {
	svc := newDashboard(t, 30)
	home, err := svc.Home(context.Background(), time.Date(2024, time.December, 24, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, home.Christmas)
	assert.NotEmpty(t, home.Carousel)

	home, err = svc.Home(context.Background(), time.Date(2024, time.July, 14, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, home.Christmas)
}

func TestIsChristmasPeriod(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		paris = time.UTC
	}
	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2024, time.November, 30, 23, 59, 59, 0, time.UTC), false},
		{time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, time.December, 31, 23, 59, 59, 0, paris), true},
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, time.January, 1, 0, 0, 1, 0, time.UTC), false},
		{time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, services.IsChristmasPeriod(tc.at), tc.at.String())
	}
}
