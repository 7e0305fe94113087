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

// Package main contains the API route definitions for the server. This file,
// `movies.go`, serves the search page, the movie detail card, the "similar
// movies" panel and the poster images.
//
// Functions:
//   - MovieRouter: registers the /movies routes.
//   - respondError: maps a service error to a status code and user message.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/services"
)

var errBadRequest = errors.New("bad request")

// SearchResponse is one page of search results.
type SearchResponse struct {
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
	Years   model.YearRange    `json:"years"`
	Results []*model.MovieCard `json:"results"`
	Error   string             `json:"error,omitempty"`
}

// RecommendationCard is one ranked slot of the "similar movies" panel. Movie
// is null when the slot is empty.
type RecommendationCard struct {
	Rank  int              `json:"rank"`
	Movie *model.MovieCard `json:"movie"`
}

// RecommendationsResponse is the "similar movies" panel of a movie.
type RecommendationsResponse struct {
	MovieID         int                  `json:"movie_id"`
	Recommendations []RecommendationCard `json:"recommendations"`
	Error           string               `json:"error,omitempty"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDatasetUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrMovieNotFound), errors.Is(err, model.ErrPosterUnavailable):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnknownMovie), errors.Is(err, model.ErrDanglingReference):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes payload with the status matching err. The payload is
// expected to be the empty shape of the endpoint's normal response and to
// carry the message set by the caller.
func respondError(c *gin.Context, err error, payload any) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, payload)
}

func errorMessage(err error) string {
	if errors.Is(err, errBadRequest) {
		return err.Error()
	}
	return model.UserMessage(err)
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return v, nil
}

func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, fmt.Errorf("%w: movie id must be an integer", errBadRequest)
	}
	return id, nil
}

// MovieRouter sets up the API routes for movie-related actions.
//
// Inputs:
//   - r: The *gin.RouterGroup the /movies routes are added to.
//   - s: The state holding the services.
//
// This function defines the following endpoints:
//   - GET /movies: Searches the catalog by title, genres, directors, actors and year range.
//   - GET /movies/:id: Returns the detail card of a movie.
//   - GET /movies/:id/recommendations: Returns the five ranked recommendation slots.
//   - GET /movies/:id/poster: Streams the poster image.
func MovieRouter(r *gin.RouterGroup, s *StateManager) {
	movies := r.Group("/movies")
	{
		// Handler for GET /movies?s=<term>&genre=<g>&director=<d>&actor=<a>&year_min=<y>&year_max=<y>&limit=<n>&offset=<n>
		movies.GET("", func(c *gin.Context) {
			ctx := c.Request.Context()
			resp := SearchResponse{Results: []*model.MovieCard{}}

			bounds, err := s.searchService.FullYearRange(ctx)
			if err != nil {
				resp.Error = errorMessage(err)
				respondError(c, err, resp)
				return
			}

			years := bounds
			if years.Min, err = queryInt(c, "year_min", bounds.Min); err == nil {
				years.Max, err = queryInt(c, "year_max", bounds.Max)
			}
			pageSize := s.config.Dashboard.SearchPageSize
			if err == nil {
				resp.Limit, err = queryInt(c, "limit", pageSize)
			}
			if err == nil {
				resp.Offset, err = queryInt(c, "offset", 0)
			}
			if err == nil && (resp.Limit < 0 || resp.Offset < 0) {
				err = fmt.Errorf("%w: limit and offset must not be negative", errBadRequest)
			}
			if err == nil && years.Min > years.Max {
				err = fmt.Errorf("%w: year_min must not exceed year_max", errBadRequest)
			}
			if err != nil {
				resp.Limit, resp.Offset = 0, 0
				resp.Error = errorMessage(err)
				respondError(c, err, resp)
				return
			}
			if maxPage := s.config.Dashboard.MaxPageSize; maxPage > 0 && resp.Limit > maxPage {
				resp.Limit = maxPage
			}
			resp.Years = years

			criteria := model.NewSearchCriteria(c.Query("s"), c.QueryArray("genre"), c.QueryArray("director"), c.QueryArray("actor"), years)
			results, err := s.searchService.Search(ctx, criteria)
			if err != nil {
				resp.Error = errorMessage(err)
				respondError(c, err, resp)
				return
			}

			resp.Total = len(results)
			start := min(resp.Offset, len(results))
			end := start + min(resp.Limit, len(results)-start)
			resp.Results = s.dashboardService.Cards(results[start:end])
			c.JSON(http.StatusOK, resp)
		})

		// Handler for GET /movies/:id
		movies.GET("/:id", func(c *gin.Context) {
			id, err := pathID(c)
			if err == nil {
				var m *model.MovieRecord
				if m, err = s.searchService.Get(c.Request.Context(), id); err == nil {
					c.JSON(http.StatusOK, s.dashboardService.Card(m))
					return
				}
			}
			respondError(c, err, gin.H{"error": errorMessage(err)})
		})

		// Handler for GET /movies/:id/recommendations
		movies.GET("/:id/recommendations", func(c *gin.Context) {
			ctx := c.Request.Context()
			resp := RecommendationsResponse{Recommendations: []RecommendationCard{}}

			id, err := pathID(c)
			if err == nil {
				resp.MovieID = id
				_, err = s.searchService.Get(ctx, id)
			}
			if err != nil {
				resp.Error = errorMessage(err)
				respondError(c, err, resp)
				return
			}

			slots, err := s.recommendationService.RecommendationsFor(ctx, id)
			if err != nil {
				resp.Error = errorMessage(err)
				respondError(c, err, resp)
				return
			}
			for _, slot := range slots {
				card := RecommendationCard{Rank: slot.Rank}
				if slot.Movie != nil {
					card.Movie = s.dashboardService.Card(slot.Movie)
				}
				resp.Recommendations = append(resp.Recommendations, card)
			}
			c.JSON(http.StatusOK, resp)
		})

		// Handler for GET /movies/:id/poster
		movies.GET("/:id/poster", func(c *gin.Context) {
			ctx := c.Request.Context()
			id, err := pathID(c)
			if err == nil {
				var m *model.MovieRecord
				if m, err = s.searchService.Get(ctx, id); err == nil {
					var poster *model.Poster
					if poster, err = s.posterService.Fetch(ctx, m); err == nil {
						c.Header("Cache-Control", "public, max-age=86400")
						c.Data(http.StatusOK, poster.ContentType, poster.Data)
						return
					}
				}
			}
			respondError(c, err, gin.H{"error": errorMessage(err)})
		})
	}
}
