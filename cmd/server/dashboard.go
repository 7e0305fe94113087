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
// `dashboard.go`, serves the home page carousel, the filter options, the
// dataset statistics and the health probe.
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/services"
)

// Dataset states reported by /healthz.
const (
	datasetPending     = "pending"
	datasetLoaded      = "loaded"
	datasetUnavailable = "unavailable"
)

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Dataset string `json:"dataset"`
	Error   string `json:"error,omitempty"`
}

// DashboardRouter configures the API routes of the dashboard home page.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the "/dashboard" route group will be added.
//   - s: The state holding the services.
//   - now: The clock used for the seasonal theme flag.
func DashboardRouter(r *gin.RouterGroup, s *StateManager, now func() time.Time) {
	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/home", func(c *gin.Context) {
			home, err := s.dashboardService.Home(c.Request.Context(), now())
			if err != nil {
				respondError(c, err, gin.H{"error": errorMessage(err), "carousel": home.Carousel, "christmas": home.Christmas})
				return
			}
			c.JSON(http.StatusOK, home)
		})

		dashboard.GET("/facets", func(c *gin.Context) {
			facets, err := s.dashboardService.Facets(c.Request.Context())
			if err != nil {
				respondError(c, err, struct {
					*model.Facets
					Error string `json:"error"`
				}{facets, errorMessage(err)})
				return
			}
			c.JSON(http.StatusOK, facets)
		})

		dashboard.GET("/stats", func(c *gin.Context) {
			stats, err := s.dashboardService.Stats(c.Request.Context())
			if err != nil {
				respondError(c, err, struct {
					*services.Stats
					Error string `json:"error"`
				}{stats, errorMessage(err)})
				return
			}
			c.JSON(http.StatusOK, stats)
		})
	}
}

// HealthRouter registers GET /healthz. The probe always answers 200 while the
// process is up and reports the dataset state alongside.
func HealthRouter(r gin.IRoutes, s *StateManager) {
	r.GET("/healthz", func(c *gin.Context) {
		resp := HealthResponse{Status: "ok", Dataset: datasetPending}
		loaded, err := s.store.Status()
		switch {
		case err != nil:
			resp.Dataset = datasetUnavailable
			resp.Error = model.UserMessage(err)
		case loaded:
			resp.Dataset = datasetLoaded
		}
		c.JSON(http.StatusOK, resp)
	})
}
