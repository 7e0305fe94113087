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
// This file, `integrity.go`, reports data-integrity problems: a movie with no
// recommendation entry, or a recommendation pointing at an id the catalog
// does not contain. Both mean the two datasets are out of sync.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-movie-reco/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Integrity event kinds.
const (
	IntegrityUnknownMovie      = "unknown_movie"
	IntegrityDanglingReference = "dangling_reference"
)

// IntegrityEvent is the JSON payload published for each detected problem.
type IntegrityEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	MovieID    int       `json:"movie_id"`
	Rank       *int      `json:"rank,omitempty"`
	RecoID     *int      `json:"reco_id,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
}

// IntegrityReporter logs, counts and optionally publishes integrity problems.
type IntegrityReporter struct {
	publisher cloud.Publisher // nil when no topic is configured.
	counter   metric.Int64Counter
	now       func() time.Time
}

// NewIntegrityReporter creates a reporter. publisher may be nil.
func NewIntegrityReporter(publisher cloud.Publisher) *IntegrityReporter {
	counter, err := otel.Meter("github.com/jaycherian/gcp-go-movie-reco").Int64Counter("integrity.issues")
	if err != nil {
		slog.Warn("failed to create integrity counter", "error", err)
	}
	return &IntegrityReporter{publisher: publisher, counter: counter, now: time.Now}
}

// Report records err, raised while resolving the recommendations of movieID.
// Errors that are not integrity problems are ignored.
func (r *IntegrityReporter) Report(ctx context.Context, movieID int, err error) {
	if r == nil || err == nil {
		return
	}
	event := IntegrityEvent{MovieID: movieID}
	var dangling *model.DanglingReferenceError
	switch {
	case errors.As(err, &dangling):
		event.Kind = IntegrityDanglingReference
		event.MovieID = dangling.MovieID
		event.Rank = &dangling.Rank
		event.RecoID = &dangling.RecoID
	case errors.Is(err, model.ErrUnknownMovie):
		event.Kind = IntegrityUnknownMovie
	default:
		return
	}
	event.ID = uuid.NewString()
	event.DetectedAt = r.now().UTC()

	attrs := []any{"kind", event.Kind, "movie_id", event.MovieID}
	if event.Rank != nil {
		attrs = append(attrs, "rank", *event.Rank)
	}
	if event.RecoID != nil {
		attrs = append(attrs, "reco_id", *event.RecoID)
	}
	slog.WarnContext(ctx, "data integrity issue", append(attrs, "error", err)...)
	if r.counter != nil {
		r.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", event.Kind)))
	}
	if r.publisher == nil {
		return
	}
	data, mErr := json.Marshal(event)
	if mErr != nil {
		slog.ErrorContext(ctx, "failed to encode integrity event", "error", mErr)
		return
	}
	r.publisher.Publish(ctx, data, map[string]string{"kind": event.Kind})
}
