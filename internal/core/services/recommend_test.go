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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-reco/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every published message.
type recordingPublisher struct {
	mu       sync.Mutex
	messages [][]byte
	attrs    []map[string]string
}

func (p *recordingPublisher) Publish(_ context.Context, data []byte, attributes map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, data)
	p.attrs = append(p.attrs, attributes)
}

func (p *recordingPublisher) events(t *testing.T) []services.IntegrityEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]services.IntegrityEvent, 0, len(p.messages))
	for _, m := range p.messages {
		var e services.IntegrityEvent
		require.NoError(t, json.Unmarshal(m, &e))
		out = append(out, e)
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestResolveRecommendationsKeepsRankAndAbsence(t *testing.T) {
	dataset := test.NewDataset(t)

	slots, err := services.ResolveRecommendations(test.Inception, dataset.Catalog, dataset.RecoTable)
	require.NoError(t, err)
	require.Len(t, slots, model.MaxRecommendations)
	for i, s := range slots {
		assert.Equal(t, i+1, s.Rank)
	}
	assert.Equal(t, test.Interstellar, slots[0].Movie.ID)
	assert.Equal(t, test.Prestige, slots[1].Movie.ID)
	assert.Equal(t, test.Heat, slots[2].Movie.ID)
	assert.Nil(t, slots[3].Movie)
	assert.Nil(t, slots[4].Movie)
}

func TestResolveRecommendationsExample(t *testing.T) {
	catalog, err := model.NewCatalog([]*model.MovieRecord{
		{ID: 42, Title: "Inception", ReleaseYear: 2010},
		{ID: 7, Title: "Seven", ReleaseYear: 1995},
		{ID: 9, Title: "Nine", ReleaseYear: 2009},
	})
	require.NoError(t, err)
	table, err := model.NewRecoTable([]*model.RecommendationEntry{
		{MovieID: 42, RecoIDs: [model.MaxRecommendations]*int{intPtr(7), nil, intPtr(9), nil, nil}},
	})
	require.NoError(t, err)

	slots, err := services.ResolveRecommendations(42, catalog, table)
	require.NoError(t, err)
	assert.Equal(t, 7, slots[0].Movie.ID)
	assert.Nil(t, slots[1].Movie)
	assert.Equal(t, 9, slots[2].Movie.ID)
	assert.Nil(t, slots[3].Movie)
	assert.Nil(t, slots[4].Movie)
	assert.Equal(t, 5, slots[4].Rank)
}

func TestResolveRecommendationsDanglingReference(t *testing.T) {
	dataset := test.NewDataset(t)

	_, err := services.ResolveRecommendations(test.Heat, dataset.Catalog, dataset.RecoTable)
	var dangling *model.DanglingReferenceError
	require.True(t, errors.As(err, &dangling))
	assert.Equal(t, model.DanglingReferenceError{MovieID: test.Heat, Rank: 5, RecoID: test.DanglingID}, *dangling)
	assert.ErrorIs(t, err, model.ErrDanglingReference)
	assert.Equal(t, "No recommendations available.", model.UserMessage(err))
}

func TestResolveRecommendationsUnknownMovie(t *testing.T) {
	dataset := test.NewDataset(t)

	_, err := services.ResolveRecommendations(1234, dataset.Catalog, dataset.RecoTable)
	assert.ErrorIs(t, err, model.ErrUnknownMovie)
	assert.Equal(t, "No recommendations available.", model.UserMessage(err))
}

func TestRecommendationServiceReportsIntegrityIssues(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := services.NewRecommendationService(newStore(t), services.NewIntegrityReporter(publisher))
	ctx := context.Background()

	_, err := svc.RecommendationsFor(ctx, test.Heat)
	assert.ErrorIs(t, err, model.ErrDanglingReference)
	_, err = svc.RecommendationsFor(ctx, 1234)
	assert.ErrorIs(t, err, model.ErrUnknownMovie)
	_, err = svc.RecommendationsFor(ctx, test.Amelie)
	assert.NoError(t, err)

	events := publisher.events(t)
	require.Len(t, events, 2)

	assert.Equal(t, services.IntegrityDanglingReference, events[0].Kind)
	assert.Equal(t, test.Heat, events[0].MovieID)
	assert.Equal(t, 5, *events[0].Rank)
	assert.Equal(t, test.DanglingID, *events[0].RecoID)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].DetectedAt.IsZero())

	assert.Equal(t, services.IntegrityUnknownMovie, events[1].Kind)
	assert.Equal(t, 1234, events[1].MovieID)
	assert.Nil(t, events[1].Rank)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, map[string]string{"kind": services.IntegrityUnknownMovie}, publisher.attrs[1])
}

func TestIntegrityReporterIgnoresOtherErrors(t *testing.T) {
	publisher := &recordingPublisher{}
	reporter := services.NewIntegrityReporter(publisher)

	reporter.Report(context.Background(), 1, errors.New("boom"))
	reporter.Report(context.Background(), 1, nil)
	assert.Empty(t, publisher.events(t))

	var nilReporter *services.IntegrityReporter
	nilReporter.Report(context.Background(), 1, model.ErrUnknownMovie)
}

func TestIntegrityReporterLogsRankAndRecoID(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	services.NewIntegrityReporter(nil).Report(context.Background(), test.Heat,
		&model.DanglingReferenceError{MovieID: test.Heat, Rank: 5, RecoID: test.DanglingID})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "data integrity issue", line["msg"])
	assert.Equal(t, services.IntegrityDanglingReference, line["kind"])
	assert.EqualValues(t, test.Heat, line["movie_id"])
	assert.EqualValues(t, 5, line["rank"])
	assert.EqualValues(t, test.DanglingID, line["reco_id"])

	buf.Reset()
	services.NewIntegrityReporter(nil).Report(context.Background(), 1234, model.ErrUnknownMovie)
	line = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "rank")
	assert.NotContains(t, line, "reco_id")
}
