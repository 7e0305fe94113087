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
// This file, `dataset.go`, defines the DatasetStore: the process-wide,
// load-once holder of the catalog and recommendation table.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// ErrDatasetUnavailable wraps the load error returned by every service call
// made while the dataset could not be loaded.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// DatasetLoader produces the dataset. workflow.DatasetLoaderWorkflow is the
// production implementation.
type DatasetLoader interface {
	Load(ctx context.Context) (*model.Dataset, error)
}

// DatasetLoaderFunc adapts a function to DatasetLoader.
type DatasetLoaderFunc func(ctx context.Context) (*model.Dataset, error)

func (f DatasetLoaderFunc) Load(ctx context.Context) (*model.Dataset, error) {
	return f(ctx)
}

// DatasetStore runs its loader at most once and hands the same result to
// every caller. The dataset is never modified after loading, so readers need
// no further locking.
type DatasetStore struct {
	loader  DatasetLoader
	once    sync.Once
	done    atomic.Bool
	dataset *model.Dataset
	err     error
}

// NewDatasetStore creates a store backed by loader.
func NewDatasetStore(loader DatasetLoader) *DatasetStore {
	return &DatasetStore{loader: loader}
}

// Load returns the dataset, loading it on the first call. A failed load is
// remembered as well: the process keeps serving in a degraded state instead
// of retrying on every request.
//
// Outputs:
//   - *model.Dataset: nil when loading failed.
//   - error: the load error, matching ErrDataNotFound, ErrDataEmpty or ErrDataFormat when classified.
//
// The load ignores ctx cancellation: its result outlives the first caller.
func (s *DatasetStore) Load(ctx context.Context) (*model.Dataset, error) {
	s.once.Do(func() {
		s.dataset, s.err = s.loader.Load(context.WithoutCancel(ctx))
		if s.err == nil && s.dataset == nil {
			s.err = errors.New("loader returned no dataset")
		}
		if s.err != nil {
			slog.ErrorContext(ctx, "dataset load failed", "error", s.err, "message", model.UserMessage(s.err))
		} else {
			slog.InfoContext(ctx, "dataset loaded",
				"source", s.dataset.Source, "movies", s.dataset.Catalog.Len(), "recommendations", s.dataset.RecoTable.Len())
		}
		s.done.Store(true)
	})
	return s.dataset, s.err
}

// Status reports whether a load has completed and its error, without
// triggering one.
func (s *DatasetStore) Status() (loaded bool, err error) {
	if !s.done.Load() {
		return false, nil
	}
	return s.err == nil, s.err
}

// available loads the dataset for a service call, wrapping failures in
// ErrDatasetUnavailable.
func (s *DatasetStore) available(ctx context.Context) (*model.Dataset, error) {
	dataset, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return dataset, nil
}
