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
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-reco/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStore returns a store already holding the fixture dataset.
func newStore(t *testing.T) *services.DatasetStore {
	t.Helper()
	dataset := test.NewDataset(t)
	store := services.NewDatasetStore(services.DatasetLoaderFunc(func(context.Context) (*model.Dataset, error) {
		return dataset, nil
	}))
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store
}

// failingStore returns a store whose load failed with kind.
func failingStore(kind error) *services.DatasetStore {
	return services.NewDatasetStore(services.DatasetLoaderFunc(func(context.Context) (*model.Dataset, error) {
		return nil, model.NewDatasetError(model.ResourceCatalog, kind, nil)
	}))
}

func TestDatasetStoreLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	dataset := test.NewDataset(t)
	store := services.NewDatasetStore(services.DatasetLoaderFunc(func(context.Context) (*model.Dataset, error) {
		calls.Add(1)
		return dataset, nil
	}))

	loaded, err := store.Status()
	assert.False(t, loaded)
	assert.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.Load(context.Background())
			assert.NoError(t, err)
			assert.Same(t, dataset, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	loaded, err = store.Status()
	assert.True(t, loaded)
	assert.NoError(t, err)
}

func TestDatasetStoreMemoizesFailure(t *testing.T) {
	var calls atomic.Int32
	store := services.NewDatasetStore(services.DatasetLoaderFunc(func(context.Context) (*model.Dataset, error) {
		calls.Add(1)
		return nil, model.NewDatasetError(model.ResourceRecoTable, model.ErrDataEmpty, nil)
	}))

	for i := 0; i < 3; i++ {
		dataset, err := store.Load(context.Background())
		assert.Nil(t, dataset)
		assert.ErrorIs(t, err, model.ErrDataEmpty)
	}
	assert.Equal(t, int32(1), calls.Load())

	loaded, err := store.Status()
	assert.False(t, loaded)
	assert.Equal(t, "Error: a data file is empty.", model.UserMessage(err))
}

func TestDatasetStoreRejectsNilDataset(t *testing.T) {
	store := services.NewDatasetStore(services.DatasetLoaderFunc(func(context.Context) (*model.Dataset, error) {
		return nil, nil
	}))
	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestDatasetStoreIgnoresCallerCancellation(t *testing.T) {
	dataset := test.NewDataset(t)
	store := services.NewDatasetStore(services.DatasetLoaderFunc(func(ctx context.Context) (*model.Dataset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return dataset, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, dataset, got)

	loaded, err := store.Status()
	assert.True(t, loaded)
	assert.NoError(t, err)
}

func TestServicesReportUnavailableDataset(t *testing.T) {
	store := failingStore(model.ErrDataNotFound)
	ctx := context.Background()

	results, err := services.NewSearchService(store).Search(ctx, model.SearchCriteria{})
	assert.Empty(t, results)
	assert.True(t, errors.Is(err, services.ErrDatasetUnavailable))
	assert.True(t, errors.Is(err, model.ErrDataNotFound))

	_, err = services.NewRecommendationService(store, nil).RecommendationsFor(ctx, 0)
	assert.ErrorIs(t, err, services.ErrDatasetUnavailable)

	_, err = services.NewDashboardService(store, services.NewPosterService("", nil, nil, 0), 0, 0).Stats(ctx)
	assert.ErrorIs(t, err, services.ErrDatasetUnavailable)
}
