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

package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-movie-reco/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-movie-reco/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, config *cloud.Config) (*model.Dataset, error) {
	t.Helper()
	w, err := workflow.NewDatasetLoaderWorkflow(config, &cloud.ServiceClients{})
	require.NoError(t, err)
	return w.Load(ctx)
}

func TestDatasetLoaderLoadsFixture(t *testing.T) {
	dataset, err := load(t, test.WriteDataset(t, test.CatalogCSV, test.RecoCSV))
	require.NoError(t, err)

	assert.Equal(t, cloud.SourceCSV, dataset.Source)
	assert.Equal(t, 8, dataset.Catalog.Len())
	assert.Equal(t, 8, dataset.RecoTable.Len())
	assert.Equal(t, model.YearRange{Min: 1995, Max: 2014}, dataset.Catalog.YearBounds())

	heat, ok := dataset.Catalog.Get(test.Heat)
	require.True(t, ok)
	assert.Equal(t, "Heat", heat.Title)

	entry, ok := dataset.RecoTable.Get(test.Interstellar)
	require.True(t, ok)
	assert.Equal(t, test.Amelie, *entry.RecoIDs[2])
	assert.Nil(t, entry.RecoIDs[3])
}

func TestDatasetLoaderClassifiesErrors(t *testing.T) {
	cases := map[string]struct {
		catalog string
		reco    string
		kind    error
		res     string
	}{
		"empty catalog":    {"", test.RecoCSV, model.ErrDataEmpty, model.ResourceCatalog},
		"catalog format":   {"name\nx\n", test.RecoCSV, model.ErrDataFormat, model.ResourceCatalog},
		"empty reco table": {test.CatalogCSV, "reco_1,reco_2,reco_3,reco_4,reco_5\n", model.ErrDataEmpty, model.ResourceRecoTable},
		"reco format":      {test.CatalogCSV, "reco_1,reco_2\n1,2\n", model.ErrDataFormat, model.ResourceRecoTable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(t, test.WriteDataset(t, tc.catalog, tc.reco))
			assert.ErrorIs(t, err, tc.kind)
			var dsErr *model.DatasetError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tc.res, dsErr.Resource)
		})
	}
}

func TestDatasetLoaderMissingFile(t *testing.T) {
	config := test.WriteDataset(t, test.CatalogCSV, test.RecoCSV)
	require.NoError(t, os.Remove(config.Dataset.RecoURI))

	_, err := load(t, config)
	assert.ErrorIs(t, err, model.ErrDataNotFound)
	assert.Equal(t, "Error: a data file could not be found.", model.UserMessage(err))
}

func TestDatasetLoaderHonoursCancellation(t *testing.T) {
	config := test.WriteDataset(t, test.CatalogCSV, test.RecoCSV)
	w, err := workflow.NewDatasetLoaderWorkflow(config, nil)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = w.Load(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDatasetLoaderRejectsBadSource(t *testing.T) {
	config := *test.GetConfig()
	config.Dataset.Source = "parquet"
	_, err := workflow.NewDatasetLoaderWorkflow(&config, nil)
	assert.Error(t, err)

	config.Dataset.Source = cloud.SourceBigQuery
	_, err = workflow.NewDatasetLoaderWorkflow(&config, &cloud.ServiceClients{})
	assert.Error(t, err)
}

func TestDatasetLoaderKeyedRecoTable(t *testing.T) {
	catalog := "id,title_fr,startYear\n100,A,2000\n200,B,2001\n"
	reco := "movie_id,reco_1,reco_2,reco_3,reco_4,reco_5\n200,100,,,,\n100,200,,,,\n"
	config := test.WriteDataset(t, catalog, reco)

	dataset, err := load(t, config)
	require.NoError(t, err)
	entry, ok := dataset.RecoTable.Get(200)
	require.True(t, ok)
	assert.Equal(t, 100, *entry.RecoIDs[0])

	// Temporary files only exist for gs:// sources; local files are left alone.
	_, err = os.Stat(filepath.Clean(config.Dataset.CatalogURI))
	assert.NoError(t, err)
}
