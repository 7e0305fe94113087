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

// Package workflow defines the high-level orchestrations that combine commands
// into pipelines. This file implements the dataset loader workflow, which
// turns the configured catalog and recommendation sources into a
// model.Dataset.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-movie-reco/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// DatasetLoaderWorkflow is a cor.Chain that loads both dataset resources and
// indexes them. The steps depend on the configured source:
//
//	csv:      fetch catalog, fetch reco table, parse catalog, parse reco table, index
//	bigquery: read catalog table, read reco table, index
type DatasetLoaderWorkflow struct {
	cor.BaseCommand
	config         *cloud.Config
	storageClient  *storage.Client
	bigqueryClient *bigquery.Client
	chain          cor.Chain
}

// Execute runs the underlying chain.
func (w *DatasetLoaderWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// IsExecutable only needs a Go context; the sources come from configuration.
func (w *DatasetLoaderWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil
}

func (w *DatasetLoaderWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	if w.config.Dataset.Source == cloud.SourceBigQuery {
		bq := w.config.BigQueryDataSource
		out.AddCommand(commands.NewBigQueryToCatalog("bigquery-to-catalog", w.bigqueryClient, bq.DatasetName, bq.CatalogTable, commands.ParamCatalogRecords))
		out.AddCommand(commands.NewBigQueryToRecoTable("bigquery-to-reco-table", w.bigqueryClient, bq.DatasetName, bq.RecoTable, commands.ParamRecoRows))
	} else {
		out.AddCommand(commands.NewDatasetFetch("fetch-catalog", w.storageClient, model.ResourceCatalog, commands.ParamCatalogURI, commands.ParamCatalogPath))
		out.AddCommand(commands.NewDatasetFetch("fetch-reco-table", w.storageClient, model.ResourceRecoTable, commands.ParamRecoURI, commands.ParamRecoPath))
		out.AddCommand(commands.NewCsvToCatalog("csv-to-catalog", commands.ParamCatalogPath, commands.ParamCatalogRecords))
		out.AddCommand(commands.NewCsvToRecoTable("csv-to-reco-table", commands.ParamRecoPath, commands.ParamRecoRows))
	}

	out.AddCommand(commands.NewCatalogIndexer("catalog-indexer", commands.ParamCatalogRecords, commands.ParamRecoRows, w.config.Dataset.Source))
	w.chain = out
}

// Load runs the workflow once with a fresh chain context and returns the
// dataset or the first error raised by a step. Temporary files are removed
// before it returns.
func (w *DatasetLoaderWorkflow) Load(ctx context.Context) (*model.Dataset, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.ParamCatalogURI, w.config.Dataset.CatalogURI)
	chCtx.Add(commands.ParamRecoURI, w.config.Dataset.RecoURI)

	w.Execute(chCtx)
	if chCtx.HasErrors() {
		return nil, firstDatasetError(chCtx)
	}

	dataset, ok := cor.Get[*model.Dataset](chCtx, cor.CtxIn)
	if !ok {
		return nil, errors.New("dataset loader produced no dataset")
	}
	return dataset, nil
}

// firstDatasetError prefers the classified dataset error over the follow-up
// "not executable" errors of later steps.
func firstDatasetError(chCtx cor.Context) error {
	var dsErr *model.DatasetError
	for _, err := range chCtx.GetErrors() {
		if errors.As(err, &dsErr) {
			return dsErr
		}
	}
	return chCtx.Err()
}

// NewDatasetLoaderWorkflow is the constructor for the DatasetLoaderWorkflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: The initialized clients; Storage and BigQuery are used when configured.
//
// Returns:
//   - *DatasetLoaderWorkflow: the workflow with its chain built.
//   - error: when the BigQuery source is configured without a client or tables.
func NewDatasetLoaderWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients) (*DatasetLoaderWorkflow, error) {
	w := &DatasetLoaderWorkflow{
		BaseCommand: *cor.NewBaseCommand("dataset-loader"),
		config:      config,
	}
	if serviceClients != nil {
		w.storageClient = serviceClients.StorageClient
		w.bigqueryClient = serviceClients.BigQueryClient
	}

	switch config.Dataset.Source {
	case cloud.SourceCSV, "":
	case cloud.SourceBigQuery:
		bq := config.BigQueryDataSource
		if w.bigqueryClient == nil || bq.DatasetName == "" || bq.CatalogTable == "" || bq.RecoTable == "" {
			return nil, fmt.Errorf("bigquery source needs a client, a dataset and both tables")
		}
	default:
		return nil, fmt.Errorf("unknown dataset source %q", config.Dataset.Source)
	}

	w.initializeChain()
	return w, nil
}
