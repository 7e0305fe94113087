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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the last
// step of the dataset loader, which assembles the parsed rows into the
// immutable model.Dataset served by the application.
//
// Logic Flow:
//  1. Indexes the catalog records by id (duplicate ids are ErrDataFormat).
//  2. Keys every recommendation row: rows with their own key use it, the
//     others take the id of the catalog row at the same position. A keyless
//     table longer than the catalog is ErrDataFormat.
//  3. Writes the *model.Dataset to the output parameter.
package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// CatalogIndexer builds the dataset from parsed catalog records and reco rows.
type CatalogIndexer struct {
	cor.BaseCommand
	recordsParam string
	rowsParam    string
	source       string
}

// NewCatalogIndexer is the constructor for the CatalogIndexer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - recordsParam: The context key holding []*model.MovieRecord.
//   - rowsParam: The context key holding []*RecoRow.
//   - source: Recorded on the dataset, e.g. "csv" or "bigquery".
//
// Outputs:
//   - *CatalogIndexer: A pointer to the newly instantiated command.
func NewCatalogIndexer(name string, recordsParam string, rowsParam string, source string) *CatalogIndexer {
	return &CatalogIndexer{
		BaseCommand:  *cor.NewBaseCommand(name),
		recordsParam: recordsParam,
		rowsParam:    rowsParam,
		source:       source,
	}
}

// IsExecutable requires both parsed resources.
func (c *CatalogIndexer) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		context.Get(c.recordsParam) != nil && context.Get(c.rowsParam) != nil
}

func (c *CatalogIndexer) Execute(context cor.Context) {
	records, _ := cor.Get[[]*model.MovieRecord](context, c.recordsParam)
	rows, _ := cor.Get[[]*RecoRow](context, c.rowsParam)

	dataset, err := BuildDataset(records, rows)
	if err != nil {
		c.Fail(context, err)
		return
	}
	dataset.Source = c.source
	slog.InfoContext(context.GetContext(), "dataset indexed",
		"source", c.source, "movies", dataset.Catalog.Len(), "recommendations", dataset.RecoTable.Len())
	c.Succeed(context, dataset)
}

// BuildDataset indexes records and keys rows against them.
func BuildDataset(records []*model.MovieRecord, rows []*RecoRow) (*model.Dataset, error) {
	catalog, err := model.NewCatalog(records)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.RecommendationEntry, 0, len(rows))
	for i, row := range rows {
		var movieID int
		switch {
		case row.Key != nil:
			movieID = *row.Key
		case i < len(records):
			movieID = records[i].ID
		default:
			return nil, model.NewDatasetError(model.ResourceRecoTable, model.ErrDataFormat,
				fmt.Errorf("row %d has no matching catalog row (catalog has %d rows)", i+1, len(records)))
		}
		entries = append(entries, &model.RecommendationEntry{MovieID: movieID, RecoIDs: row.RecoIDs})
	}

	recoTable, err := model.NewRecoTable(entries)
	if err != nil {
		return nil, err
	}
	return &model.Dataset{Catalog: catalog, RecoTable: recoTable, LoadedAt: time.Now()}, nil
}
