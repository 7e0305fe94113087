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
// Responsibility (COR) pattern's Command interface. This file defines the two
// commands that read the dataset from BigQuery tables.
//
// Logic Flow:
//  1. Builds the fully qualified table name from the configured dataset and table.
//  2. Runs the SELECT from queries.go and iterates over the rows with
//     `iterator.Done` as the end marker.
//  3. Each row is scanned into a struct of bigquery.Null* fields and converted
//     to the same model values the CSV commands produce, so CatalogIndexer is
//     shared by both sources.
//
// A missing table or dataset (HTTP 404 from the API) is ErrDataNotFound, a
// table without rows is ErrDataEmpty and a row without a required value is
// ErrDataFormat.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// CatalogRow is the BigQuery shape of a catalog row.
type CatalogRow struct {
	ID            bigquery.NullInt64   `bigquery:"id"`
	Title         bigquery.NullString  `bigquery:"title"`
	StartYear     bigquery.NullInt64   `bigquery:"start_year"`
	Duration      bigquery.NullInt64   `bigquery:"duration"`
	AverageRating bigquery.NullFloat64 `bigquery:"average_rating"`
	NumVotes      bigquery.NullInt64   `bigquery:"num_votes"`
	PosterPath    bigquery.NullString  `bigquery:"poster_path"`
	Genres        bigquery.NullString  `bigquery:"genres"`
	Directors     bigquery.NullString  `bigquery:"directors"`
	Actors        bigquery.NullString  `bigquery:"actors"`
}

// ToRecord converts the row into a movie record.
func (r *CatalogRow) ToRecord() (*model.MovieRecord, error) {
	if !r.ID.Valid {
		return nil, errors.New("missing id")
	}
	if !r.StartYear.Valid {
		return nil, fmt.Errorf("movie %d: missing release year", r.ID.Int64)
	}
	m := &model.MovieRecord{
		ID:           int(r.ID.Int64),
		Title:        strings.TrimSpace(r.Title.StringVal),
		ReleaseYear:  int(r.StartYear.Int64),
		PosterPath:   optionalString(r.PosterPath.StringVal),
		RawGenres:    r.Genres.StringVal,
		RawDirectors: r.Directors.StringVal,
		RawActors:    r.Actors.StringVal,
	}
	if r.Duration.Valid {
		d := int(r.Duration.Int64)
		m.DurationMinutes = &d
	}
	if r.AverageRating.Valid && !math.IsNaN(r.AverageRating.Float64) && !math.IsInf(r.AverageRating.Float64, 0) {
		v := r.AverageRating.Float64
		m.AverageRating = &v
	}
	if r.NumVotes.Valid {
		v := r.NumVotes.Int64
		m.VoteCount = &v
	}
	return m, nil
}

// RecoTableRow is the BigQuery shape of a recommendation row.
type RecoTableRow struct {
	MovieID bigquery.NullInt64 `bigquery:"movie_id"`
	Reco1   bigquery.NullInt64 `bigquery:"reco_1"`
	Reco2   bigquery.NullInt64 `bigquery:"reco_2"`
	Reco3   bigquery.NullInt64 `bigquery:"reco_3"`
	Reco4   bigquery.NullInt64 `bigquery:"reco_4"`
	Reco5   bigquery.NullInt64 `bigquery:"reco_5"`
}

// ToRecoRow converts the row into a keyed RecoRow.
func (r *RecoTableRow) ToRecoRow() (*RecoRow, error) {
	if !r.MovieID.Valid {
		return nil, errors.New("missing movie_id")
	}
	key := int(r.MovieID.Int64)
	out := &RecoRow{Key: &key}
	for i, v := range []bigquery.NullInt64{r.Reco1, r.Reco2, r.Reco3, r.Reco4, r.Reco5} {
		if v.Valid {
			id := int(v.Int64)
			out.RecoIDs[i] = &id
		}
	}
	return out, nil
}

// bigQueryReader holds what both BigQuery commands share.
type bigQueryReader struct {
	cor.BaseCommand
	client   *bigquery.Client
	dataset  string
	table    string
	resource string
}

// IsExecutable only needs the Go context; the table is configuration.
func (c *bigQueryReader) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && c.client != nil
}

func (c *bigQueryReader) fqTable() string {
	return strings.Replace(c.client.Dataset(c.dataset).Table(c.table).FullyQualifiedName(), ":", ".", -1)
}

// classify maps a BigQuery failure onto the dataset error kinds.
func (c *bigQueryReader) classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return model.NewDatasetError(c.resource, model.ErrDataNotFound, err)
	}
	return fmt.Errorf("%s: failed to read from BigQuery: %w", c.resource, err)
}

// readRows runs query and calls next until it reports iterator.Done.
func (c *bigQueryReader) readRows(context cor.Context, query string, next func(it *bigquery.RowIterator) error) (int, error) {
	itr, err := c.client.Query(fmt.Sprintf(query, c.fqTable())).Read(context.GetContext())
	if err != nil {
		return 0, c.classify(err)
	}
	count := 0
	for {
		err := next(itr)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			var dsErr *model.DatasetError
			if errors.As(err, &dsErr) {
				return count, err
			}
			return count, c.classify(err)
		}
		count++
	}
	if count == 0 {
		return 0, model.NewDatasetError(c.resource, model.ErrDataEmpty, fmt.Errorf("table %s has no rows", c.table))
	}
	return count, nil
}

// BigQueryToCatalog reads the catalog table.
type BigQueryToCatalog struct {
	bigQueryReader
}

// NewBigQueryToCatalog is the constructor for the BigQueryToCatalog command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: An initialized *bigquery.Client.
//   - dataset: The name of the BigQuery dataset.
//   - table: The name of the catalog table.
//   - outputParam: The context key receiving the []*model.MovieRecord.
//
// Outputs:
//   - *BigQueryToCatalog: A pointer to the newly instantiated command.
func NewBigQueryToCatalog(name string, client *bigquery.Client, dataset string, table string, outputParam string) *BigQueryToCatalog {
	out := &BigQueryToCatalog{bigQueryReader{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		dataset:     dataset,
		table:       table,
		resource:    model.ResourceCatalog,
	}}
	out.OutputParamName = outputParam
	return out
}

func (c *BigQueryToCatalog) Execute(context cor.Context) {
	records := make([]*model.MovieRecord, 0)
	_, err := c.readRows(context, QryCatalog, func(it *bigquery.RowIterator) error {
		var row CatalogRow
		if err := it.Next(&row); err != nil {
			return err
		}
		m, err := row.ToRecord()
		if err != nil {
			return model.NewDatasetError(c.resource, model.ErrDataFormat, err)
		}
		records = append(records, m)
		return nil
	})
	if err != nil {
		c.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "read catalog from BigQuery", "table", c.table, "records", len(records))
	c.Succeed(context, records)
}

// BigQueryToRecoTable reads the recommendation table.
type BigQueryToRecoTable struct {
	bigQueryReader
}

// NewBigQueryToRecoTable is the constructor for the BigQueryToRecoTable command.
func NewBigQueryToRecoTable(name string, client *bigquery.Client, dataset string, table string, outputParam string) *BigQueryToRecoTable {
	out := &BigQueryToRecoTable{bigQueryReader{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		dataset:     dataset,
		table:       table,
		resource:    model.ResourceRecoTable,
	}}
	out.OutputParamName = outputParam
	return out
}

func (c *BigQueryToRecoTable) Execute(context cor.Context) {
	rows := make([]*RecoRow, 0)
	_, err := c.readRows(context, QryRecoTable, func(it *bigquery.RowIterator) error {
		var row RecoTableRow
		if err := it.Next(&row); err != nil {
			return err
		}
		r, err := row.ToRecoRow()
		if err != nil {
			return model.NewDatasetError(c.resource, model.ErrDataFormat, err)
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		c.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "read recommendation table from BigQuery", "table", c.table, "rows", len(rows))
	c.Succeed(context, rows)
}
