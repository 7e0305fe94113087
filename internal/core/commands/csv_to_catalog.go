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
// Responsibility (COR) pattern's Command interface. This file defines the
// command that parses the catalog CSV into movie records.
//
// Logic Flow:
//  1. Reads the local catalog path from the input parameter.
//  2. Reads the CSV and locates the title and release year columns, which are
//     required, and the optional id, duration, rating, votes, poster and list
//     columns.
//  3. Builds one model.MovieRecord per data row. The id is the `id` column when
//     present, otherwise the 0-based row position. Lists are kept in their raw
//     serialized form and decoded lazily by the record.
//  4. Writes the records to the output parameter.
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// CsvToCatalog parses the catalog CSV.
type CsvToCatalog struct {
	cor.BaseCommand
}

// NewCsvToCatalog is the constructor for the CsvToCatalog command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - inputParam: The context key holding the local CSV path.
//   - outputParam: The context key receiving the []*model.MovieRecord.
//
// Outputs:
//   - *CsvToCatalog: A pointer to the newly instantiated command.
func NewCsvToCatalog(name string, inputParam string, outputParam string) *CsvToCatalog {
	out := &CsvToCatalog{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = inputParam
	out.OutputParamName = outputParam
	return out
}

func (c *CsvToCatalog) Execute(context cor.Context) {
	path, _ := cor.Get[string](context, c.GetInputParam())
	records, err := ParseCatalogCSV(path)
	if err != nil {
		c.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "parsed catalog", "file", path, "records", len(records))
	c.Succeed(context, records)
}

// ParseCatalogCSV reads the catalog file at path.
//
// Outputs:
//   - []*model.MovieRecord: the records in file order.
//   - error: a *model.DatasetError of kind ErrDataNotFound, ErrDataEmpty or ErrDataFormat.
func ParseCatalogCSV(path string) ([]*model.MovieRecord, error) {
	t, err := readCSV(path, model.ResourceCatalog)
	if err != nil {
		return nil, err
	}

	titleCol, err := t.requireColumn(colTitle...)
	if err != nil {
		return nil, err
	}
	yearCol, err := t.requireColumn(colYear...)
	if err != nil {
		return nil, err
	}
	idCol := t.optionalColumn(colID...)
	durationCol := t.optionalColumn(colDuration...)
	ratingCol := t.optionalColumn(colRating...)
	votesCol := t.optionalColumn(colVotes...)
	posterCol := t.optionalColumn(colPoster...)
	genresCol := t.optionalColumn(colGenres...)
	directorsCol := t.optionalColumn(colDirectors...)
	actorsCol := t.optionalColumn(colActors...)

	records := make([]*model.MovieRecord, 0, len(t.rows))
	for i, row := range t.rows {
		id := i
		if idCol >= 0 {
			v, ok, err := parseIntegral(field(row, idCol))
			if err != nil {
				return nil, t.formatError(i, colID[0], err)
			}
			if !ok {
				return nil, t.formatError(i, colID[0], fmt.Errorf("missing id"))
			}
			id = int(v)
		}

		year, ok, err := parseIntegral(field(row, yearCol))
		if err != nil {
			return nil, t.formatError(i, colYear[0], err)
		}
		if !ok {
			return nil, t.formatError(i, colYear[0], fmt.Errorf("missing release year"))
		}

		records = append(records, &model.MovieRecord{
			ID:              id,
			Title:           strings.TrimSpace(field(row, titleCol)),
			ReleaseYear:     int(year),
			DurationMinutes: parseOptionalInt(field(row, durationCol)),
			AverageRating:   parseOptionalFloat(field(row, ratingCol)),
			VoteCount:       parseOptionalInt64(field(row, votesCol)),
			PosterPath:      optionalString(field(row, posterCol)),
			RawGenres:       field(row, genresCol),
			RawDirectors:    field(row, directorsCol),
			RawActors:       field(row, actorsCol),
		})
	}
	return records, nil
}
