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
// command that parses the recommendation CSV.
//
// Logic Flow:
//  1. Reads the local recommendation path from the input parameter.
//  2. Requires the columns reco_1 to reco_5. An `id` or `movie_id` column, if
//     present, keys each row; otherwise rows are matched to catalog rows by
//     position later on, in CatalogIndexer.
//  3. Each reco value is a catalog id. Integral floats ("12.0") are accepted,
//     empty and NaN cells are absent slots, anything else is ErrDataFormat.
//  4. Writes the []*RecoRow to the output parameter.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// CsvToRecoTable parses the recommendation CSV.
type CsvToRecoTable struct {
	cor.BaseCommand
}

// NewCsvToRecoTable is the constructor for the CsvToRecoTable command.
func NewCsvToRecoTable(name string, inputParam string, outputParam string) *CsvToRecoTable {
	out := &CsvToRecoTable{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = inputParam
	out.OutputParamName = outputParam
	return out
}

func (c *CsvToRecoTable) Execute(context cor.Context) {
	path, _ := cor.Get[string](context, c.GetInputParam())
	rows, err := ParseRecoCSV(path)
	if err != nil {
		c.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "parsed recommendation table", "file", path, "rows", len(rows))
	c.Succeed(context, rows)
}

// ParseRecoCSV reads the recommendation file at path.
func ParseRecoCSV(path string) ([]*RecoRow, error) {
	t, err := readCSV(path, model.ResourceRecoTable)
	if err != nil {
		return nil, err
	}

	var recoCols [model.MaxRecommendations]int
	for rank := 1; rank <= model.MaxRecommendations; rank++ {
		if recoCols[rank-1], err = t.requireColumn(recoColumn(rank)); err != nil {
			return nil, err
		}
	}
	keyCol := t.optionalColumn(colRecoKey...)

	rows := make([]*RecoRow, 0, len(t.rows))
	for i, row := range t.rows {
		r := &RecoRow{}
		if keyCol >= 0 {
			v, ok, err := parseIntegral(field(row, keyCol))
			if err != nil {
				return nil, t.formatError(i, colRecoKey[0], err)
			}
			if !ok {
				return nil, t.formatError(i, colRecoKey[0], fmt.Errorf("missing movie id"))
			}
			key := int(v)
			r.Key = &key
		}
		for rank, col := range recoCols {
			v, ok, err := parseIntegral(field(row, col))
			if err != nil {
				return nil, t.formatError(i, recoColumn(rank+1), err)
			}
			if ok {
				id := int(v)
				r.RecoIDs[rank] = &id
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}
