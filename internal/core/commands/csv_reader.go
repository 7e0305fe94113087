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

package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// csvTable is a fully read CSV file: its header index and data rows.
type csvTable struct {
	resource string
	columns  map[string]int
	rows     [][]string
}

// readCSV reads the whole file at path. An empty file, or one with only a
// header, is ErrDataEmpty; a malformed file is ErrDataFormat.
func readCSV(path string, resource string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.NewDatasetError(resource, model.ErrDataNotFound, err)
		}
		return nil, fmt.Errorf("%s: %w", resource, err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, model.NewDatasetError(resource, model.ErrDataEmpty, errors.New("file has no header"))
	}
	if err != nil {
		return nil, model.NewDatasetError(resource, model.ErrDataFormat, err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, model.NewDatasetError(resource, model.ErrDataFormat, err)
	}
	if len(rows) == 0 {
		return nil, model.NewDatasetError(resource, model.ErrDataEmpty, errors.New("file has no data rows"))
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return &csvTable{resource: resource, columns: columns, rows: rows}, nil
}

// column returns the index of the first of names present in the header.
func (t *csvTable) column(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := t.columns[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// requireColumn is column, failing with ErrDataFormat when none is present.
func (t *csvTable) requireColumn(names ...string) (int, error) {
	i, ok := t.column(names...)
	if !ok {
		return 0, model.NewDatasetError(t.resource, model.ErrDataFormat,
			fmt.Errorf("missing required column %q", names[0]))
	}
	return i, nil
}

// field returns the cell of row at column i, or "" when the column is absent (i < 0).
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// optionalColumn returns the index of the column or -1.
func (t *csvTable) optionalColumn(names ...string) int {
	if i, ok := t.column(names...); ok {
		return i
	}
	return -1
}

// formatError builds an ErrDataFormat error pointing at a 1-based data row.
func (t *csvTable) formatError(row int, column string, err error) error {
	return model.NewDatasetError(t.resource, model.ErrDataFormat,
		fmt.Errorf("row %d, column %s: %w", row+1, column, err))
}
