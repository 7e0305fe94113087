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

// Package model defines the core data structures of the movie dashboard. This
// file, `catalog.go`, defines the in-memory catalog and the Dataset that bundles
// it with the recommendation table.
//
// A Catalog keeps the records in load order (the order search results are
// returned in) and an id index for constant-time lookups.
package model

import (
	"fmt"
	"sort"
	"time"
)

// YearRange is an inclusive range of release years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether year falls inside the range, bounds included.
func (r YearRange) Contains(year int) bool {
	return r.Min <= year && year <= r.Max
}

// Catalog is the immutable, id-indexed collection of movie records.
type Catalog struct {
	records []*MovieRecord
	index   map[int]int
	years   YearRange
}

// NewCatalog indexes records by id, preserving their order.
//
// Inputs:
//   - records: the catalog rows in load order.
//
// Outputs:
//   - *Catalog: the indexed catalog.
//   - error: ErrDataEmpty when there are no records, ErrDataFormat on a duplicate id.
func NewCatalog(records []*MovieRecord) (*Catalog, error) {
	if len(records) == 0 {
		return nil, NewDatasetError(ResourceCatalog, ErrDataEmpty, nil)
	}
	c := &Catalog{
		records: records,
		index:   make(map[int]int, len(records)),
		years:   YearRange{Min: records[0].ReleaseYear, Max: records[0].ReleaseYear},
	}
	for i, r := range records {
		if prev, dup := c.index[r.ID]; dup {
			return nil, NewDatasetError(ResourceCatalog, ErrDataFormat,
				fmt.Errorf("duplicate movie id %d at rows %d and %d", r.ID, prev, i))
		}
		c.index[r.ID] = i
		if r.ReleaseYear < c.years.Min {
			c.years.Min = r.ReleaseYear
		}
		if r.ReleaseYear > c.years.Max {
			c.years.Max = r.ReleaseYear
		}
	}
	return c, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// All returns the records in catalog order. The slice is shared; callers must
// not modify it.
func (c *Catalog) All() []*MovieRecord {
	return c.records
}

// Get returns the record with the given id.
func (c *Catalog) Get(id int) (*MovieRecord, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.records[i], true
}

// YearBounds returns the smallest range covering every release year.
func (c *Catalog) YearBounds() YearRange {
	return c.years
}

// Facets lists the distinct attribute values found in a catalog, sorted.
type Facets struct {
	Genres    []string  `json:"genres"`
	Directors []string  `json:"directors"`
	Actors    []string  `json:"actors"`
	Years     YearRange `json:"years"`
}

// Facets collects the filter options offered on the search page.
func (c *Catalog) Facets() *Facets {
	genres := make(map[string]struct{})
	directors := make(map[string]struct{})
	actors := make(map[string]struct{})
	for _, r := range c.records {
		for _, g := range r.Genres() {
			genres[g] = struct{}{}
		}
		for _, d := range r.Directors() {
			directors[d] = struct{}{}
		}
		for _, a := range r.Actors() {
			actors[a] = struct{}{}
		}
	}
	return &Facets{
		Genres:    sortedKeys(genres),
		Directors: sortedKeys(directors),
		Actors:    sortedKeys(actors),
		Years:     c.years,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dataset is the loaded pair of catalog and recommendation table. It is built
// once per process and shared read-only.
type Dataset struct {
	Catalog   *Catalog
	RecoTable *RecoTable
	Source    string    // Where the data came from, e.g. "csv" or "bigquery".
	LoadedAt  time.Time // When loading completed.
}
