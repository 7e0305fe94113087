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
// Responsibility (COR) pattern's Command interface used to load the movie
// dataset. This file holds the context parameter names the commands exchange
// and the value parsing helpers shared by the CSV and BigQuery readers.
package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-movie-reco/internal/core/literal"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// Context parameter names used by the dataset loader.
const (
	ParamCatalogURI     = "catalog_uri"     // string: configured catalog location.
	ParamRecoURI        = "reco_uri"        // string: configured recommendation table location.
	ParamCatalogPath    = "catalog_path"    // string: local path of the catalog CSV.
	ParamRecoPath       = "reco_path"       // string: local path of the recommendation CSV.
	ParamCatalogRecords = "catalog_records" // []*model.MovieRecord in load order.
	ParamRecoRows       = "reco_rows"       // []*RecoRow in load order.
)

// RecoRow is one parsed row of the recommendation table before it is keyed
// to the catalog. Key is nil when the row carries no movie id of its own, in
// which case it belongs to the catalog row at the same position.
type RecoRow struct {
	Key     *int
	RecoIDs [model.MaxRecommendations]*int
}

// Column names of the two CSV resources. The first name of each group is the
// canonical one; the others are accepted aliases.
var (
	colID        = []string{"id"}
	colTitle     = []string{"title_fr", "title", "primaryTitle"}
	colYear      = []string{"startYear", "start_year", "year"}
	colDuration  = []string{"duration", "runtimeMinutes"}
	colRating    = []string{"averageRating", "average_rating"}
	colVotes     = []string{"numVotes", "num_votes"}
	colPoster    = []string{"poster_path"}
	colGenres    = []string{"genres"}
	colDirectors = []string{"directors"}
	colActors    = []string{"actors"}
	colRecoKey   = []string{"id", "movie_id"}
)

// recoColumn returns the column name of the 1-based rank.
func recoColumn(rank int) string {
	return fmt.Sprintf("reco_%d", rank)
}

// parseIntegral parses an integer that may have been written as a float with
// no fractional part ("12.0"), which is how pandas exports nullable integer
// columns. ok is false when the value is absent.
func parseIntegral(raw string) (v int64, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if literal.IsAbsent(raw) {
		return 0, false, nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, true, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false, fmt.Errorf("%q is not an integer", raw)
	}
	return int64(f), true, nil
}

// parseOptionalFloat parses a float; absent and unparsable values yield nil.
func parseOptionalFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if literal.IsAbsent(raw) {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseOptionalInt64 parses an integral value; absent and unparsable values yield nil.
func parseOptionalInt64(raw string) *int64 {
	v, ok, err := parseIntegral(raw)
	if !ok || err != nil {
		return nil
	}
	return &v
}

// parseOptionalInt is parseOptionalInt64 narrowed to int.
func parseOptionalInt(raw string) *int {
	v := parseOptionalInt64(raw)
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

// optionalString maps absent markers to the empty string.
func optionalString(raw string) string {
	raw = strings.TrimSpace(raw)
	if literal.IsAbsent(raw) {
		return ""
	}
	return raw
}
