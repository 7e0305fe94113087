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

package commands_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const catalogCSV = `title_fr,startYear,duration,averageRating,numVotes,poster_path,genres,directors,actors
Inception,2010,148,8.8,2500000,/inception.jpg,"['Action', 'Sci-Fi']",['Christopher Nolan'],"['Leonardo DiCaprio', 'Elliot Page']"
Amélie,2001.0,122.0,8.3,nan,,['Comedy'],['Jean-Pierre Jeunet'],['Audrey Tautou']
Mystery,1999,,,,nan,,,
`

func TestParseCatalogCSVAssignsOrdinalIDs(t *testing.T) {
	records, err := commands.ParseCatalogCSV(writeCSV(t, catalogCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 0, records[0].ID)
	assert.Equal(t, "Inception", records[0].Title)
	assert.Equal(t, 2010, records[0].ReleaseYear)
	require.NotNil(t, records[0].DurationMinutes)
	assert.Equal(t, 148, *records[0].DurationMinutes)
	assert.InDelta(t, 8.8, *records[0].AverageRating, 1e-9)
	assert.Equal(t, int64(2500000), *records[0].VoteCount)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, records[0].Genres())
	assert.Equal(t, []string{"Leonardo DiCaprio", "Elliot Page"}, records[0].Actors())

	assert.Equal(t, 1, records[1].ID)
	assert.Equal(t, 2001, records[1].ReleaseYear)
	assert.Equal(t, 122, *records[1].DurationMinutes)
	assert.Nil(t, records[1].VoteCount)
	assert.False(t, records[1].HasPoster())

	assert.Equal(t, 2, records[2].ID)
	assert.Nil(t, records[2].DurationMinutes)
	assert.Nil(t, records[2].AverageRating)
	assert.Empty(t, records[2].PosterPath)
	assert.Empty(t, records[2].Genres())
}

func TestParseCatalogCSVUsesIDColumn(t *testing.T) {
	records, err := commands.ParseCatalogCSV(writeCSV(t, "id,title,startYear\n10,A,2000\n20,B,2001\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, records[0].ID)
	assert.Equal(t, 20, records[1].ID)
}

func TestParseCatalogCSVErrors(t *testing.T) {
	cases := map[string]struct {
		content string
		kind    error
	}{
		"empty file":     {"", model.ErrDataEmpty},
		"header only":    {"title_fr,startYear\n", model.ErrDataEmpty},
		"no title":       {"name,startYear\nA,2000\n", model.ErrDataFormat},
		"no year column": {"title_fr,genres\nA,[]\n", model.ErrDataFormat},
		"bad year":       {"title_fr,startYear\nA,19x9\n", model.ErrDataFormat},
		"missing year":   {"title_fr,startYear\nA,\n", model.ErrDataFormat},
		"ragged row":     {"title_fr,startYear\nA,2000,extra\n", model.ErrDataFormat},
		"bad quoting":    {"title_fr,startYear\n\"A,2000\n", model.ErrDataFormat},
		"fractional id":  {"id,title_fr,startYear\n1.5,A,2000\n", model.ErrDataFormat},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := commands.ParseCatalogCSV(writeCSV(t, tc.content))
			assert.ErrorIs(t, err, tc.kind)
			var dsErr *model.DatasetError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, model.ResourceCatalog, dsErr.Resource)
		})
	}
}

func TestParseCatalogCSVMissingFile(t *testing.T) {
	_, err := commands.ParseCatalogCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, model.ErrDataNotFound)
}

func TestParseRecoCSV(t *testing.T) {
	rows, err := commands.ParseRecoCSV(writeCSV(t, "reco_1,reco_2,reco_3,reco_4,reco_5\n1,2.0,,nan,0\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Nil(t, r.Key)
	assert.Equal(t, 1, *r.RecoIDs[0])
	assert.Equal(t, 2, *r.RecoIDs[1])
	assert.Nil(t, r.RecoIDs[2])
	assert.Nil(t, r.RecoIDs[3])
	assert.Equal(t, 0, *r.RecoIDs[4])
}

func TestParseRecoCSVKeyed(t *testing.T) {
	rows, err := commands.ParseRecoCSV(writeCSV(t, "movie_id,reco_1,reco_2,reco_3,reco_4,reco_5\n7,1,2,3,4,5\n"))
	require.NoError(t, err)
	require.NotNil(t, rows[0].Key)
	assert.Equal(t, 7, *rows[0].Key)
}

func TestParseRecoCSVErrors(t *testing.T) {
	for name, content := range map[string]string{
		"missing column": "reco_1,reco_2,reco_3,reco_4\n1,2,3,4\n",
		"fractional id":  "reco_1,reco_2,reco_3,reco_4,reco_5\n1.5,2,3,4,5\n",
		"text value":     "reco_1,reco_2,reco_3,reco_4,reco_5\nabc,2,3,4,5\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := commands.ParseRecoCSV(writeCSV(t, content))
			assert.ErrorIs(t, err, model.ErrDataFormat)
		})
	}
	_, err := commands.ParseRecoCSV(writeCSV(t, "reco_1,reco_2,reco_3,reco_4,reco_5\n"))
	assert.ErrorIs(t, err, model.ErrDataEmpty)
}

func intPtr(v int) *int { return &v }

func TestBuildDatasetAlignsRowsByPosition(t *testing.T) {
	records := []*model.MovieRecord{{ID: 10, Title: "A", ReleaseYear: 2000}, {ID: 20, Title: "B", ReleaseYear: 2001}}
	rows := []*commands.RecoRow{
		{RecoIDs: [5]*int{intPtr(20)}},
		{RecoIDs: [5]*int{intPtr(10)}},
	}
	ds, err := commands.BuildDataset(records, rows)
	require.NoError(t, err)

	e, ok := ds.RecoTable.Get(10)
	require.True(t, ok)
	assert.Equal(t, 20, *e.RecoIDs[0])
	e, ok = ds.RecoTable.Get(20)
	require.True(t, ok)
	assert.Equal(t, 10, *e.RecoIDs[0])
}

func TestBuildDatasetErrors(t *testing.T) {
	records := []*model.MovieRecord{{ID: 1, Title: "A", ReleaseYear: 2000}}

	_, err := commands.BuildDataset(records, []*commands.RecoRow{{}, {}})
	assert.ErrorIs(t, err, model.ErrDataFormat)

	_, err = commands.BuildDataset(records, []*commands.RecoRow{{Key: intPtr(1)}, {Key: intPtr(1)}})
	assert.ErrorIs(t, err, model.ErrDataFormat)

	_, err = commands.BuildDataset(nil, []*commands.RecoRow{{}})
	assert.ErrorIs(t, err, model.ErrDataEmpty)
}

func TestDatasetFetchLocalFile(t *testing.T) {
	path := writeCSV(t, "title_fr,startYear\nA,2000\n")
	fetch := commands.NewDatasetFetch("fetch", nil, model.ResourceCatalog, commands.ParamCatalogURI, commands.ParamCatalogPath)

	ctx := cor.NewBaseContext()
	ctx.Add(commands.ParamCatalogURI, path)
	require.True(t, fetch.IsExecutable(ctx))
	fetch.Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Equal(t, path, ctx.Get(commands.ParamCatalogPath))
}

func TestDatasetFetchMissingFile(t *testing.T) {
	fetch := commands.NewDatasetFetch("fetch", nil, model.ResourceRecoTable, commands.ParamRecoURI, commands.ParamRecoPath)

	ctx := cor.NewBaseContext()
	ctx.Add(commands.ParamRecoURI, filepath.Join(t.TempDir(), "df_reco.csv"))
	fetch.Execute(ctx)

	err := ctx.Err()
	assert.ErrorIs(t, err, model.ErrDataNotFound)
	assert.Equal(t, "Error: a data file could not be found.", model.UserMessage(err))
}

func TestDatasetFetchGCSWithoutClient(t *testing.T) {
	fetch := commands.NewDatasetFetch("fetch", nil, model.ResourceCatalog, commands.ParamCatalogURI, commands.ParamCatalogPath)

	ctx := cor.NewBaseContext()
	ctx.Add(commands.ParamCatalogURI, "gs://bucket/df_complet.csv")
	fetch.Execute(ctx)
	assert.True(t, ctx.HasErrors())
}

func TestCatalogRowToRecord(t *testing.T) {
	row := commands.CatalogRow{
		ID:            bigquery.NullInt64{Int64: 3, Valid: true},
		Title:         bigquery.NullString{StringVal: " Heat ", Valid: true},
		StartYear:     bigquery.NullInt64{Int64: 1995, Valid: true},
		AverageRating: bigquery.NullFloat64{Float64: 8.3, Valid: true},
		Genres:        bigquery.NullString{StringVal: "['Crime']", Valid: true},
	}
	m, err := row.ToRecord()
	require.NoError(t, err)
	assert.Equal(t, 3, m.ID)
	assert.Equal(t, "Heat", m.Title)
	assert.Nil(t, m.DurationMinutes)
	assert.Nil(t, m.VoteCount)
	assert.Equal(t, []string{"Crime"}, m.Genres())

	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		row.AverageRating = bigquery.NullFloat64{Float64: bad, Valid: true}
		m, err = row.ToRecord()
		require.NoError(t, err)
		assert.Nil(t, m.AverageRating)
	}

	row.StartYear = bigquery.NullInt64{}
	_, err = row.ToRecord()
	assert.Error(t, err)
}

func TestRecoTableRowToRecoRow(t *testing.T) {
	row := commands.RecoTableRow{
		MovieID: bigquery.NullInt64{Int64: 3, Valid: true},
		Reco1:   bigquery.NullInt64{Int64: 4, Valid: true},
		Reco5:   bigquery.NullInt64{Int64: 9, Valid: true},
	}
	r, err := row.ToRecoRow()
	require.NoError(t, err)
	assert.Equal(t, 3, *r.Key)
	assert.Equal(t, 4, *r.RecoIDs[0])
	assert.Nil(t, r.RecoIDs[1])
	assert.Equal(t, 9, *r.RecoIDs[4])

	_, err = (&commands.RecoTableRow{}).ToRecoRow()
	assert.Error(t, err)
}
