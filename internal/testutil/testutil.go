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

// Package test provides utility functions and fixture data to support the
// application's test suite. It loads the test configuration once per run and
// writes small, hand-checked dataset files that exercise the loader, the
// filter engine and the recommendation resolver.
package test

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-movie-reco/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// StateManager caches the test configuration so it is loaded once per run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// CatalogCSV is an eight movie catalog without an id column, so ids are the
// row positions 0 to 7. Row 5 has a malformed genre list and no poster.
const CatalogCSV = `title_fr,startYear,duration,averageRating,numVotes,poster_path,genres,directors,actors
Inception,2010,148,8.8,2500000,/inception.jpg,"['Action', 'Sci-Fi']",['Christopher Nolan'],"['Leonardo DiCaprio', 'Elliot Page']"
Interstellar,2014,169,8.7,2100000,/interstellar.jpg,"['Adventure', 'Drama', 'Sci-Fi']",['Christopher Nolan'],"['Matthew McConaughey', 'Anne Hathaway']"
Amélie,2001,122,8.3,780000,/amelie.jpg,"['Comedy', 'Romance']",['Jean-Pierre Jeunet'],['Audrey Tautou']
Le Dîner de cons,1998,80,7.7,45000,,['Comedy'],['Francis Veber'],"['Thierry Lhermitte', 'Jacques Villeret']"
The Prestige,2006,130,8.5,1400000,/prestige.jpg,"['Drama', 'Mystery', 'Sci-Fi']",['Christopher Nolan'],"['Christian Bale', 'Hugh Jackman']"
Broken Row,1995,nan,nan,nan,nan,['Drama',,['Nobody']
La Haine,1995,98,8.1,190000,/haine.jpg,"['Crime', 'Drama']",['Mathieu Kassovitz'],['Vincent Cassel']
Heat,1995,170,8.3,700000,https://example.org/heat.jpg,"['Action', 'Crime', 'Drama']",['Michael Mann'],"['Al Pacino', 'Robert De Niro']"
`

// RecoCSV aligns with CatalogCSV by position. Movie 0 has two absent slots,
// movie 1 uses float and NaN cells and movie 7 points at the missing id 99 in
// rank 5.
const RecoCSV = `reco_1,reco_2,reco_3,reco_4,reco_5
1,4,7,,
0,4,2.0,nan,6
3,0,1,4,6
2,6,0,1,4
0,1,7,6,2
6,7,,,
7,5,3,2,0
6,0,4,1,99
`

// Fixture ids.
const (
	Inception    = 0
	Interstellar = 1
	Amelie       = 2
	DinerDeCons  = 3
	Prestige     = 4
	BrokenRow    = 5
	LaHaine      = 6
	Heat         = 7
	DanglingID   = 99
)

// repoRoot walks up from the working directory to the directory holding go.mod.
func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// SetupOS points the configuration loader at the repository's configs
// directory and selects the "test" runtime (configs/.env.test.toml).
func SetupOS() (err error) {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	if err = os.Setenv(cloud.EnvConfigFilePrefix, filepath.Join(root, "configs")); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig returns the cached test configuration, loading it on first use.
// Callers that change it should work on a copy.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// WriteDataset writes the two CSV files into a temporary directory and returns
// a copy of the test configuration pointing at them.
func WriteDataset(t *testing.T, catalogCSV string, recoCSV string) *cloud.Config {
	t.Helper()
	dir := t.TempDir()
	config := *GetConfig()
	config.Dataset.Source = cloud.SourceCSV
	config.Dataset.CatalogURI = filepath.Join(dir, "df_complet.csv")
	config.Dataset.RecoURI = filepath.Join(dir, "df_reco.csv")
	HandleErr(os.WriteFile(config.Dataset.CatalogURI, []byte(catalogCSV), 0o600), t)
	HandleErr(os.WriteFile(config.Dataset.RecoURI, []byte(recoCSV), 0o600), t)
	return &config
}

// NewDataset parses the fixture CSVs into a dataset without going through
// the workflow.
func NewDataset(t *testing.T) *model.Dataset {
	t.Helper()
	config := WriteDataset(t, CatalogCSV, RecoCSV)
	records, err := commands.ParseCatalogCSV(config.Dataset.CatalogURI)
	HandleErr(err, t)
	rows, err := commands.ParseRecoCSV(config.Dataset.RecoURI)
	HandleErr(err, t)
	dataset, err := commands.BuildDataset(records, rows)
	if err != nil {
		t.Fatalf("failed to build fixture dataset: %v", err)
	}
	dataset.Source = cloud.SourceCSV
	return dataset
}
