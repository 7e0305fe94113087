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
// Responsibility (COR) pattern's Command interface. This file, `queries.go`,
// centralizes the BigQuery SQL used when the dataset is read from a warehouse
// instead of CSV files. The `%s` placeholder receives the fully qualified
// table name.
package commands

const (
	// QryCatalog reads the whole catalog in id order. The list columns hold the
	// same serialized list literals as the CSV export.
	QryCatalog = "SELECT id, title, start_year, duration, average_rating, num_votes, poster_path, genres, directors, actors FROM `%s` ORDER BY id"

	// QryRecoTable reads the whole recommendation table keyed by movie id.
	QryRecoTable = "SELECT movie_id, reco_1, reco_2, reco_3, reco_4, reco_5 FROM `%s` ORDER BY movie_id"
)
