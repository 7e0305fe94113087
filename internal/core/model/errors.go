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
// file, `errors.go`, holds the error taxonomy shared by the loader, the
// services and the HTTP layer.
//
// Load-time errors (ErrDataNotFound, ErrDataEmpty, ErrDataFormat) are fatal to
// the dataset but not to the process: the server keeps running with an empty
// view. Lookup-time errors (ErrUnknownMovie, ErrDanglingReference) only
// degrade the request that hit them and are reported as integrity issues.
package model

import (
	"errors"
	"fmt"
)

var (
	ErrDataNotFound      = errors.New("dataset resource not found")
	ErrDataEmpty         = errors.New("dataset resource is empty")
	ErrDataFormat        = errors.New("dataset resource has an invalid format")
	ErrUnknownMovie      = errors.New("movie has no recommendation entry")
	ErrDanglingReference = errors.New("recommendation references a movie missing from the catalog")
	ErrMovieNotFound     = errors.New("movie not found in catalog")
	ErrPosterUnavailable = errors.New("poster unavailable")
)

// Resource names used in DatasetError.
const (
	ResourceCatalog   = "catalog"
	ResourceRecoTable = "recommendations"
)

// DatasetError describes a failure to load one of the two dataset resources.
// It matches both its Kind sentinel and its underlying cause with errors.Is.
type DatasetError struct {
	Resource string // ResourceCatalog or ResourceRecoTable.
	Kind     error  // One of ErrDataNotFound, ErrDataEmpty, ErrDataFormat.
	Err      error  // The underlying cause, may be nil.
}

// NewDatasetError builds a DatasetError for resource with the given kind and cause.
func NewDatasetError(resource string, kind error, cause error) *DatasetError {
	return &DatasetError{Resource: resource, Kind: kind, Err: cause}
}

func (e *DatasetError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Resource, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Resource, e.Kind, e.Err)
}

func (e *DatasetError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// DanglingReferenceError is returned when a recommendation slot points at an id
// that the catalog does not contain. It means the two datasets are out of sync.
type DanglingReferenceError struct {
	MovieID int // The movie whose recommendations were being resolved.
	Rank    int // 1-based rank of the offending slot.
	RecoID  int // The id that could not be found.
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%v: movie %d rank %d points at id %d", ErrDanglingReference, e.MovieID, e.Rank, e.RecoID)
}

func (e *DanglingReferenceError) Unwrap() error {
	return ErrDanglingReference
}

// UserMessage turns an error into the short message shown to dashboard users.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDataNotFound):
		return "Error: a data file could not be found."
	case errors.Is(err, ErrDataEmpty):
		return "Error: a data file is empty."
	case errors.Is(err, ErrDataFormat):
		return "Error: a data file could not be parsed."
	case errors.Is(err, ErrUnknownMovie), errors.Is(err, ErrDanglingReference):
		return "No recommendations available."
	case errors.Is(err, ErrMovieNotFound):
		return "No movie found."
	case errors.Is(err, ErrPosterUnavailable):
		return "Poster not available."
	default:
		return "An unexpected error occurred."
	}
}
