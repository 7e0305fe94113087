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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file specifically defines models related to Google Cloud Storage (GCS):
// a simplified internal representation of a GCS object and the parsing of
// gs:// URIs used in the dataset configuration.
//
// Structs:
//   - GCSObject: A simplified internal model for GCS objects used in the load pipeline.
//
// Functions:
//   - IsGCSURI: Reports whether a dataset location points at GCS.
//   - ParseGCSURI: Splits a gs://bucket/object URI into a GCSObject.
package cloud

import (
	"fmt"
	"strings"
)

// GCSScheme is the URI prefix of Cloud Storage locations.
const GCSScheme = "gs://"

// GCSObject is a simplified, internal representation of a Google Cloud Storage
// object: just enough to open a reader on it.
type GCSObject struct {
	Bucket string // The name of the GCS bucket.
	Name   string // The name of the object.
}

// String renders the object back into its gs:// form.
func (o *GCSObject) String() string {
	return GCSScheme + o.Bucket + "/" + o.Name
}

// IsGCSURI reports whether uri uses the gs:// scheme.
func IsGCSURI(uri string) bool {
	return strings.HasPrefix(uri, GCSScheme)
}

// ParseGCSURI splits a gs://bucket/path/to/object URI.
//
// Inputs:
//   - uri: the URI to parse.
//
// Outputs:
//   - *GCSObject: the bucket and object name.
//   - error: when the scheme is wrong or the bucket or object name is missing.
func ParseGCSURI(uri string) (*GCSObject, error) {
	if !IsGCSURI(uri) {
		return nil, fmt.Errorf("invalid GCS URI format: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, GCSScheme), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", uri)
	}
	return &GCSObject{Bucket: parts[0], Name: parts[1]}, nil
}
