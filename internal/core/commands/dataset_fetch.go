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
// command that turns a configured dataset location into a local file path.
//
// Logic Flow:
//  1. Reads the configured location (a local path or a gs:// URI) from the context.
//  2. Local paths are checked for existence and passed through unchanged.
//  3. GCS objects are streamed into a temporary file with `io.Copy`; the file
//     is registered with the context so that it is removed when the load ends.
//  4. The local path is written to the output parameter for the CSV parser.
//
// A missing file, bucket or object is reported as a DatasetError of kind
// ErrDataNotFound for the resource this command fetches.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-movie-reco/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-reco/internal/core/model"
)

// DatasetFetch resolves one dataset resource to a readable local file.
type DatasetFetch struct {
	cor.BaseCommand
	client         *storage.Client // May be nil when every location is local.
	resource       string          // model.ResourceCatalog or model.ResourceRecoTable.
	tempFilePrefix string
}

// NewDatasetFetch is the constructor for the DatasetFetch command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - client: A *storage.Client used for gs:// locations; nil if none are configured.
//   - resource: The resource name reported in errors.
//   - inputParam: The context key holding the configured location.
//   - outputParam: The context key receiving the local path.
//
// Outputs:
//   - *DatasetFetch: A pointer to the newly instantiated command.
func NewDatasetFetch(name string, client *storage.Client, resource string, inputParam string, outputParam string) *DatasetFetch {
	out := &DatasetFetch{
		BaseCommand:    *cor.NewBaseCommand(name),
		client:         client,
		resource:       resource,
		tempFilePrefix: "movie-reco-" + resource + "-",
	}
	out.InputParamName = inputParam
	out.OutputParamName = outputParam
	return out
}

// Execute resolves the location found under the input parameter.
func (c *DatasetFetch) Execute(context cor.Context) {
	uri, _ := cor.Get[string](context, c.GetInputParam())
	if uri == "" {
		c.Fail(context, model.NewDatasetError(c.resource, model.ErrDataNotFound, errors.New("no location configured")))
		return
	}

	if !cloud.IsGCSURI(uri) {
		info, err := os.Stat(uri)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.Fail(context, model.NewDatasetError(c.resource, model.ErrDataNotFound, err))
			} else {
				c.Fail(context, fmt.Errorf("%s: %w", c.resource, err))
			}
			return
		}
		if info.IsDir() {
			c.Fail(context, model.NewDatasetError(c.resource, model.ErrDataNotFound, fmt.Errorf("%s is a directory", uri)))
			return
		}
		c.Succeed(context, uri)
		return
	}

	path, err := c.download(context, uri)
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context, path)
}

func (c *DatasetFetch) download(context cor.Context, uri string) (string, error) {
	obj, err := cloud.ParseGCSURI(uri)
	if err != nil {
		return "", model.NewDatasetError(c.resource, model.ErrDataNotFound, err)
	}
	if c.client == nil {
		return "", fmt.Errorf("%s: no storage client available for %s", c.resource, uri)
	}

	reader, err := c.client.Bucket(obj.Bucket).Object(obj.Name).NewReader(context.GetContext())
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return "", model.NewDatasetError(c.resource, model.ErrDataNotFound, err)
		}
		return "", fmt.Errorf("failed to create GCS reader for %s: %w", obj, err)
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close GCS reader", "object", obj.String(), "error", err)
		}
	}(reader)

	tempFile, err := os.CreateTemp("", c.tempFilePrefix)
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w", err)
	}
	context.AddTempFile(tempFile.Name())

	written, err := io.Copy(tempFile, reader)
	_ = tempFile.Close()
	if err != nil {
		return "", fmt.Errorf("failed to copy %s to local file after %d bytes: %w", obj, written, err)
	}

	slog.InfoContext(context.GetContext(), "downloaded dataset resource",
		"resource", c.resource, "object", obj.String(), "file", tempFile.Name(), "bytes", written)
	return tempFile.Name(), nil
}
