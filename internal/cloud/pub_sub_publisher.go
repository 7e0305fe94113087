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

// Package cloud provides components for interacting with Google Cloud services.
// This file defines a small fire-and-forget Pub/Sub publisher used to report
// data-integrity problems (dangling recommendation references) to downstream
// consumers without slowing down the request that detected them.
//
// Logic Flow:
//  1. An IntegrityPublisher is created with a client and a topic ID.
//  2. `Publish` hands the payload to the topic, which batches it in the background.
//  3. A goroutine waits for the server acknowledgement and logs failures.
//  4. `Stop` flushes pending messages and waits for the acknowledgements.
//
// Structs:
//   - IntegrityPublisher: wraps a *pubsub.Topic.
//
// Functions:
//   - NewIntegrityPublisher: Constructor for creating a new IntegrityPublisher.
//   - Publish: Sends one message asynchronously.
//   - Stop: Flushes and waits for in-flight messages.
package cloud

import (
	"context"
	"log/slog"
	"sync"

	"cloud.google.com/go/pubsub"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Publisher is the behaviour the integrity reporter needs from a message sink.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string)
}

// IntegrityPublisher publishes messages to a single Pub/Sub topic.
type IntegrityPublisher struct {
	topic    *pubsub.Topic
	inflight sync.WaitGroup
}

// NewIntegrityPublisher is the constructor for creating an IntegrityPublisher.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client for connecting to the service.
//   - topicID: The string ID of the topic (e.g., "movie-reco-integrity").
//
// Outputs:
//   - *IntegrityPublisher: A pointer to the newly created publisher.
func NewIntegrityPublisher(pubsubClient *pubsub.Client, topicID string) *IntegrityPublisher {
	return &IntegrityPublisher{topic: pubsubClient.Topic(topicID)}
}

// Publish sends data to the topic without blocking on the server round trip.
// Failures are logged and recorded on a span, never returned.
func (p *IntegrityPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) {
	// The request context may end before the acknowledgement arrives.
	ackCtx := context.WithoutCancel(ctx)
	res := p.topic.Publish(ackCtx, &pubsub.Message{Data: data, Attributes: attributes})

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		_, span := otel.Tracer("integrity-publisher").Start(ackCtx, "publish-message")
		defer span.End()
		span.SetAttributes(attribute.String("topic", p.topic.ID()))

		id, err := res.Get(ackCtx)
		if err != nil {
			span.SetStatus(codes.Error, "failed")
			span.RecordError(err)
			slog.Error("failed to publish integrity event", "topic", p.topic.ID(), "error", err)
			return
		}
		span.SetStatus(codes.Ok, "success")
		slog.Debug("published integrity event", "topic", p.topic.ID(), "message_id", id)
	}()
}

// Stop sends any remaining buffered messages and waits for their results.
func (p *IntegrityPublisher) Stop() {
	p.topic.Stop()
	p.inflight.Wait()
}
