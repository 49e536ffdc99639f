// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diff

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var diffMeter = otel.Meter("lcfs/diff")

// engineMetrics holds the OpenTelemetry instruments the diff engine
// reports through. A nil or zero-value *engineMetrics silently drops
// every measurement rather than panicking; NewOTelEngineMetrics returns
// nil alongside its error when registration fails.
type engineMetrics struct {
	requestCount metric.Int64Counter
	frameCount   metric.Int64Counter
	recordCount  metric.Int64Counter
}

// NewOTelEngineMetrics registers the diff engine's counters against the
// global meter provider.
func NewOTelEngineMetrics() (*engineMetrics, error) {
	requestCount, err1 := diffMeter.Int64Counter("diff/request_count",
		metric.WithDescription("The cumulative number of layer-diff requests handled."))
	frameCount, err2 := diffMeter.Int64Counter("diff/frame_count",
		metric.WithDescription("The cumulative number of wire frames returned to callers."))
	recordCount, err3 := diffMeter.Int64Counter("diff/record_count",
		metric.WithDescription("The cumulative number of change records packed into frames."))

	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, err
	}
	return &engineMetrics{requestCount: requestCount, frameCount: frameCount, recordCount: recordCount}, nil
}

func (m *engineMetrics) recordRequest(ctx context.Context) {
	if m == nil || m.requestCount == nil {
		return
	}
	m.requestCount.Add(ctx, 1)
}

func (m *engineMetrics) recordFrame(ctx context.Context, records int) {
	if m == nil || m.frameCount == nil {
		return
	}
	m.frameCount.Add(ctx, 1)
	m.recordCount.Add(ctx, int64(records))
}
