// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package metrics holds the Prometheus collectors exported by the server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "googlechat_mcp"

// Tool call outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidArgument = "invalid_arguments"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeError           = "error"
)

type Metrics struct {
	toolCalls       *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Number of tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of Google Chat API requests by HTTP method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	if reg != nil {
		reg.MustRegister(m.toolCalls, m.upstreamLatency)
	}
	return m
}

func (m *Metrics) ObserveToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// ObserveUpstream records one dispatcher round trip. status is the HTTP
// status code, or "transport_error" when no response arrived.
func (m *Metrics) ObserveUpstream(method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(method, status).Observe(elapsed.Seconds())
}
