// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lease-scan/internal/detector"
)

// metrics lives on a private registry so several servers can coexist in tests
type metrics struct {
	registry *prometheus.Registry
	analyses *prometheus.CounterVec
	flags    *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lease_scan",
			Name:      "analyses_total",
			Help:      "Lease analyses served, by input kind and cache outcome.",
		}, []string{"input", "cache"}),
		flags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lease_scan",
			Name:      "flags_total",
			Help:      "Risk flags returned, by severity.",
		}, []string{"severity"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lease_scan",
			Name:      "analysis_duration_seconds",
			Help:      "Time spent analyzing documents that missed the cache.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.analyses,
		m.flags,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observe(input string, cached bool, elapsed time.Duration, result *detector.AnalysisResult) {
	cache := "miss"
	if cached {
		cache = "hit"
	} else {
		m.duration.Observe(elapsed.Seconds())
	}
	m.analyses.WithLabelValues(input, cache).Inc()
	for _, flag := range result.Flags {
		m.flags.WithLabelValues(string(flag.Severity)).Inc()
	}
}
