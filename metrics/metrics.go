// Copyright 2021 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package metrics wraps the Prometheus collectors KeyManager and
// EncryptedMaps report through: operation counts by outcome, unauthorized
// attempts, and oracle round-trip latency. Metrics observe; per the
// "no quota/billing" non-goal, nothing here ever gates an operation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the optional metrics sink accepted by keymanager.Config and
// encryptedmaps.Config. A nil *Collector is always safe to call methods on:
// every method is a no-op when c is nil, so metrics wiring is opt-in.
type Collector struct {
	ops           *prometheus.CounterVec
	unauthorized  *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
}

// New registers the collector's metrics against reg and returns the
// Collector. Pass prometheus.NewRegistry() in tests to avoid colliding with
// the global default registry.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetkeys",
			Name:      "operations_total",
			Help:      "Count of core operations by name and outcome.",
		}, []string{"op", "outcome"}),
		unauthorized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetkeys",
			Name:      "unauthorized_total",
			Help:      "Count of operations rejected by an authorization predicate.",
		}, []string{"op"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vetkeys",
			Name:      "oracle_request_duration_seconds",
			Help:      "Latency of oracle.Client round trips by method and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
	}
	reg.MustRegister(c.ops, c.unauthorized, c.oracleLatency)
	return c
}

// ObserveOp records one occurrence of op with the given outcome ("ok",
// "unauthorized", "error").
func (c *Collector) ObserveOp(op, outcome string) {
	if c == nil {
		return
	}
	c.ops.WithLabelValues(op, outcome).Inc()
}

// ObserveUnauthorized records one Unauthorized rejection of op.
func (c *Collector) ObserveUnauthorized(op string) {
	if c == nil {
		return
	}
	c.unauthorized.WithLabelValues(op).Inc()
}

// ObserveOracleLatency records the duration of one oracle round trip.
func (c *Collector) ObserveOracleLatency(method, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.oracleLatency.WithLabelValues(method, outcome).Observe(d.Seconds())
}
