// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Kind labels for cascade metrics.
const (
	KindSite    = "site"
	KindWebring = "webring"
	KindUser    = "user"
)

// CascadeDeletions counts committed soft deletions by entity kind, including
// rows deleted as part of a parent's cascade.
// Use RegisterMetrics to register this with a Prometheus registry.
var CascadeDeletions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ringdex_cascade_deletions_total",
		Help: "Total number of soft-deleted rows by kind",
	},
	[]string{"kind"},
)

// RegisterMetrics registers lifecycle metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CascadeDeletions)
}

// tally counts the rows a cascade soft-deleted.
type tally struct {
	users    int
	webrings int
	sites    int
}

func (t tally) record() {
	if t.users > 0 {
		CascadeDeletions.WithLabelValues(KindUser).Add(float64(t.users))
	}
	if t.webrings > 0 {
		CascadeDeletions.WithLabelValues(KindWebring).Add(float64(t.webrings))
	}
	if t.sites > 0 {
		CascadeDeletions.WithLabelValues(KindSite).Add(float64(t.sites))
	}
}
