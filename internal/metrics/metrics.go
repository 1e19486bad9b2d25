// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus counters and histograms for model calls
// and section outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/docforge/internal/genclient"
	"github.com/pdiddy/docforge/pkg/types"
)

// Section outcome labels.
const (
	SectionGenerated = "generated"
	SectionFailed    = "failed"
)

// Recorder records generation metrics on a registry.
type Recorder struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sections *prometheus.CounterVec
}

// New registers the docforge collectors on reg. A nil reg uses a fresh
// private registry.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docforge",
			Name:      "variant_calls_total",
			Help:      "Model calls by model and outcome.",
		}, []string{"model", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docforge",
			Name:      "variant_duration_seconds",
			Help:      "Model call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		}, []string{"model"}),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docforge",
			Name:      "sections_total",
			Help:      "Section fan-outs by status.",
		}, []string{"status"}),
	}
	for _, c := range []prometheus.Collector{r.calls, r.duration, r.sections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveCall records one variant call. The outcome label is "ok" or the
// generation error kind.
func (r *Recorder) ObserveCall(v types.VariantConfig, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = genclient.KindOf(err).String()
	}
	r.calls.WithLabelValues(v.ModelID, outcome).Inc()
	r.duration.WithLabelValues(v.ModelID).Observe(d.Seconds())
}

// ObserveSection records a settled section fan-out.
func (r *Recorder) ObserveSection(succeeded int) {
	status := SectionGenerated
	if succeeded == 0 {
		status = SectionFailed
	}
	r.sections.WithLabelValues(status).Inc()
}
