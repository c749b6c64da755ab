package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Patch outcomes. Every PATCH request ends in exactly one of them.
const (
	OutcomeApplied          = "applied"
	OutcomeNotFound         = "not_found"
	OutcomeValidationFailed = "validation_failed"
	OutcomeMalformed        = "malformed"
	OutcomeError            = "error"
)

// Metrics provides observability for the person module.
type Metrics struct {
	PeopleCreated  prometheus.Counter
	PatchOutcomes  *prometheus.CounterVec
	PatchDuration  prometheus.Histogram
	CreateDuration prometheus.Histogram
}

// New creates the person metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PeopleCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_created_total",
			Help: "Total number of people created",
		}),
		PatchOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "people_patches_total",
			Help: "Merge patches by outcome",
		}, []string{"outcome"}),
		PatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "people_patch_duration_seconds",
			Help:    "Duration of Patch operations (load, merge, validate, replace)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CreateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "people_create_duration_seconds",
			Help:    "Duration of Create operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementPeopleCreated records a successful creation.
func (m *Metrics) IncrementPeopleCreated() {
	m.PeopleCreated.Inc()
}

// IncrementPatchOutcome records how a patch ended.
func (m *Metrics) IncrementPatchOutcome(outcome string) {
	m.PatchOutcomes.WithLabelValues(outcome).Inc()
}

// ObservePatch records the duration of a Patch operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePatch(start time.Time) {
	m.PatchDuration.Observe(time.Since(start).Seconds())
}

// ObserveCreate records the duration of a Create operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}
