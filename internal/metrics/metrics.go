package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration origins.
const (
	OriginSeed       = "seed"
	OriginDiscovered = "discovered"
)

var (
	// Resolution
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfim_fandom_resolutions_total",
		Help: "Fandom tokens looked up, by the stage that resolved them.",
	}, []string{"stage"}) // stage: exact, fuzzy, abbreviation, namealike, typo, regex, miss

	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfim_fandom_registrations_total",
		Help: "Fandom records created.",
	}, []string{"origin"})

	TyposCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfim_fandom_typos_captured_total",
		Help: "Typo variants recorded on existing fandoms.",
	})

	GroupsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfim_fandom_groups_skipped_total",
		Help: "Parenthesized groups dropped for lacking a parent token.",
	})

	// Output Gauges
	FandomsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfim_fandoms_total",
		Help: "Number of fandom records after the last extraction.",
	})
	CirclesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfim_circles_total",
		Help: "Number of circles after the last extraction.",
	})
	StandsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfim_stands_total",
		Help: "Number of stands after the last extraction.",
	})

	ExtractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cfim_extract_duration_seconds",
		Help:    "Duration of extraction phases in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"}) // phase: circles, fandoms, crosslink, stands
)

// UpdateTotals refreshes the output gauges.
func UpdateTotals(fandoms, circles, stands int) {
	FandomsTotal.Set(float64(fandoms))
	CirclesTotal.Set(float64(circles))
	StandsTotal.Set(float64(stands))
}

// RecordPhaseDuration records the time taken by one extraction phase.
func RecordPhaseDuration(phase string, start time.Time) {
	ExtractDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for a node-exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
