package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// File outcomes reported by the pipeline.
const (
	OutcomeIngested       = "ingested"
	OutcomeChecksumFailed = "checksum_failed"
	OutcomeStatFailed     = "stat_failed"
	OutcomeCatalogFailed  = "catalog_failed"
	OutcomeOrphanedRecord = "orphaned_record"
)

// Recorder owns the ingestor's collectors. A nil *Recorder records nothing,
// so components can be used without metrics.
type Recorder struct {
	registry       *prometheus.Registry
	files          *prometheus.CounterVec
	duplicates     *prometheus.CounterVec
	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	checksumPasses prometheus.Histogram
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_files_total",
			Help: "Files handled by the ingestion pipeline, by source and outcome.",
		}, []string{"source", "outcome"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_duplicate_content_total",
			Help: "Ingested files whose SHA-1 was already in the catalog.",
		}, []string{"source"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_scan_cycles_total",
			Help: "Completed scan cycles, by status.",
		}, []string{"status"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingestor_scan_cycle_duration_seconds",
			Help:    "Wall time of one scan cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		checksumPasses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingestor_checksum_passes",
			Help:    "Read passes needed before two consecutive checksums agreed.",
			Buckets: []float64{2, 4, 6, 8, 12, 20},
		}),
	}

	r.registry.MustRegister(r.files, r.duplicates, r.cycles, r.cycleDuration, r.checksumPasses)
	return r
}

// RecordFile counts one file outcome.
func (r *Recorder) RecordFile(source, outcome string) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(source, outcome).Inc()
}

// RecordDuplicate counts a file whose content was seen before.
func (r *Recorder) RecordDuplicate(source string) {
	if r == nil {
		return
	}
	r.duplicates.WithLabelValues(source).Inc()
}

// RecordChecksumPasses observes how many reads a file needed.
func (r *Recorder) RecordChecksumPasses(passes int) {
	if r == nil {
		return
	}
	r.checksumPasses.Observe(float64(passes))
}

// RecordCycle counts a finished scan cycle.
func (r *Recorder) RecordCycle(status string, d time.Duration) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(status).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
