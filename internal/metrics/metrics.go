// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the HTTP layer and the orchestrator record
// through.
type Recorder interface {
	RecordHTTPStatus(statusCode int)
	RecordUpload()
	RecordPipelineSuccess()
	RecordPipelineFailure(stage string)
	RecordStageLatency(stage string, duration time.Duration)
}

// Collector implements Recorder backed by Prometheus metrics.
type Collector struct {
	httpStatus       *prometheus.CounterVec
	uploadsTotal     prometheus.Counter
	pipelineSuccess  prometheus.Counter
	pipelineFailures *prometheus.CounterVec
	stageLatency     *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screen2doc_http_status_total",
			Help: "Responses by HTTP status code",
		}, []string{"status_code"}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screen2doc_uploads_total",
			Help: "Accepted video uploads",
		}),
		pipelineSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screen2doc_pipeline_success_total",
			Help: "Completed analysis pipelines",
		}),
		pipelineFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screen2doc_pipeline_failures_total",
			Help: "Failed analysis pipelines by stage",
		}, []string{"stage"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screen2doc_stage_latency_seconds",
			Help:    "Pipeline stage latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.uploadsTotal,
		c.pipelineSuccess,
		c.pipelineFailures,
		c.stageLatency,
	)

	return c
}

// RecordHTTPStatus records a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpload records an accepted upload.
func (c *Collector) RecordUpload() {
	c.uploadsTotal.Inc()
}

// RecordPipelineSuccess records a completed pipeline run.
func (c *Collector) RecordPipelineSuccess() {
	c.pipelineSuccess.Inc()
}

// RecordPipelineFailure records a failed pipeline run.
func (c *Collector) RecordPipelineFailure(stage string) {
	c.pipelineFailures.WithLabelValues(stage).Inc()
}

// RecordStageLatency records how long a pipeline stage took.
func (c *Collector) RecordStageLatency(stage string, duration time.Duration) {
	c.stageLatency.WithLabelValues(stage).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that discards everything. Used in tests.
type Nop struct{}

func (Nop) RecordHTTPStatus(int)                     {}
func (Nop) RecordUpload()                            {}
func (Nop) RecordPipelineSuccess()                   {}
func (Nop) RecordPipelineFailure(string)             {}
func (Nop) RecordStageLatency(string, time.Duration) {}
