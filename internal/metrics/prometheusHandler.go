package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countDocumentsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "documents_in_pipeline_queue",
	Help: "Number of documents waiting for the processing pipeline",
})

var pipelineBusy = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pipeline_busy",
	Help: "1 while the pipeline worker is processing a document",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) CaptureWriteHeaderMetrics(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementDocumentsInQueue() {
	countDocumentsInQueue.Inc()
}

func DecrementDocumentsInQueue() {
	countDocumentsInQueue.Dec()
}

func MarkPipelineBusy() {
	pipelineBusy.Set(1)
}

func MarkPipelineIdle() {
	pipelineBusy.Set(0)
}

var documentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "document_processing_duration_seconds",
	Help:    "Total time spent processing one document end to end.",
	Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureDocumentMetrics(label string, timeElapsed time.Duration) {
	documentDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
