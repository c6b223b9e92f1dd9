package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

const namespace = "paa"

// PipelineMetrics records analysis and export outcomes. It satisfies ports.PipelineObserver.
type PipelineMetrics struct {
	service string

	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	inFlight         prometheus.Gauge
	parserFallback   *prometheus.CounterVec
	exportsTotal     *prometheus.CounterVec
	storeRecords     prometheus.Gauge
}

func NewPipelineMetrics(service string, registry prometheus.Registerer) *PipelineMetrics {
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentiment_analyses_total",
			Help:      "Total document analyses by status and sentiment.",
		},
		[]string{"service", "status", "sentiment"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds by status.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "status"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "analyses_in_flight",
			Help:        "Number of analyses currently running.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	parserFallback := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parser_fallback_total",
			Help:      "Classifier responses that needed the heuristic fallback.",
		},
		[]string{"service"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total exports by format and status.",
		},
		[]string{"service", "format", "status"},
	)
	storeRecords := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "store_records",
			Help:        "Number of analysis records held by the store.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(analysesTotal, analysisDuration, inFlight, parserFallback, exportsTotal, storeRecords)

	return &PipelineMetrics{
		service:          service,
		analysesTotal:    analysesTotal,
		analysisDuration: analysisDuration,
		inFlight:         inFlight,
		parserFallback:   parserFallback,
		exportsTotal:     exportsTotal,
		storeRecords:     storeRecords,
	}
}

func (m *PipelineMetrics) AnalysisStarted() {
	m.inFlight.Inc()
}

func (m *PipelineMetrics) AnalysisFinished(status string, sentiment domain.SentimentCategory, elapsed time.Duration) {
	m.inFlight.Dec()
	label := string(sentiment)
	if label == "" {
		label = "none"
	}
	m.analysesTotal.WithLabelValues(m.service, status, label).Inc()
	m.analysisDuration.WithLabelValues(m.service, status).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) ParserFallback() {
	m.parserFallback.WithLabelValues(m.service).Inc()
}

func (m *PipelineMetrics) ExportFinished(format domain.ExportFormat, status string) {
	if format == "" {
		format = "unknown"
	}
	m.exportsTotal.WithLabelValues(m.service, string(format), status).Inc()
}

func (m *PipelineMetrics) SetStoreRecords(n int) {
	m.storeRecords.Set(float64(n))
}
