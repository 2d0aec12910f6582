// Package telemetry provides OpenTelemetry tracing and Prometheus metrics for
// the content analysis paths.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "bilibili-study-tool"

// Analysis outcome label values.
const (
	OutcomeLearning    = "learning"
	OutcomeNonLearning = "non_learning"
	OutcomeEscalate    = "escalate"
)

// Escalation outcome label values.
const (
	EscalationOK          = "ok"
	EscalationUnavailable = "unavailable"
)

// Metrics holds the service's Prometheus metrics.
type Metrics struct {
	AnalysesTotal      *prometheus.CounterVec
	AnalyzeDuration    prometheus.Histogram
	EscalationsTotal   *prometheus.CounterVec
	EscalationDuration prometheus.Histogram
	CatalogCategories  prometheus.Gauge
}

// Provider wraps the tracer and metrics handed to the analyzer and handlers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry against the default Prometheus registerer.
func NewProvider() *Provider {
	return NewProviderWith(prometheus.DefaultRegisterer)
}

// NewProviderWith initializes telemetry against a specific registerer.
// Tests pass prometheus.NewRegistry() to avoid duplicate registration.
func NewProviderWith(reg prometheus.Registerer) *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(reg),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "content_filter_analyses_total",
			Help: "Total analyze calls by outcome (learning, non_learning, escalate)",
		}, []string{"outcome"}),
		AnalyzeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "content_filter_analyze_duration_seconds",
			Help:    "Keyword/zone analysis latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		EscalationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "content_filter_escalations_total",
			Help: "Total semantic escalations by outcome (ok, unavailable)",
		}, []string{"outcome"}),
		EscalationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "content_filter_escalation_duration_seconds",
			Help:    "Semantic escalation round-trip latency",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
		CatalogCategories: factory.NewGauge(prometheus.GaugeOpts{
			Name: "content_filter_catalog_categories",
			Help: "Number of categories in the loaded keyword catalog",
		}),
	}
}
