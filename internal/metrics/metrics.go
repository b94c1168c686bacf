package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"wifilayer/internal/model"
)

// Metrics holds the Prometheus collectors for a session.
type Metrics struct {
	Registry         *prometheus.Registry
	Classifications  *prometheus.CounterVec
	TunnelGenerated  *prometheus.CounterVec
	Notices          *prometheus.CounterVec
	DetectionFailure prometheus.Counter
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	classifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifilayer_classifications_total",
			Help: "Risk classifications by resulting tier",
		},
		[]string{"tier"},
	)

	tunnelGenerated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifilayer_tunnel_configs_total",
			Help: "Tunnel config generation attempts by result",
		},
		[]string{"result"},
	)

	notices := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifilayer_log_notices_total",
			Help: "Event log notices by severity",
		},
		[]string{"severity"},
	)

	detectionFailure := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wifilayer_detection_failures_total",
			Help: "Network detection calls that returned an error",
		},
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(classifications, tunnelGenerated, notices, detectionFailure)

	return &Metrics{
		Registry:         reg,
		Classifications:  classifications,
		TunnelGenerated:  tunnelGenerated,
		Notices:          notices,
		DetectionFailure: detectionFailure,
	}
}

func (m *Metrics) ObserveAssessment(a model.RiskAssessment) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(string(a.Tier)).Inc()
}

func (m *Metrics) ObserveTunnel(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "missing_field"
	}
	m.TunnelGenerated.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveNotice(n model.LogNotice) {
	if m == nil {
		return
	}
	m.Notices.WithLabelValues(string(n.Severity)).Inc()
}

func (m *Metrics) ObserveDetectionFailure() {
	if m == nil {
		return
	}
	m.DetectionFailure.Inc()
}
