package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	kind_broken  = "broken"
	kind_warning = "warning"
)

// PromAPI counts broken/warning reports and exposes ReportCount values as
// gauges. It discards debug messages, combine it with SlogAPI through
// MultiAPI to keep the logs.
type PromAPI struct {
	reports *prometheus.CounterVec
	counts  *prometheus.GaugeVec
}

func NewPromAPI(registry prometheus.Registerer, namespace string) (PromAPI, error) {
	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_total",
		Help:      "Number of broken and warning reports grouped by component id.",
	}, []string{"kind", "id"})
	counts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "count",
		Help:      "Latest value reported through ReportCount.",
	}, []string{"id"})

	err := registry.Register(reports)
	if err != nil {
		return PromAPI{}, err
	}
	err = registry.Register(counts)
	if err != nil {
		return PromAPI{}, err
	}

	return PromAPI{reports: reports, counts: counts}, nil
}

func (p PromAPI) ReportBroken(id string, params ...any) {
	p.reports.WithLabelValues(kind_broken, id).Inc()
}

func (p PromAPI) ReportWarning(id string, params ...any) {
	p.reports.WithLabelValues(kind_warning, id).Inc()
}

func (p PromAPI) ReportDebug(msg string, params ...any) {}

func (p PromAPI) ReportCount(id string, count int64) {
	p.counts.WithLabelValues(id).Set(float64(count))
}
