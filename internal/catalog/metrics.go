package catalog

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	RefreshTotal *prometheus.CounterVec
	Products     prometheus.Gauge
	LastFetch    prometheus.Gauge
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_refresh_total",
				Help: "Catalog fetch attempts by result",
			},
			[]string{"result"},
		),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products in the current snapshot",
		}),
		LastFetch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_last_fetch_timestamp_seconds",
			Help: "Unix time of the last successful fetch",
		}),
	}
	reg.MustRegister(m.RefreshTotal, m.Products, m.LastFetch)
	return m
}

func (m *Metrics) observeSuccess(products int, fetchedAtUnix float64) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues("success").Inc()
	m.Products.Set(float64(products))
	m.LastFetch.Set(fetchedAtUnix)
}

func (m *Metrics) observeFailure() {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues("error").Inc()
}
