package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver publishes derivation and workflow counters.
type PrometheusObserver struct {
	derivationDuration *prometheus.HistogramVec
	staleDiscarded     *prometheus.CounterVec
	reportsGenerated   *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	statusChanges      *prometheus.CounterVec
}

// NewPrometheusObserver registers its collectors on reg. Pass prometheus.DefaultRegisterer in production.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		derivationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_derivation_duration_seconds",
			Help:    "Time spent deriving a dashboard or report view",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"view"}),
		staleDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_stale_results_discarded_total",
			Help: "Derived results dropped because a newer request superseded them",
		}, []string{"view"}),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_reports_generated_total",
			Help: "Reports generated by kind",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_notifications_dispatched_total",
			Help: "Notifications pushed to user feeds",
		}, []string{"type"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_status_changes_total",
			Help: "Lead status changes recorded",
		}, []string{"status"}),
	}
	reg.MustRegister(o.derivationDuration, o.staleDiscarded, o.reportsGenerated, o.notifications, o.statusChanges)
	return o
}

func (o *PrometheusObserver) ObserveDerivation(view string, elapsed time.Duration) {
	o.derivationDuration.WithLabelValues(view).Observe(elapsed.Seconds())
}

func (o *PrometheusObserver) StaleDiscarded(view string) {
	o.staleDiscarded.WithLabelValues(view).Inc()
}

func (o *PrometheusObserver) ReportGenerated(kind string) {
	o.reportsGenerated.WithLabelValues(kind).Inc()
}

func (o *PrometheusObserver) NotificationDispatched(kind string) {
	o.notifications.WithLabelValues(kind).Inc()
}

func (o *PrometheusObserver) StatusChanged(status string) {
	o.statusChanges.WithLabelValues(status).Inc()
}
