package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magis_page_views_total",
			Help: "Public page renders by page",
		},
		[]string{"page"},
	)

	pageLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magis_page_load_failures_total",
			Help: "Backend reads that failed while rendering a public page",
		},
		[]string{"page", "source"},
	)

	adminWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magis_admin_writes_total",
			Help: "Admin panel writes by table, action and outcome",
		},
		[]string{"table", "action", "status"},
	)

	heartbeatPings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magis_heartbeat_pings_total",
			Help: "Keep-warm pings by source and outcome",
		},
		[]string{"source", "result"},
	)

	pendingAppointments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "magis_pending_appointments",
			Help: "Appointments waiting for an answer",
		},
	)

	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "magis_render_duration_seconds",
			Help:    "Time spent loading and rendering a page",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"page"},
	)
)

func TrackPageView(page string, took time.Duration) {
	pageViews.WithLabelValues(page).Inc()
	renderDuration.WithLabelValues(page).Observe(took.Seconds())
}

func TrackLoadFailure(page, source string) {
	pageLoadFailures.WithLabelValues(page, source).Inc()
}

func TrackAdminWrite(table, action string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	adminWrites.WithLabelValues(table, action, status).Inc()
}

func TrackHeartbeat(source, result string) {
	heartbeatPings.WithLabelValues(source, result).Inc()
}

// PendingCounter reports how many appointments still wait for an answer.
type PendingCounter func(ctx context.Context) (int, error)

type Monitor struct {
	pending  PendingCounter
	interval time.Duration
}

func NewMonitor(pending PendingCounter, interval time.Duration) *Monitor {
	return &Monitor{pending: pending, interval: interval}
}

// Run refreshes the gauges until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect(ctx)
		}
	}
}

func (m *Monitor) collect(ctx context.Context) {
	n, err := m.pending(ctx)
	if err != nil {
		slog.Warn("Failed to count pending appointments", "error", err)
		return
	}
	pendingAppointments.Set(float64(n))
}
