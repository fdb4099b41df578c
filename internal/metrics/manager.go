package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests               *prometheus.CounterVec
	CounterHandleRequestPanic     prometheus.Counter
	CounterNotificationsCreated   *prometheus.CounterVec
	CounterNotificationDispatches *prometheus.CounterVec
	CounterStorageOps             *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("inkwell", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("inkwell", "test_server", reg), reg
}

// SetupPrometheus returns a registry carrying the Go runtime and process
// collectors.
func SetupPrometheus() *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promRegistry
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		CounterNotificationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_created",
			Help:      "Notifications persisted, by type",
		}, []string{"type"}),
		CounterNotificationDispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_dispatches",
			Help:      "Real-time notification publishes, by result",
		}, []string{"result"}),
		CounterStorageOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "storage_operations",
			Help:      "Object storage calls, by operation and result",
		}, []string{"op", "result"}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Histogram of response time for requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status_code"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStorage counts one storage call.
func (m *Manager) ObserveStorage(op string, err error) {
	if m == nil {
		return
	}
	m.CounterStorageOps.WithLabelValues(op, result(err)).Inc()
}

func (m *Manager) ObserveDispatch(err error) {
	if m == nil {
		return
	}
	m.CounterNotificationDispatches.WithLabelValues(result(err)).Inc()
}

func (m *Manager) NotificationCreated(notificationType string) {
	if m == nil {
		return
	}
	m.CounterNotificationsCreated.WithLabelValues(notificationType).Inc()
}
