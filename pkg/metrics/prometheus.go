package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Бизнес-метрики
	RouteRunsTotal     *prometheus.CounterVec
	RouteDuration      *prometheus.HistogramVec
	RouteIterations    *prometheus.HistogramVec
	IterationConflicts *prometheus.GaugeVec
	TotalWireUse       *prometheus.GaugeVec
	GraphNodesTotal    prometheus.Gauge
	GraphEdgesTotal    prometheus.Gauge
	CacheHitsTotal     *prometheus.CounterVec

	// Системные метрики
	Goroutines prometheus.Gauge

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Бизнес-метрики
		RouteRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_runs_total",
				Help:      "Total number of routing runs",
			},
			[]string{"solver", "status"},
		),

		RouteDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_duration_seconds",
				Help:      "Duration of complete routing runs",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300, 600},
			},
			[]string{"solver"},
		),

		RouteIterations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_iterations",
				Help:      "Iterations needed until convergence",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2000},
			},
			[]string{"solver"},
		),

		IterationConflicts: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iteration_conflicts",
				Help:      "Conflicts observed in the last logged iteration",
			},
			[]string{"solver"},
		),

		TotalWireUse: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total_wire_use",
				Help:      "Total wire use of the last logged iteration",
			},
			[]string{"solver"},
		),

		GraphNodesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of nodes in the loaded fabric graph",
			},
		),

		GraphEdgesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in the loaded fabric graph",
			},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Routing result cache hits and misses",
			},
			[]string{"result"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальный контейнер метрик
func Get() *Metrics {
	return defaultMetrics
}

// SetServiceInfo выставляет информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// ObserveHTTPRequest записывает метрики одного HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveRouteRun записывает метрики завершённого запуска роутинга
func (m *Metrics) ObserveRouteRun(solver string, success bool, iterations int, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.RouteRunsTotal.WithLabelValues(solver, status).Inc()
	m.RouteDuration.WithLabelValues(solver).Observe(duration.Seconds())
	m.RouteIterations.WithLabelValues(solver).Observe(float64(iterations))
}

// ObserveIteration записывает метрики одной итерации
func (m *Metrics) ObserveIteration(solver string, conflicts, totalWireUse int) {
	m.IterationConflicts.WithLabelValues(solver).Set(float64(conflicts))
	m.TotalWireUse.WithLabelValues(solver).Set(float64(totalWireUse))
}

// ObserveGraph записывает размер загруженного графа
func (m *Metrics) ObserveGraph(nodes, edges int) {
	m.GraphNodesTotal.Set(float64(nodes))
	m.GraphEdgesTotal.Set(float64(edges))
}

// CollectSystem обновляет системные метрики
func (m *Metrics) CollectSystem() {
	m.Goroutines.Set(float64(runtime.NumGoroutine()))
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve запускает отдельный HTTP сервер для метрик
func Serve(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go srv.ListenAndServe()
	return srv
}
