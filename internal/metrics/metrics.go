// Package metrics owns the Prometheus registry. The log shipper reports its
// delivery counters here through the logging.SendObserver interface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec

	lokiLogsSent    prometheus.Counter
	lokiLogsFailed  prometheus.Counter
	lokiLogsDropped prometheus.Counter

	dbConnectionsActive prometheus.Gauge
	dbQueriesTotal      *prometheus.CounterVec

	serviceDependencyActive *prometheus.GaugeVec
	serviceHealthStatus     *prometheus.GaugeVec

	applicationInfo *prometheus.GaugeVec
}

func New(version, environment string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de requisições HTTP",
		}, []string{"method", "endpoint", "status_code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duração das requisições HTTP em segundos",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "endpoint"}),
		httpErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total de erros HTTP",
		}, []string{"method", "endpoint", "status_code"}),
		lokiLogsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loki_logs_sent_total",
			Help: "Total de logs enviados para o Loki",
		}),
		lokiLogsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loki_logs_failed_total",
			Help: "Total de falhas ao enviar logs para o Loki",
		}),
		lokiLogsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loki_logs_dropped_total",
			Help: "Total de logs descartados sem envio",
		}),
		dbConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Número de conexões ativas com o banco de dados",
		}),
		dbQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total de queries executadas no banco de dados",
		}, []string{"operation", "table"}),
		serviceDependencyActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "service_dependency_active",
			Help: "Indica se uma dependência está ativa",
		}, []string{"source_service", "target_service", "dependency_type"}),
		serviceHealthStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "service_health_status",
			Help: "Status de saúde do serviço (1=healthy, 0=unhealthy)",
		}, []string{"service_name", "check_type"}),
		applicationInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Informações da aplicação",
		}, []string{"version", "environment"}),
	}

	start := time.Now()
	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "application_uptime_seconds",
		Help: "Tempo de atividade da aplicação em segundos",
	}, func() float64 {
		return time.Since(start).Seconds()
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpErrorsTotal,
		m.lokiLogsSent,
		m.lokiLogsFailed,
		m.lokiLogsDropped,
		m.dbConnectionsActive,
		m.dbQueriesTotal,
		m.serviceDependencyActive,
		m.serviceHealthStatus,
		m.applicationInfo,
		uptime,
	)

	m.applicationInfo.WithLabelValues(version, environment).Set(1)

	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if status >= 400 {
		m.httpErrorsTotal.WithLabelValues(method, endpoint, code).Inc()
	}
}

// ObserveQuery counts one executed database statement.
func (m *Metrics) ObserveQuery(operation, table string) {
	m.dbQueriesTotal.WithLabelValues(operation, table).Inc()
}

// SetDBConnectionsActive reports the current connection pool usage.
func (m *Metrics) SetDBConnectionsActive(n int) {
	m.dbConnectionsActive.Set(float64(n))
}

// SetServiceDependency marks a dependency edge of the service map as up or
// down.
func (m *Metrics) SetServiceDependency(source, target, dependencyType string, active bool) {
	m.serviceDependencyActive.WithLabelValues(source, target, dependencyType).Set(boolValue(active))
}

// SetServiceHealth records the outcome of a health check.
func (m *Metrics) SetServiceHealth(service, checkType string, healthy bool) {
	m.serviceHealthStatus.WithLabelValues(service, checkType).Set(boolValue(healthy))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ObserveSent implements logging.SendObserver.
func (m *Metrics) ObserveSent(n int) {
	m.lokiLogsSent.Add(float64(n))
}

// ObserveFailed implements logging.SendObserver.
func (m *Metrics) ObserveFailed(n int) {
	m.lokiLogsFailed.Add(float64(n))
}

// ObserveDropped implements logging.SendObserver.
func (m *Metrics) ObserveDropped(n int) {
	m.lokiLogsDropped.Add(float64(n))
}
