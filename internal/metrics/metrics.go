package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MonitorCollector - метрики наблюдения за рабочими зонами
type MonitorCollector struct {
	gatherer prometheus.Gatherer

	EvaluationsTotal *prometheus.CounterVec
	AlertsTotal      prometheus.Counter
	ActiveSessions   prometheus.Gauge
}

// NewMonitorCollector регистрирует метрики в переданном registerer,
// уже зарегистрированные коллекторы переиспользуются
func NewMonitorCollector(reg prometheus.Registerer) (*MonitorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workzone_evaluations_total",
		Help: "Number of monitor evaluations by resulting zone membership.",
	}, []string{"result"})
	if err := reg.Register(evaluations); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector workzone_evaluations_total already registered with incompatible type")
		}
		evaluations = existing
	}

	alerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workzone_alerts_total",
		Help: "Number of dwell-threshold alerts raised.",
	})
	alerts, err := registerCounter(reg, alerts, "workzone_alerts_total")
	if err != nil {
		return nil, err
	}

	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workzone_active_sessions",
		Help: "Number of (agent, zone) monitoring sessions currently enabled.",
	})
	sessions, err = registerGauge(reg, sessions, "workzone_active_sessions")
	if err != nil {
		return nil, err
	}

	return &MonitorCollector{
		gatherer:         gatherer,
		EvaluationsTotal: evaluations,
		AlertsTotal:      alerts,
		ActiveSessions:   sessions,
	}, nil
}

// Handler отдаёт метрики в формате Prometheus
func (c *MonitorCollector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveEvaluation учитывает одну оценку, отсутствие фиксации считается отдельно
func (c *MonitorCollector) ObserveEvaluation(hasFix, outside bool) {
	if c == nil || c.EvaluationsTotal == nil {
		return
	}
	result := "inside"
	switch {
	case !hasFix:
		result = "no_fix"
	case outside:
		result = "outside"
	}
	c.EvaluationsTotal.WithLabelValues(result).Inc()
}

// IncAlerts увеличивает счётчик уведомлений
func (c *MonitorCollector) IncAlerts() {
	if c == nil || c.AlertsTotal == nil {
		return
	}
	c.AlertsTotal.Inc()
}

// SetActiveSessions выставляет число активных сессий наблюдения
func (c *MonitorCollector) SetActiveSessions(count int) {
	if c == nil || c.ActiveSessions == nil {
		return
	}
	c.ActiveSessions.Set(float64(count))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
