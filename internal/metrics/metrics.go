// Package metrics содержит счётчики Prometheus кухонного дисплея.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry объединяет метрики дисплея и их реестр.
type Registry struct {
	reg *prometheus.Registry

	PollTicks     prometheus.Counter
	PollFailures  prometheus.Counter
	StatusChanges *prometheus.CounterVec
	MarkAsRead    *prometheus.CounterVec
}

// NewRegistry создаёт реестр метрик дисплея.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	pollTicks := prometheus.NewCounter(prometheus.CounterOpts{Name: "kds_poll_ticks_total"})
	pollFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "kds_poll_failures_total"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kds_status_changes_total"}, []string{"result"})
	markAsRead := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kds_mark_as_read_total"}, []string{"result"})

	r.MustRegister(pollTicks, pollFailures, statusChanges, markAsRead)
	return &Registry{
		reg:           r,
		PollTicks:     pollTicks,
		PollFailures:  pollFailures,
		StatusChanges: statusChanges,
		MarkAsRead:    markAsRead,
	}
}

// Handler возвращает HTTP-обработчик выдачи метрик.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
