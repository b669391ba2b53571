package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/lawdesk/internal/application/dispatcher"
	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/event"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

const (
	namespace   = "lawdesk"
	handlerName = "metrics"
)

// Metrics exposes workflow counters on a private registry
type Metrics struct {
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	tasksCreated prometheus.Counter
	approvals    *prometheus.CounterVec
	stageMoves   *prometheus.CounterVec
	rejected     *prometheus.CounterVec
}

// New creates the collectors and registers them together with the Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Committed workflow events by type.",
		}, []string{"type"}),
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_created_total",
			Help:      "Tasks opened.",
		}),
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approvals_total",
			Help:      "Approval signatures recorded by tier.",
		}, []string{"tier"}),
		stageMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_moves_total",
			Help:      "Stage transitions by resulting task status.",
		}, []string{"status"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_rejected_total",
			Help:      "Workflow operations refused, by operation and error code.",
		}, []string{"operation", "code"}),
	}

	m.registry.MustRegister(
		m.events,
		m.tasksCreated,
		m.approvals,
		m.stageMoves,
		m.rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Rejected implements port.OperationRecorder
func (m *Metrics) Rejected(operation string, code apperror.Code) {
	m.rejected.WithLabelValues(operation, string(code)).Inc()
}

// Register subscribes the collectors to every workflow event
func (m *Metrics) Register(d dispatcher.Dispatcher) {
	d.SubscribeAll(handlerName, m.HandleEvent)
}

// HandleEvent counts a committed workflow event
func (m *Metrics) HandleEvent(_ context.Context, evt *event.Event) error {
	m.events.WithLabelValues(evt.Type.String()).Inc()

	switch evt.Type {
	case event.TypeTaskCreated:
		m.tasksCreated.Inc()
	case event.TypeTaskApprovedByAdmin:
		m.approvals.WithLabelValues("admin").Inc()
	case event.TypeTaskApprovedByMainLawyer:
		m.approvals.WithLabelValues("main_lawyer").Inc()
	case event.TypeTaskApprovedByAssignedLawyer:
		m.approvals.WithLabelValues("assigned_lawyer").Inc()
	case event.TypeTaskStageChanged:
		m.stageMoves.WithLabelValues(evt.GetPayloadString(event.KeyStatus)).Inc()
	}
	return nil
}

// Verify interface compliance
var _ port.OperationRecorder = (*Metrics)(nil)
