package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Metrics holds HTTP and reservation domain collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	reservationsCreated prometheus.Counter
	statusTransitions   *prometheus.CounterVec
	seatings            prometheus.Counter
	clears              prometheus.Counter
	ruleRejections      *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
}

// New registers collectors on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers collectors on registerer, reusing any that
// are already registered under the same name.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		httpRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurant_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "restaurant_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reservationsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "restaurant_reservations_created_total",
			Help: "Reservations created",
		}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurant_reservation_status_transitions_total",
			Help: "Reservation status changes by source and target status",
		}, []string{"from", "to"}),
		seatings: registerCounter(registerer, prometheus.CounterOpts{
			Name: "restaurant_table_seatings_total",
			Help: "Reservations seated at a table",
		}),
		clears: registerCounter(registerer, prometheus.CounterOpts{
			Name: "restaurant_table_clears_total",
			Help: "Tables cleared",
		}),
		ruleRejections: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurant_rule_rejections_total",
			Help: "Requests rejected by a validation or state rule, by code",
		}, []string{"code"}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurant_events_published_total",
			Help: "Reservation events handed to the broker, by result",
		}, []string{"result"}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ReservationCreated() {
	if m == nil {
		return
	}
	m.reservationsCreated.Inc()
}

func (m *Metrics) StatusChanged(from, to model.ReservationStatus) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) TableSeated() {
	if m == nil {
		return
	}
	m.seatings.Inc()
}

func (m *Metrics) TableCleared() {
	if m == nil {
		return
	}
	m.clears.Inc()
}

// RuleRejected counts a rejected request by the code of the rule it broke.
func (m *Metrics) RuleRejected(code model.Code) {
	if m == nil || code == "" {
		return
	}
	m.ruleRejections.WithLabelValues(string(code)).Inc()
}

// EventPublished counts a publish attempt; err == nil counts as "ok".
func (m *Metrics) EventPublished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
