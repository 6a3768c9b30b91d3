package manager

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(
		eventsTotal,
		resyncsTotal,
		serverOpsTotal,
		sourceResetsTotal,
		sessionErrorsTotal,
		portsAllocatedTotal,
	)
}

var (
	// eventsTotal counts classified service events by kind
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbsync_events_total",
			Help: "Total number of classified service events by kind",
		},
		[]string{"kind"},
	)
	// resyncsTotal counts full resyncs by what triggered them
	resyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbsync_resyncs_total",
			Help: "Total number of full resyncs by reason",
		},
		[]string{"reason"},
	)
	// serverOpsTotal counts create and delete calls against the load balancer
	serverOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbsync_server_operations_total",
			Help: "Total number of server entry operations by op",
		},
		[]string{"op"},
	)
	sourceResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lbsync_source_resets_total",
			Help: "Total number of event stream resets",
		},
	)
	sessionErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lbsync_session_errors_total",
			Help: "Total number of sessions ended by an error",
		},
	)
	portsAllocatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lbsync_ports_allocated_total",
			Help: "Total number of frontend ports allocated for wildcard binds",
		},
	)
)
