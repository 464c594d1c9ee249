// Package metrics holds the Prometheus collectors of the group chat service.
// All collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "groupchat"

// Invite transitions recorded by InviteTransitionsTotal.
const (
	TransitionCreated   = "created"
	TransitionAccepted  = "accepted"
	TransitionRejected  = "rejected"
	TransitionCancelled = "cancelled"
)

// InviteTransitionsTotal counts invite state changes.
// Label:
//   - transition: created, accepted, rejected or cancelled
var InviteTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invite_transitions_total",
		Help:      "Total number of invite request transitions, by transition.",
	},
	[]string{"transition"},
)

var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages stored.",
	},
)

// HTTPRequestDuration is observed by the gin metrics middleware.
// route is the matched route template, not the raw path.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

func InviteTransition(transition string) {
	InviteTransitionsTotal.WithLabelValues(transition).Inc()
}

func MessageSent() {
	MessagesSentTotal.Inc()
}
