package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInviteTransition(t *testing.T) {
	before := testutil.ToFloat64(InviteTransitionsTotal.WithLabelValues(TransitionAccepted))
	InviteTransition(TransitionAccepted)
	after := testutil.ToFloat64(InviteTransitionsTotal.WithLabelValues(TransitionAccepted))
	assert.Equal(t, before+1, after)
}

func TestMessageSent(t *testing.T) {
	before := testutil.ToFloat64(MessagesSentTotal)
	MessageSent()
	MessageSent()
	assert.Equal(t, before+2, testutil.ToFloat64(MessagesSentTotal))
}

func TestHTTPRequestDuration(t *testing.T) {
	HTTPRequestDuration.WithLabelValues("GET", "/groups/:id", "200").Observe(0.01)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration), 1)
}
