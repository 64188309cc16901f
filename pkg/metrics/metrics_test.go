package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFrameHandled(t *testing.T) {
	before := testutil.ToFloat64(framesHandled.WithLabelValues("number"))
	FrameHandled("number")
	FrameHandled("number")
	assert.Equal(t, before+2, testutil.ToFloat64(framesHandled.WithLabelValues("number")))
}

func TestConnections(t *testing.T) {
	ConnectionOpened("test")
	ConnectionOpened("test")
	ConnectionClosed("test")
	assert.Equal(t, float64(2), testutil.ToFloat64(connectionsAccepted.WithLabelValues("test")))
	assert.Equal(t, float64(1), testutil.ToFloat64(connectionsActive.WithLabelValues("test")))
}

func TestSetClients(t *testing.T) {
	SetClients(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(clients))
}
