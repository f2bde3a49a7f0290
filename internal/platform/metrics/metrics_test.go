package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.Transition("leave", "approved")
	c.Transition("leave", "approved")
	c.Transition("onboarding", "assigned")

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
	assert.InDelta(t, 13.33, snap["avgDurationMs"], 0.01)
	assert.Equal(t, map[string]uint64{"leave:approved": 2, "onboarding:assigned": 1}, snap["transitions"])
}

func TestNilCollectorTransition(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() { c.Transition("leave", "approved") })
}
