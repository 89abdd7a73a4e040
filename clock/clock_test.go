package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/optitraffic/clock"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

func TestClock(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 10, Total: 5, Interval: 0.5})
	assert.Equal(t, int32(10), c.InternalStep)
	assert.Equal(t, 5., c.T)
	assert.False(t, c.Done())

	for i := 0; i < 5; i++ {
		assert.False(t, c.Done())
		c.Next()
	}
	assert.Equal(t, int32(15), c.InternalStep)
	assert.Equal(t, 7.5, c.T)
	assert.True(t, c.Done())

	c.Init()
	assert.Equal(t, int32(10), c.InternalStep)
	assert.False(t, c.Done())
}
