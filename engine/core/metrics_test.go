package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRollingAverage(t *testing.T) {
	var r RollingAverage
	assert.Zero(t, r.Average())

	r.Add(2)
	r.Add(4)
	assert.InDelta(t, 3.0, r.Average(), 1e-9)

	// Once the window is full the oldest samples fall out.
	for i := 0; i < int(AVG_COUNT); i++ {
		r.Add(10)
	}
	assert.InDelta(t, 10.0, r.Average(), 1e-9)
	assert.Equal(t, int64(AVG_COUNT)+2, r.Count())
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	time.Sleep(time.Millisecond)
	c.Stop()
	elapsed := c.Elapsed()
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)

	c.Update()
	assert.Equal(t, elapsed, c.Elapsed())
}

func TestObjectNames(t *testing.T) {
	a := NewObjectName("buffer")
	b := NewObjectName("buffer")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^buffer-[0-9a-f-]{36}$`, a)
	assert.Equal(t, "mine", ObjectNameOrDefault("mine", "buffer"))
}
