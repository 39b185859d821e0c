package ydev

import "time"

// Clock is the monotonic millisecond counter the drivers poll against.
// The zero point is arbitrary; only differences are meaningful, and
// uint32 subtraction stays correct across the ~49 day wrap.
type Clock interface {
	NowMS() uint32
}

type systemClock struct {
	start time.Time
}

func (c *systemClock) NowMS() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// SystemClock counts milliseconds from process start using the runtime
// monotonic clock.
var SystemClock Clock = &systemClock{start: time.Now()}
