package main

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBatchSize  = 256
	defaultBatchPause = 10 * time.Millisecond
)

// Pacer is an open-loop send throttle: after every batch of frames it
// pauses for a fixed interval, giving the NIC queue and the kernel a chance
// to drain. It never looks at loss. An optional token bucket caps the
// overall packet rate on top of that.
type Pacer struct {
	batch   uint64
	pause   time.Duration
	limiter *rate.Limiter
	sleep   func(time.Duration)
	sent    uint64
}

// NewPacer returns a pacer pausing for pause after every batch frames. A
// positive pps additionally limits the send rate to pps frames per second.
func NewPacer(batch int, pause time.Duration, pps int) *Pacer {
	if batch <= 0 {
		batch = defaultBatchSize
	}
	p := &Pacer{
		batch: uint64(batch),
		pause: pause,
		sleep: time.Sleep,
	}
	if pps > 0 {
		burst := pps + 10
		if burst < 20 {
			burst = 20
		}
		p.limiter = rate.NewLimiter(rate.Limit(pps), burst)
	}
	return p
}

// Wait blocks until the rate limiter admits the next frame.
func (p *Pacer) Wait() {
	if p.limiter != nil {
		_ = p.limiter.Wait(context.Background())
	}
}

// Sent records one frame and sleeps at batch boundaries.
func (p *Pacer) Sent() {
	p.sent++
	if p.pause > 0 && p.sent%p.batch == 0 {
		p.sleep(p.pause)
	}
}
