// Package sensor is the accelerometer capture boundary. A Source pushes
// samples to a callback between Start and Stop; Capture brackets one window.
// An empty window is degraded data, not an error; downstream computation
// substitutes its documented base values.
package sensor

import (
	"sync"
	"time"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/signal"
)

// Source delivers accelerometer samples as a push callback at a configurable
// interval.
type Source interface {
	// Start begins delivery. The callback may be invoked from another
	// goroutine until Stop returns.
	Start(interval time.Duration, fn func(signal.Sample)) error

	// Stop ends delivery. It is safe to call once after a successful Start.
	Stop() error
}

// Capture collects one window of samples from src. Once started, the window
// always runs to completion: there is no external cancellation, matching the
// capture semantics of the device sensors themselves.
func Capture(src Source, interval, window time.Duration) ([]signal.Sample, error) {
	var (
		mu      sync.Mutex
		samples []signal.Sample
	)

	err := src.Start(interval, func(s signal.Sample) {
		mu.Lock()
		samples = append(samples, s)
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	<-time.After(window)
	_ = src.Stop()

	mu.Lock()
	defer mu.Unlock()
	return samples, nil
}
