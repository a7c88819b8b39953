package sensor

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/signal"
)

// SyntheticSource generates a plausible accelerometer stream for demos and
// tests: a 1g resting baseline on Z with a low-frequency sway plus seeded
// noise on all axes. Amplitude controls how "shaky" the hand looks.
type SyntheticSource struct {
	amplitude float64
	rand      *rand.Rand

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

// NewSyntheticSource creates a deterministic source for the given seed.
func NewSyntheticSource(seed int64, amplitude float64) *SyntheticSource {
	return &SyntheticSource{
		amplitude: amplitude,
		rand:      rand.New(rand.NewSource(seed)),
	}
}

// Start begins emitting samples at the given interval.
func (s *SyntheticSource) Start(interval time.Duration, fn func(signal.Sample)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return fmt.Errorf("synthetic source already started")
	}
	if interval <= 0 {
		interval = 40 * time.Millisecond
	}

	s.ticker = time.NewTicker(interval)
	s.done = make(chan struct{})

	go func(ticker *time.Ticker, done chan struct{}) {
		start := time.Now()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				t := now.Sub(start).Seconds()
				fn(signal.Sample{
					X:         s.amplitude*math.Sin(2*math.Pi*1.5*t) + s.noise(),
					Y:         s.amplitude*math.Cos(2*math.Pi*1.1*t) + s.noise(),
					Z:         1.0 + s.noise(),
					Timestamp: now.UnixMilli(),
				})
			}
		}
	}(s.ticker, s.done)

	return nil
}

// Stop ends emission.
func (s *SyntheticSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return nil
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil
	return nil
}

func (s *SyntheticSource) noise() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rand.Float64() - 0.5) * s.amplitude * 0.2
}
