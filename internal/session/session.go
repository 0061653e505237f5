// Package session pairs a rolling price window with a signal strategy.
package session

import (
	"errors"
	"fmt"
	"sync"

	"signalbot/internal/md"
	"signalbot/internal/strategy"
)

const (
	// MinObservations is the window length below which Evaluate always holds.
	MinObservations = 5
	DefaultCapacity = 20
)

var ErrInvalidConfiguration = errors.New("invalid session configuration")

// Session owns the price window for one strategy. Each call holds the lock
// for its own duration only.
type Session struct {
	mu       sync.Mutex
	strategy strategy.Strategy
	window   *md.RingBuffer
}

func New(s strategy.Strategy, capacity int) (*Session, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: strategy is required", ErrInvalidConfiguration)
	}
	if capacity < MinObservations {
		return nil, fmt.Errorf("%w: capacity %d is below %d", ErrInvalidConfiguration, capacity, MinObservations)
	}
	return &Session{
		strategy: s,
		window:   md.NewRingBuffer(capacity),
	}, nil
}

func (s *Session) Update(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.Add(price)
}

// Evaluate returns Hold until the window has MinObservations prices, then
// whatever the strategy decides for the current window.
func (s *Session) Evaluate() strategy.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window.Len() < MinObservations {
		return strategy.Hold
	}
	return s.strategy.GenerateSignal(s.window.Values())
}

// Result is what one Step observed, taken under a single lock.
type Result struct {
	Signal   strategy.Signal
	Window   []float64
	SMA      float64
	SMAReady bool
}

// Step pushes price and evaluates the window it produced, so the returned
// window is exactly the one the signal was computed from.
func (s *Session) Step(price float64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.Add(price)
	res := Result{Signal: strategy.Hold, Window: s.window.Values()}
	if len(res.Window) >= MinObservations {
		res.Signal = s.strategy.GenerateSignal(res.Window)
	}
	sma, err := s.window.SMA(MinObservations)
	res.SMA, res.SMAReady = sma, err == nil
	return res
}

func (s *Session) Snapshot() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Values()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Len()
}

func (s *Session) Cap() int {
	return s.window.Cap()
}

// SMA is the mean of the newest window prices; ok is false until enough
// prices have arrived.
func (s *Session) SMA(window int) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sma, err := s.window.SMA(window)
	return sma, err == nil
}

func (s *Session) Strategy() strategy.Strategy {
	return s.strategy
}
