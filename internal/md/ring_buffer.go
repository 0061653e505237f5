package md

import "errors"

// RingBuffer keeps the most recent prices up to a fixed capacity. Adding to
// a full buffer overwrites the oldest value.
type RingBuffer struct {
	values []float64
	size   int
	index  int
	filled bool
}

// NewRingBuffer allocates a buffer of size slots. session.New only passes
// sizes of at least session.MinObservations; a size below 1 becomes 1 so Add
// never takes a modulo by zero.
func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{
		values: make([]float64, size),
		size:   size,
	}
}

func (r *RingBuffer) Add(value float64) {
	r.values[r.index] = value
	r.index = (r.index + 1) % r.size
	if r.index == 0 {
		r.filled = true
	}
}

func (r *RingBuffer) Len() int {
	if r.filled {
		return r.size
	}
	return r.index
}

func (r *RingBuffer) Cap() int {
	return r.size
}

// Values returns a copy of the buffered prices, oldest first.
func (r *RingBuffer) Values() []float64 {
	length := r.Len()
	result := make([]float64, 0, length)
	if length == 0 {
		return result
	}
	if r.filled {
		result = append(result, r.values[r.index:]...)
	}
	result = append(result, r.values[:r.index]...)
	return result
}

func (r *RingBuffer) SMA(window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if r.Len() < window {
		return 0, errors.New("not enough data for SMA")
	}
	sum := 0.0
	for i := 1; i <= window; i++ {
		sum += r.values[(r.index-i+r.size)%r.size]
	}
	return sum / float64(window), nil
}
