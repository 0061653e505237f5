package md

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// RandomSource emits Count synthetic bars with closes drawn uniformly from
// [Min, Max), rounded to cents, spaced Interval apart.
type RandomSource struct {
	Symbol   string
	Count    int
	Interval time.Duration
	Min      float64
	Max      float64
	Seed     int64
	Start    time.Time
}

func (s RandomSource) Run(ctx context.Context, handler BarHandler) error {
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	ts := s.Start
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	step := s.Interval
	if step <= 0 {
		step = time.Second
	}

	for i := 0; i < s.Count; i++ {
		if i > 0 {
			if err := sleep(ctx, s.Interval); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		handler(Bar{
			Symbol:    s.Symbol,
			Timestamp: ts.Unix(),
			Close:     s.draw(r),
		})
		ts = ts.Add(step)
	}
	return nil
}

// draw rounds to cents while staying inside [Min, Max). When no cent value
// fits near the draw the unrounded value is used.
func (s RandomSource) draw(r *rand.Rand) float64 {
	raw := s.Min + r.Float64()*(s.Max-s.Min)
	exact := decimal.NewFromFloat(raw)
	if price := exact.RoundFloor(2).InexactFloat64(); price >= s.Min {
		return price
	}
	if price := exact.RoundCeil(2).InexactFloat64(); price < s.Max {
		return price
	}
	return raw
}

// StaticSource replays a fixed list of prices.
type StaticSource struct {
	Symbol   string
	Prices   []float64
	Interval time.Duration
	Start    time.Time
}

func (s StaticSource) Run(ctx context.Context, handler BarHandler) error {
	ts := s.Start
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	for i, price := range s.Prices {
		if i > 0 {
			if err := sleep(ctx, s.Interval); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		handler(Bar{
			Symbol:    s.Symbol,
			Timestamp: ts.Add(time.Duration(i) * time.Second).Unix(),
			Close:     price,
		})
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
