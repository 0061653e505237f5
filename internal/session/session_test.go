package session

import (
	"errors"
	"sync"
	"testing"

	"signalbot/internal/strategy"
)

type fixedStrategy struct {
	signal strategy.Signal
	calls  int
	seen   []float64
}

func (f *fixedStrategy) Name() string { return "fixed" }

func (f *fixedStrategy) GenerateSignal(prices []float64) strategy.Signal {
	f.calls++
	f.seen = prices
	return f.signal
}

func TestNewRejectsSmallCapacity(t *testing.T) {
	for _, capacity := range []int{-1, 0, 4} {
		if _, err := New(strategy.NewMomentum(), capacity); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("capacity %d: expected ErrInvalidConfiguration, got %v", capacity, err)
		}
	}
	if _, err := New(strategy.NewMomentum(), MinObservations); err != nil {
		t.Fatalf("expected capacity %d to be accepted, got %v", MinObservations, err)
	}
}

func TestNewRejectsNilStrategy(t *testing.T) {
	if _, err := New(nil, DefaultCapacity); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestEvaluateHoldsBelowMinimum(t *testing.T) {
	fixed := &fixedStrategy{signal: strategy.Buy}
	sess, err := New(fixed, DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sess.Evaluate(); got != strategy.Hold {
		t.Fatalf("expected HOLD on empty window, got %s", got)
	}
	for i := 0; i < MinObservations-1; i++ {
		sess.Update(float64(100 + i))
		if got := sess.Evaluate(); got != strategy.Hold {
			t.Fatalf("expected HOLD with %d prices, got %s", sess.Len(), got)
		}
	}
	if fixed.calls != 0 {
		t.Fatalf("expected strategy not to be consulted, got %d calls", fixed.calls)
	}

	sess.Update(104)
	if got := sess.Evaluate(); got != strategy.Buy {
		t.Fatalf("expected BUY once active, got %s", got)
	}
	if len(fixed.seen) != MinObservations {
		t.Fatalf("expected strategy to see %d prices, got %v", MinObservations, fixed.seen)
	}
}

func TestMomentumSessionBuysAtFiveRisingPrices(t *testing.T) {
	sess, err := New(strategy.NewMomentum(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range []float64{100, 101, 102, 103, 104} {
		sess.Update(p)
	}
	if got := sess.Evaluate(); got != strategy.Buy {
		t.Fatalf("expected BUY, got %s", got)
	}
}

func TestMeanReversionSessionHeldThenSells(t *testing.T) {
	sess, err := New(strategy.NewMeanReversion(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range []float64{100, 101, 102, 103} {
		sess.Update(p)
	}
	if got := sess.Evaluate(); got != strategy.Hold {
		t.Fatalf("expected HOLD, got %s", got)
	}
	sess.Update(105)
	if got := sess.Evaluate(); got != strategy.Sell {
		t.Fatalf("expected SELL, got %s", got)
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	sess, err := New(strategy.NewMomentum(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i <= 21; i++ {
		sess.Update(float64(i))
	}
	if sess.Len() != 20 {
		t.Fatalf("expected len 20, got %d", sess.Len())
	}
	snapshot := sess.Snapshot()
	for i, v := range snapshot {
		if v != float64(i+2) {
			t.Fatalf("expected window 2..21, got %v", snapshot)
		}
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	sess, err := New(strategy.NewMomentum(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sess.Update(1)
	snapshot := sess.Snapshot()
	snapshot[0] = 42
	if sess.Snapshot()[0] != 1 {
		t.Fatalf("expected snapshot to be a copy")
	}
}

func TestSMAReportsReadiness(t *testing.T) {
	sess, err := New(strategy.NewMomentum(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sess.SMA(MinObservations); ok {
		t.Fatalf("expected SMA to be unavailable")
	}
	for _, p := range []float64{100, 101, 102, 103, 104} {
		sess.Update(p)
	}
	sma, ok := sess.SMA(MinObservations)
	if !ok || sma != 102 {
		t.Fatalf("expected SMA 102, got %v ok=%v", sma, ok)
	}
}

func TestStepMatchesUpdateThenEvaluate(t *testing.T) {
	stepped, err := New(strategy.NewMeanReversion(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	manual, err := New(strategy.NewMeanReversion(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range []float64{105, 104, 103, 102, 100, 101} {
		res := stepped.Step(p)
		manual.Update(p)
		if want := manual.Evaluate(); res.Signal != want {
			t.Fatalf("step %d: expected %s, got %s", i, want, res.Signal)
		}
		if len(res.Window) != manual.Len() || res.Window[len(res.Window)-1] != p {
			t.Fatalf("step %d: unexpected window %v", i, res.Window)
		}
		sma, ok := manual.SMA(MinObservations)
		if res.SMAReady != ok || res.SMA != sma {
			t.Fatalf("step %d: expected sma %v ok=%v, got %v ok=%v", i, sma, ok, res.SMA, res.SMAReady)
		}
	}
}

func TestStepWindowMatchesSignalUnderSharing(t *testing.T) {
	sess, err := New(strategy.NewMomentum(), DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := strategy.NewMomentum()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				price := float64(w*1000 + i)
				res := sess.Step(price)
				if res.Window[len(res.Window)-1] != price {
					t.Errorf("expected window to end with %v, got %v", price, res.Window)
					return
				}
				want := strategy.Hold
				if len(res.Window) >= MinObservations {
					want = rule.GenerateSignal(res.Window)
				}
				if res.Signal != want {
					t.Errorf("signal %s does not match window %v", res.Signal, res.Window)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	if sess.Len() != DefaultCapacity {
		t.Fatalf("expected len %d, got %d", DefaultCapacity, sess.Len())
	}
}
