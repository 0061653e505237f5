package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"signalbot/internal/md"
	"signalbot/internal/metrics"
	"signalbot/internal/session"
	"signalbot/internal/strategy"
)

// Engine feeds bars from a source into a session and records each signal.
type Engine struct {
	session   *session.Session
	decisions *DecisionLogger
	log       zerolog.Logger
	runID     string
	now       func() time.Time
}

// New wires the engine. decisions may be nil to skip the NDJSON log.
func New(sess *session.Session, decisions *DecisionLogger, logger zerolog.Logger) *Engine {
	e := &Engine{
		session:   sess,
		decisions: decisions,
		log:       logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if decisions != nil {
		e.runID = decisions.RunID()
	}
	return e
}

// OnBar pushes the bar's close and evaluates the session. Non-finite closes
// are dropped and reported as HOLD with ok=false.
func (e *Engine) OnBar(bar md.Bar) (signal strategy.Signal, ok bool) {
	barTime := time.Unix(bar.Timestamp, 0).UTC()
	if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) {
		metrics.RejectedPricesTotal.WithLabelValues(bar.Symbol).Inc()
		e.log.Warn().
			Str("symbol", bar.Symbol).
			Time("bar_time", barTime).
			Str("close", formatNonFinite(bar.Close)).
			Msg("dropping non-finite price")
		return strategy.Hold, false
	}

	res := e.session.Step(bar.Close)
	signal, window := res.Signal, res.Window
	name := e.session.Strategy().Name()

	metrics.PricesTotal.WithLabelValues(bar.Symbol).Inc()
	metrics.WindowLength.WithLabelValues(bar.Symbol).Set(float64(len(window)))
	metrics.SignalsTotal.WithLabelValues(name, string(signal)).Inc()

	decision := Decision{
		RunID:     e.runID,
		Timestamp: e.now(),
		BarTime:   barTime,
		Symbol:    bar.Symbol,
		Close:     bar.Close,
		Strategy:  name,
		Signal:    signal,
		WindowLen: len(window),
		Window:    window,
	}
	event := e.log.Info().
		Str("symbol", bar.Symbol).
		Time("bar_time", barTime).
		Float64("close", bar.Close).
		Floats64("window", window)
	if res.SMAReady {
		sma := res.SMA
		decision.SMA = &sma
		event = event.Float64("sma", sma)
	}
	event.Str("strategy", name).Str("signal", string(signal)).Msg("evaluated")

	if e.decisions != nil {
		if err := e.decisions.Append(decision); err != nil {
			e.log.Error().Err(err).Msg("failed to write decision")
		}
	}
	return signal, true
}

func formatNonFinite(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	default:
		return "-Inf"
	}
}
