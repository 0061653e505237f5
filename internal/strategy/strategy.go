package strategy

type Signal string

const (
	Hold Signal = "HOLD"
	Buy  Signal = "BUY"
	Sell Signal = "SELL"
)

// Strategy turns a window of prices (oldest first) into a Signal.
// Implementations hold no state, must not modify prices and return Hold
// when the window is too short for them.
type Strategy interface {
	Name() string
	GenerateSignal(prices []float64) Signal
}
