package strategy

// Momentum follows the direction of the last move: BUY on an uptick,
// SELL on a downtick or an unchanged price.
type Momentum struct{}

func NewMomentum() Momentum {
	return Momentum{}
}

func (Momentum) Name() string { return NameMomentum }

func (Momentum) GenerateSignal(prices []float64) Signal {
	if len(prices) < 2 {
		return Hold
	}
	if prices[len(prices)-1] > prices[len(prices)-2] {
		return Buy
	}
	return Sell
}
