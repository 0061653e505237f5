package strategy

const meanReversionLookback = 5

// MeanReversion buys when the latest price sits below the mean of the last
// five prices and sells otherwise. A price equal to the mean is a SELL.
type MeanReversion struct{}

func NewMeanReversion() MeanReversion {
	return MeanReversion{}
}

func (MeanReversion) Name() string { return NameMeanReversion }

func (MeanReversion) GenerateSignal(prices []float64) Signal {
	if len(prices) < meanReversionLookback {
		return Hold
	}
	recent := prices[len(prices)-meanReversionLookback:]
	current := recent[len(recent)-1]
	if current < mean(recent) {
		return Buy
	}
	return Sell
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
