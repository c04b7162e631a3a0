package indicator

// MACD calculates the MACD line (fast EMA minus slow EMA) and its signal
// line (EMA of the MACD line). The line has length len(prices)-slow+1;
// the signal has length len(line)-signalPeriod+1. Both empty when there
// is not enough data for a single signal value.
func MACD(prices []float64, fast, slow, signalPeriod int) (line, signal []float64) {
	if fast <= 0 || slow <= fast || signalPeriod <= 0 {
		return []float64{}, []float64{}
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	if len(slowEMA) == 0 {
		return []float64{}, []float64{}
	}

	// The fast series starts earlier; align tails.
	offset := len(fastEMA) - len(slowEMA)
	line = make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signal = EMA(line, signalPeriod)
	if len(signal) == 0 {
		return []float64{}, []float64{}
	}
	return line, signal
}
