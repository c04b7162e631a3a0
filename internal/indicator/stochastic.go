package indicator

// Stochastic calculates the stochastic oscillator. %K compares the close
// to the high/low range of the lookback window; %D is the SMA(3) of %K.
// k has length len(closes)-period+1; d is shorter by 2.
func Stochastic(highs, lows, closes []float64, period int) (k, d []float64) {
	if period <= 0 || len(closes) < period || len(highs) != len(closes) || len(lows) != len(closes) {
		return []float64{}, []float64{}
	}

	k = make([]float64, 0, len(closes)-period+1)
	for i := period - 1; i < len(closes); i++ {
		hi, lo := highs[i], lows[i]
		for j := i - period + 1; j < i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		if hi == lo {
			k = append(k, 50)
			continue
		}
		k = append(k, (closes[i]-lo)/(hi-lo)*100)
	}

	d = SMA(k, 3)
	return k, d
}
