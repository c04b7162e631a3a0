package indicator

import "math"

// Bollinger calculates Bollinger Bands: middle is the SMA, upper/lower
// are stdDev population standard deviations away. All three slices have
// length len(prices)-period+1.
func Bollinger(prices []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	middle = SMA(prices, period)
	if len(middle) == 0 {
		return []float64{}, []float64{}, []float64{}
	}

	upper = make([]float64, len(middle))
	lower = make([]float64, len(middle))
	for i := range middle {
		var sq float64
		for j := i; j < i+period; j++ {
			d := prices[j] - middle[i]
			sq += d * d
		}
		sd := math.Sqrt(sq / float64(period))
		upper[i] = middle[i] + stdDev*sd
		lower[i] = middle[i] - stdDev*sd
	}
	return upper, middle, lower
}
