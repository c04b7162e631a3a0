package indicator

import "testing"

func TestRSI_AllGains(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	rsi := RSI(prices, 5)

	if len(rsi) != 3 {
		t.Fatalf("expected 3 values, got %d", len(rsi))
	}
	for i, v := range rsi {
		if v != 100 {
			t.Errorf("rsi[%d] = %f, want 100 for monotone gains", i, v)
		}
	}
}

func TestRSI_Balanced(t *testing.T) {
	// Alternating equal gains and losses keep RSI near 50.
	prices := []float64{100, 101, 100, 101, 100, 101, 100, 101, 100}
	rsi := RSI(prices, 4)

	if len(rsi) == 0 {
		t.Fatal("expected values")
	}
	last := rsi[len(rsi)-1]
	if !almostEqual(last, 50, 10) {
		t.Errorf("expected RSI near 50, got %f", last)
	}
}

func TestRSI_NotEnoughData(t *testing.T) {
	if rsi := RSI([]float64{1, 2, 3}, 14); len(rsi) != 0 {
		t.Errorf("expected empty slice, got %d values", len(rsi))
	}
}

func TestMACD_TrendSign(t *testing.T) {
	// Steadily rising prices: fast EMA above slow EMA, MACD line positive.
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	line, signal := MACD(prices, 12, 26, 9)
	if len(line) == 0 || len(signal) == 0 {
		t.Fatal("expected MACD values")
	}
	if line[len(line)-1] <= 0 {
		t.Errorf("MACD line should be positive in an uptrend, got %f", line[len(line)-1])
	}
}

func TestMACD_NotEnoughData(t *testing.T) {
	line, signal := MACD([]float64{1, 2, 3}, 12, 26, 9)
	if len(line) != 0 || len(signal) != 0 {
		t.Error("expected empty series")
	}
}

func TestBollinger_FlatPrices(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 50
	}

	upper, middle, lower := Bollinger(prices, 20, 2)
	if len(middle) != 11 {
		t.Fatalf("expected 11 values, got %d", len(middle))
	}
	// Zero variance collapses the bands onto the middle.
	if upper[0] != 50 || middle[0] != 50 || lower[0] != 50 {
		t.Errorf("flat prices should collapse bands, got %f/%f/%f", upper[0], middle[0], lower[0])
	}
}

func TestBollinger_Ordering(t *testing.T) {
	prices := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19, 18, 20, 19, 21, 20, 22}
	upper, middle, lower := Bollinger(prices, 20, 2)

	for i := range middle {
		if !(lower[i] < middle[i] && middle[i] < upper[i]) {
			t.Errorf("band ordering violated at %d: %f %f %f", i, lower[i], middle[i], upper[i])
		}
	}
}

func TestStochastic_Range(t *testing.T) {
	highs := []float64{12, 13, 14, 15, 16, 17, 18}
	lows := []float64{10, 11, 12, 13, 14, 15, 16}
	closes := []float64{11, 12, 13, 14, 15, 16, 17.9}

	k, d := Stochastic(highs, lows, closes, 5)
	if len(k) != 3 {
		t.Fatalf("expected 3 %%K values, got %d", len(k))
	}
	if len(d) != 1 {
		t.Fatalf("expected 1 %%D value, got %d", len(d))
	}
	for i, v := range k {
		if v < 0 || v > 100 {
			t.Errorf("k[%d] = %f outside [0,100]", i, v)
		}
	}
	// Close near the top of the range pushes %K toward 100.
	if k[len(k)-1] < 90 {
		t.Errorf("expected %%K near 100, got %f", k[len(k)-1])
	}
}

func TestStochastic_FlatRange(t *testing.T) {
	flat := []float64{10, 10, 10, 10, 10}
	k, _ := Stochastic(flat, flat, flat, 5)
	if len(k) != 1 || k[0] != 50 {
		t.Errorf("flat range should yield neutral 50, got %v", k)
	}
}
