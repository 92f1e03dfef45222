package forecast

import "math"

// eps guards divisions and log arguments against zero.
const eps = 1e-9

// logReturns computes r_t = ln((p_t+eps)/(p_{t-1}+eps)).
// Returns a slice of length len(prices)-1, or nil if insufficient data.
func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out = append(out, math.Log(prices[i]+eps)-math.Log(prices[i-1]+eps))
	}
	return out
}

// meanStd returns the mean and population standard deviation of xs.
// Both are 0 for an empty input.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	n := float64(len(xs))
	mean := sum / n
	sum2 := 0.0
	for _, x := range xs {
		d := x - mean
		sum2 += d * d
	}
	return mean, math.Sqrt(sum2 / n)
}

// sigmoid squashes x through 1/(1+e^-x), clipping the input to a safe
// range so extreme feature values cannot overflow.
func sigmoid(x float64) float64 {
	if x > 500 {
		x = 500
	} else if x < -500 {
		x = -500
	}
	return 1.0 / (1.0 + math.Exp(-x))
}

func round2(x float64) float64 { return math.Round(x*1e2) / 1e2 }
func round4(x float64) float64 { return math.Round(x*1e4) / 1e4 }
func round6(x float64) float64 { return math.Round(x*1e6) / 1e6 }
