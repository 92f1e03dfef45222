package features

import (
    "math"

    "FinCast/internal/domain/models"
)

// ClosePrices extracts the close column from a daily candle series.
func ClosePrices(candles []models.Candle) []float64 {
    if len(candles) == 0 {
        return nil
    }
    out := make([]float64, 0, len(candles))
    for _, c := range candles {
        out = append(out, c.Close)
    }
    return out
}

// LogReturns computes log returns r_t = ln(C_t / C_{t-1}) over a price series.
// It returns a slice of length len(prices)-1, or nil if insufficient data.
func LogReturns(prices []float64) []float64 {
    if len(prices) < 2 {
        return nil
    }
    out := make([]float64, 0, len(prices)-1)
    for i := 1; i < len(prices); i++ {
        prev := prices[i-1]
        cur := prices[i]
        if prev <= 0 || cur <= 0 {
            out = append(out, 0)
            continue
        }
        out = append(out, math.Log(cur/prev))
    }
    return out
}

// RealizedVolatility computes annualized realized volatility over the latest
// rolling window of log returns, using 252 trading days per year.
func RealizedVolatility(logReturns []float64, window int) float64 {
    if window <= 1 || len(logReturns) < window {
        return 0
    }
    sum := 0.0
    sum2 := 0.0
    for i := len(logReturns) - window; i < len(logReturns); i++ {
        r := logReturns[i]
        sum += r
        sum2 += r * r
    }
    n := float64(window)
    mean := sum / n
    variance := (sum2 - n*mean*mean) / (n - 1)
    if variance < 0 {
        variance = 0
    }
    return math.Sqrt(variance * 252)
}

// RSI computes the Wilder relative strength index over the given period.
// It needs at least period+1 prices; otherwise it returns the neutral value 50.
func RSI(prices []float64, period int) float64 {
    if period <= 0 || len(prices) < period+1 {
        return 50
    }
    gain := 0.0
    loss := 0.0
    for i := 1; i <= period; i++ {
        d := prices[i] - prices[i-1]
        if d > 0 {
            gain += d
        } else {
            loss -= d
        }
    }
    avgGain := gain / float64(period)
    avgLoss := loss / float64(period)
    for i := period + 1; i < len(prices); i++ {
        d := prices[i] - prices[i-1]
        g, l := 0.0, 0.0
        if d > 0 {
            g = d
        } else {
            l = -d
        }
        avgGain = (avgGain*float64(period-1) + g) / float64(period)
        avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
    }
    if avgLoss == 0 {
        return 100
    }
    rs := avgGain / avgLoss
    return 100 - 100/(1+rs)
}
