package seasonal

import "math"

// seasonalComponent extracts the additive seasonal component of a
// series: detrend with a centered moving average, average the
// detrended values per position in the cycle, and de-mean the
// averages so they sum to zero. Needs at least two full periods;
// returns nil otherwise.
func seasonalComponent(series []float64, period int) []float64 {
	n := len(series)
	if period < 2 || n < 2*period {
		return nil
	}

	trend := centeredMovingAverage(series, period)

	sums := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(trend[i]) {
			continue
		}
		idx := i % period
		sums[idx] += series[i] - trend[i]
		counts[idx]++
	}

	averages := make([]float64, period)
	var total float64
	for i := 0; i < period; i++ {
		if counts[i] > 0 {
			averages[i] = sums[i] / float64(counts[i])
		}
		total += averages[i]
	}
	offset := total / float64(period)

	seasonal := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = averages[i%period] - offset
	}
	return seasonal
}

// centeredMovingAverage computes the 2xN moving average used for
// even periods: the endpoints of the window are half-weighted so the
// average stays centered on the sample. Positions without a full
// window are NaN.
func centeredMovingAverage(series []float64, period int) []float64 {
	n := len(series)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	half := period / 2
	if period%2 == 1 {
		for i := half; i < n-half; i++ {
			var sum float64
			for j := i - half; j <= i+half; j++ {
				sum += series[j]
			}
			out[i] = sum / float64(period)
		}
		return out
	}

	for i := half; i < n-half; i++ {
		sum := 0.5*series[i-half] + 0.5*series[i+half]
		for j := i - half + 1; j < i+half; j++ {
			sum += series[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}
