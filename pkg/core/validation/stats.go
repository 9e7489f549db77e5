package validation

import "math"

type yearTotal struct {
	Year  int
	Total float64
}

// dataConsistency scores how stable the yearly series is: 1 minus the
// mean of absolute year-over-year relative variations, so offsetting
// swings still count as inconsistency. Pairs whose prior value is zero
// are skipped. Returns nil for fewer than two points or when no pair
// was usable.
func dataConsistency(yearly []yearTotal) *float64 {
	variations := yoyVariations(yearly)
	if variations == nil {
		return nil
	}
	c := 1 - meanAbs(variations)
	return &c
}

// avgGrowth is the mean year-over-year relative variation, with the
// same nil rules as dataConsistency.
func avgGrowth(yearly []yearTotal) *float64 {
	variations := yoyVariations(yearly)
	if variations == nil {
		return nil
	}
	g := mean(variations)
	return &g
}

func yoyVariations(yearly []yearTotal) []float64 {
	if len(yearly) < 2 {
		return nil
	}
	var variations []float64
	for i := 1; i < len(yearly); i++ {
		prev := yearly[i-1].Total
		if prev == 0 {
			continue
		}
		variations = append(variations, (yearly[i].Total-prev)/prev)
	}
	return variations
}

func meanAbs(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += math.Abs(v)
	}
	return sum / float64(len(vals))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// popStdDev is the population standard deviation (divisor n, not n-1),
// matching the convention used across the analytics packages.
func popStdDev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)))
}
