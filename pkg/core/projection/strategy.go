package projection

import "context"

// Strategy is the common surface of the monthly projection engines.
// Keys in the returned map are "YYYY-MM" for the prediction year.
type Strategy interface {
	Name() string
	MonthlyProjection(ctx context.Context, enterpriseID int64, description string, growthRate float64, predictionYear int) (map[string]float64, error)
}

// DefaultGrowthRate applies when a caller passes no explicit rate.
const DefaultGrowthRate = 0.05
