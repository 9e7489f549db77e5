package projection

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/core/validation"
)

// =============================================================================
// TREND-BASED PROJECTION
// =============================================================================

// TrendResult is the per-description projection for the year after the
// current one, next to the historical years it was derived from.
type TrendResult struct {
	EnterpriseID   int64                            `json:"enterprise_id"`
	EnterpriseName string                           `json:"enterprise_name"`
	PredictionYear int                              `json:"prediction_year"`
	GrowthRate     float64                          `json:"growth_rate"`
	Results        map[string]DescriptionPrediction `json:"results"`
	DataValidity   validation.Validations           `json:"data_validity"`
}

// DescriptionPrediction holds monthly values per revenue description.
// Predicted carries integer incomes for the prediction year; Current
// and Prior are the two most recent historical years (Prior nil when
// only one year exists).
type DescriptionPrediction struct {
	Predicted map[int]int     `json:"predicted"`
	Current   map[int]float64 `json:"current"`
	Prior     map[int]float64 `json:"prior,omitempty"`
}

// TrendProjector extends the latest observed yearly distribution by a
// growth rate. A year that is entirely zero is skipped in favor of the
// one before it.
type TrendProjector struct {
	Gateway   gateway.DataGateway
	Validator *validation.Engine
	Clock     func() time.Time
}

func NewTrendProjector(gw gateway.DataGateway) *TrendProjector {
	return &TrendProjector{
		Gateway:   gw,
		Validator: validation.NewEngine(gw),
		Clock:     time.Now,
	}
}

var _ Strategy = (*TrendProjector)(nil)

func (p *TrendProjector) Name() string { return "trend" }

func (p *TrendProjector) Project(ctx context.Context, enterpriseID int64, description string, growthRate float64) (*TrendResult, error) {
	const op = "projection.Trend"

	enterprise, err := p.Gateway.GetEnterprise(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}

	p.Validator.Clock = p.Clock
	report, err := p.Validator.Validate(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	if !report.Validations.Revenue {
		return nil, apperr.InsufficientData(op, "insufficient revenue data for analysis")
	}

	predictionYear := p.Clock().Year() + 1

	revenues, err := p.Gateway.QueryRevenue(ctx, enterpriseID, gateway.RevenueFilter{Description: description})
	if err != nil {
		return nil, err
	}
	if len(revenues) == 0 {
		return nil, apperr.InsufficientData(op, "no revenue data found for enterprise %d and description %q", enterpriseID, description)
	}

	// description -> year -> month -> summed income, for historical
	// years only.
	byDescription := map[string]map[int]map[int]float64{}
	for _, r := range revenues {
		if r.Year >= predictionYear {
			continue
		}
		years, ok := byDescription[r.Description]
		if !ok {
			years = map[int]map[int]float64{}
			byDescription[r.Description] = years
		}
		months, ok := years[r.Year]
		if !ok {
			months = map[int]float64{}
			years[r.Year] = months
		}
		months[r.Month] += r.RealIncome
	}
	if len(byDescription) == 0 {
		return nil, apperr.InsufficientData(op, "no historical data available for prediction")
	}

	results := map[string]DescriptionPrediction{}
	for desc, years := range byDescription {
		results[desc] = projectDescription(years, growthRate)
	}

	log.Debug().
		Int64("enterprise_id", enterpriseID).
		Int("prediction_year", predictionYear).
		Int("descriptions", len(results)).
		Msg("trend projection complete")

	return &TrendResult{
		EnterpriseID:   enterpriseID,
		EnterpriseName: enterprise.Name,
		PredictionYear: predictionYear,
		GrowthRate:     growthRate,
		Results:        results,
		DataValidity:   report.Validations,
	}, nil
}

// MonthlyProjection implements Strategy using the projection for the
// requested description.
func (p *TrendProjector) MonthlyProjection(ctx context.Context, enterpriseID int64, description string, growthRate float64, predictionYear int) (map[string]float64, error) {
	result, err := p.Project(ctx, enterpriseID, description, growthRate)
	if err != nil {
		return nil, err
	}
	monthly := map[string]float64{}
	prediction, ok := result.Results[description]
	if !ok {
		return monthly, nil
	}
	for month, value := range prediction.Predicted {
		monthly[fmt.Sprintf("%d-%02d", result.PredictionYear, month)] = float64(value)
	}
	return monthly, nil
}

func projectDescription(years map[int]map[int]float64, growthRate float64) DescriptionPrediction {
	sorted := make([]int, 0, len(years))
	for y := range years {
		sorted = append(sorted, y)
	}
	sort.Ints(sorted)

	current := years[sorted[len(sorted)-1]]
	var prior map[int]float64
	if len(sorted) > 1 {
		prior = years[sorted[len(sorted)-2]]
	}

	base := current
	if prior != nil && allZero(current) {
		base = prior
	}

	predicted := map[int]int{}
	for month, value := range base {
		predicted[month] = int(math.RoundToEven(value * (1 + growthRate)))
	}

	return DescriptionPrediction{
		Predicted: predicted,
		Current:   current,
		Prior:     prior,
	}
}

func allZero(months map[int]float64) bool {
	for _, v := range months {
		if v != 0 {
			return false
		}
	}
	return true
}
