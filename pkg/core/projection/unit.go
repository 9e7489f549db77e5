package projection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/gateway"
)

// =============================================================================
// UNIT-ECONOMICS PROJECTION
// =============================================================================

// UnitMonth is one projected month: sold units, the unit price carried
// over from the base year, and the resulting income.
type UnitMonth struct {
	Month     int     `json:"month"`
	Units     int64   `json:"predicted_units"`
	UnitPrice float64 `json:"unit_price"`
	Income    float64 `json:"predicted_income"`
}

// UnitYear is the projected months for one future year.
type UnitYear struct {
	Year         int         `json:"year"`
	Months       []UnitMonth `json:"months"`
	TotalUnits   int64       `json:"total_units"`
	TotalIncome  float64     `json:"total_income"`
	AvgUnitPrice float64     `json:"avg_unit_price"`
}

// UnitYearSummary is the yearly income roll-up, historical and
// projected, with the fractional change from the previous year (0.2
// means +20%). PctChange is nil for the first year and when the
// previous total is zero.
type UnitYearSummary struct {
	Year        int      `json:"year"`
	TotalIncome float64  `json:"total_income"`
	Projected   bool     `json:"projected"`
	PctChange   *float64 `json:"pct_change,omitempty"`
}

// UnitResult is the full unit-economics projection output.
type UnitResult struct {
	EnterpriseID int64             `json:"enterprise_id"`
	Description  string            `json:"description"`
	GrowthRate   float64           `json:"growth_rate"`
	BaseYear     int               `json:"base_year"`
	Predictions  []UnitYear        `json:"predictions"`
	Summary      []UnitYearSummary `json:"summary"`
}

// UnitEconomicsProjector predicts future income from sold units and the
// observed unit price, compounding unit counts by the growth rate.
// Money math runs on decimals so repeated multiplication does not
// accumulate float error.
type UnitEconomicsProjector struct {
	Gateway gateway.DataGateway
	Clock   func() time.Time
	// PredictYears is how many years past the current one to project.
	PredictYears int
}

func NewUnitEconomicsProjector(gw gateway.DataGateway) *UnitEconomicsProjector {
	return &UnitEconomicsProjector{Gateway: gw, Clock: time.Now, PredictYears: 1}
}

var _ Strategy = (*UnitEconomicsProjector)(nil)

func (p *UnitEconomicsProjector) Name() string { return "unit_economics" }

type unitMonthKey struct {
	year  int
	month int
}

func (p *UnitEconomicsProjector) Project(ctx context.Context, enterpriseID int64, description string, growthRate float64) (*UnitResult, error) {
	const op = "projection.UnitEconomics"

	currentYear := p.Clock().Year()
	revenues, err := p.Gateway.QueryRevenue(ctx, enterpriseID, gateway.RevenueFilter{
		Description: description,
		MaxYear:     currentYear,
	})
	if err != nil {
		return nil, err
	}
	if len(revenues) == 0 {
		return nil, apperr.InsufficientData(op, "no revenue data found for enterprise %d and description %q", enterpriseID, description)
	}

	units := map[unitMonthKey]decimal.Decimal{}
	income := map[unitMonthKey]decimal.Decimal{}
	yearUnits := map[int]decimal.Decimal{}
	yearIncome := map[int]decimal.Decimal{}
	for _, r := range revenues {
		key := unitMonthKey{r.Year, r.Month}
		u := decimal.NewFromFloat(r.RealSoldUnits)
		inc := decimal.NewFromFloat(r.RealIncome)
		units[key] = units[key].Add(u)
		income[key] = income[key].Add(inc)
		yearUnits[r.Year] = yearUnits[r.Year].Add(u)
		yearIncome[r.Year] = yearIncome[r.Year].Add(inc)
	}

	// The base year is the most recent one with any sold units or
	// income on record. History that only tracks income still projects:
	// each month falls back to scaling its base income by the growth
	// factor.
	baseYear := 0
	for year := range yearIncome {
		if year <= baseYear {
			continue
		}
		if yearUnits[year].IsPositive() || yearIncome[year].IsPositive() {
			baseYear = year
		}
	}
	if baseYear == 0 {
		return nil, apperr.InsufficientData(op, "no unit or income history for enterprise %d", enterpriseID)
	}

	growth := decimal.NewFromFloat(1 + growthRate)
	predictYears := p.PredictYears
	if predictYears < 1 {
		predictYears = 1
	}

	predictions := make([]UnitYear, 0, predictYears)
	for offset := 1; offset <= predictYears; offset++ {
		year := currentYear + offset
		factor := growth.Pow(decimal.NewFromInt(int64(year - baseYear)))
		predictions = append(predictions, projectUnitYear(year, baseYear, factor, units, income))
	}

	summary := buildUnitSummary(yearIncome, predictions)

	log.Debug().
		Int64("enterprise_id", enterpriseID).
		Int("base_year", baseYear).
		Int("predict_years", predictYears).
		Msg("unit economics projection complete")

	return &UnitResult{
		EnterpriseID: enterpriseID,
		Description:  description,
		GrowthRate:   growthRate,
		BaseYear:     baseYear,
		Predictions:  predictions,
		Summary:      summary,
	}, nil
}

// MonthlyProjection implements Strategy with the income column of the
// first projected year.
func (p *UnitEconomicsProjector) MonthlyProjection(ctx context.Context, enterpriseID int64, description string, growthRate float64, predictionYear int) (map[string]float64, error) {
	result, err := p.Project(ctx, enterpriseID, description, growthRate)
	if err != nil {
		return nil, err
	}
	monthly := map[string]float64{}
	for _, year := range result.Predictions {
		if year.Year != predictionYear {
			continue
		}
		for _, m := range year.Months {
			monthly[fmt.Sprintf("%d-%02d", year.Year, m.Month)] = m.Income
		}
	}
	return monthly, nil
}

func projectUnitYear(year, baseYear int, factor decimal.Decimal, units, income map[unitMonthKey]decimal.Decimal) UnitYear {
	out := UnitYear{Year: year, Months: make([]UnitMonth, 0, 12)}
	totalUnits := int64(0)
	totalIncome := decimal.Zero
	priceSum := decimal.Zero
	priceCount := 0

	for month := 1; month <= 12; month++ {
		key := unitMonthKey{baseYear, month}
		baseUnits := units[key]
		baseIncome := income[key]

		price := decimal.Zero
		switch {
		case baseUnits.IsPositive():
			price = baseIncome.Div(baseUnits)
		case baseIncome.IsPositive():
			price = baseIncome
		}

		predictedUnits := baseUnits.Mul(factor).IntPart()

		var predictedIncome decimal.Decimal
		switch {
		case baseUnits.IsPositive():
			predictedIncome = decimal.NewFromInt(predictedUnits).Mul(price)
		case baseIncome.IsPositive():
			predictedIncome = baseIncome.Mul(factor)
		}

		roundedIncome := predictedIncome.Round(2)
		out.Months = append(out.Months, UnitMonth{
			Month:     month,
			Units:     predictedUnits,
			UnitPrice: price.Round(2).InexactFloat64(),
			Income:    roundedIncome.InexactFloat64(),
		})
		totalUnits += predictedUnits
		totalIncome = totalIncome.Add(roundedIncome)
		if price.IsPositive() {
			priceSum = priceSum.Add(price)
			priceCount++
		}
	}

	out.TotalUnits = totalUnits
	out.TotalIncome = totalIncome.Round(2).InexactFloat64()
	if priceCount > 0 {
		out.AvgUnitPrice = priceSum.Div(decimal.NewFromInt(int64(priceCount))).Round(2).InexactFloat64()
	}
	return out
}

func buildUnitSummary(yearIncome map[int]decimal.Decimal, predictions []UnitYear) []UnitYearSummary {
	years := make([]int, 0, len(yearIncome))
	for y := range yearIncome {
		years = append(years, y)
	}
	sort.Ints(years)

	summary := make([]UnitYearSummary, 0, len(years)+len(predictions))
	for _, y := range years {
		summary = append(summary, UnitYearSummary{
			Year:        y,
			TotalIncome: yearIncome[y].Round(2).InexactFloat64(),
		})
	}
	for _, p := range predictions {
		summary = append(summary, UnitYearSummary{
			Year:        p.Year,
			TotalIncome: p.TotalIncome,
			Projected:   true,
		})
	}

	for i := 1; i < len(summary); i++ {
		prev := summary[i-1].TotalIncome
		if prev == 0 {
			continue
		}
		change := (summary[i].TotalIncome - prev) / prev
		summary[i].PctChange = &change
	}
	return summary
}
