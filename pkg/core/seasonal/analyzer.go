package seasonal

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/aggregate"
	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/models"
)

// =============================================================================
// SEASONAL / INDUSTRY ANALYZER
// =============================================================================

const decompositionPeriod = 12

// Analyzer runs the full industry comparison for one enterprise and
// product: PCA over yearly profiles, seasonal decomposition, anomaly
// detection, risk, performance, trends, market share, and PCA-weighted
// budget reallocation.
type Analyzer struct {
	Gateway    gateway.DataGateway
	Aggregator *aggregate.Aggregator
	Clock      func() time.Time
}

func NewAnalyzer(gw gateway.DataGateway) *Analyzer {
	return &Analyzer{
		Gateway:    gw,
		Aggregator: aggregate.NewAggregator(gw),
		Clock:      time.Now,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, enterpriseID int64, description string) (*Report, error) {
	const op = "seasonal.Analyze"

	enterprise, err := a.Gateway.GetEnterprise(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	if enterprise.IndustryLabel == "" {
		return nil, apperr.InsufficientData(op, "unable to determine industry type for enterprise %d", enterpriseID)
	}

	a.Aggregator.Clock = a.Clock
	industry, err := a.Aggregator.ForIndustry(ctx, enterprise.IndustryLabel, description)
	if err != nil {
		return nil, err
	}

	revenues, err := a.Gateway.QueryRevenue(ctx, enterpriseID, gateway.RevenueFilter{Description: description})
	if err != nil {
		return nil, err
	}
	entReals, entBudgets := groupByYear(revenues)

	report := &Report{
		IndustryLabel:   enterprise.IndustryLabel,
		Aggregated:      industry,
		PCA:             principalComponent(yearMatrix(industry)),
		SeasonalTrends:  map[int][]float64{},
		Anomalies:       map[int][]int{},
		Risk:            map[int]*RiskAssessment{},
		Performance:     map[int]*PerformanceEvaluation{},
		AdjustedBudgets: map[int][]MonthlyBudget{},
		Trends:          map[int]*TrendAnalysis{},
		MarketShare:     map[int]*float64{},
	}

	a.identifySeasonalTrends(report, industry)
	for _, year := range industry.Years {
		indVals := industry.Values(year)
		report.Anomalies[year] = detectAnomalies(entReals[year], indVals)
		report.Risk[year] = assessRisk(entReals[year], indVals)
		report.Performance[year] = evaluatePerformance(
			sum(entReals[year]), sum(entBudgets[year]),
			sum(indVals), sum(industry.BudgetValues(year)))
		report.AdjustedBudgets[year] = adjustBudgets(sum(entBudgets[year]), report.PCA.Coefficients)
		report.Trends[year] = analyzeTrends(industry, year)
		report.MarketShare[year] = marketShare(sum(entReals[year]), sum(indVals))
	}

	log.Debug().
		Int64("enterprise_id", enterpriseID).
		Str("industry", enterprise.IndustryLabel).
		Str("description", description).
		Int("years", len(industry.Years)).
		Msg("industry analysis complete")

	return report, nil
}

// groupByYear collects real and expected income series per year, in
// month order so positions line up with the industry averages.
func groupByYear(revenues []models.RevenueRecord) (map[int][]float64, map[int][]float64) {
	sorted := make([]models.RevenueRecord, len(revenues))
	copy(sorted, revenues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Month < sorted[j].Month
	})

	reals := map[int][]float64{}
	budgets := map[int][]float64{}
	for _, r := range sorted {
		reals[r.Year] = append(reals[r.Year], r.RealIncome)
		budgets[r.Year] = append(budgets[r.Year], r.ExpectedIncome)
	}
	return reals, budgets
}

func yearMatrix(industry *aggregate.IndustryData) [][]float64 {
	var rows [][]float64
	for _, year := range industry.Years {
		if vals := industry.Values(year); len(vals) > 0 {
			rows = append(rows, vals)
		}
	}
	return rows
}

// identifySeasonalTrends decomposes the industry averages over the full
// multi-year span and slices the seasonal component back per year.
// Years stay nil when fewer than two full cycles of data exist.
func (a *Analyzer) identifySeasonalTrends(report *Report, industry *aggregate.IndustryData) {
	var combined []float64
	for _, year := range industry.Years {
		combined = append(combined, industry.Values(year)...)
		report.SeasonalTrends[year] = nil
	}
	if len(combined) < 2*decompositionPeriod || !anyNonZero(combined) {
		return
	}

	seasonal := seasonalComponent(combined, decompositionPeriod)
	if seasonal == nil {
		return
	}
	offset := 0
	for _, year := range industry.Years {
		span := len(industry.Values(year))
		report.SeasonalTrends[year] = seasonal[offset : offset+span]
		offset += span
	}
}

// detectAnomalies flags months whose enterprise revenue deviates more
// than two population standard deviations from the year's mean. Needs
// a complete 12-month series on both sides; nil otherwise.
func detectAnomalies(entVals, indVals []float64) []int {
	if len(entVals) != 12 || len(indVals) != 12 || !anyNonZero(entVals) {
		return nil
	}
	m := mean(entVals)
	sd := popStdDev(entVals)
	anomalies := []int{}
	if sd == 0 {
		return anomalies
	}
	for i, v := range entVals {
		z := (v - m) / sd
		if z > 2 || z < -2 {
			anomalies = append(anomalies, i)
		}
	}
	return anomalies
}

func assessRisk(entVals, indVals []float64) *RiskAssessment {
	if len(entVals) != 12 || len(indVals) != 12 || !anyNonZero(entVals) || !anyNonZero(indVals) {
		return nil
	}
	risk := &RiskAssessment{}
	if m := mean(entVals); m != 0 {
		v := popStdDev(entVals) / m
		risk.EnterpriseVolatility = &v
	}
	if m := mean(indVals); m != 0 {
		v := popStdDev(indVals) / m
		risk.IndustryVolatility = &v
	}
	if risk.EnterpriseVolatility != nil && risk.IndustryVolatility != nil && *risk.IndustryVolatility != 0 {
		r := *risk.EnterpriseVolatility / *risk.IndustryVolatility
		risk.RelativeRisk = &r
	}
	return risk
}

func evaluatePerformance(entReal, entBudget, indReal, indBudget float64) *PerformanceEvaluation {
	if entBudget == 0 || indBudget == 0 || indReal == 0 {
		return nil
	}
	return &PerformanceEvaluation{
		EnterpriseBudgetAccuracy: entReal / entBudget,
		IndustryBudgetAccuracy:   indReal / indBudget,
		RelativePerformance:      entReal / indReal,
	}
}

func analyzeTrends(industry *aggregate.IndustryData, year int) *TrendAnalysis {
	vals := industry.Values(year)

	analysis := &TrendAnalysis{}
	if prev := industry.Values(year - 1); prev != nil {
		if prevSum := sum(prev); prevSum != 0 {
			g := (sum(vals) - prevSum) / prevSum
			analysis.YearOverYearGrowth = &g
		}
	}

	analysis.QuarterOverQuarter = make([]*float64, 0, 3)
	for q := 1; q <= 3; q++ {
		current := sum(vals[q*3 : (q+1)*3])
		previous := sum(vals[(q-1)*3 : q*3])
		if previous != 0 {
			g := (current - previous) / previous
			analysis.QuarterOverQuarter = append(analysis.QuarterOverQuarter, &g)
		} else {
			analysis.QuarterOverQuarter = append(analysis.QuarterOverQuarter, nil)
		}
	}
	return analysis
}

func marketShare(entRevenue, indRevenue float64) *float64 {
	if indRevenue <= 0 {
		return nil
	}
	share := entRevenue / indRevenue
	return &share
}

// adjustBudgets redistributes the annual expected income across months
// proportionally to the absolute PCA coefficients.
func adjustBudgets(annualBudget float64, coefficients []float64) []MonthlyBudget {
	if annualBudget <= 0 || len(coefficients) == 0 {
		return nil
	}
	var sumAbs float64
	for _, c := range coefficients {
		if c < 0 {
			sumAbs -= c
		} else {
			sumAbs += c
		}
	}
	if sumAbs == 0 {
		return nil
	}

	budgets := make([]MonthlyBudget, 0, len(coefficients))
	for i, c := range coefficients {
		if c < 0 {
			c = -c
		}
		budgets = append(budgets, MonthlyBudget{
			Month:          i + 1,
			AdjustedBudget: annualBudget * c / sumAbs,
		})
	}
	return budgets
}

// =============================================================================
// SMALL NUMERIC HELPERS
// =============================================================================

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return sum(vals) / float64(len(vals))
}

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

func anyNonZero(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return true
		}
	}
	return false
}
