package validation

import (
	"context"
	"sort"
	"time"

	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/models"
)

// =============================================================================
// DATA SUFFICIENCY ENGINE
// =============================================================================

const (
	// windowYears bounds every check to the recent history window:
	// records with year >= currentYear - windowYears.
	windowYears = 5

	highRecurrenceCV   = 0.3
	mediumRecurrenceCV = 0.5

	// monthlyCoverage is the fraction of possible (year, month) slots a
	// source must fill to count as monthly-granular. yearlyCoverage is
	// the fallback for sources tracked per year only.
	monthlyCoverage = 0.5
	yearlyCoverage  = 0.8
)

// Engine scores whether an enterprise has enough history to support the
// downstream analysis and projection stages.
type Engine struct {
	Gateway gateway.DataGateway
	Clock   func() time.Time
}

func NewEngine(gw gateway.DataGateway) *Engine {
	return &Engine{Gateway: gw, Clock: time.Now}
}

// Validate runs every sufficiency check against the recent window and
// returns the full report, including human-readable recommendations.
func (e *Engine) Validate(ctx context.Context, enterpriseID int64) (*Report, error) {
	if _, err := e.Gateway.GetEnterprise(ctx, enterpriseID); err != nil {
		return nil, err
	}

	currentYear := e.Clock().Year()
	minYear := currentYear - windowYears
	filter := gateway.RevenueFilter{MinYear: minYear}

	revenues, err := e.Gateway.QueryRevenue(ctx, enterpriseID, filter)
	if err != nil {
		return nil, err
	}
	salesBudgets, err := e.Gateway.QuerySalesBudget(ctx, enterpriseID, filter)
	if err != nil {
		return nil, err
	}
	orderBooks, err := e.Gateway.QueryOrderBook(ctx, enterpriseID, filter)
	if err != nil {
		return nil, err
	}
	opportunities, err := e.Gateway.QueryOpportunities(ctx, enterpriseID, filter)
	if err != nil {
		return nil, err
	}

	totalPossibleMonths := (currentYear - minYear + 1) * 12
	totalYears := currentYear - minYear + 1

	report := &Report{EnterpriseID: enterpriseID}

	revQ := analyzeRevenue(revenues)
	report.Validations.Revenue = revQ.YearsAvailable > 1
	report.DataQuality.Revenue = revQ

	isRecurrent, recurrenceScore := checkRecurrence(revenues)
	report.Validations.RecurrentRevenue = isRecurrent
	report.DataQuality.RecurrentRevenue = recurrenceScore

	budgetQ := analyzeSalesBudget(salesBudgets)
	report.Validations.SalesBudget = budgetQ.YearsAvailable > 1
	report.DataQuality.SalesBudget = budgetQ

	orderQ := analyzeOrderBook(orderBooks)
	report.Validations.OrderBook = orderQ.YearsAvailable > 1
	report.DataQuality.OrderBook = orderQ

	oppQ := analyzeOpportunities(opportunities)
	report.Validations.Opportunity = oppQ.YearsAvailable > 1
	report.DataQuality.Opportunity = oppQ

	perfQ := analyzePerformance(revenues)
	report.Validations.Performance = perfQ.YearsAvailable > 1
	report.DataQuality.Performance = perfQ

	report.Validations.MonthlyRevenue = monthCoverage(revenueSlots(revenues), totalPossibleMonths)
	report.Validations.MonthlySalesBudget = monthCoverage(budgetSlots(salesBudgets), totalPossibleMonths)
	report.Validations.MonthlyOrderBook = yearCoverage(orderYears(orderBooks), totalYears)
	report.Validations.MonthlyOpportunity = yearCoverage(opportunityYears(opportunities), totalYears)
	report.Validations.MonthlyPerformance = monthCoverage(revenueSlots(revenues), totalPossibleMonths)

	report.OverallValidation = report.Validations.All()
	report.Recommendations = buildRecommendations(report)

	log.Debug().
		Int64("enterprise_id", enterpriseID).
		Bool("overall", report.OverallValidation).
		Int("recommendations", len(report.Recommendations)).
		Msg("validation complete")

	return report, nil
}

// =============================================================================
// PER-SOURCE ANALYSIS
// =============================================================================

func analyzeRevenue(revenues []models.RevenueRecord) RevenueQuality {
	years := map[int]bool{}
	months := map[[2]int]bool{}
	totals := map[int]float64{}
	for _, r := range revenues {
		years[r.Year] = true
		months[[2]int{r.Year, r.Month}] = true
		totals[r.Year] += r.RealIncome
	}
	yearly := sortedTotals(totals)
	return RevenueQuality{
		YearsAvailable:  len(years),
		MonthsAvailable: len(months),
		AvgYearlyGrowth: avgGrowth(yearly),
		DataConsistency: dataConsistency(yearly),
	}
}

// checkRecurrence scores how stable each calendar month's revenue is
// across years. A low average coefficient of variation means the same
// months repeat at similar levels year after year.
func checkRecurrence(revenues []models.RevenueRecord) (bool, float64) {
	if len(revenues) == 0 {
		return false, 0
	}
	byMonth := map[int][]float64{}
	for _, r := range revenues {
		byMonth[r.Month] = append(byMonth[r.Month], r.RealIncome)
	}

	var cvs []float64
	for month := 1; month <= 12; month++ {
		vals, ok := byMonth[month]
		if !ok {
			continue
		}
		avg := mean(vals)
		if avg <= 0 {
			continue
		}
		cvs = append(cvs, popStdDev(vals)/avg)
	}
	if len(cvs) == 0 {
		return false, 0
	}

	avgCV := mean(cvs)
	var score float64
	switch {
	case avgCV <= highRecurrenceCV:
		score = 1.0
	case avgCV <= mediumRecurrenceCV:
		score = 0.5
	}
	return score > 0, score
}

func analyzeSalesBudget(budgets []models.SalesBudgetRecord) SalesBudgetQuality {
	// Zero-budget and zero-real rows are placeholders, not observations.
	years := map[int]bool{}
	totals := map[int]float64{}
	var ratios []float64
	for _, b := range budgets {
		if b.Budget == 0 || b.Real == 0 {
			continue
		}
		years[b.Year] = true
		totals[b.Year] += b.Budget
		ratios = append(ratios, b.Real/b.Budget)
	}

	var accuracy float64
	if len(years) > 0 {
		accuracy = mean(ratios)
	}
	return SalesBudgetQuality{
		YearsAvailable:  len(years),
		BudgetAccuracy:  accuracy,
		DataConsistency: dataConsistency(sortedTotals(totals)),
	}
}

func analyzeOrderBook(orders []models.OrderBookRecord) OrderBookQuality {
	years := map[int]bool{}
	totals := map[int]float64{}
	var values []float64
	for _, o := range orders {
		years[o.Year] = true
		totals[o.Year] += o.TotalValue
		values = append(values, o.TotalValue)
	}
	return OrderBookQuality{
		YearsAvailable:  len(years),
		AvgOrderValue:   mean(values),
		DataConsistency: dataConsistency(sortedTotals(totals)),
	}
}

func analyzeOpportunities(opps []models.OpportunityRecord) OpportunityQuality {
	years := map[int]bool{}
	totals := map[int]float64{}
	var sum float64
	for _, o := range opps {
		years[o.Year] = true
		totals[o.Year] += o.TotalValue
		sum += o.TotalValue
	}
	return OpportunityQuality{
		YearsAvailable:  len(years),
		ConversionRate:  sum,
		DataConsistency: dataConsistency(sortedTotals(totals)),
	}
}

func analyzePerformance(revenues []models.RevenueRecord) PerformanceQuality {
	years := map[int]bool{}
	perYear := map[int][]float64{}
	var all []float64
	for _, r := range revenues {
		years[r.Year] = true
		if r.IncomePerformance != nil {
			perYear[r.Year] = append(perYear[r.Year], *r.IncomePerformance)
			all = append(all, *r.IncomePerformance)
		}
	}

	// Keep years without a single performance value in the series: they
	// break the year-over-year chain rather than bridging across it.
	var yearList []int
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)
	yearly := make([]*float64, len(yearList))
	for i, y := range yearList {
		if vals, ok := perYear[y]; ok {
			avg := mean(vals)
			yearly[i] = &avg
		}
	}

	return PerformanceQuality{
		YearsAvailable:         len(years),
		AvgPerformance:         mean(all),
		PerformanceConsistency: nilableConsistency(yearly),
	}
}

// nilableConsistency mirrors dataConsistency over a series that may
// contain gaps; a pair is skipped when either side is missing or the
// prior value is zero.
func nilableConsistency(yearly []*float64) *float64 {
	if len(yearly) < 2 {
		return nil
	}
	var variations []float64
	for i := 1; i < len(yearly); i++ {
		prev, cur := yearly[i-1], yearly[i]
		if prev == nil || cur == nil || *prev == 0 {
			continue
		}
		variations = append(variations, (*cur-*prev)/(*prev))
	}
	if len(variations) == 0 {
		return nil
	}
	c := 1 - meanAbs(variations)
	return &c
}

// =============================================================================
// COVERAGE HELPERS
// =============================================================================

func revenueSlots(revenues []models.RevenueRecord) int {
	slots := map[[2]int]bool{}
	for _, r := range revenues {
		slots[[2]int{r.Year, r.Month}] = true
	}
	return len(slots)
}

func budgetSlots(budgets []models.SalesBudgetRecord) int {
	slots := map[[2]int]bool{}
	for _, b := range budgets {
		slots[[2]int{b.Year, b.Month}] = true
	}
	return len(slots)
}

func orderYears(orders []models.OrderBookRecord) int {
	years := map[int]bool{}
	for _, o := range orders {
		years[o.Year] = true
	}
	return len(years)
}

func opportunityYears(opps []models.OpportunityRecord) int {
	years := map[int]bool{}
	for _, o := range opps {
		years[o.Year] = true
	}
	return len(years)
}

func monthCoverage(slots, totalPossible int) bool {
	return float64(slots)/float64(totalPossible) >= monthlyCoverage
}

func yearCoverage(years, totalYears int) bool {
	return float64(years)/float64(totalYears) >= yearlyCoverage
}

func sortedTotals(totals map[int]float64) []yearTotal {
	out := make([]yearTotal, 0, len(totals))
	for y, t := range totals {
		out = append(out, yearTotal{Year: y, Total: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
