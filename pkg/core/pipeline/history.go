package pipeline

import (
	"context"
	"sort"

	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/core/validation"
	"enterprise_analytics/pkg/models"
)

// =============================================================================
// HISTORICAL DATA EXTRACTION
// =============================================================================

// HistoryRow is one (year, month, description) aggregate with real and
// budgeted amounts.
type HistoryRow struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Description string  `json:"description"`
	Real        float64 `json:"real"`
	Budget      float64 `json:"budget"`
}

// PerformanceRow is one (year, month, description) performance
// aggregate. Performance is nil when no row in the group carried a
// performance value.
type PerformanceRow struct {
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	Description string   `json:"description"`
	Performance *float64 `json:"performance"`
}

// HistoricalReport carries the per-series histories an enterprise
// qualifies for. A series is included when either its yearly or its
// monthly validation flag holds; the rest stay nil.
type HistoricalReport struct {
	EnterpriseID       int64                  `json:"enterprise_id"`
	DataValidity       validation.Validations `json:"data_validity"`
	RevenueHistory     []HistoryRow           `json:"Revenues Real History,omitempty"`
	SalesBudgetHistory []HistoryRow           `json:"Sales Budget history,omitempty"`
	PerformanceHistory []PerformanceRow       `json:"Revenues Performance History,omitempty"`
}

func (o *Orchestrator) HistoricalData(ctx context.Context, enterpriseID int64, description string) (*HistoricalReport, error) {
	if _, err := o.Gateway.GetEnterprise(ctx, enterpriseID); err != nil {
		return nil, err
	}

	report, err := o.Validate(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}

	currentYear := o.Clock().Year()
	out := &HistoricalReport{
		EnterpriseID: enterpriseID,
		DataValidity: report.Validations,
	}

	v := report.Validations
	if v.Revenue || v.MonthlyRevenue || v.Performance || v.MonthlyPerformance {
		revenues, err := o.Gateway.QueryRevenue(ctx, enterpriseID, gateway.RevenueFilter{
			Description: description,
			MaxYear:     currentYear,
		})
		if err != nil {
			return nil, err
		}
		if v.Revenue || v.MonthlyRevenue {
			out.RevenueHistory = revenueHistory(revenues)
		}
		if v.Performance || v.MonthlyPerformance {
			out.PerformanceHistory = performanceHistory(revenues)
		}
	}

	if v.SalesBudget || v.MonthlySalesBudget {
		budgets, err := o.Gateway.QuerySalesBudget(ctx, enterpriseID, gateway.RevenueFilter{
			Description: description,
			MaxYear:     currentYear,
		})
		if err != nil {
			return nil, err
		}
		out.SalesBudgetHistory = salesBudgetHistory(budgets)
	}

	return out, nil
}

type historyKey struct {
	year        int
	month       int
	description string
}

func sortedKeys(m map[historyKey]bool) []historyKey {
	keys := make([]historyKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.year != b.year {
			return a.year < b.year
		}
		if a.month != b.month {
			return a.month < b.month
		}
		return a.description < b.description
	})
	return keys
}

func revenueHistory(revenues []models.RevenueRecord) []HistoryRow {
	seen := map[historyKey]bool{}
	real := map[historyKey]float64{}
	budget := map[historyKey]float64{}
	for _, r := range revenues {
		k := historyKey{r.Year, r.Month, r.Description}
		seen[k] = true
		real[k] += r.RealIncome
		budget[k] += r.ExpectedIncome
	}

	rows := make([]HistoryRow, 0, len(seen))
	for _, k := range sortedKeys(seen) {
		rows = append(rows, HistoryRow{
			Year:        k.year,
			Month:       k.month,
			Description: k.description,
			Real:        real[k],
			Budget:      budget[k],
		})
	}
	return rows
}

func salesBudgetHistory(budgets []models.SalesBudgetRecord) []HistoryRow {
	seen := map[historyKey]bool{}
	real := map[historyKey]float64{}
	budget := map[historyKey]float64{}
	for _, b := range budgets {
		k := historyKey{b.Year, b.Month, b.Description}
		seen[k] = true
		real[k] += b.Real
		budget[k] += b.Budget
	}

	rows := make([]HistoryRow, 0, len(seen))
	for _, k := range sortedKeys(seen) {
		rows = append(rows, HistoryRow{
			Year:        k.year,
			Month:       k.month,
			Description: k.description,
			Real:        real[k],
			Budget:      budget[k],
		})
	}
	return rows
}

func performanceHistory(revenues []models.RevenueRecord) []PerformanceRow {
	seen := map[historyKey]bool{}
	sums := map[historyKey]float64{}
	counts := map[historyKey]int{}
	for _, r := range revenues {
		k := historyKey{r.Year, r.Month, r.Description}
		seen[k] = true
		if r.IncomePerformance != nil {
			sums[k] += *r.IncomePerformance
			counts[k]++
		}
	}

	rows := make([]PerformanceRow, 0, len(seen))
	for _, k := range sortedKeys(seen) {
		row := PerformanceRow{Year: k.year, Month: k.month, Description: k.description}
		if counts[k] > 0 {
			sum := sums[k]
			row.Performance = &sum
		}
		rows = append(rows, row)
	}
	return rows
}
