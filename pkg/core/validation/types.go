package validation

// Report is the full data-sufficiency assessment for one enterprise.
type Report struct {
	EnterpriseID      int64       `json:"enterprise_id"`
	Validations       Validations `json:"validations"`
	DataQuality       DataQuality `json:"data_quality"`
	OverallValidation bool        `json:"overall_validation"`
	Recommendations   []string    `json:"recommendations"`
}

// Validations holds the pass/fail flags per data source. The Monthly*
// flags report granularity, not existence: an enterprise can have valid
// yearly revenue without qualifying as monthly.
type Validations struct {
	Revenue            bool `json:"revenue"`
	RecurrentRevenue   bool `json:"recurrent_revenue"`
	SalesBudget        bool `json:"sales_budget"`
	OrderBook          bool `json:"order_book"`
	Opportunity        bool `json:"opportunity"`
	Performance        bool `json:"performance"`
	MonthlyRevenue     bool `json:"monthly_revenue"`
	MonthlySalesBudget bool `json:"monthly_sales_budget"`
	MonthlyOrderBook   bool `json:"monthly_order_book"`
	MonthlyOpportunity bool `json:"monthly_opportunity"`
	MonthlyPerformance bool `json:"monthly_performance"`
}

// All reports whether every flag passed.
func (v Validations) All() bool {
	return v.Revenue && v.RecurrentRevenue && v.SalesBudget && v.OrderBook &&
		v.Opportunity && v.Performance && v.MonthlyRevenue && v.MonthlySalesBudget &&
		v.MonthlyOrderBook && v.MonthlyOpportunity && v.MonthlyPerformance
}

// DataQuality carries the per-source quality metrics backing the flags.
type DataQuality struct {
	Revenue          RevenueQuality     `json:"revenue"`
	RecurrentRevenue float64            `json:"recurrent_revenue"`
	SalesBudget      SalesBudgetQuality `json:"sales_budget"`
	OrderBook        OrderBookQuality   `json:"order_book"`
	Opportunity      OpportunityQuality `json:"opportunity"`
	Performance      PerformanceQuality `json:"performance"`
}

// Consistency and growth metrics are nil when fewer than two yearly
// points exist or no year-over-year pair had a usable prior value.
type RevenueQuality struct {
	YearsAvailable  int      `json:"years_available"`
	MonthsAvailable int      `json:"months_available"`
	AvgYearlyGrowth *float64 `json:"avg_yearly_growth"`
	DataConsistency *float64 `json:"data_consistency"`
}

type SalesBudgetQuality struct {
	YearsAvailable  int      `json:"years_available"`
	BudgetAccuracy  float64  `json:"budget_accuracy"`
	DataConsistency *float64 `json:"data_consistency"`
}

type OrderBookQuality struct {
	YearsAvailable  int      `json:"years_available"`
	AvgOrderValue   float64  `json:"avg_order_value"`
	DataConsistency *float64 `json:"data_consistency"`
}

type OpportunityQuality struct {
	YearsAvailable  int      `json:"years_available"`
	ConversionRate  float64  `json:"conversion_rate"`
	DataConsistency *float64 `json:"data_consistency"`
}

type PerformanceQuality struct {
	YearsAvailable         int      `json:"years_available"`
	AvgPerformance         float64  `json:"avg_performance"`
	PerformanceConsistency *float64 `json:"performance_consistency"`
}
