package seasonal

import "enterprise_analytics/pkg/core/aggregate"

// PCAResult holds the first principal component of the industry's
// yearly revenue profiles: raw projections per year, plus the same
// values normalized so their absolute values sum to one.
type PCAResult struct {
	Projections  []float64 `json:"projections"`
	Coefficients []float64 `json:"coefficients"`
}

// RiskAssessment compares revenue volatility against the industry.
// Fields are nil when the underlying mean is zero.
type RiskAssessment struct {
	EnterpriseVolatility *float64 `json:"enterprise_volatility"`
	IndustryVolatility   *float64 `json:"industry_volatility"`
	RelativeRisk         *float64 `json:"relative_risk"`
}

type PerformanceEvaluation struct {
	EnterpriseBudgetAccuracy float64 `json:"enterprise_budget_accuracy"`
	IndustryBudgetAccuracy   float64 `json:"industry_budget_accuracy"`
	RelativePerformance      float64 `json:"relative_performance"`
}

// TrendAnalysis carries industry growth figures for one year. The
// year-over-year entry is nil for the first year or when the prior
// year is absent or sums to zero. QuarterOverQuarter has three
// entries (Q2 vs Q1, Q3 vs Q2, Q4 vs Q3), nil where the prior
// quarter sums to zero.
type TrendAnalysis struct {
	YearOverYearGrowth *float64   `json:"year_over_year_growth"`
	QuarterOverQuarter []*float64 `json:"quarter_over_quarter_growth"`
}

type MonthlyBudget struct {
	Month          int     `json:"month"`
	AdjustedBudget float64 `json:"adjusted_budget"`
}

// Report is the complete industry analysis for one enterprise and
// product description. Per-year maps hold nil entries for years whose
// gate conditions failed rather than omitting the year.
type Report struct {
	IndustryLabel   string                         `json:"industry_type"`
	Aggregated      *aggregate.IndustryData        `json:"aggregated_data"`
	PCA             PCAResult                      `json:"pca_coefficients"`
	SeasonalTrends  map[int][]float64              `json:"seasonal_trends"`
	Anomalies       map[int][]int                  `json:"anomalies"`
	Risk            map[int]*RiskAssessment        `json:"risk_assessment"`
	Performance     map[int]*PerformanceEvaluation `json:"performance_evaluation"`
	AdjustedBudgets map[int][]MonthlyBudget        `json:"adjusted_budgets"`
	Trends          map[int]*TrendAnalysis         `json:"trend_analysis"`
	MarketShare     map[int]*float64               `json:"market_share"`
}
