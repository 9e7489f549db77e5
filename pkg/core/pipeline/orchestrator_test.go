package pipeline

import (
	"context"
	"testing"
	"time"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/core/outlook"
	"enterprise_analytics/pkg/models"
)

func fixedClock() time.Time {
	return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

func staticProvider() *outlook.Static {
	return &outlook.Static{
		Outlook: outlook.IndustryOutlook{
			AverageRevenue: "$120,000",
			GrowthRate:     "4%",
			Trends:         "Automation",
			Challenges:     "Supply chains",
			Seasonality:    "N/A",
		},
		Trends: outlook.MarketTrends{
			Trends:     []string{"Automation spreading"},
			Statistics: []string{"Market grows 4% annually"},
			Hypothesis: 4.0,
		},
		Narrative: "Steady growth expected.",
	}
}

// fullGateway has two complete years for two Manufacturing peers, which
// is enough history for every pipeline stage.
func fullGateway() *gateway.MemoryGateway {
	perf := 0.9
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{
			{ID: 1, Name: "Acme Manufacturing", IndustryLabel: "Manufacturing", Active: true,
				EmployeeCount: 20, FoundingDate: time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 2, Name: "Peer Industrie", IndustryLabel: "Manufacturing", Active: true},
		},
	}
	for _, id := range []int64{1, 2} {
		for _, year := range []int{2024, 2025} {
			for month := 1; month <= 12; month++ {
				income := float64(1000 + 100*month)
				if year == 2025 {
					income *= 1.1
				}
				gw.Revenues = append(gw.Revenues, models.RevenueRecord{
					EnterpriseID:      id,
					Description:       "Product A",
					Year:              year,
					Month:             month,
					RealIncome:        income,
					ExpectedIncome:    income * 1.05,
					RealSoldUnits:     10,
					IncomePerformance: &perf,
				})
				gw.SalesBudgets = append(gw.SalesBudgets, models.SalesBudgetRecord{
					EnterpriseID: id, Description: "Product A",
					Year: year, Month: month,
					Budget: income * 1.05, Real: income,
				})
			}
			gw.OrderBooks = append(gw.OrderBooks, models.OrderBookRecord{
				EnterpriseID: id, Year: year, TotalValue: 50000,
			})
			gw.Opportunities = append(gw.Opportunities, models.OpportunityRecord{
				EnterpriseID: id, Year: year, TotalValue: 20000,
			})
		}
	}
	return gw
}

func newTestOrchestrator(gw *gateway.MemoryGateway) *Orchestrator {
	o := New(gw, staticProvider(), nil)
	o.Clock = fixedClock
	o.hypothesis.Uniform = func() float64 { return 1.0 }
	return o
}

func TestRunFullPipeline(t *testing.T) {
	// Setup
	o := newTestOrchestrator(fullGateway())

	// Execute
	report, err := o.Run(context.Background(), 1, "Product A", 0.05)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Verify
	if report.RequestID == "" {
		t.Error("RequestID should be set")
	}
	if report.Validation == nil || !report.Validation.Validations.Revenue {
		t.Error("validation should pass the revenue gate")
	}
	if report.Seasonal == nil {
		t.Error("seasonal analysis should run with two full years")
	}
	if report.History == nil || len(report.History.RevenueHistory) != 24 {
		t.Errorf("expected 24 revenue history rows, got %+v", report.History)
	}
	if report.Prediction == nil {
		t.Fatal("combined prediction should run")
	}
	if len(report.Prediction.CombinedMonthly) != 12 {
		t.Errorf("expected 12 combined months, got %d", len(report.Prediction.CombinedMonthly))
	}
	if report.Prediction.PredictionYear != 2027 {
		t.Errorf("PredictionYear = %d, want 2027", report.Prediction.PredictionYear)
	}
	if report.Units == nil || report.Units.BaseYear != 2025 {
		t.Errorf("unit economics should anchor on 2025, got %+v", report.Units)
	}
	if report.Trends == nil || report.Trends.Hypothesis != 4.0 {
		t.Errorf("market trends = %+v", report.Trends)
	}
	if report.Narrative != "Steady growth expected." {
		t.Errorf("Narrative = %q", report.Narrative)
	}
}

func TestRunSparseEnterpriseSkipsProjections(t *testing.T) {
	// Setup: one month of history fails every sufficiency gate.
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{
			{ID: 1, Name: "Fresh Start", IndustryLabel: "Retail", Active: true,
				FoundingDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Revenues: []models.RevenueRecord{
			{EnterpriseID: 1, Description: "Product A", Year: 2026, Month: 1, RealIncome: 100},
		},
	}
	o := newTestOrchestrator(gw)

	// Execute
	report, err := o.Run(context.Background(), 1, "Product A", 0.05)
	if err != nil {
		t.Fatalf("Run should tolerate thin data: %v", err)
	}

	// Verify: validation reports, projections are skipped rather than
	// failing the whole run.
	if report.Validation == nil || report.Validation.Validations.Revenue {
		t.Error("revenue gate should fail with one month of data")
	}
	if report.Prediction != nil {
		t.Error("combined prediction should be skipped")
	}
	if report.Units != nil {
		t.Error("unit economics should be skipped without validated revenue")
	}
	if report.Narrative != "" {
		t.Error("narrative requires a prediction")
	}
	if len(report.History.RevenueHistory) != 0 {
		t.Errorf("revenue history should be gated off, got %d rows", len(report.History.RevenueHistory))
	}
}

func TestRunUnknownEnterprise(t *testing.T) {
	o := newTestOrchestrator(&gateway.MemoryGateway{})

	_, err := o.Run(context.Background(), 404, "Product A", 0.05)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestHistoricalDataAggregates(t *testing.T) {
	// Setup
	o := newTestOrchestrator(fullGateway())

	// Execute
	report, err := o.HistoricalData(context.Background(), 1, "Product A")
	if err != nil {
		t.Fatalf("HistoricalData failed: %v", err)
	}

	// Verify ordering and aggregation of the first row.
	if len(report.RevenueHistory) != 24 {
		t.Fatalf("expected 24 revenue rows, got %d", len(report.RevenueHistory))
	}
	first := report.RevenueHistory[0]
	if first.Year != 2024 || first.Month != 1 {
		t.Errorf("rows should be ordered by year then month, got %+v", first)
	}
	if first.Real != 1100 {
		t.Errorf("january 2024 real = %v, want 1100", first.Real)
	}

	if len(report.SalesBudgetHistory) != 24 {
		t.Errorf("expected 24 sales budget rows, got %d", len(report.SalesBudgetHistory))
	}

	if len(report.PerformanceHistory) != 24 {
		t.Fatalf("expected 24 performance rows, got %d", len(report.PerformanceHistory))
	}
	if report.PerformanceHistory[0].Performance == nil || *report.PerformanceHistory[0].Performance != 0.9 {
		t.Errorf("performance = %+v", report.PerformanceHistory[0].Performance)
	}
}

func TestMarketTrendsUsesEnterpriseIndustry(t *testing.T) {
	o := newTestOrchestrator(fullGateway())

	trends, err := o.MarketTrends(context.Background(), 1)
	if err != nil {
		t.Fatalf("MarketTrends failed: %v", err)
	}
	if len(trends.Trends) != 1 || trends.Trends[0] != "Automation spreading" {
		t.Errorf("Trends = %+v", trends.Trends)
	}
}
