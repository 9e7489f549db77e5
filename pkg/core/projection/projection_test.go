package projection

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/cache"
	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/core/outlook"
	"enterprise_analytics/pkg/models"
)

func fixedClock() time.Time {
	return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

// trendGateway has two full historical years so the revenue sufficiency
// gate passes.
func trendGateway() *gateway.MemoryGateway {
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{
			{ID: 1, Name: "Acme Manufacturing", IndustryLabel: "Manufacturing", Active: true},
		},
	}
	for _, year := range []int{2024, 2025} {
		for month := 1; month <= 12; month++ {
			gw.Revenues = append(gw.Revenues, models.RevenueRecord{
				EnterpriseID: 1,
				Description:  "Product A",
				Year:         year,
				Month:        month,
				RealIncome:   float64(1000 * year / 2024 * month),
			})
		}
	}
	return gw
}

func TestTrendProjectionUsesLatestYear(t *testing.T) {
	// Setup
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{
			{ID: 1, Name: "Acme Manufacturing", IndustryLabel: "Manufacturing", Active: true},
		},
	}
	for _, year := range []int{2024, 2025} {
		for month := 1; month <= 12; month++ {
			income := 1000.0
			if year == 2025 {
				income = 2000.0
			}
			gw.Revenues = append(gw.Revenues, models.RevenueRecord{
				EnterpriseID: 1, Description: "Product A",
				Year: year, Month: month, RealIncome: income,
			})
		}
	}
	p := NewTrendProjector(gw)
	p.Clock = fixedClock

	// Execute
	result, err := p.Project(context.Background(), 1, "Product A", 0.10)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	// Verify
	if result.PredictionYear != 2027 {
		t.Errorf("PredictionYear = %d, want 2027", result.PredictionYear)
	}
	if result.EnterpriseName != "Acme Manufacturing" {
		t.Errorf("EnterpriseName = %q", result.EnterpriseName)
	}
	if !result.DataValidity.Revenue {
		t.Error("DataValidity.Revenue should be true with two full years")
	}
	pred, ok := result.Results["Product A"]
	if !ok {
		t.Fatal("missing prediction for Product A")
	}
	for month := 1; month <= 12; month++ {
		if pred.Predicted[month] != 2200 {
			t.Errorf("Predicted[%d] = %d, want 2200", month, pred.Predicted[month])
		}
		if pred.Current[month] != 2000 {
			t.Errorf("Current[%d] = %v, want 2000", month, pred.Current[month])
		}
		if pred.Prior[month] != 1000 {
			t.Errorf("Prior[%d] = %v, want 1000", month, pred.Prior[month])
		}
	}
}

func TestTrendProjectionSkipsAllZeroLatestYear(t *testing.T) {
	// Setup: 2025 exists but every month is zero, so the base slides
	// back to 2024.
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{{ID: 1, Name: "Acme", Active: true}},
	}
	for month := 1; month <= 12; month++ {
		gw.Revenues = append(gw.Revenues,
			models.RevenueRecord{EnterpriseID: 1, Description: "Product A", Year: 2024, Month: month, RealIncome: 500},
			models.RevenueRecord{EnterpriseID: 1, Description: "Product A", Year: 2025, Month: month, RealIncome: 0},
		)
	}
	p := NewTrendProjector(gw)
	p.Clock = fixedClock

	// Execute
	result, err := p.Project(context.Background(), 1, "Product A", 0.10)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	// Verify
	pred := result.Results["Product A"]
	for month := 1; month <= 12; month++ {
		if pred.Predicted[month] != 550 {
			t.Errorf("Predicted[%d] = %d, want 550", month, pred.Predicted[month])
		}
	}
}

func TestTrendProjectionRejectsThinHistory(t *testing.T) {
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{{ID: 1, Name: "Acme", Active: true}},
		Revenues: []models.RevenueRecord{
			{EnterpriseID: 1, Description: "Product A", Year: 2025, Month: 1, RealIncome: 100},
		},
	}
	p := NewTrendProjector(gw)
	p.Clock = fixedClock

	_, err := p.Project(context.Background(), 1, "Product A", 0.10)
	if apperr.KindOf(err) != apperr.KindInsufficientData {
		t.Errorf("expected insufficient data error, got %v", err)
	}
}

func TestTrendMonthlyProjectionKeys(t *testing.T) {
	p := NewTrendProjector(trendGateway())
	p.Clock = fixedClock

	monthly, err := p.MonthlyProjection(context.Background(), 1, "Product A", 0.0, 2027)
	if err != nil {
		t.Fatalf("MonthlyProjection failed: %v", err)
	}
	if len(monthly) != 12 {
		t.Fatalf("expected 12 months, got %d", len(monthly))
	}
	for month := 1; month <= 12; month++ {
		key := fmt.Sprintf("2027-%02d", month)
		if _, ok := monthly[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestUnitEconomicsProjection(t *testing.T) {
	// Setup: one base year 2025. Month 1 sells 10 units at 100 each;
	// month 2 has income but no units.
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{{ID: 1, Name: "Acme", Active: true}},
		Revenues: []models.RevenueRecord{
			{EnterpriseID: 1, Description: "Product A", Year: 2025, Month: 1, RealIncome: 1000, RealSoldUnits: 10},
			{EnterpriseID: 1, Description: "Product A", Year: 2025, Month: 2, RealIncome: 500},
		},
	}
	p := NewUnitEconomicsProjector(gw)
	p.Clock = fixedClock

	// Execute: growth 10%, prediction year 2027, so two compounding
	// steps from the 2025 base.
	result, err := p.Project(context.Background(), 1, "Product A", 0.10)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	// Verify
	if result.BaseYear != 2025 {
		t.Errorf("BaseYear = %d, want 2025", result.BaseYear)
	}
	if len(result.Predictions) != 1 {
		t.Fatalf("expected 1 predicted year, got %d", len(result.Predictions))
	}
	year := result.Predictions[0]
	if year.Year != 2027 {
		t.Errorf("Year = %d, want 2027", year.Year)
	}
	// 10 units * 1.1^2 = 12.1, truncated to 12, at 100 per unit.
	jan := year.Months[0]
	if jan.Units != 12 {
		t.Errorf("january units = %d, want 12", jan.Units)
	}
	if math.Abs(jan.Income-1200) > 0.0001 {
		t.Errorf("january income = %v, want 1200", jan.Income)
	}
	if math.Abs(jan.UnitPrice-100) > 0.0001 {
		t.Errorf("january unit price = %v, want 100", jan.UnitPrice)
	}
	// No units: income compounds directly. 500 * 1.21 = 605.
	feb := year.Months[1]
	if feb.Units != 0 {
		t.Errorf("february units = %d, want 0", feb.Units)
	}
	if math.Abs(feb.Income-605) > 0.0001 {
		t.Errorf("february income = %v, want 605", feb.Income)
	}
	// Months with no history at all project to zero.
	if year.Months[2].Income != 0 || year.Months[2].Units != 0 {
		t.Errorf("march should be empty, got %+v", year.Months[2])
	}
	if math.Abs(year.TotalIncome-1805) > 0.0001 {
		t.Errorf("TotalIncome = %v, want 1805", year.TotalIncome)
	}

	if len(result.Summary) != 2 {
		t.Fatalf("expected 2 summary rows, got %d", len(result.Summary))
	}
	if result.Summary[0].Year != 2025 || math.Abs(result.Summary[0].TotalIncome-1500) > 0.0001 {
		t.Errorf("historical summary = %+v", result.Summary[0])
	}
	if result.Summary[0].PctChange != nil {
		t.Error("first summary row should carry no pct change")
	}
	if result.Summary[1].PctChange == nil {
		t.Fatal("projected summary row should carry a pct change")
	}
	// Fractional change from 1500 to 1805.
	wantChange := (1805.0 - 1500.0) / 1500.0
	if math.Abs(*result.Summary[1].PctChange-wantChange) > 0.0001 {
		t.Errorf("PctChange = %v, want %v", *result.Summary[1].PctChange, wantChange)
	}
}

func TestUnitEconomicsIncomeOnlyHistory(t *testing.T) {
	// Setup: a full year of income with no unit counts. The year still
	// anchors the projection; every month scales its income by the
	// growth factor.
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{{ID: 1, Name: "Acme", Active: true}},
	}
	for month := 1; month <= 12; month++ {
		gw.Revenues = append(gw.Revenues, models.RevenueRecord{
			EnterpriseID: 1, Description: "Product A", Year: 2025, Month: month, RealIncome: 500,
		})
	}
	p := NewUnitEconomicsProjector(gw)
	p.Clock = fixedClock

	result, err := p.Project(context.Background(), 1, "Product A", 0.05)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if result.BaseYear != 2025 {
		t.Errorf("BaseYear = %d, want 2025", result.BaseYear)
	}
	year := result.Predictions[0]
	if year.TotalUnits != 0 {
		t.Errorf("TotalUnits = %d, want 0", year.TotalUnits)
	}
	// 500 * 1.05^2 = 551.25 per month.
	for _, m := range year.Months {
		if math.Abs(m.Income-551.25) > 0.0001 {
			t.Errorf("month %d income = %v, want 551.25", m.Month, m.Income)
		}
	}
	if math.Abs(year.TotalIncome-6615) > 0.0001 {
		t.Errorf("TotalIncome = %v, want 6615", year.TotalIncome)
	}
}

func TestUnitEconomicsRejectsEmptyHistory(t *testing.T) {
	// Rows exist but carry neither units nor income.
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{{ID: 1, Name: "Acme", Active: true}},
		Revenues: []models.RevenueRecord{
			{EnterpriseID: 1, Description: "Product A", Year: 2025, Month: 1},
			{EnterpriseID: 1, Description: "Product A", Year: 2025, Month: 2},
		},
	}
	p := NewUnitEconomicsProjector(gw)
	p.Clock = fixedClock

	_, err := p.Project(context.Background(), 1, "Product A", 0.10)
	if apperr.KindOf(err) != apperr.KindInsufficientData {
		t.Errorf("expected insufficient data error, got %v", err)
	}
}

func TestHypothesisProjection(t *testing.T) {
	// Setup: 40 employees doubles the base, and company age pushes the
	// age factor to its 1.5 cap.
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{{
			ID: 1, Name: "Acme", IndustryLabel: "Manufacturing", Active: true,
			EmployeeCount: 40,
			FoundingDate:  time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	provider := &outlook.Static{Outlook: outlook.IndustryOutlook{
		AverageRevenue: "$1,200,000",
		GrowthRate:     "10%",
		Seasonality:    "N/A",
	}}
	p := NewHypothesisProjector(gw, provider)
	p.Clock = fixedClock
	p.Uniform = func() float64 { return 1.0 }

	// Execute
	result, err := p.Project(context.Background(), 1, 0.10, 2027)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	// Verify: base = 1,200,000 * sqrt(40/10) * 1.5 = 3,600,000 and the
	// blended growth is (0.10+0.10)/2 = 0.10, fully applied by December.
	if len(result.MonthlyPredictions) != 12 {
		t.Fatalf("expected 12 months, got %d", len(result.MonthlyPredictions))
	}
	dec := result.MonthlyPredictions["2027-12"]
	if math.Abs(dec-3960000) > 0.01 {
		t.Errorf("december = %v, want 3960000", dec)
	}
	jan := result.MonthlyPredictions["2027-01"]
	want := 3600000 * math.Pow(1.1, 1.0/12)
	if math.Abs(jan-math.Round(want*100)/100) > 0.01 {
		t.Errorf("january = %v, want %v", jan, want)
	}
}

func TestHypothesisSeasonality(t *testing.T) {
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{{
			ID: 1, Name: "Acme", IndustryLabel: "Retail", Active: true,
			EmployeeCount: 10,
			FoundingDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	provider := &outlook.Static{Outlook: outlook.IndustryOutlook{
		AverageRevenue: "100000",
		GrowthRate:     "0%",
		Seasonality:    "1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2",
	}}
	p := NewHypothesisProjector(gw, provider)
	p.Clock = fixedClock
	p.Uniform = func() float64 { return 1.0 }

	result, err := p.Project(context.Background(), 1, 0.0, 2027)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	// Age 1, factor (1+1)^0.3 ~ 1.231; december doubles november.
	nov := result.MonthlyPredictions["2027-11"]
	dec := result.MonthlyPredictions["2027-12"]
	if math.Abs(dec-2*nov) > 0.01 {
		t.Errorf("december %v should be twice november %v", dec, nov)
	}
}

func TestHypothesisParsers(t *testing.T) {
	if v := parseDollarAmount("$1,234.50", 0); math.Abs(v-1234.50) > 0.0001 {
		t.Errorf("parseDollarAmount = %v", v)
	}
	if v := parseDollarAmount("N/A", 100000); v != 100000 {
		t.Errorf("parseDollarAmount fallback = %v", v)
	}
	if v := parsePercentRate("4.5%", 0); math.Abs(v-0.045) > 0.0001 {
		t.Errorf("parsePercentRate = %v", v)
	}
	if v := parsePercentRate("garbage", 0.05); v != 0.05 {
		t.Errorf("parsePercentRate fallback = %v", v)
	}
	if s := parseSeasonality("1.0, 1.1, 0.9"); len(s) != 3 {
		t.Errorf("parseSeasonality = %v", s)
	}
	if s := parseSeasonality("1.0, oops"); s != nil {
		t.Errorf("parseSeasonality should reject bad tokens, got %v", s)
	}
}

// countingStrategy returns fixed monthly values and counts invocations.
type countingStrategy struct {
	value float64
	calls int
}

func (s *countingStrategy) Name() string { return "counting" }

func (s *countingStrategy) MonthlyProjection(ctx context.Context, enterpriseID int64, description string, growthRate float64, predictionYear int) (map[string]float64, error) {
	s.calls++
	monthly := map[string]float64{}
	for month := 1; month <= 12; month++ {
		monthly[fmt.Sprintf("%d-%02d", predictionYear, month)] = s.value
	}
	return monthly, nil
}

func TestCombinedPredictionBlends(t *testing.T) {
	// Setup
	c, err := cache.New()
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	defer c.Close()

	hypo := &countingStrategy{value: 1000}
	trend := &countingStrategy{value: 2000}
	p := NewCombinedPredictor(hypo, trend, c)
	p.Clock = fixedClock

	// Execute
	result, err := p.Predict(context.Background(), 1, "Product A", 0.10)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	// Verify: 0.3*1000 + 0.7*2000 = 1700 every month.
	if result.PredictionYear != 2027 {
		t.Errorf("PredictionYear = %d, want 2027", result.PredictionYear)
	}
	for month := 1; month <= 12; month++ {
		key := fmt.Sprintf("2027-%02d", month)
		if math.Abs(result.CombinedMonthly[key]-1700) > 0.0001 {
			t.Errorf("combined[%s] = %v, want 1700", key, result.CombinedMonthly[key])
		}
	}

	// A second run must come from cache without re-running the engines.
	if _, err := p.Predict(context.Background(), 1, "Product A", 0.10); err != nil {
		t.Fatalf("cached Predict failed: %v", err)
	}
	if hypo.calls != 1 || trend.calls != 1 {
		t.Errorf("engines re-ran: hypo=%d trend=%d", hypo.calls, trend.calls)
	}
}

func TestCombinedPredictionWithoutCache(t *testing.T) {
	hypo := &countingStrategy{value: 100}
	trend := &countingStrategy{value: 100}
	p := NewCombinedPredictor(hypo, trend, nil)
	p.Clock = fixedClock

	result, err := p.Predict(context.Background(), 1, "Product A", 0.0)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(result.CombinedMonthly["2027-06"]-100) > 0.0001 {
		t.Errorf("combined = %v, want 100", result.CombinedMonthly["2027-06"])
	}
}
