package aggregate

import (
	"context"
	"math"
	"testing"
	"time"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/models"
)

func fixedClock() time.Time {
	return time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func TestForIndustryAveragesPeers(t *testing.T) {
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{
			{ID: 1, Name: "Alpha", IndustryLabel: "Manufacturing", Active: true},
			{ID: 2, Name: "Beta", IndustryLabel: "Manufacturing", Active: true},
			{ID: 3, Name: "Gamma", IndustryLabel: "Retail", Active: true},
			{ID: 4, Name: "Dormant", IndustryLabel: "Manufacturing", Active: false},
		},
		Revenues: []models.RevenueRecord{
			{EnterpriseID: 1, Description: "widgets", Year: 2025, Month: 1, RealIncome: 100, ExpectedIncome: 110},
			{EnterpriseID: 2, Description: "widgets", Year: 2025, Month: 1, RealIncome: 300, ExpectedIncome: 290},
			{EnterpriseID: 1, Description: "widgets", Year: 2025, Month: 2, RealIncome: 50, ExpectedIncome: 60},
			// Different product, must not be mixed in.
			{EnterpriseID: 1, Description: "gadgets", Year: 2025, Month: 1, RealIncome: 9999, ExpectedIncome: 9999},
			// Other industry, must not be mixed in.
			{EnterpriseID: 3, Description: "widgets", Year: 2025, Month: 1, RealIncome: 7777, ExpectedIncome: 7777},
			// Future year, excluded.
			{EnterpriseID: 1, Description: "widgets", Year: 2027, Month: 1, RealIncome: 1, ExpectedIncome: 1},
		},
	}

	agg := NewAggregator(gw)
	agg.Clock = fixedClock

	data, err := agg.ForIndustry(context.Background(), "Manufacturing", "widgets")
	if err != nil {
		t.Fatalf("ForIndustry failed: %v", err)
	}

	if len(data.Years) != 1 || data.Years[0] != 2025 {
		t.Fatalf("years expected [2025], got %v", data.Years)
	}

	reals := data.AverageReals[2025]
	if len(reals) != 12 {
		t.Fatalf("expected 12 monthly entries, got %d", len(reals))
	}
	if reals[0].Month != "January" || reals[11].Month != "December" {
		t.Errorf("month labels wrong: first %q last %q", reals[0].Month, reals[11].Month)
	}
	// January: (100 + 300) / 2.
	if math.Abs(reals[0].Value-200) > 0.0001 {
		t.Errorf("January real average expected 200, got %f", reals[0].Value)
	}
	// February: single observation.
	if math.Abs(reals[1].Value-50) > 0.0001 {
		t.Errorf("February real average expected 50, got %f", reals[1].Value)
	}
	// March: no observations, averages to zero.
	if reals[2].Value != 0 {
		t.Errorf("March real average expected 0, got %f", reals[2].Value)
	}

	budgets := data.AverageBudgets[2025]
	if math.Abs(budgets[0].Value-200) > 0.0001 {
		t.Errorf("January budget average expected 200, got %f", budgets[0].Value)
	}

	vals := data.Values(2025)
	if len(vals) != 12 || vals[0] != 200 || vals[1] != 50 {
		t.Errorf("Values(2025) unexpected: %v", vals)
	}
	if data.Values(1999) != nil {
		t.Error("Values for a missing year should be nil")
	}
}

func TestForIndustryExcludesNonFiniteValues(t *testing.T) {
	// Setup: one peer reports NaN income and Inf budget in January. The
	// month's mean must come from the remaining observations, not
	// collapse to NaN.
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{
			{ID: 1, Name: "Alpha", IndustryLabel: "Manufacturing", Active: true},
			{ID: 2, Name: "Beta", IndustryLabel: "Manufacturing", Active: true},
		},
		Revenues: []models.RevenueRecord{
			{EnterpriseID: 1, Description: "widgets", Year: 2025, Month: 1, RealIncome: 100, ExpectedIncome: 110},
			{EnterpriseID: 2, Description: "widgets", Year: 2025, Month: 1, RealIncome: math.NaN(), ExpectedIncome: math.Inf(1)},
		},
	}

	agg := NewAggregator(gw)
	agg.Clock = fixedClock

	data, err := agg.ForIndustry(context.Background(), "Manufacturing", "widgets")
	if err != nil {
		t.Fatalf("ForIndustry failed: %v", err)
	}

	// Verify: the bad observation is absent from numerator and
	// denominator alike.
	jan := data.AverageReals[2025][0]
	if math.Abs(jan.Value-100) > 0.0001 {
		t.Errorf("January real average expected 100, got %f", jan.Value)
	}
	janBudget := data.AverageBudgets[2025][0]
	if math.Abs(janBudget.Value-110) > 0.0001 {
		t.Errorf("January budget average expected 110, got %f", janBudget.Value)
	}
}

func TestForIndustryNoData(t *testing.T) {
	gw := &gateway.MemoryGateway{
		Enterprises: []models.Enterprise{
			{ID: 1, Name: "Alpha", IndustryLabel: "Manufacturing", Active: true},
		},
	}

	agg := NewAggregator(gw)
	agg.Clock = fixedClock

	_, err := agg.ForIndustry(context.Background(), "Manufacturing", "widgets")
	if err == nil {
		t.Fatal("expected an error with no peer revenue data")
	}
	if apperr.KindOf(err) != apperr.KindInsufficientData {
		t.Errorf("expected kind %q, got %q (%v)", apperr.KindInsufficientData, apperr.KindOf(err), err)
	}
}
