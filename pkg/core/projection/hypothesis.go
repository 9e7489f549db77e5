package projection

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/core/outlook"
)

// =============================================================================
// MARKET-HYPOTHESIS PROJECTION
// =============================================================================

// HypothesisProjector derives a monthly revenue hypothesis from the
// industry outlook instead of the enterprise's own history: researched
// average industry revenue, scaled by enterprise size and age, grown by
// the blend of the caller's rate and the researched industry rate.
type HypothesisProjector struct {
	Gateway gateway.DataGateway
	Outlook outlook.Provider
	Clock   func() time.Time
	// Uniform returns the monthly noise factor. The default draws
	// from [0.95, 1.05); tests pin it to a constant.
	Uniform func() float64
}

func NewHypothesisProjector(gw gateway.DataGateway, provider outlook.Provider) *HypothesisProjector {
	return &HypothesisProjector{
		Gateway: gw,
		Outlook: provider,
		Clock:   time.Now,
		Uniform: func() float64 { return 0.95 + rand.Float64()*0.1 },
	}
}

var _ Strategy = (*HypothesisProjector)(nil)

func (p *HypothesisProjector) Name() string { return "market_hypothesis" }

// HypothesisResult bundles the monthly hypothesis with the outlook it
// was derived from.
type HypothesisResult struct {
	PredictionYear     int                      `json:"prediction_year"`
	MonthlyPredictions map[string]float64       `json:"monthly_predictions"`
	Outlook            *outlook.IndustryOutlook `json:"industry_data"`
}

func (p *HypothesisProjector) Project(ctx context.Context, enterpriseID int64, growthRate float64, predictionYear int) (*HypothesisResult, error) {
	enterprise, err := p.Gateway.GetEnterprise(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}

	industryOutlook, err := p.Outlook.FetchIndustryOutlook(ctx, enterprise.IndustryLabel, predictionYear)
	if err != nil {
		return nil, fmt.Errorf("fetching industry outlook: %w", err)
	}

	baseRevenue := parseDollarAmount(industryOutlook.AverageRevenue, 100000)
	industryGrowth := parsePercentRate(industryOutlook.GrowthRate, 0.05)
	combinedGrowth := (growthRate + industryGrowth) / 2
	seasonality := parseSeasonality(industryOutlook.Seasonality)

	employees := enterprise.EmployeeCount
	if employees < 0 {
		employees = 0
	}
	baseRevenue *= math.Max(1, math.Sqrt(float64(employees)/10))

	companyAge := predictionYear - enterprise.FoundingDate.Year()
	ageFactor := math.Pow(float64(companyAge+1), 0.3)
	ageFactor = math.Min(1.5, math.Max(0.5, ageFactor))
	baseRevenue *= ageFactor

	monthly := make(map[string]float64, 12)
	for month := 1; month <= 12; month++ {
		monthlyGrowth := math.Pow(1+combinedGrowth, float64(month)/12)
		seasonal := 1.0
		if len(seasonality) == 12 {
			seasonal = seasonality[month-1]
		}
		revenue := baseRevenue * monthlyGrowth * seasonal * p.Uniform()
		monthly[fmt.Sprintf("%d-%02d", predictionYear, month)] = round2(revenue)
	}

	log.Debug().
		Int64("enterprise_id", enterpriseID).
		Str("industry", enterprise.IndustryLabel).
		Float64("combined_growth", combinedGrowth).
		Msg("market hypothesis projection complete")

	return &HypothesisResult{
		PredictionYear:     predictionYear,
		MonthlyPredictions: monthly,
		Outlook:            industryOutlook,
	}, nil
}

// MonthlyProjection implements Strategy. The description is unused:
// the hypothesis models the enterprise as a whole.
func (p *HypothesisProjector) MonthlyProjection(ctx context.Context, enterpriseID int64, _ string, growthRate float64, predictionYear int) (map[string]float64, error) {
	result, err := p.Project(ctx, enterpriseID, growthRate, predictionYear)
	if err != nil {
		return nil, err
	}
	return result.MonthlyPredictions, nil
}

func parseDollarAmount(s string, fallback float64) float64 {
	if s == "" || s == "N/A" {
		return fallback
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parsePercentRate(s string, fallback float64) float64 {
	if s == "" || s == "N/A" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
	if err != nil {
		return fallback
	}
	return v / 100
}

func parseSeasonality(s string) []float64 {
	if s == "" || s == "N/A" {
		return nil
	}
	parts := strings.Split(s, ",")
	factors := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil
		}
		factors = append(factors, v)
	}
	return factors
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
