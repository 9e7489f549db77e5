package outlook

import (
	"context"

	"enterprise_analytics/pkg/models"
)

// IndustryOutlook is the distilled web research for one industry and
// prediction year. String fields keep the analyst-facing form: revenue
// like "$1,200,000", growth like "4.5%", seasonality as 12
// comma-separated multipliers. "N/A" marks unknown values.
type IndustryOutlook struct {
	AverageRevenue string `json:"average_revenue"`
	GrowthRate     string `json:"growth_rate"`
	Trends         string `json:"trends"`
	Challenges     string `json:"challenges"`
	Seasonality    string `json:"seasonality"`
}

// MarketTrends is the qualitative market analysis for an industry:
// trend and statistic bullet lists plus a numeric growth hypothesis
// (percent) extracted from the analysis text.
type MarketTrends struct {
	Trends      []string `json:"trends"`
	Statistics  []string `json:"statistics"`
	Hypothesis  float64  `json:"hypothesis"`
	Explanation string   `json:"explanation"`
}

// NarrativeRequest carries everything the narrative generation needs.
type NarrativeRequest struct {
	IndustryType   string
	GrowthRate     float64
	Enterprise     *models.Enterprise
	Predictions    map[string]float64
	Outlook        *IndustryOutlook
	PredictionYear int
}

// Provider supplies external industry intelligence to the projection
// stages.
type Provider interface {
	FetchIndustryOutlook(ctx context.Context, industryType string, predictionYear int) (*IndustryOutlook, error)
	AnalyzeMarketTrends(ctx context.Context, industryType string, currentYear, nextYear int) (*MarketTrends, error)
	GenerateNarrative(ctx context.Context, req NarrativeRequest) (string, error)
}

// Static returns fixed payloads. Used in tests and offline runs.
type Static struct {
	Outlook   IndustryOutlook
	Trends    MarketTrends
	Narrative string
	Err       error
}

var _ Provider = (*Static)(nil)

func (s *Static) FetchIndustryOutlook(ctx context.Context, industryType string, predictionYear int) (*IndustryOutlook, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.Outlook
	return &out, nil
}

func (s *Static) AnalyzeMarketTrends(ctx context.Context, industryType string, currentYear, nextYear int) (*MarketTrends, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.Trends
	return &out, nil
}

func (s *Static) GenerateNarrative(ctx context.Context, req NarrativeRequest) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Narrative, nil
}
