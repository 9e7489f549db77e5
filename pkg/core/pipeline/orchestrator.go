package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/cache"
	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/core/outlook"
	"enterprise_analytics/pkg/core/projection"
	"enterprise_analytics/pkg/core/seasonal"
	"enterprise_analytics/pkg/core/validation"
)

// =============================================================================
// PIPELINE ORCHESTRATOR
// =============================================================================

// Orchestrator wires the analysis stages behind one surface: the
// sufficiency gatekeeper, the industry analytics, the three projection
// engines and their weighted combination. Every entry point stamps a
// correlation id into the log stream.
type Orchestrator struct {
	Gateway gateway.DataGateway
	Outlook outlook.Provider
	Cache   *cache.Cache
	Clock   func() time.Time

	validator  *validation.Engine
	analyzer   *seasonal.Analyzer
	trend      *projection.TrendProjector
	unit       *projection.UnitEconomicsProjector
	hypothesis *projection.HypothesisProjector
	combined   *projection.CombinedPredictor
}

func New(gw gateway.DataGateway, provider outlook.Provider, c *cache.Cache) *Orchestrator {
	o := &Orchestrator{
		Gateway: gw,
		Outlook: provider,
		Cache:   c,
		Clock:   time.Now,
	}
	o.validator = validation.NewEngine(gw)
	o.analyzer = seasonal.NewAnalyzer(gw)
	o.trend = projection.NewTrendProjector(gw)
	o.unit = projection.NewUnitEconomicsProjector(gw)
	o.hypothesis = projection.NewHypothesisProjector(gw, provider)
	o.combined = projection.NewCombinedPredictor(o.hypothesis, o.trend, c)
	return o
}

// syncClocks pushes the orchestrator clock into every stage so a test
// clock governs the whole run.
func (o *Orchestrator) syncClocks() {
	o.validator.Clock = o.Clock
	o.analyzer.Clock = o.Clock
	o.trend.Clock = o.Clock
	o.unit.Clock = o.Clock
	o.hypothesis.Clock = o.Clock
	o.combined.Clock = o.Clock
}

func (o *Orchestrator) Validate(ctx context.Context, enterpriseID int64) (*validation.Report, error) {
	o.syncClocks()
	return o.validator.Validate(ctx, enterpriseID)
}

func (o *Orchestrator) AnalyzeSeasonal(ctx context.Context, enterpriseID int64, description string) (*seasonal.Report, error) {
	o.syncClocks()
	return o.analyzer.Analyze(ctx, enterpriseID, description)
}

func (o *Orchestrator) ProjectTrend(ctx context.Context, enterpriseID int64, description string, growthRate float64) (*projection.TrendResult, error) {
	o.syncClocks()
	return o.trend.Project(ctx, enterpriseID, description, growthRate)
}

func (o *Orchestrator) ProjectUnits(ctx context.Context, enterpriseID int64, description string, growthRate float64) (*projection.UnitResult, error) {
	o.syncClocks()
	return o.unit.Project(ctx, enterpriseID, description, growthRate)
}

func (o *Orchestrator) ProjectHypothesis(ctx context.Context, enterpriseID int64, growthRate float64) (*projection.HypothesisResult, error) {
	o.syncClocks()
	return o.hypothesis.Project(ctx, enterpriseID, growthRate, o.Clock().Year()+1)
}

func (o *Orchestrator) Predict(ctx context.Context, enterpriseID int64, description string, growthRate float64) (*projection.CombinedResult, error) {
	o.syncClocks()
	return o.combined.Predict(ctx, enterpriseID, description, growthRate)
}

// MarketTrends runs the qualitative industry analysis for the
// enterprise's own industry, spanning the current and next year.
func (o *Orchestrator) MarketTrends(ctx context.Context, enterpriseID int64) (*outlook.MarketTrends, error) {
	enterprise, err := o.Gateway.GetEnterprise(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	currentYear := o.Clock().Year()
	return o.Outlook.AnalyzeMarketTrends(ctx, enterprise.IndustryLabel, currentYear, currentYear+1)
}

// Narrative produces the analyst commentary over a finished combined
// prediction.
func (o *Orchestrator) Narrative(ctx context.Context, enterpriseID int64, description string, growthRate float64) (string, error) {
	enterprise, err := o.Gateway.GetEnterprise(ctx, enterpriseID)
	if err != nil {
		return "", err
	}
	prediction, err := o.Predict(ctx, enterpriseID, description, growthRate)
	if err != nil {
		return "", err
	}
	industryOutlook, err := o.Outlook.FetchIndustryOutlook(ctx, enterprise.IndustryLabel, prediction.PredictionYear)
	if err != nil {
		return "", err
	}
	return o.Outlook.GenerateNarrative(ctx, outlook.NarrativeRequest{
		IndustryType:   enterprise.IndustryLabel,
		GrowthRate:     growthRate,
		Enterprise:     enterprise,
		Predictions:    prediction.CombinedMonthly,
		Outlook:        industryOutlook,
		PredictionYear: prediction.PredictionYear,
	})
}

// Report is the full pipeline output for one enterprise.
type Report struct {
	RequestID  string                     `json:"request_id"`
	Validation *validation.Report         `json:"validation"`
	Seasonal   *seasonal.Report           `json:"seasonal,omitempty"`
	History    *HistoricalReport          `json:"history,omitempty"`
	Prediction *projection.CombinedResult `json:"prediction,omitempty"`
	Units      *projection.UnitResult     `json:"units,omitempty"`
	Trends     *outlook.MarketTrends      `json:"market_trends,omitempty"`
	Narrative  string                     `json:"narrative,omitempty"`
}

// Run executes the whole pipeline. The validation stage always runs;
// the downstream stages are skipped, not failed, when their inputs are
// insufficient.
func (o *Orchestrator) Run(ctx context.Context, enterpriseID int64, description string, growthRate float64) (*Report, error) {
	requestID := uuid.NewString()
	logger := log.DefaultLogger
	start := time.Now()

	logger.Info().
		Str("request_id", requestID).
		Int64("enterprise_id", enterpriseID).
		Str("description", description).
		Msg("pipeline run started")

	report := &Report{RequestID: requestID}

	validationReport, err := o.Validate(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	report.Validation = validationReport

	seasonalReport, err := o.AnalyzeSeasonal(ctx, enterpriseID, description)
	switch {
	case err == nil:
		report.Seasonal = seasonalReport
	case apperr.KindOf(err) == apperr.KindInsufficientData:
		logger.Warn().Str("request_id", requestID).Err(err).Msg("seasonal analysis skipped")
	default:
		return nil, err
	}

	history, err := o.HistoricalData(ctx, enterpriseID, description)
	if err != nil {
		return nil, err
	}
	report.History = history

	prediction, err := o.Predict(ctx, enterpriseID, description, growthRate)
	switch {
	case err == nil:
		report.Prediction = prediction
	case apperr.KindOf(err) == apperr.KindInsufficientData:
		logger.Warn().Str("request_id", requestID).Err(err).Msg("combined prediction skipped")
	default:
		return nil, err
	}

	// Unit economics anchors on any year with units or income, so the
	// revenue sufficiency gate is enforced here.
	if validationReport.Validations.Revenue {
		units, err := o.ProjectUnits(ctx, enterpriseID, description, growthRate)
		switch {
		case err == nil:
			report.Units = units
		case apperr.KindOf(err) == apperr.KindInsufficientData:
			logger.Warn().Str("request_id", requestID).Err(err).Msg("unit economics skipped")
		default:
			return nil, err
		}
	} else {
		logger.Warn().Str("request_id", requestID).Msg("unit economics skipped, revenue history not validated")
	}

	if trends, err := o.MarketTrends(ctx, enterpriseID); err == nil {
		report.Trends = trends
	} else {
		logger.Warn().Str("request_id", requestID).Err(err).Msg("market trend analysis failed")
	}

	if report.Prediction != nil {
		if narrative, err := o.Narrative(ctx, enterpriseID, description, growthRate); err == nil {
			report.Narrative = narrative
		} else {
			logger.Warn().Str("request_id", requestID).Err(err).Msg("narrative generation failed")
		}
	}

	logger.Info().
		Str("request_id", requestID).
		Float64("elapsed_seconds", time.Since(start).Seconds()).
		Bool("valid", validationReport.OverallValidation).
		Msg("pipeline run finished")

	return report, nil
}
