package projection

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/cache"
)

// =============================================================================
// COMBINED PROJECTION
// =============================================================================

// Weighting of the two engines in the combined figure. The historical
// trend dominates; the market hypothesis nudges it toward the
// researched outlook.
const (
	hypothesisWeight = 0.3
	trendWeight      = 0.7
)

const combinedCacheTTL = time.Hour

// CombinedResult is the blended monthly projection plus the two inputs
// it was blended from.
type CombinedResult struct {
	EnterpriseID      int64              `json:"enterprise_id"`
	Description       string             `json:"description"`
	PredictionYear    int                `json:"prediction_year"`
	GrowthRate        float64            `json:"growth_rate"`
	CombinedMonthly   map[string]float64 `json:"combined_monthly"`
	HypothesisMonthly map[string]float64 `json:"hypothesis_monthly"`
	TrendMonthly      map[string]float64 `json:"trend_monthly"`
}

// CombinedPredictor blends the market hypothesis and the historical
// trend per month. Each engine's output and the blend itself are
// cached for an hour so repeated report generation does not re-run
// the research path.
type CombinedPredictor struct {
	Hypothesis Strategy
	Trend      Strategy
	Cache      *cache.Cache
	Clock      func() time.Time
}

func NewCombinedPredictor(hypothesis, trend Strategy, c *cache.Cache) *CombinedPredictor {
	return &CombinedPredictor{
		Hypothesis: hypothesis,
		Trend:      trend,
		Cache:      c,
		Clock:      time.Now,
	}
}

func (p *CombinedPredictor) Predict(ctx context.Context, enterpriseID int64, description string, growthRate float64) (*CombinedResult, error) {
	predictionYear := p.Clock().Year() + 1
	growthKey := strconv.FormatFloat(growthRate, 'g', -1, 64)

	combinedKey := fmt.Sprintf("combined_prediction_%d_%s_%s_%d", enterpriseID, description, growthKey, predictionYear)
	var cached CombinedResult
	if ok, err := p.cacheGet(combinedKey, &cached); err != nil {
		return nil, err
	} else if ok {
		return &cached, nil
	}

	hypoKey := fmt.Sprintf("web_hypo_%d_%s_%d", enterpriseID, growthKey, predictionYear)
	hypoMonthly, err := p.runCached(ctx, p.Hypothesis, hypoKey, enterpriseID, description, growthRate, predictionYear)
	if err != nil {
		return nil, fmt.Errorf("hypothesis projection: %w", err)
	}

	trendKey := fmt.Sprintf("pred_globale_%d_%s_%s", enterpriseID, description, growthKey)
	trendMonthly, err := p.runCached(ctx, p.Trend, trendKey, enterpriseID, description, growthRate, predictionYear)
	if err != nil {
		return nil, fmt.Errorf("trend projection: %w", err)
	}

	combined := make(map[string]float64, 12)
	for month := 1; month <= 12; month++ {
		key := fmt.Sprintf("%d-%02d", predictionYear, month)
		blend := hypothesisWeight*hypoMonthly[key] + trendWeight*trendMonthly[key]
		combined[key] = round2(blend)
	}

	result := &CombinedResult{
		EnterpriseID:      enterpriseID,
		Description:       description,
		PredictionYear:    predictionYear,
		GrowthRate:        growthRate,
		CombinedMonthly:   combined,
		HypothesisMonthly: hypoMonthly,
		TrendMonthly:      trendMonthly,
	}
	p.cacheSet(combinedKey, result)

	log.Debug().
		Int64("enterprise_id", enterpriseID).
		Int("prediction_year", predictionYear).
		Msg("combined projection complete")

	return result, nil
}

func (p *CombinedPredictor) runCached(ctx context.Context, strategy Strategy, key string, enterpriseID int64, description string, growthRate float64, predictionYear int) (map[string]float64, error) {
	var monthly map[string]float64
	if ok, err := p.cacheGet(key, &monthly); err != nil {
		return nil, err
	} else if ok {
		return monthly, nil
	}
	monthly, err := strategy.MonthlyProjection(ctx, enterpriseID, description, growthRate, predictionYear)
	if err != nil {
		return nil, err
	}
	p.cacheSet(key, monthly)
	return monthly, nil
}

func (p *CombinedPredictor) cacheGet(key string, out interface{}) (bool, error) {
	if p.Cache == nil {
		return false, nil
	}
	return p.Cache.Get(key, out)
}

func (p *CombinedPredictor) cacheSet(key string, value interface{}) {
	if p.Cache == nil {
		return
	}
	if err := p.Cache.Set(key, value, combinedCacheTTL); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("caching projection failed")
	}
}
