package outlook

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/cache"
	"enterprise_analytics/pkg/core/llm"
	"enterprise_analytics/pkg/core/utils"
)

// =============================================================================
// LLM-BACKED MARKET ANALYST
// =============================================================================

// Analyst answers industry questions by combining scraped search
// snippets with a language model. Every path degrades instead of
// failing: a dead search yields an empty content block, a dead model
// yields the deterministic fallback.
type Analyst struct {
	LLM    llm.Provider
	Search SnippetFetcher
	Cache  *cache.Cache // optional; caches raw search snippets

	Timeout   time.Duration
	CacheTTL  time.Duration
	NumTrends int
	NumStats  int
}

var _ Provider = (*Analyst)(nil)

func NewAnalyst(provider llm.Provider, search SnippetFetcher) *Analyst {
	return &Analyst{
		LLM:       provider,
		Search:    search,
		Timeout:   30 * time.Second,
		CacheTTL:  time.Hour,
		NumTrends: 5,
		NumStats:  5,
	}
}

var cacheKeySanitizer = regexp.MustCompile(`[^\w]+`)

// FetchIndustryOutlook researches an industry for the prediction year.
// Missing pieces come back as "N/A"; the method itself never fails.
func (a *Analyst) FetchIndustryOutlook(ctx context.Context, industryType string, predictionYear int) (*IndustryOutlook, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	query := fmt.Sprintf("%s industry trends statistics financial analysis forecast %d", industryType, predictionYear)
	content := a.fetchSnippets(ctx, query, fmt.Sprintf("industry_outlook_%s_%d", sanitizeKey(industryType), predictionYear))

	prompt := fmt.Sprintf(`As a financial analyst, extract key information about the %[1]s industry for the year %[2]d from the following content:

%[3]s

Provide the following information:
1. Estimated average annual revenue for a company in this industry in %[2]d
2. Projected industry growth rate for %[2]d
3. Key trends affecting the industry in %[2]d (comma-separated list)
4. Potential challenges or risks for %[2]d (comma-separated list)
5. Seasonality factors for %[2]d (comma-separated list of 12 numbers, one for each month, or 'N/A' if not applicable)

Format your response as a JSON object with keys: average_revenue, growth_rate, trends, challenges, seasonality.
Use "N/A" if you can't find specific information for any field.`, industryType, predictionYear, content)

	outlook := &IndustryOutlook{}
	response, err := a.LLM.GenerateResponse(ctx, prompt, "", map[string]interface{}{"response_format": "json"})
	if err != nil {
		log.Warn().Err(err).Str("industry", industryType).Msg("outlook generation failed, using defaults")
	} else if _, perr := utils.SmartParse(response, outlook); perr != nil {
		extractOutlookFields(response, outlook)
	}

	applyOutlookDefaults(outlook, predictionYear)
	return outlook, nil
}

// AnalyzeMarketTrends produces trend and statistic lists plus a
// numeric growth hypothesis. Returns the deterministic fallback when
// the model is unreachable; the error result is always nil.
func (a *Analyst) AnalyzeMarketTrends(ctx context.Context, industryType string, currentYear, nextYear int) (*MarketTrends, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	content := a.fetchTrendContent(ctx, industryType, currentYear, nextYear)

	trends, statistics, trendsErr := a.extractTrendsAndStats(ctx, content, industryType, currentYear, nextYear)
	hypothesis, explanation, hypErr := a.generateHypothesis(ctx, content, industryType, currentYear, nextYear)

	if trendsErr != nil && hypErr != nil {
		log.Warn().
			Str("industry", industryType).
			Str("trends_err", trendsErr.Error()).
			Str("hypothesis_err", hypErr.Error()).
			Msg("market trend analysis unavailable, using fallback")
		return fallbackAnalysis(industryType, currentYear, nextYear), nil
	}

	cleanTrends := cleanAll(trends)
	cleanStats := cleanAll(statistics)
	return &MarketTrends{
		Trends:      limit(cleanTrends, a.NumTrends),
		Statistics:  limit(cleanStats, a.NumStats),
		Hypothesis:  extractNumeric(cleanText(hypothesis)),
		Explanation: cleanText(explanation),
	}, nil
}

func (a *Analyst) GenerateNarrative(ctx context.Context, req NarrativeRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	enterpriseName := ""
	if req.Enterprise != nil {
		enterpriseName = req.Enterprise.Name
	}

	prompt := fmt.Sprintf(`As a financial analyst, provide an analysis of the revenue predictions for %s in the %s industry for the year %d.
Use the following information:

Company Information:
%+v

Revenue Predictions for %d:
%v

Industry Data for %d:
%+v

Company's Expected Growth Rate: %.1f%%

Provide a detailed analysis covering:
1. Overall revenue projection for %d and how it compares to the industry average (if available)
2. Monthly revenue trends in %d and their alignment with industry seasonality (if available)
3. Potential impact of industry trends and challenges on the company in %d
4. How the company's age and size might influence its performance in %d
5. Recommendations for capitalizing on opportunities or mitigating risks in %d
6. Confidence level in the predictions and factors that could significantly alter the forecast

Your analysis should be detailed, insightful, and about 300-350 words long.`,
		enterpriseName, req.IndustryType, req.PredictionYear,
		req.Enterprise,
		req.PredictionYear, req.Predictions,
		req.PredictionYear, req.Outlook,
		req.GrowthRate*100,
		req.PredictionYear, req.PredictionYear, req.PredictionYear, req.PredictionYear, req.PredictionYear)

	narrative, err := a.LLM.GenerateResponse(ctx, prompt, "", nil)
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}
	return narrative, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// fetchTrendContent returns search snippets for the trend analysis,
// cached under the industry and year pair.
func (a *Analyst) fetchTrendContent(ctx context.Context, industryType string, currentYear, nextYear int) string {
	cacheKey := fmt.Sprintf("industry_data_%s_%d_%d", sanitizeKey(industryType), currentYear, nextYear)
	query := fmt.Sprintf("%s industry trends statistics financial analysis %d %d forecast", industryType, currentYear, nextYear)

	content := a.fetchSnippets(ctx, query, cacheKey)
	if content == "" {
		return fmt.Sprintf("Unable to fetch real-time data. Analyzing general trends for %s industry for %d-%d.", industryType, currentYear, nextYear)
	}
	return content
}

func (a *Analyst) fetchSnippets(ctx context.Context, query, cacheKey string) string {
	if a.Cache != nil {
		var cached string
		if found, err := a.Cache.Get(cacheKey, &cached); err == nil && found {
			return cached
		}
	}

	content, err := a.Search.FetchSnippets(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("failed to fetch search snippets")
		return ""
	}
	if a.Cache != nil && content != "" {
		if err := a.Cache.Set(cacheKey, content, a.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache snippets")
		}
	}
	return content
}

func (a *Analyst) extractTrendsAndStats(ctx context.Context, content, industryType string, currentYear, nextYear int) ([]string, []string, error) {
	prompt := fmt.Sprintf(`As a financial analyst specializing in the %[1]s industry, analyze the following information for %[2]d and %[3]d:

%[4]s

Provide two lists:
1. A list of %[5]d key market trends specific to the %[1]s industry, focusing on the transition from %[2]d to %[3]d.
2. A list of %[6]d statistical points or numerical facts about the %[1]s industry, with emphasis on %[3]d forecasts.

Ensure each point is tailored to the %[1]s industry and reflects the transition from %[2]d to %[3]d. Use precise figures where available, or provide reasonable estimates based on industry forecasts.

Format your response as two separate lists, each with bullet points.
First list: Trends
Second list: Statistics`, industryType, currentYear, nextYear, content, a.NumTrends, a.NumStats)

	response, err := a.LLM.GenerateResponse(ctx, prompt, "", nil)
	if err != nil {
		return nil, nil, err
	}

	var points []string
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			points = append(points, line)
		}
	}
	if len(points) <= a.NumTrends {
		return points, nil, nil
	}
	return points[:a.NumTrends], points[a.NumTrends:], nil
}

func (a *Analyst) generateHypothesis(ctx context.Context, content, industryType string, currentYear, nextYear int) (string, string, error) {
	prompt := fmt.Sprintf(`As a financial analyst specializing in the %[1]s industry, based on the following information:

%[2]s

1. Generate a brief revenue growth hypothesis with a specific percentage for the %[1]s industry in %[4]d, considering the transition from %[3]d.
2. Provide a short explanation for this hypothesis, considering key financial drivers and market conditions expected in the transition from %[3]d to %[4]d.

Format your response as:
Hypothesis: [Your hypothesis here]
Explanation: [Your explanation here]`, industryType, content, currentYear, nextYear)

	response, err := a.LLM.GenerateResponse(ctx, prompt, "", nil)
	if err != nil {
		return fmt.Sprintf("0%% growth for %s in %d", industryType, nextYear),
			fmt.Sprintf("Insufficient data to project growth from %d to %d.", currentYear, nextYear),
			err
	}

	hypothesis, explanation, found := strings.Cut(response, "Explanation:")
	if !found {
		return strings.TrimSpace(response), "", nil
	}
	hypothesis = strings.TrimSpace(strings.ReplaceAll(hypothesis, "Hypothesis:", ""))
	return hypothesis, strings.TrimSpace(explanation), nil
}

var outlookFieldRes = map[string]*regexp.Regexp{
	"average_revenue": regexp.MustCompile(`"average_revenue":\s*"([^"]+)"`),
	"growth_rate":     regexp.MustCompile(`"growth_rate":\s*"([^"]+)"`),
	"trends":          regexp.MustCompile(`"trends":\s*"([^"]+)"`),
	"challenges":      regexp.MustCompile(`"challenges":\s*"([^"]+)"`),
	"seasonality":     regexp.MustCompile(`"seasonality":\s*"([^"]+)"`),
}

// extractOutlookFields is the last-ditch parse when the response is
// not valid JSON in any lenient reading: grab quoted values per key.
func extractOutlookFields(response string, outlook *IndustryOutlook) {
	get := func(key string) string {
		if m := outlookFieldRes[key].FindStringSubmatch(response); m != nil {
			return m[1]
		}
		return ""
	}
	outlook.AverageRevenue = get("average_revenue")
	outlook.GrowthRate = get("growth_rate")
	outlook.Trends = get("trends")
	outlook.Challenges = get("challenges")
	outlook.Seasonality = get("seasonality")
}

func applyOutlookDefaults(outlook *IndustryOutlook, predictionYear int) {
	if outlook.AverageRevenue == "" {
		outlook.AverageRevenue = "N/A"
	}
	if outlook.GrowthRate == "" {
		outlook.GrowthRate = "N/A"
	}
	if outlook.Trends == "" {
		outlook.Trends = fmt.Sprintf("Digitalization, AI adoption, cloud computing in %d", predictionYear)
	}
	if outlook.Challenges == "" {
		outlook.Challenges = fmt.Sprintf("Economic uncertainty, cybersecurity threats, talent shortage in %d", predictionYear)
	}
	if outlook.Seasonality == "" {
		outlook.Seasonality = "N/A"
	}
}

func sanitizeKey(s string) string {
	return cacheKeySanitizer.ReplaceAllString(s, "_")
}

func cleanAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		out = append(out, cleanText(item))
	}
	return out
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
