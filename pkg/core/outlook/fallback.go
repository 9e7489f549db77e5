package outlook

import "fmt"

// fallbackAnalysis is the deterministic answer used when no external
// intelligence could be gathered. Generic but well-formed, so the
// downstream blend still has something to work with.
func fallbackAnalysis(industryType string, currentYear, nextYear int) *MarketTrends {
	return &MarketTrends{
		Trends: []string{
			fmt.Sprintf("Increasing digitalization in %s", industryType),
			fmt.Sprintf("Growing focus on efficiency and cost-cutting measures in %s", industryType),
			fmt.Sprintf("Rising importance of data-driven decision making in %s", industryType),
			fmt.Sprintf("Shift towards sustainable practices in %s", industryType),
			fmt.Sprintf("Emerging challenges in cybersecurity and data protection for %s", industryType),
		},
		Statistics: []string{
			fmt.Sprintf("The global %s market is projected to reach $X billion in %d", industryType, nextYear),
			fmt.Sprintf("CAGR for %s is expected to be Y%% from %d to %d", industryType, currentYear, nextYear),
			fmt.Sprintf("Top players in %s are forecasted to hold Z%% market share in %d", industryType, nextYear),
			fmt.Sprintf("R&D spending in %s is projected to increase by W%% in %d", industryType, nextYear),
			fmt.Sprintf("Average profit margins in %s are expected to be V%% in %d", industryType, nextYear),
		},
		Hypothesis:  0.0,
		Explanation: fmt.Sprintf("Unable to generate specific analysis for %s for %d. Using generic industry trends and statistics based on %d data.", industryType, nextYear, currentYear),
	}
}
