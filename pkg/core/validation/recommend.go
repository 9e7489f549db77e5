package validation

import "fmt"

// buildRecommendations turns the raw flags and quality metrics into the
// ordered advice list shown to analysts. Order matters: insufficiency
// warnings first, then consistency, budget accuracy, recurrence,
// performance, and monthly coverage.
func buildRecommendations(r *Report) []string {
	recs := []string{}

	if !r.OverallValidation {
		if !r.Validations.Revenue {
			recs = append(recs, "Insufficient historical revenue data. Expand data collection to improve analysis accuracy.")
		}
		if !r.Validations.SalesBudget {
			recs = append(recs, "Limited sales budget history. Consider incorporating more historical budget data for better forecasting.")
		}
		if !r.Validations.OrderBook {
			recs = append(recs, "Insufficient order book history. Enhance order tracking to improve future predictions.")
		}
		if !r.Validations.Opportunity {
			recs = append(recs, "Limited opportunity data. Implement robust opportunity tracking to refine sales forecasts.")
		}
		if !r.Validations.Performance {
			recs = append(recs, "Insufficient performance data. Ensure consistent tracking of performance metrics for better analysis.")
		}
	}

	consistencyChecks := []struct {
		name  string
		value *float64
	}{
		{"revenue", r.DataQuality.Revenue.DataConsistency},
		{"sales_budget", r.DataQuality.SalesBudget.DataConsistency},
		{"order_book", r.DataQuality.OrderBook.DataConsistency},
		{"opportunity", r.DataQuality.Opportunity.DataConsistency},
	}
	for _, c := range consistencyChecks {
		if c.value == nil {
			continue
		}
		switch {
		case *c.value < 0.3:
			recs = append(recs, fmt.Sprintf("Very low consistency detected in %s data. Urgently review and improve data collection processes.", c.name))
		case *c.value < 0.5:
			recs = append(recs, fmt.Sprintf("Low consistency detected in %s data. Review data collection processes for potential improvements.", c.name))
		case *c.value < 0.7:
			recs = append(recs, fmt.Sprintf("Moderate consistency in %s data. Consider ways to further improve data reliability.", c.name))
		}
	}

	switch accuracy := r.DataQuality.SalesBudget.BudgetAccuracy; {
	case accuracy < 0.5:
		recs = append(recs, "Very low budget accuracy detected. Urgently review budgeting process to improve alignment with actual results.")
	case accuracy < 0.8:
		recs = append(recs, "Low budget accuracy detected. Review budgeting process to improve alignment with actual results.")
	case accuracy < 0.9:
		recs = append(recs, "Moderate budget accuracy. Consider fine-tuning your budgeting process for even better forecasts.")
	}

	if r.Validations.RecurrentRevenue {
		switch r.DataQuality.RecurrentRevenue {
		case 1.0:
			recs = append(recs, "Revenue shows high recurrence. This predictability can be leveraged for more accurate forecasting and strategic planning.")
		case 0.5:
			recs = append(recs, "Revenue shows moderate recurrence. Consider strategies to increase recurring revenue streams for improved predictability.")
		}
	} else {
		recs = append(recs, "Revenue does not show strong recurrence patterns. Explore opportunities to develop more predictable revenue streams and diversify income sources.")
	}

	if r.Validations.Performance {
		avg := r.DataQuality.Performance.AvgPerformance
		switch {
		case avg < 0.6:
			recs = append(recs, fmt.Sprintf("Average performance (%.2f) is significantly below target. Urgently review strategies and implement improvement plans.", avg))
		case avg < 0.8:
			recs = append(recs, fmt.Sprintf("Average performance (%.2f) is below target. Review strategies to improve overall performance.", avg))
		case avg > 1.2:
			recs = append(recs, fmt.Sprintf("Average performance (%.2f) is significantly above target. Consider adjusting targets, expanding operations, or reinvesting in growth.", avg))
		default:
			recs = append(recs, fmt.Sprintf("Average performance (%.2f) is within expected range. Continue monitoring and optimizing strategies for sustained success.", avg))
		}
	} else {
		recs = append(recs, "Insufficient performance data available. Implement consistent performance tracking for better insights and decision-making.")
	}

	if r.Validations.MonthlyPerformance {
		recs = append(recs, "Monthly performance data is available, which allows for more detailed trend analysis and forecasting. Utilize this granular data for more precise planning.")
	} else {
		recs = append(recs, "Monthly performance data is incomplete. Implement more frequent performance tracking for improved insights and ability to react quickly to changes.")
	}

	missing := ""
	monthlyChecks := []struct {
		name string
		ok   bool
	}{
		{"revenue", r.Validations.MonthlyRevenue},
		{"sales_budget", r.Validations.MonthlySalesBudget},
		{"order_book", r.Validations.MonthlyOrderBook},
		{"opportunity", r.Validations.MonthlyOpportunity},
		{"performance", r.Validations.MonthlyPerformance},
	}
	for _, m := range monthlyChecks {
		if m.ok {
			continue
		}
		if missing != "" {
			missing += ", "
		}
		missing += m.name
	}
	if missing != "" {
		recs = append(recs, fmt.Sprintf("Monthly data is missing or incomplete for: %s. Implement monthly tracking for these areas to improve prediction accuracy and enable more timely decision-making.", missing))
	} else {
		recs = append(recs, "Excellent! Monthly data is available for all key areas. Leverage this comprehensive data for detailed analysis, accurate forecasting, and agile business strategies.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Data quality is sufficient for analysis. Continue maintaining consistent data collection practices and consider more advanced analytics to gain deeper insights.")
	}
	return recs
}
