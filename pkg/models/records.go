// Package models holds the shared record types exchanged between the data
// gateway and the analytics engines. All of them are immutable facts sourced
// from the relational views; the engines never mutate them.
package models

import "time"

// Enterprise is the identity + industry metadata for one enterprise.
type Enterprise struct {
	ID            int64     `json:"enterprise_id"`
	Name          string    `json:"enterprise_name"`
	IndustryLabel string    `json:"industry_type_label"`
	Active        bool      `json:"enterprise_active"`
	FoundingDate  time.Time `json:"founding_date"`
	EmployeeCount int       `json:"employees_count"`
}

// Age returns the enterprise age in whole years as of the given year.
func (e *Enterprise) Age(year int) int {
	return year - e.FoundingDate.Year()
}

// RevenueRecord is one (enterprise, description, year, month) revenue fact.
// RealIncome/ExpectedIncome are monetary; sold units are counts.
type RevenueRecord struct {
	EnterpriseID      int64   `json:"enterprise_id"`
	Description       string  `json:"description"`
	Year              int     `json:"year"`
	Month             int     `json:"month"` // 1-12
	RealIncome        float64 `json:"real_income"`
	ExpectedIncome    float64 `json:"expected_income"`
	RealSoldUnits     float64 `json:"real_sold_units"`
	ExpectedSoldUnits float64 `json:"expected_sold_units"`
	// IncomePerformance is the ratio of real to expected income as reported
	// by the source view; nil when the view could not compute it.
	IncomePerformance *float64 `json:"income_performance,omitempty"`
}

// SalesBudgetRecord is one monthly sales-budget fact.
type SalesBudgetRecord struct {
	EnterpriseID int64   `json:"enterprise_id"`
	Description  string  `json:"description"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Budget       float64 `json:"budget"`
	Real         float64 `json:"real"`
}

// OrderBookRecord is a yearly order-book total. The source view has no month
// dimension, which matters for the monthly-coverage validation rule.
type OrderBookRecord struct {
	EnterpriseID int64   `json:"enterprise_id"`
	Year         int     `json:"year"`
	TotalValue   float64 `json:"total_order_value"`
}

// OpportunityRecord is a yearly opportunity-book total, also without a month
// dimension.
type OpportunityRecord struct {
	EnterpriseID int64   `json:"enterprise_id"`
	Year         int     `json:"year"`
	TotalValue   float64 `json:"total_opportunity_value"`
}
