// Package gateway is the boundary to the relational data store. The analytics
// engines only ever see the DataGateway interface; the Postgres implementation
// maps the reporting views, and MemoryGateway backs the tests.
package gateway

import (
	"context"

	"enterprise_analytics/pkg/models"
)

// RevenueFilter narrows a revenue query. Zero values mean "no constraint".
type RevenueFilter struct {
	Description string // exact match when non-empty
	MinYear     int    // inclusive
	MaxYear     int    // inclusive
}

// Matches reports whether a (description, year) pair passes the filter.
func (f RevenueFilter) Matches(description string, year int) bool {
	if f.Description != "" && f.Description != description {
		return false
	}
	if f.MinYear != 0 && year < f.MinYear {
		return false
	}
	if f.MaxYear != 0 && year > f.MaxYear {
		return false
	}
	return true
}

// DataGateway exposes the read-side of the financial data store.
// Implementations must return empty slices (never nil errors hiding data)
// when no rows match, and a KindNotFound error only for unknown enterprises.
type DataGateway interface {
	// GetEnterprise resolves one enterprise with its industry metadata.
	GetEnterprise(ctx context.Context, enterpriseID int64) (*models.Enterprise, error)

	// ListIndustryPeers returns every active enterprise carrying the given
	// industry label, including the target itself.
	ListIndustryPeers(ctx context.Context, industryLabel string) ([]models.Enterprise, error)

	// QueryRevenue returns monthly revenue facts for one enterprise.
	QueryRevenue(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.RevenueRecord, error)

	// QuerySalesBudget returns monthly sales-budget facts.
	QuerySalesBudget(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.SalesBudgetRecord, error)

	// QueryOrderBook returns yearly order-book totals.
	QueryOrderBook(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.OrderBookRecord, error)

	// QueryOpportunities returns yearly opportunity-book totals.
	QueryOpportunities(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.OpportunityRecord, error)
}
