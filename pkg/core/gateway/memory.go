package gateway

import (
	"context"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/models"
)

// MemoryGateway is an in-memory DataGateway used by tests and demos.
// Populate the exported slices directly; queries copy, never mutate.
type MemoryGateway struct {
	Enterprises   []models.Enterprise
	Revenues      []models.RevenueRecord
	SalesBudgets  []models.SalesBudgetRecord
	OrderBooks    []models.OrderBookRecord
	Opportunities []models.OpportunityRecord
}

var _ DataGateway = (*MemoryGateway)(nil)

func (g *MemoryGateway) GetEnterprise(ctx context.Context, enterpriseID int64) (*models.Enterprise, error) {
	for i := range g.Enterprises {
		if g.Enterprises[i].ID == enterpriseID {
			e := g.Enterprises[i]
			return &e, nil
		}
	}
	return nil, apperr.NotFound("gateway.GetEnterprise", "enterprise %d does not exist", enterpriseID)
}

func (g *MemoryGateway) ListIndustryPeers(ctx context.Context, industryLabel string) ([]models.Enterprise, error) {
	peers := []models.Enterprise{}
	for _, e := range g.Enterprises {
		if e.Active && e.IndustryLabel == industryLabel {
			peers = append(peers, e)
		}
	}
	return peers, nil
}

func (g *MemoryGateway) QueryRevenue(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.RevenueRecord, error) {
	out := []models.RevenueRecord{}
	for _, r := range g.Revenues {
		if r.EnterpriseID == enterpriseID && f.Matches(r.Description, r.Year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *MemoryGateway) QuerySalesBudget(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.SalesBudgetRecord, error) {
	out := []models.SalesBudgetRecord{}
	for _, r := range g.SalesBudgets {
		if r.EnterpriseID == enterpriseID && f.Matches(r.Description, r.Year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *MemoryGateway) QueryOrderBook(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.OrderBookRecord, error) {
	out := []models.OrderBookRecord{}
	for _, r := range g.OrderBooks {
		if r.EnterpriseID == enterpriseID && f.Matches("", r.Year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *MemoryGateway) QueryOpportunities(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.OpportunityRecord, error) {
	out := []models.OpportunityRecord{}
	for _, r := range g.Opportunities {
		if r.EnterpriseID == enterpriseID && f.Matches("", r.Year) {
			out = append(out, r)
		}
	}
	return out, nil
}
