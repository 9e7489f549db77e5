package gateway

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phuslu/log"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/models"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
)

// InitDB initializes the shared connection pool from the DATABASE_URL
// environment variable. Safe to call more than once.
func InitDB(ctx context.Context) error {
	var err error
	poolOnce.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the shared connection pool (nil before InitDB).
func GetPool() *pgxpool.Pool { return pool }

// Close closes the shared connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// PostgresGateway implements DataGateway against the reporting views
// (enterprise_industry_view, revenues_view, sales_budgets_view,
// order_book_view, opportunity_book_view).
type PostgresGateway struct {
	pool *pgxpool.Pool
}

// NewPostgresGateway wraps an initialized pool. Pass nil to use the shared
// pool created by InitDB.
func NewPostgresGateway(p *pgxpool.Pool) *PostgresGateway {
	if p == nil {
		p = pool
	}
	return &PostgresGateway{pool: p}
}

var _ DataGateway = (*PostgresGateway)(nil)

func (g *PostgresGateway) GetEnterprise(ctx context.Context, enterpriseID int64) (*models.Enterprise, error) {
	if g.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT enterprise_id, enterprise_name, industry_type_label,
		       enterprise_active, founding_date, COALESCE(employees_count, 0)
		FROM enterprise_industry_view
		WHERE enterprise_id = $1
	`
	var e models.Enterprise
	err := g.pool.QueryRow(ctx, query, enterpriseID).Scan(
		&e.ID, &e.Name, &e.IndustryLabel, &e.Active, &e.FoundingDate, &e.EmployeeCount,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("gateway.GetEnterprise", "enterprise %d does not exist", enterpriseID)
		}
		return nil, fmt.Errorf("failed to load enterprise %d: %w", enterpriseID, err)
	}
	return &e, nil
}

func (g *PostgresGateway) ListIndustryPeers(ctx context.Context, industryLabel string) ([]models.Enterprise, error) {
	if g.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT enterprise_id, enterprise_name, industry_type_label,
		       enterprise_active, founding_date, COALESCE(employees_count, 0)
		FROM enterprise_industry_view
		WHERE industry_type_label = $1 AND enterprise_active = TRUE
		ORDER BY enterprise_id
	`
	rows, err := g.pool.Query(ctx, query, industryLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to list peers for industry %q: %w", industryLabel, err)
	}
	defer rows.Close()

	peers := []models.Enterprise{}
	for rows.Next() {
		var e models.Enterprise
		if err := rows.Scan(&e.ID, &e.Name, &e.IndustryLabel, &e.Active, &e.FoundingDate, &e.EmployeeCount); err != nil {
			return nil, fmt.Errorf("failed to scan peer row: %w", err)
		}
		peers = append(peers, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("peer query failed: %w", err)
	}

	log.Debug().Str("industry", industryLabel).Int("peers", len(peers)).Msg("industry peers loaded")
	return peers, nil
}

func (g *PostgresGateway) QueryRevenue(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.RevenueRecord, error) {
	if g.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT enterprise_id, COALESCE(description, ''), year, month,
		       real_income, expected_income, real_sold_units, expected_sold_units,
		       income_performance
		FROM revenues_view
		WHERE enterprise_id = $1
	`
	args := []interface{}{enterpriseID}
	query, args = appendFilter(query, args, f)
	query += " ORDER BY year, month"

	rows, err := g.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("revenue query failed for enterprise %d: %w", enterpriseID, err)
	}
	defer rows.Close()

	records := []models.RevenueRecord{}
	for rows.Next() {
		var r models.RevenueRecord
		if err := rows.Scan(
			&r.EnterpriseID, &r.Description, &r.Year, &r.Month,
			&r.RealIncome, &r.ExpectedIncome, &r.RealSoldUnits, &r.ExpectedSoldUnits,
			&r.IncomePerformance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (g *PostgresGateway) QuerySalesBudget(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.SalesBudgetRecord, error) {
	if g.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT enterprise_id, COALESCE(description, ''), year, month, budget, real
		FROM sales_budgets_view
		WHERE enterprise_id = $1
	`
	args := []interface{}{enterpriseID}
	query, args = appendFilter(query, args, f)
	query += " ORDER BY year, month"

	rows, err := g.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sales budget query failed for enterprise %d: %w", enterpriseID, err)
	}
	defer rows.Close()

	records := []models.SalesBudgetRecord{}
	for rows.Next() {
		var r models.SalesBudgetRecord
		if err := rows.Scan(&r.EnterpriseID, &r.Description, &r.Year, &r.Month, &r.Budget, &r.Real); err != nil {
			return nil, fmt.Errorf("failed to scan sales budget row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (g *PostgresGateway) QueryOrderBook(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.OrderBookRecord, error) {
	if g.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT enterprise_id, year, total_order_value
		FROM order_book_view
		WHERE enterprise_id = $1
	`
	args := []interface{}{enterpriseID}
	query, args = appendYearFilter(query, args, f)
	query += " ORDER BY year"

	rows, err := g.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("order book query failed for enterprise %d: %w", enterpriseID, err)
	}
	defer rows.Close()

	records := []models.OrderBookRecord{}
	for rows.Next() {
		var r models.OrderBookRecord
		if err := rows.Scan(&r.EnterpriseID, &r.Year, &r.TotalValue); err != nil {
			return nil, fmt.Errorf("failed to scan order book row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (g *PostgresGateway) QueryOpportunities(ctx context.Context, enterpriseID int64, f RevenueFilter) ([]models.OpportunityRecord, error) {
	if g.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT enterprise_id, year, COALESCE(total_opportunity_value, 0)
		FROM opportunity_book_view
		WHERE enterprise_id = $1
	`
	args := []interface{}{enterpriseID}
	query, args = appendYearFilter(query, args, f)
	query += " ORDER BY year"

	rows, err := g.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("opportunity query failed for enterprise %d: %w", enterpriseID, err)
	}
	defer rows.Close()

	records := []models.OpportunityRecord{}
	for rows.Next() {
		var r models.OpportunityRecord
		if err := rows.Scan(&r.EnterpriseID, &r.Year, &r.TotalValue); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// appendFilter adds description and year constraints to a query that already
// has $1 bound.
func appendFilter(query string, args []interface{}, f RevenueFilter) (string, []interface{}) {
	if f.Description != "" {
		args = append(args, f.Description)
		query += fmt.Sprintf(" AND description = $%d", len(args))
	}
	return appendYearFilter(query, args, f)
}

func appendYearFilter(query string, args []interface{}, f RevenueFilter) (string, []interface{}) {
	var conds []string
	if f.MinYear != 0 {
		args = append(args, f.MinYear)
		conds = append(conds, fmt.Sprintf("year >= $%d", len(args)))
	}
	if f.MaxYear != 0 {
		args = append(args, f.MaxYear)
		conds = append(conds, fmt.Sprintf("year <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " AND " + strings.Join(conds, " AND ")
	}
	return query, args
}
