package aggregate

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"enterprise_analytics/pkg/core/apperr"
	"enterprise_analytics/pkg/core/gateway"
)

// =============================================================================
// INDUSTRY PEER AGGREGATION
// =============================================================================

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthValue is one month of an industry average series.
type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// IndustryData holds per-year monthly averages across every active peer
// of one industry. Each year carries exactly 12 entries, January first;
// months with no observations average to zero.
type IndustryData struct {
	IndustryLabel  string               `json:"industry_type"`
	Years          []int                `json:"years"`
	AverageReals   map[int][]MonthValue `json:"aggregatedAverageReals"`
	AverageBudgets map[int][]MonthValue `json:"aggregatedAverageBudgets"`
}

// peerFetchLimit caps concurrent revenue queries during aggregation.
const peerFetchLimit = 8

type Aggregator struct {
	Gateway gateway.DataGateway
	Clock   func() time.Time
}

func NewAggregator(gw gateway.DataGateway) *Aggregator {
	return &Aggregator{Gateway: gw, Clock: time.Now}
}

// ForIndustry averages the monthly real and expected income of every
// active enterprise in the industry, per product description. Future
// years are excluded. Returns an insufficient-data error when no peer
// has a single usable record.
func (a *Aggregator) ForIndustry(ctx context.Context, industryLabel, description string) (*IndustryData, error) {
	const op = "aggregate.ForIndustry"

	peers, err := a.Gateway.ListIndustryPeers(ctx, industryLabel)
	if err != nil {
		return nil, err
	}

	currentYear := a.Clock().Year()
	filter := gateway.RevenueFilter{Description: description, MaxYear: currentYear}

	type slot struct{ year, month int }
	var (
		mu      sync.Mutex
		reals   = map[slot][]float64{}
		budgets = map[slot][]float64{}
		years   = map[int]bool{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(peerFetchLimit)
	for _, peer := range peers {
		peer := peer
		g.Go(func() error {
			revenues, err := a.Gateway.QueryRevenue(gctx, peer.ID, filter)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, r := range revenues {
				if r.Month < 1 || r.Month > 12 {
					continue
				}
				s := slot{r.Year, r.Month}
				if finite(r.RealIncome) {
					years[r.Year] = true
					reals[s] = append(reals[s], r.RealIncome)
				}
				if finite(r.ExpectedIncome) {
					years[r.Year] = true
					budgets[s] = append(budgets[s], r.ExpectedIncome)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(years) == 0 {
		return nil, apperr.InsufficientData(op, "no valid revenue data found for the related enterprises")
	}

	out := &IndustryData{
		IndustryLabel:  industryLabel,
		AverageReals:   map[int][]MonthValue{},
		AverageBudgets: map[int][]MonthValue{},
	}
	for y := range years {
		out.Years = append(out.Years, y)
	}
	sort.Ints(out.Years)

	for _, year := range out.Years {
		realRow := make([]MonthValue, 0, 12)
		budgetRow := make([]MonthValue, 0, 12)
		for month := 1; month <= 12; month++ {
			s := slot{year, month}
			realRow = append(realRow, MonthValue{Month: monthNames[month-1], Value: average(reals[s])})
			budgetRow = append(budgetRow, MonthValue{Month: monthNames[month-1], Value: average(budgets[s])})
		}
		out.AverageReals[year] = realRow
		out.AverageBudgets[year] = budgetRow
	}

	log.Debug().
		Str("industry", industryLabel).
		Str("description", description).
		Int("peers", len(peers)).
		Int("years", len(out.Years)).
		Msg("industry aggregation complete")

	return out, nil
}

// Values returns one year's real-income series in month order.
func (d *IndustryData) Values(year int) []float64 {
	row, ok := d.AverageReals[year]
	if !ok {
		return nil
	}
	vals := make([]float64, len(row))
	for i, mv := range row {
		vals[i] = mv.Value
	}
	return vals
}

// BudgetValues returns one year's expected-income series in month order.
func (d *IndustryData) BudgetValues(year int) []float64 {
	row, ok := d.AverageBudgets[year]
	if !ok {
		return nil
	}
	vals := make([]float64, len(row))
	for i, mv := range row {
		vals[i] = mv.Value
	}
	return vals
}

// finite reports whether v is a usable observation. NaN and infinite
// values are excluded from both the sum and the count of a monthly
// mean instead of being treated as zero.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
