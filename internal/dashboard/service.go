// Package dashboard computes the summary shown on the dashboard page: card
// totals, week-over-week changes and the daily visit series.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/yourorg/salesdash/internal/cache"
	"github.com/yourorg/salesdash/internal/events"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/models"
	"github.com/yourorg/salesdash/internal/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	cachePrefix = "dashboard:"
	summaryKey  = cachePrefix + "summary"

	// days per comparison window
	windowDays = 7

	computeTimeout = 10 * time.Second
)

// Service builds the summary and caches it until the TTL elapses or a
// record changes.
type Service struct {
	gw    *store.Gateway
	cache cache.Store
	ttl   time.Duration
	log   logging.Logger
	now   func() time.Time

	group singleflight.Group
	gen   atomic.Uint64
}

func NewService(gw *store.Gateway, c cache.Store, ttl time.Duration, log logging.Logger) *Service {
	return &Service{
		gw:    gw,
		cache: c,
		ttl:   ttl,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns the cached summary or computes it. Concurrent misses share
// one computation.
func (s *Service) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	var cached models.DashboardSummary
	found, err := s.cache.Get(ctx, summaryKey, &cached)
	if err != nil {
		s.log.Warn(ctx, "summary cache read failed", "error", err)
	} else if found {
		return &cached, nil
	}

	v, err, _ := s.group.Do(summaryKey, func() (any, error) {
		// shared by every waiter, so it must not end with the first caller
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()

		var hit models.DashboardSummary
		if found, err := s.cache.Get(cctx, summaryKey, &hit); err == nil && found {
			return &hit, nil
		}

		gen := s.gen.Load()
		sum, err := s.compute(cctx)
		if err != nil {
			return nil, err
		}
		if s.gen.Load() == gen {
			if err := s.cache.Set(cctx, summaryKey, sum, s.ttl); err != nil {
				s.log.Warn(cctx, "summary cache write failed", "error", err)
			}
			// a write that landed during Set may have missed this entry
			if s.gen.Load() != gen {
				if err := s.cache.DeletePrefix(cctx, cachePrefix); err != nil {
					s.log.Warn(cctx, "summary cache invalidation failed", "error", err)
				}
			}
		}
		return sum, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DashboardSummary), nil
}

// Notify drops the cached summary after any record change.
func (s *Service) Notify(ctx context.Context, ev events.Event) {
	s.gen.Add(1)
	s.group.Forget(summaryKey)
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		s.log.Warn(ctx, "summary cache invalidation failed", "error", err, "event", ev.Type)
	}
}

func (s *Service) compute(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(2*windowDays - 1))

	var (
		websiteTotal, storeTotal, revenue, stock float64
		products                                 int64
		categories                               []store.GroupCount
		websiteDaily, storeDaily                 map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		websiteTotal, err = s.gw.Sum(gctx, "website_visits", "visit_count")
		return wrap("website visits total", err)
	})
	g.Go(func() (err error) {
		storeTotal, err = s.gw.Sum(gctx, "store_visits", "visit_count")
		return wrap("store visits total", err)
	})
	g.Go(func() (err error) {
		revenue, err = s.gw.Sum(gctx, "store_visits", "revenue")
		return wrap("revenue total", err)
	})
	g.Go(func() (err error) {
		products, err = s.gw.Count(gctx, "products")
		return wrap("product count", err)
	})
	g.Go(func() (err error) {
		stock, err = s.gw.Sum(gctx, "products", "stock_quantity")
		return wrap("stock total", err)
	})
	g.Go(func() (err error) {
		categories, err = s.gw.CountBy(gctx, "products", "category")
		return wrap("products by category", err)
	})
	g.Go(func() (err error) {
		websiteDaily, err = s.gw.DailySums(gctx, "website_visits", "visit_date", "visit_count", from, today)
		return wrap("website visits by day", err)
	})
	g.Go(func() (err error) {
		storeDaily, err = s.gw.DailySums(gctx, "store_visits", "visit_date", "visit_count", from, today)
		return wrap("store visits by day", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	websiteSeries, websiteCur, websitePrev := series(websiteDaily, today)
	storeSeries, storeCur, storePrev := series(storeDaily, today)

	sum := &models.DashboardSummary{
		TotalWebsiteVisits:  int64(websiteTotal),
		TotalStoreVisits:    int64(storeTotal),
		TotalRevenue:        math.Round(revenue*100) / 100,
		TotalProducts:       products,
		TotalStock:          int64(stock),
		WebsiteVisitsChange: PercentageChange(websiteCur, websitePrev),
		StoreVisitsChange:   PercentageChange(storeCur, storePrev),
		ProductsByCategory:  make([]models.CategoryCount, 0, len(categories)),
		WebsiteVisitsByDay:  websiteSeries,
		StoreVisitsByDay:    storeSeries,
		GeneratedAt:         now,
	}
	sum.WebsiteVisitsTrend = Trend(sum.WebsiteVisitsChange)
	sum.StoreVisitsTrend = Trend(sum.StoreVisitsChange)
	for _, c := range categories {
		sum.ProductsByCategory = append(sum.ProductsByCategory, models.CategoryCount{Category: c.Key, Count: c.Count})
	}
	return sum, nil
}

// series returns the last windowDays points ending today (oldest first) plus
// the totals of the current and previous windows.
func series(daily map[string]float64, today time.Time) ([]models.DailyPoint, float64, float64) {
	points := make([]models.DailyPoint, 0, windowDays)
	var cur, prev float64
	for i := 2*windowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(time.DateOnly)
		v := daily[day]
		if i >= windowDays {
			prev += v
			continue
		}
		cur += v
		points = append(points, models.DailyPoint{Date: day, Visits: int64(v)})
	}
	return points, cur, prev
}

// PercentageChange returns the whole-number change from previous to current.
// A zero previous yields 0 when current is also zero and 100 otherwise.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	// half rounds up, so -2.5 becomes -2
	return math.Floor((current-previous)/previous*100 + 0.5)
}

// Trend classifies a percentage change.
func Trend(pct float64) string {
	switch {
	case pct > 0:
		return models.TrendUp
	case pct < 0:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard %s: %w", what, err)
	}
	return nil
}
