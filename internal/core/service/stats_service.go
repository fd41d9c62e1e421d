package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

const (
	monthLayout      = "2006-01"
	defaultStatsSpan = 6 // months, current one included
)

type marketSnapshotter interface {
	Snapshot() ([]*domain.Need, []*domain.ServiceOffer)
}

// StatsService aggregates needs and accepted offers per month and region.
type StatsService struct {
	market marketSnapshotter
	log    zerolog.Logger
	now    func() time.Time
}

var _ ports.StatsService = (*StatsService)(nil)

func NewStatsService(market marketSnapshotter, log zerolog.Logger) *StatsService {
	return &StatsService{market: market, log: log, now: time.Now}
}

// Monthly groups needs by creation month and region, and accepted offers by
// creation month and the region of their need. Cumulative counts run over
// all regions up to and including each row's month.
func (s *StatsService) Monthly(_ context.Context, sess domain.Session, q ports.StatsQuery) (*ports.StatsResult, error) {
	if !sess.IsLogin {
		return nil, domain.ErrUnauthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	start, end, err := s.monthRange(q)
	if err != nil {
		return nil, err
	}
	endNext := end.AddDate(0, 1, 0)
	inRange := func(t time.Time) bool {
		t = t.UTC()
		return !t.Before(start) && t.Before(endNext)
	}

	needs, offers := s.market.Snapshot()
	regionOf := make(map[string]string, len(needs))
	for _, n := range needs {
		regionOf[n.NeedID] = n.Region
	}

	type key struct{ month, region string }
	rows := map[key]*ports.StatsRow{}
	row := func(month, region string) *ports.StatsRow {
		k := key{month, region}
		r, ok := rows[k]
		if !ok {
			r = &ports.StatsRow{Month: month, Region: region}
			rows[k] = r
		}
		return r
	}

	for _, n := range needs {
		if !inRange(n.CreateTime) || (q.RegionKeyword != "" && !containsFold(n.Region, q.RegionKeyword)) {
			continue
		}
		row(n.CreateTime.UTC().Format(monthLayout), n.Region).MonthNeedCount++
	}
	for _, o := range offers {
		if o.Status != domain.OfferAccepted || !inRange(o.CreateTime) {
			continue
		}
		region := regionOf[o.NeedID]
		if q.RegionKeyword != "" && !containsFold(region, q.RegionKeyword) {
			continue
		}
		row(o.CreateTime.UTC().Format(monthLayout), region).MonthServiceSuccessCount++
	}

	result := &ports.StatsResult{List: []ports.StatsRow{}}
	if len(rows) == 0 {
		return result, nil
	}

	perMonthNeed := map[string]int{}
	perMonthSvc := map[string]int{}
	for _, r := range rows {
		perMonthNeed[r.Month] += r.MonthNeedCount
		perMonthSvc[r.Month] += r.MonthServiceSuccessCount
		result.List = append(result.List, *r)
	}
	sort.Slice(result.List, func(i, j int) bool {
		if result.List[i].Month != result.List[j].Month {
			return result.List[i].Month < result.List[j].Month
		}
		return result.List[i].Region < result.List[j].Region
	})

	cumNeed := map[string]int{}
	cumSvc := map[string]int{}
	var runNeed, runSvc int
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		label := m.Format(monthLayout)
		runNeed += perMonthNeed[label]
		runSvc += perMonthSvc[label]
		cumNeed[label] = runNeed
		cumSvc[label] = runSvc
	}
	for i := range result.List {
		r := &result.List[i]
		r.CumulativeNeedCount = cumNeed[r.Month]
		r.CumulativeServiceSuccessCount = cumSvc[r.Month]
		result.TotalNeed += r.MonthNeedCount
		result.TotalServiceSuccess += r.MonthServiceSuccessCount
	}
	return result, nil
}

// monthRange resolves the inclusive [start, end] month bounds. With neither
// bound the last six months are used; a single bound is a validation error.
func (s *StatsService) monthRange(q ports.StatsQuery) (time.Time, time.Time, error) {
	if (q.StartMonth == "") != (q.EndMonth == "") {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startMonth and endMonth must be given together", domain.ErrValidation)
	}
	if q.StartMonth == "" {
		now := s.now().UTC()
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return end.AddDate(0, -(defaultStatsSpan - 1), 0), end, nil
	}
	start, err := time.Parse(monthLayout, q.StartMonth)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startMonth must use YYYY-MM", domain.ErrValidation)
	}
	end, err := time.Parse(monthLayout, q.EndMonth)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endMonth must use YYYY-MM", domain.ErrValidation)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startMonth is after endMonth", domain.ErrValidation)
	}
	return start, end, nil
}
