package ports

import (
	"context"

	"github.com/haofuwu/service-market/internal/core/domain"
)

// StatsQuery selects the months and regions to aggregate.
// Months use the "2006-01" layout; both bounds are inclusive.
type StatsQuery struct {
	StartMonth    string
	EndMonth      string
	RegionKeyword string
}

// StatsRow is the aggregate for one (month, region) pair.
type StatsRow struct {
	Month                         string `json:"month"`
	Region                        string `json:"region"`
	MonthNeedCount                int    `json:"monthNeedCount"`
	MonthServiceSuccessCount      int    `json:"monthServiceSuccessCount"`
	CumulativeNeedCount           int    `json:"cumulativeNeedCount"`
	CumulativeServiceSuccessCount int    `json:"cumulativeServiceSuccessCount"`
}

// StatsResult is the full admin statistics report.
type StatsResult struct {
	List                []StatsRow `json:"list"`
	TotalNeed           int        `json:"totalNeed"`
	TotalServiceSuccess int        `json:"totalServiceSuccess"`
}

// StatsService produces admin statistics. Non-admin sessions get
// domain.ErrForbidden.
type StatsService interface {
	Monthly(ctx context.Context, sess domain.Session, q StatsQuery) (*StatsResult, error)
}
