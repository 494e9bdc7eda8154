package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nutriaudit/stats-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

const dashboardStatsKey = "dashboard_stats"

type Store struct {
	rdb *redis.Client
	ctx context.Context
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{
		rdb: rdb,
		ctx: context.Background(),
	}
}

// RefreshDishTotals overwrites the per-dish snapshot and re-ranks the
// dish by energy. The dashboard aggregate is dropped so the next report
// read re-derives it.
func (s *Store) RefreshDishTotals(event domain.TotalsEvent) error {
	key := fmt.Sprintf("nutrition:dish:%d", event.DishID)
	if err := s.rdb.HSet(s.ctx, key, map[string]interface{}{
		"energy_kcal":  event.EnergyKcal.String(),
		"visit_id":     event.VisitID,
		"last_updated": time.Now().Unix(),
	}).Err(); err != nil {
		return err
	}
	s.rdb.Expire(s.ctx, key, 24*time.Hour)

	energy, _ := event.EnergyKcal.Float64()
	if err := s.rdb.ZAdd(s.ctx, "nutrition:energy:dishes", redis.Z{
		Score:  energy,
		Member: strconv.Itoa(event.DishID),
	}).Err(); err != nil {
		return err
	}

	return s.rdb.Del(s.ctx, dashboardStatsKey).Err()
}

// BumpDailyRecomputes counts recalculations per dish per day, kept a
// week for trend reporting.
func (s *Store) BumpDailyRecomputes(event domain.TotalsEvent) error {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf("nutrition:daily:%s", today)
	if err := s.rdb.ZIncrBy(s.ctx, dailyKey, 1, strconv.Itoa(event.DishID)).Err(); err != nil {
		return err
	}
	s.rdb.Expire(s.ctx, dailyKey, 7*24*time.Hour)
	return nil
}
