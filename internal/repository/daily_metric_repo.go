package repository

import (
	"Attune/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyMetricRepo interface {
	UpsertMetric(ctx context.Context, metric *model.DailyCoupleMetric) error
	GetMetricsSince(ctx context.Context, coupleID uint64, since time.Time) ([]*model.DailyCoupleMetric, error)
}

type dailyMetricRepoImpl struct {
	db *gorm.DB
}

func NewDailyMetricRepo(db *gorm.DB) DailyMetricRepo {
	return &dailyMetricRepoImpl{db: db}
}

// UpsertMetric 采用 Upsert 逻辑。如果 couple_id + metric_date 已存在，则整行覆盖，
// 重放同一区间得到完全一致的结果
func (r *dailyMetricRepoImpl) UpsertMetric(ctx context.Context, metric *model.DailyCoupleMetric) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "couple_id"}, {Name: "metric_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bond_score",
			"connection_score",
			"stability_score",
			"check_in_count",
			"avg_rating",
			"top_tags",
			"updated_at",
		}),
	}).Create(metric).Error
}

// GetMetricsSince 获取某日起的每日指标，按日期升序
func (r *dailyMetricRepoImpl) GetMetricsSince(ctx context.Context, coupleID uint64, since time.Time) ([]*model.DailyCoupleMetric, error) {
	metrics := make([]*model.DailyCoupleMetric, 0)
	result := r.db.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		Where("metric_date >= ?", since).
		Order("metric_date ASC").
		Find(&metrics)
	if result.Error != nil {
		return nil, result.Error
	}
	return metrics, nil
}
