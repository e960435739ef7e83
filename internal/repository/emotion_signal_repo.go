package repository

import (
	"Attune/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmotionSignalRepo interface {
	UpsertSignal(ctx context.Context, signal *model.PartnerEmotionSignal) error
	GetSignalsSince(ctx context.Context, coupleID, userID uint64, since time.Time) ([]*model.PartnerEmotionSignal, error)
}

type emotionSignalRepoImpl struct {
	db *gorm.DB
}

func NewEmotionSignalRepo(db *gorm.DB) EmotionSignalRepo {
	return &emotionSignalRepoImpl{db: db}
}

// UpsertSignal 采用 Upsert 逻辑，(couple_id, user_id, signal_date) 冲突时整行覆盖
func (r *emotionSignalRepoImpl) UpsertSignal(ctx context.Context, signal *model.PartnerEmotionSignal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "couple_id"}, {Name: "user_id"}, {Name: "signal_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state",
			"intensity",
			"reason_code",
			"note",
			"updated_at",
		}),
	}).Create(signal).Error
}

// GetSignalsSince 获取成员某日起的情绪信号，按日期升序
func (r *emotionSignalRepoImpl) GetSignalsSince(ctx context.Context, coupleID, userID uint64, since time.Time) ([]*model.PartnerEmotionSignal, error) {
	signals := make([]*model.PartnerEmotionSignal, 0)
	result := r.db.WithContext(ctx).
		Where("couple_id = ? AND user_id = ?", coupleID, userID).
		Where("signal_date >= ?", since).
		Order("signal_date ASC").
		Find(&signals)
	if result.Error != nil {
		return nil, result.Error
	}
	return signals, nil
}
