package repository

import (
	"Attune/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type CheckInRepo interface {
	CreateCheckIn(ctx context.Context, checkIn *model.CheckIn) error
	GetByCoupleBetween(ctx context.Context, coupleID uint64, from, to time.Time) ([]*model.CheckIn, error)
	GetByCoupleUserBetween(ctx context.Context, coupleID, userID uint64, from, to time.Time) ([]*model.CheckIn, error)
}

type checkInRepoImpl struct {
	db *gorm.DB
}

func NewCheckInRepo(db *gorm.DB) CheckInRepo {
	return &checkInRepoImpl{db: db}
}

func (r *checkInRepoImpl) CreateCheckIn(ctx context.Context, checkIn *model.CheckIn) error {
	return r.db.WithContext(ctx).Create(checkIn).Error
}

// GetByCoupleBetween 获取情侣在 [from, to) 时间段内的全部签到，按发生时间升序
func (r *checkInRepoImpl) GetByCoupleBetween(ctx context.Context, coupleID uint64, from, to time.Time) ([]*model.CheckIn, error) {
	checkIns := make([]*model.CheckIn, 0)
	result := r.db.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at ASC").
		Find(&checkIns)
	if result.Error != nil {
		return nil, result.Error
	}
	return checkIns, nil
}

// GetByCoupleUserBetween 获取某位成员在 [from, to) 时间段内的签到，按发生时间升序
func (r *checkInRepoImpl) GetByCoupleUserBetween(ctx context.Context, coupleID, userID uint64, from, to time.Time) ([]*model.CheckIn, error) {
	checkIns := make([]*model.CheckIn, 0)
	result := r.db.WithContext(ctx).
		Where("couple_id = ? AND user_id = ?", coupleID, userID).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at ASC").
		Find(&checkIns)
	if result.Error != nil {
		return nil, result.Error
	}
	return checkIns, nil
}
