package repository

import (
	"Attune/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type CoupleRepo interface {
	GetCoupleByID(ctx context.Context, coupleID uint64) (*model.Couple, error)
	GetMemberIDs(ctx context.Context, coupleID uint64) ([]uint64, error)
	IsMember(ctx context.Context, coupleID, userID uint64) (bool, error)
}

type coupleRepoImpl struct {
	db *gorm.DB
}

func NewCoupleRepo(db *gorm.DB) CoupleRepo {
	return &coupleRepoImpl{db: db}
}

func (r *coupleRepoImpl) GetCoupleByID(ctx context.Context, coupleID uint64) (*model.Couple, error) {
	var couple model.Couple
	err := r.db.WithContext(ctx).
		Where("id = ?", coupleID).
		First(&couple).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &couple, nil
}

// GetMemberIDs 获取情侣成员 ID，按加入时间升序
func (r *coupleRepoImpl) GetMemberIDs(ctx context.Context, coupleID uint64) ([]uint64, error) {
	ids := make([]uint64, 0, 2)
	err := r.db.WithContext(ctx).
		Model(&model.CoupleMember{}).
		Where("couple_id = ?", coupleID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *coupleRepoImpl) IsMember(ctx context.Context, coupleID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CoupleMember{}).
		Where("couple_id = ? AND user_id = ?", coupleID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
