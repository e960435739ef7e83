package service

import (
	"Attune/internal/api/config"
	"Attune/internal/model"
	"Attune/internal/pkg/timeday"
	"Attune/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type CoupleService interface {
	GetCoupleByID(ctx context.Context, coupleID uint64) (*model.Couple, error)
	RequireMember(ctx context.Context, coupleID, userID uint64) (*model.Couple, error)
	GetMemberIDs(ctx context.Context, coupleID uint64) ([]uint64, error)
	ResolveLocation(couple *model.Couple) (*time.Location, error)
}

type coupleServiceImpl struct {
	coupleRepo repository.CoupleRepo
}

func NewCoupleService(coupleRepo repository.CoupleRepo) CoupleService {
	return &coupleServiceImpl{coupleRepo: coupleRepo}
}

func (s *coupleServiceImpl) GetCoupleByID(ctx context.Context, coupleID uint64) (*model.Couple, error) {
	couple, err := s.coupleRepo.GetCoupleByID(ctx, coupleID)
	if err != nil {
		return nil, err
	}
	if couple == nil {
		return nil, ErrCoupleNotFound
	}
	return couple, nil
}

// RequireMember 校验成员身份，通过则返回情侣信息
func (s *coupleServiceImpl) RequireMember(ctx context.Context, coupleID, userID uint64) (*model.Couple, error) {
	couple, err := s.GetCoupleByID(ctx, coupleID)
	if err != nil {
		return nil, err
	}
	ok, err := s.coupleRepo.IsMember(ctx, coupleID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotCoupleMember
	}
	return couple, nil
}

func (s *coupleServiceImpl) GetMemberIDs(ctx context.Context, coupleID uint64) ([]uint64, error) {
	return s.coupleRepo.GetMemberIDs(ctx, coupleID)
}

// ResolveLocation 解析情侣配置的时区，异常时退回到全局兜底时区。
// 兜底时区也无法解析属于配置错误，直接报错
func (s *coupleServiceImpl) ResolveLocation(couple *model.Couple) (*time.Location, error) {
	loc, err := timeday.LoadLocation(couple.Timezone)
	if err == nil {
		return loc, nil
	}

	log.Warn("couple timezone invalid, falling back to default",
		"couple_id", couple.ID, "timezone", couple.Timezone)

	loc, err = timeday.LoadLocation(config.Cfg.Couple.DefaultTimezone)
	if err != nil {
		return nil, ErrTimezoneInvalid
	}
	return loc, nil
}
