package service

import (
	"Attune/internal/api/dto"
	"Attune/internal/model"
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/redis"
	"Attune/internal/pkg/timeday"
	"Attune/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type CheckInService interface {
	CreateCheckIn(ctx context.Context, userID uint64, req *dto.CreateCheckInDTO) (*model.CheckIn, error)
	GetCheckIns(ctx context.Context, coupleID uint64, days int) ([]*model.CheckIn, error)
	RecomputeWindow(ctx context.Context, coupleID uint64, days int) (*RecomputeSummary, error)
}

type checkInServiceImpl struct {
	checkInRepo  repository.CheckInRepo
	coupleSvc    CoupleService
	dailyMetrics DailyMetricService
}

func NewCheckInService(
	checkInRepo repository.CheckInRepo,
	coupleSvc CoupleService,
	dailyMetrics DailyMetricService,
) CheckInService {
	return &checkInServiceImpl{
		checkInRepo:  checkInRepo,
		coupleSvc:    coupleSvc,
		dailyMetrics: dailyMetrics,
	}
}

// CreateCheckIn 落库一条签到并同步重算当天的指标行，
// 同时把情侣标脏，交给每日回填任务重放滚动 30 天窗口
func (s *checkInServiceImpl) CreateCheckIn(ctx context.Context, userID uint64, req *dto.CreateCheckInDTO) (*model.CheckIn, error) {
	if req.Rating < consts.RatingMin || req.Rating > consts.RatingMax {
		return nil, ErrRatingInvalid
	}

	couple, err := s.coupleSvc.RequireMember(ctx, req.CoupleID, userID)
	if err != nil {
		return nil, err
	}
	loc, err := s.coupleSvc.ResolveLocation(couple)
	if err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	checkIn := &model.CheckIn{
		CoupleID:   req.CoupleID,
		UserID:     userID,
		OccurredAt: occurredAt,
		Rating:     req.Rating,
		Tags:       model.TagList(req.Tags),
		Note:       req.Note,
	}
	if err = s.checkInRepo.CreateCheckIn(ctx, checkIn); err != nil {
		return nil, err
	}

	day := timeday.DayKey(occurredAt, loc)
	if _, err = s.dailyMetrics.RecomputeDailySeries(ctx, couple.ID, loc, day, timeday.AddDays(day, 1)); err != nil {
		// 当天重算失败不影响签到本身，回填任务会补上
		log.ErrorContext(ctx, "recompute day after check-in failed", "couple_id", couple.ID, "err", err)
	}

	coupleIDStr := strconv.FormatUint(couple.ID, 10)
	_ = redis.SAddKey(ctx, consts.CoupleDirtyKey, coupleIDStr)
	_ = redis.DeleteKey(ctx, consts.CoupleMetrics7DaysKey+coupleIDStr)
	_ = redis.DeleteKey(ctx, consts.CoupleMetrics30DaysKey+coupleIDStr)

	return checkIn, nil
}

// GetCheckIns 获取最近 days 个日历日内的签到
func (s *checkInServiceImpl) GetCheckIns(ctx context.Context, coupleID uint64, days int) ([]*model.CheckIn, error) {
	if days <= 0 {
		days = 7
	}
	if days > consts.PatternWindowMaxDays {
		return nil, ErrWindowTooLarge
	}

	couple, err := s.coupleSvc.GetCoupleByID(ctx, coupleID)
	if err != nil {
		return nil, err
	}
	loc, err := s.coupleSvc.ResolveLocation(couple)
	if err != nil {
		return nil, err
	}

	endDay := timeday.AddDays(timeday.DayKey(time.Now(), loc), 1)
	return s.checkInRepo.GetByCoupleBetween(ctx, coupleID, timeday.AddDays(endDay, -days), endDay)
}

// RecomputeWindow 重放滚动 days 天窗口。并发保护交给 redis 锁，
// 拿不到锁说明别的重放正在进行，直接放弃本次
func (s *checkInServiceImpl) RecomputeWindow(ctx context.Context, coupleID uint64, days int) (*RecomputeSummary, error) {
	if days <= 0 {
		days = consts.DailyBackfillDays
	}
	if days > consts.PatternWindowMaxDays {
		return nil, ErrWindowTooLarge
	}

	couple, err := s.coupleSvc.GetCoupleByID(ctx, coupleID)
	if err != nil {
		return nil, err
	}
	loc, err := s.coupleSvc.ResolveLocation(couple)
	if err != nil {
		return nil, err
	}

	lockKey := consts.CoupleSeriesLock + strconv.FormatUint(coupleID, 10)
	lockToken := uuid.NewString()
	lock, err := redis.TryLock(ctx, lockKey, lockToken, time.Minute*5, 3)
	if err != nil {
		return nil, err
	}
	if !lock {
		return nil, UnExpectedError
	}
	defer redis.UnLock(ctx, lockKey, lockToken)

	endDay := timeday.AddDays(timeday.DayKey(time.Now(), loc), 1)
	return s.dailyMetrics.RecomputeDailySeries(ctx, coupleID, loc, timeday.AddDays(endDay, -days), endDay)
}
