package handler

import (
	"Attune/internal/pkg/mongo"
	"Attune/internal/pkg/response"
	"Attune/internal/service"
	log "log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type InsightHandler struct {
	coupleSvc    service.CoupleService
	emotionSvc   service.EmotionService
	patternSvc   service.PatternService
	snapshotRepo mongo.EmotionSnapshotRepo
}

func NewInsightHandler(
	coupleSvc service.CoupleService,
	emotionSvc service.EmotionService,
	patternSvc service.PatternService,
	snapshotRepo mongo.EmotionSnapshotRepo,
) *InsightHandler {
	return &InsightHandler{
		coupleSvc:    coupleSvc,
		emotionSvc:   emotionSvc,
		patternSvc:   patternSvc,
		snapshotRepo: snapshotRepo,
	}
}

// GetEmotion 对指定成员做滚动窗口情绪分类。结果不落库，
// 带 snapshot=1 时额外把本次结果快照进 Mongo 供历史回看
func (s *InsightHandler) GetEmotion(c *gin.Context) {
	userID := c.GetUint64("user_id")
	coupleID, err := strconv.ParseUint(c.Param("couple_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	partnerID := userID
	if raw := c.Query("partner_id"); raw != "" {
		if partnerID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "14"))

	couple, err := s.coupleSvc.RequireMember(c.Request.Context(), coupleID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if partnerID != userID {
		if _, err = s.coupleSvc.RequireMember(c.Request.Context(), coupleID, partnerID); err != nil {
			response.Error(c, err)
			return
		}
	}
	loc, err := s.coupleSvc.ResolveLocation(couple)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.emotionSvc.ClassifyPartnerFromStore(c.Request.Context(), coupleID, partnerID, loc, days)
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("snapshot") == "1" {
		snapshot := &mongo.EmotionSnapshotModel{
			CoupleID:   coupleID,
			UserID:     partnerID,
			WindowDays: days,
			State:      result.State,
			Confidence: result.Confidence,
			Reasons:    result.Reasons,
			Metrics: mongo.EmotionSnapshotMetrics{
				DaysConsidered: result.Metrics.DaysConsidered,
				DaysCheckedIn:  result.Metrics.DaysCheckedIn,
				AvgRating:      result.Metrics.AvgRating,
				LastRating:     result.Metrics.LastRating,
				TrendSlope:     result.Metrics.TrendSlope,
				Volatility:     result.Metrics.Volatility,
				MissingDays:    result.Metrics.MissingDays,
				TopTags:        result.Metrics.TopTags,
			},
			CreatedAt: time.Now(),
		}
		if err = s.snapshotRepo.CreateSnapshot(c.Request.Context(), snapshot); err != nil {
			// 快照失败不影响本次分类结果
			log.ErrorContext(c.Request.Context(), "save emotion snapshot error", "err", err)
		}
	}

	response.Success(c, result)
}

// GetPatterns 形态报告：情侣整体 + 各成员
func (s *InsightHandler) GetPatterns(c *gin.Context) {
	userID := c.GetUint64("user_id")
	coupleID, err := strconv.ParseUint(c.Param("couple_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	if _, err = s.coupleSvc.RequireMember(c.Request.Context(), coupleID, userID); err != nil {
		response.Error(c, err)
		return
	}

	bundle, err := s.patternSvc.DetectPatterns(c.Request.Context(), coupleID, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bundle)
}

// GetSnapshots 历史情绪快照列表
func (s *InsightHandler) GetSnapshots(c *gin.Context) {
	userID := c.GetUint64("user_id")
	coupleID, err := strconv.ParseUint(c.Param("couple_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	if _, err = s.coupleSvc.RequireMember(c.Request.Context(), coupleID, userID); err != nil {
		response.Error(c, err)
		return
	}

	snapshots, err := s.snapshotRepo.GetSnapshotList(c.Request.Context(), coupleID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshots)
}
