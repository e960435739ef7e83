package handler

import (
	"Attune/internal/pkg/response"
	"Attune/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MetricHandler struct {
	checkInSvc service.CheckInService
	coupleSvc  service.CoupleService
	metricSvc  service.DailyMetricService
}

func NewMetricHandler(
	checkInSvc service.CheckInService,
	coupleSvc service.CoupleService,
	metricSvc service.DailyMetricService,
) *MetricHandler {
	return &MetricHandler{
		checkInSvc: checkInSvc,
		coupleSvc:  coupleSvc,
		metricSvc:  metricSvc,
	}
}

func (s *MetricHandler) GetMetrics7Days(c *gin.Context) {
	s.getMetrics(c, 7)
}

func (s *MetricHandler) GetMetrics30Days(c *gin.Context) {
	s.getMetrics(c, 30)
}

func (s *MetricHandler) getMetrics(c *gin.Context, days int) {
	userID := c.GetUint64("user_id")
	coupleID, err := strconv.ParseUint(c.Param("couple_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	couple, err := s.coupleSvc.RequireMember(c.Request.Context(), coupleID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	loc, err := s.coupleSvc.ResolveLocation(couple)
	if err != nil {
		response.Error(c, err)
		return
	}

	var metrics interface{}
	if days == 7 {
		metrics, err = s.metricSvc.GetDailyMetricsBy7Days(c.Request.Context(), coupleID, loc)
	} else {
		metrics, err = s.metricSvc.GetDailyMetricsBy30Days(c.Request.Context(), coupleID, loc)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, metrics)
}

// GetDailySignals 获取某成员的每日情绪信号序列
func (s *MetricHandler) GetDailySignals(c *gin.Context) {
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
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

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

	signals, err := s.metricSvc.GetDailySignals(c.Request.Context(), coupleID, partnerID, loc, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, signals)
}

// Recompute 手动重放滚动窗口，幂等，可安全重试
func (s *MetricHandler) Recompute(c *gin.Context) {
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

	summary, err := s.checkInSvc.RecomputeWindow(c.Request.Context(), coupleID, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}
