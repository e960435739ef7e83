package handler

import (
	"Attune/internal/api/dto"
	"Attune/internal/pkg/response"
	"Attune/internal/pkg/util"
	"Attune/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type CheckInHandler struct {
	checkInSvc service.CheckInService
	coupleSvc  service.CoupleService
}

func NewCheckInHandler(checkInSvc service.CheckInService, coupleSvc service.CoupleService) *CheckInHandler {
	return &CheckInHandler{
		checkInSvc: checkInSvc,
		coupleSvc:  coupleSvc,
	}
}

// Create 提交一条签到
func (s *CheckInHandler) Create(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.CreateCheckInDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	checkIn, err := s.checkInSvc.CreateCheckIn(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	var result dto.CheckInDTO
	if err = copier.Copy(&result, checkIn); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 获取最近 days 个日历日内的签到
func (s *CheckInHandler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")
	coupleID, err := strconv.ParseUint(c.Param("couple_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	if _, err = s.coupleSvc.RequireMember(c.Request.Context(), coupleID, userID); err != nil {
		response.Error(c, err)
		return
	}

	checkIns, err := s.checkInSvc.GetCheckIns(c.Request.Context(), coupleID, days)
	if err != nil {
		response.Error(c, err)
		return
	}

	results := make([]dto.CheckInDTO, 0, len(checkIns))
	if err = copier.Copy(&results, checkIns); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, results)
}
