package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid    = errors.New("参数错误")
	ErrCoupleNotFound  = errors.New("情侣关系不存在")
	ErrNotCoupleMember = errors.New("不是该情侣的成员")
	ErrRatingInvalid   = errors.New("评分必须在 1 到 5 之间")
	ErrTimezoneInvalid = errors.New("无效的时区标识")
	ErrWindowTooLarge  = errors.New("查询窗口超出限制")
	UnauthorizedError  = errors.New("权限不足")
	UnExpectedError    = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:    BadRequest,
	ErrCoupleNotFound:  NotFound,
	ErrNotCoupleMember: Unauthorized,
	ErrRatingInvalid:   BadRequest,
	ErrTimezoneInvalid: BadRequest,
	ErrWindowTooLarge:  BadRequest,
	UnauthorizedError:  Unauthorized,
	UnExpectedError:    InternalServerError,
}
