package dto

import "time"

// CreateCheckInDTO 提交签到
type CreateCheckInDTO struct {
	CoupleID   uint64     `json:"couple_id" binding:"required"`
	Rating     int        `json:"rating" binding:"required" validate:"min=1,max=5"`
	Tags       []string   `json:"tags" validate:"max=10,dive,min=1,max=32"`
	Note       *string    `json:"note" validate:"omitempty,max=1000"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// CheckInDTO 签到
type CheckInDTO struct {
	ID         uint64    `json:"id"`
	CoupleID   uint64    `json:"couple_id"`
	UserID     uint64    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Rating     int       `json:"rating"`
	Tags       []string  `json:"tags"`
	Note       *string   `json:"note,omitempty"`
}
