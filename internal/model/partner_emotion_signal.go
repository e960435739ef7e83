package model

import (
	"time"
)

// PartnerEmotionSignal 成员当日情绪信号，仅在该成员当日有签到时产生，
// (couple_id, user_id, signal_date) 幂等覆盖写
type PartnerEmotionSignal struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	CoupleID   uint64    `gorm:"not null;index:idx_couple_user_date,unique" json:"couple_id"`
	UserID     uint64    `gorm:"not null;index:idx_couple_user_date,unique" json:"user_id"`
	SignalDate time.Time `gorm:"not null;index:idx_couple_user_date,unique;column:signal_date" json:"signal_date"`
	State      string    `gorm:"type:varchar(32);not null" json:"state"`
	Intensity  int       `gorm:"not null;default:0" json:"intensity"` // 0-100
	ReasonCode string    `gorm:"type:varchar(32);not null" json:"reason_code"`
	Note       *string   `gorm:"type:varchar(1000)" json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (PartnerEmotionSignal) TableName() string {
	return "partner_emotion_signals"
}
