package model

import (
	"time"
)

type Couple struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Timezone  string    `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"` // IANA 时区名，所有日归档以此为准
	Status    int8      `gorm:"not null;default:1" json:"status"`                        // 1:正常, 2:已解除
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Members []CoupleMember `gorm:"foreignKey:CoupleID;references:ID"`
}

func (Couple) TableName() string {
	return "couples"
}

// CoupleMember 情侣成员表，一对情侣固定两行
type CoupleMember struct {
	ID       uint64    `gorm:"primaryKey"`
	CoupleID uint64    `gorm:"not null;index:idx_couple_user,unique" json:"couple_id"`
	UserID   uint64    `gorm:"not null;index:idx_couple_user,unique;index:idx_member_user" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func (CoupleMember) TableName() string {
	return "couple_members"
}
