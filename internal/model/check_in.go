package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// CheckIn 签到记录，一条即一次评分提交。创建后不可变，本服务不做删除
type CheckIn struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	CoupleID   uint64    `gorm:"not null;index:idx_checkin_couple_time" json:"couple_id"`
	UserID     uint64    `gorm:"not null;index:idx_checkin_user_time" json:"user_id"`
	OccurredAt time.Time `gorm:"not null;index:idx_checkin_couple_time;index:idx_checkin_user_time" json:"occurred_at"`
	Rating     int       `gorm:"not null" json:"rating"` // 1-5
	Tags       TagList   `gorm:"type:json" json:"tags"`  // 保留原始顺序与重复项，频次即权重
	Note       *string   `gorm:"type:varchar(1000)" json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}

// TagList 按提交顺序存储的标签快照
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	return json.Marshal(t)
}

func (t *TagList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, t)
}
