package model

import (
	"time"
)

// DailyCoupleMetric 每日情侣指标，(couple_id, metric_date) 幂等覆盖写。
// 请求区间内每个日历日恰好一行，无签到日各分值为 NULL、次数为 0
type DailyCoupleMetric struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	CoupleID        uint64    `gorm:"not null;index:idx_couple_date,unique" json:"couple_id"`
	MetricDate      time.Time `gorm:"not null;index:idx_couple_date,unique;column:metric_date" json:"metric_date"`
	BondScore       *int      `json:"bond_score"`       // 0-100
	ConnectionScore *int      `json:"connection_score"` // 0-100
	StabilityScore  *int      `json:"stability_score"`  // 0-100
	CheckInCount    int       `gorm:"not null;default:0" json:"check_in_count"`
	AvgRating       *float64  `json:"avg_rating"`
	TopTags         TagList   `gorm:"type:json" json:"top_tags"` // 当日频次前 3
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (DailyCoupleMetric) TableName() string {
	return "daily_couple_metrics"
}
