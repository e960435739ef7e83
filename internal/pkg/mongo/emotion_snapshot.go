package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmotionSnapshotMetrics 分类时的窗口指标快照
type EmotionSnapshotMetrics struct {
	DaysConsidered int      `bson:"days_considered" json:"days_considered"`
	DaysCheckedIn  int      `bson:"days_checked_in" json:"days_checked_in"`
	AvgRating      *float64 `bson:"avg_rating" json:"avg_rating"`
	LastRating     *float64 `bson:"last_rating" json:"last_rating"`
	TrendSlope     float64  `bson:"trend_slope" json:"trend_slope"`
	Volatility     float64  `bson:"volatility" json:"volatility"`
	MissingDays    int      `bson:"missing_days" json:"missing_days"`
	TopTags        []string `bson:"top_tags" json:"top_tags"`
}

// EmotionSnapshotModel 情绪分类历史快照。分类结果本身是临时的，
// 调用方显式要求时才写一份快照留档
type EmotionSnapshotModel struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	CoupleID   uint64                 `bson:"couple_id" json:"couple_id"`
	UserID     uint64                 `bson:"user_id" json:"user_id"`
	WindowDays int                    `bson:"window_days" json:"window_days"`
	State      string                 `bson:"state" json:"state"`
	Confidence float64                `bson:"confidence" json:"confidence"`
	Reasons    []string               `bson:"reasons" json:"reasons"`
	Metrics    EmotionSnapshotMetrics `bson:"metrics" json:"metrics"`
	CreatedAt  time.Time              `bson:"created_at" json:"created_at"`
}
