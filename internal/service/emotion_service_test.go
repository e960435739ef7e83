package service

import (
	"Attune/internal/model"
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/timeday"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayPoints(start time.Time, ratings ...float64) []EmotionDayPoint {
	points := make([]EmotionDayPoint, 0, len(ratings))
	for i, r := range ratings {
		points = append(points, EmotionDayPoint{Day: timeday.AddDays(start, i), Rating: r})
	}
	return points
}

func TestClassifyEmptyWindow(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})

	result := svc.ClassifyPartnerEmotionState(10, nil, 14, nil)

	assert.Equal(t, consts.EmotionStateDisconnected, result.State)
	assert.InDelta(t, 0, result.Confidence, 1e-9)
	assert.NotEmpty(t, result.Reasons)
	assert.Nil(t, result.Metrics.AvgRating)
	assert.Equal(t, 14, result.Metrics.MissingDays)
}

func TestClassifySecureAndConnected(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 5, 4, 5, 4, 5, 4, 5, 4, 5, 5)

	result := svc.ClassifyPartnerEmotionState(10, points, 14, nil)

	assert.Equal(t, consts.EmotionStateSecure, result.State)
	assert.InDelta(t, 4.6, *result.Metrics.AvgRating, 1e-9)
	assert.Equal(t, 10, result.Metrics.DaysCheckedIn)
	assert.Greater(t, result.Confidence, 0.5)
}

func TestClassifyTense(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 3, 2.5, 2, 1.5, 1)

	result := svc.ClassifyPartnerEmotionState(10, points, 14, nil)

	assert.Equal(t, consts.EmotionStateTense, result.State)
	assert.InDelta(t, -0.5, result.Metrics.TrendSlope, 1e-9)
}

func TestClassifyRebuilding(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 1.5, 2, 2.5, 2.8)

	result := svc.ClassifyPartnerEmotionState(10, points, 14, nil)

	assert.Equal(t, consts.EmotionStateRebuilding, result.State)
	assert.Greater(t, result.Metrics.TrendSlope, 0.0)
}

func TestClassifyDrifting(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 4.5, 4, 3.5, 3)

	result := svc.ClassifyPartnerEmotionState(10, points, 14, nil)

	assert.Equal(t, consts.EmotionStateDrifting, result.State)
}

func TestClassifyMixedSignals(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 3, 4.2, 3, 4.2, 3, 4.2)

	result := svc.ClassifyPartnerEmotionState(10, points, 14, nil)

	assert.Equal(t, consts.EmotionStateMixed, result.State)
	assert.GreaterOrEqual(t, result.Metrics.Volatility, consts.ClassifierVolatilityMid)
}

func TestClassifyLowEngagementDisconnected(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 2, 2, 2)

	result := svc.ClassifyPartnerEmotionState(10, points, 14, nil)

	assert.Equal(t, consts.EmotionStateDisconnected, result.State)
	assert.Equal(t, 11, result.Metrics.MissingDays)
}

func TestConfidenceSaturation(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 5, 5, 5, 5, 5, 5, 5)

	result := svc.ClassifyPartnerEmotionState(10, points, 14, nil)

	// 数据量在 7 天处饱和：0.45*1 + 0.55*(0.4*1 + 0.25*1)
	assert.InDelta(t, 0.8075, result.Confidence, 1e-9)
}

func TestClassifyTopTagsInReasons(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})
	points := dayPoints(day(2026, 8, 3), 5, 5, 5, 5, 5, 5, 5, 5)
	tags := []string{"TIME", "TIME", "HUMOR", "COMMUNICATION", "TIME"}

	result := svc.ClassifyPartnerEmotionState(10, points, 14, tags)

	assert.Equal(t, []string{"TIME", "HUMOR", "COMMUNICATION"}, result.Metrics.TopTags)
	require.GreaterOrEqual(t, len(result.Reasons), 2)
}

func TestClassifyFromStoreWindowTooLarge(t *testing.T) {
	svc := NewEmotionService(&fakeCheckInRepo{})

	_, err := svc.ClassifyPartnerFromStore(context.Background(), 1, 10, time.UTC, consts.ClassifierMaxDays+1)

	assert.ErrorIs(t, err, ErrWindowTooLarge)
}

func TestClassifyFromStoreBuildsDailyMeans(t *testing.T) {
	today := timeday.DayKey(time.Now(), time.UTC)
	repo := &fakeCheckInRepo{checkIns: []*model.CheckIn{
		checkIn(1, 10, today.Add(30*time.Minute), 5),
		checkIn(1, 10, today.Add(time.Hour), 3),
	}}
	svc := NewEmotionService(repo)

	result, err := svc.ClassifyPartnerFromStore(context.Background(), 1, 10, time.UTC, 14)
	require.NoError(t, err)

	// 同一天的两条签到归并成一个日均分
	assert.Equal(t, 1, result.Metrics.DaysCheckedIn)
	assert.InDelta(t, 4.0, *result.Metrics.AvgRating, 1e-9)
	assert.Equal(t, 14, result.Metrics.DaysConsidered)
}
