package service

import (
	"Attune/internal/model"
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/timeday"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkIn(coupleID, userID uint64, at time.Time, rating int, tags ...string) *model.CheckIn {
	return &model.CheckIn{
		CoupleID:   coupleID,
		UserID:     userID,
		OccurredAt: at,
		Rating:     rating,
		Tags:       model.TagList(tags),
	}
}

func TestBuildDailyMetricTwoPartners(t *testing.T) {
	d := day(2026, 8, 3)
	metric, members := buildDailyMetric(1, d, []*model.CheckIn{
		checkIn(1, 10, d.Add(9*time.Hour), 5),
		checkIn(1, 20, d.Add(21*time.Hour), 3),
	})

	require.NotNil(t, metric.AvgRating)
	assert.InDelta(t, 4.0, *metric.AvgRating, 1e-9)
	assert.Equal(t, 80, *metric.ConnectionScore)
	assert.Equal(t, 60, *metric.StabilityScore)
	assert.Equal(t, 70, *metric.BondScore)
	assert.Equal(t, 2, metric.CheckInCount)
	require.Len(t, members, 2)
	assert.Equal(t, uint64(10), members[0].UserID)
	assert.Equal(t, uint64(20), members[1].UserID)
}

func TestBuildDailyMetricSingleReporter(t *testing.T) {
	d := day(2026, 8, 3)
	metric, members := buildDailyMetric(1, d, []*model.CheckIn{
		checkIn(1, 10, d.Add(8*time.Hour), 4),
	})

	assert.Equal(t, 80, *metric.ConnectionScore)
	assert.Equal(t, 70, *metric.StabilityScore)
	assert.Equal(t, 75, *metric.BondScore)
	require.Len(t, members, 1)
	assert.InDelta(t, 4.0, members[0].Mean, 1e-9)
}

func TestBuildDailyMetricPoolsRatings(t *testing.T) {
	// 合并均值按签到条数加权，而不是各成员均值的再平均
	d := day(2026, 8, 3)
	metric, _ := buildDailyMetric(1, d, []*model.CheckIn{
		checkIn(1, 10, d.Add(8*time.Hour), 5),
		checkIn(1, 10, d.Add(12*time.Hour), 5),
		checkIn(1, 20, d.Add(20*time.Hour), 3),
	})

	assert.InDelta(t, 13.0/3.0, *metric.AvgRating, 1e-9)
	assert.Equal(t, 87, *metric.ConnectionScore)
	assert.Equal(t, 60, *metric.StabilityScore)
	assert.Equal(t, 74, *metric.BondScore)
	assert.Equal(t, 3, metric.CheckInCount)
}

func TestBuildDailyMetricSkipsInvalidRatings(t *testing.T) {
	d := day(2026, 8, 3)
	metric, _ := buildDailyMetric(1, d, []*model.CheckIn{
		checkIn(1, 10, d.Add(8*time.Hour), 5),
		checkIn(1, 20, d.Add(9*time.Hour), 0),
		checkIn(1, 20, d.Add(10*time.Hour), 6),
	})

	assert.Equal(t, 1, metric.CheckInCount)
	assert.InDelta(t, 5.0, *metric.AvgRating, 1e-9)
}

func TestBuildDailyMetricEmptyDay(t *testing.T) {
	metric, members := buildDailyMetric(1, day(2026, 8, 3), nil)

	assert.Nil(t, metric.AvgRating)
	assert.Nil(t, metric.BondScore)
	assert.Nil(t, metric.ConnectionScore)
	assert.Nil(t, metric.StabilityScore)
	assert.Equal(t, 0, metric.CheckInCount)
	assert.Empty(t, members)
}

func TestDailySignalState(t *testing.T) {
	cases := []struct {
		mean      float64
		state     string
		intensity int
	}{
		{4.8, consts.SignalStateThriving, consts.SignalIntensityStrong},
		{4.7, consts.SignalStateThriving, consts.SignalIntensityStrong},
		{4.2, consts.SignalStateGood, consts.SignalIntensityLean},
		{3.5, consts.SignalStateNeutral, consts.SignalIntensityNeutral},
		{2.4, consts.SignalStateStressed, consts.SignalIntensityLean},
		{1.1, consts.SignalStateDisconnected, consts.SignalIntensityStrong},
	}
	for _, c := range cases {
		state, intensity := dailySignalState(c.mean)
		assert.Equal(t, c.state, state, "mean=%v", c.mean)
		assert.Equal(t, c.intensity, intensity, "mean=%v", c.mean)
	}
}

func TestTopTagsTieKeepsFirstSeen(t *testing.T) {
	d := day(2026, 8, 3)
	metric, _ := buildDailyMetric(1, d, []*model.CheckIn{
		checkIn(1, 10, d.Add(8*time.Hour), 4, "COMMUNICATION", "TIME"),
		checkIn(1, 20, d.Add(9*time.Hour), 4, "HUMOR", "TIME", "DISTANCE"),
	})

	assert.Equal(t, model.TagList{"TIME", "COMMUNICATION", "HUMOR"}, metric.TopTags)
}

type fakeCheckInRepo struct {
	checkIns []*model.CheckIn
}

func (f *fakeCheckInRepo) CreateCheckIn(_ context.Context, checkIn *model.CheckIn) error {
	f.checkIns = append(f.checkIns, checkIn)
	return nil
}

func (f *fakeCheckInRepo) GetByCoupleBetween(_ context.Context, coupleID uint64, from, to time.Time) ([]*model.CheckIn, error) {
	var result []*model.CheckIn
	for _, c := range f.checkIns {
		if c.CoupleID == coupleID && !c.OccurredAt.Before(from) && c.OccurredAt.Before(to) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeCheckInRepo) GetByCoupleUserBetween(_ context.Context, coupleID, userID uint64, from, to time.Time) ([]*model.CheckIn, error) {
	all, _ := f.GetByCoupleBetween(context.Background(), coupleID, from, to)
	var result []*model.CheckIn
	for _, c := range all {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

type fakeMetricRepo struct {
	rows map[string]*model.DailyCoupleMetric
}

func (f *fakeMetricRepo) UpsertMetric(_ context.Context, metric *model.DailyCoupleMetric) error {
	if f.rows == nil {
		f.rows = make(map[string]*model.DailyCoupleMetric)
	}
	f.rows[metric.MetricDate.Format(time.DateOnly)] = metric
	return nil
}

func (f *fakeMetricRepo) GetMetricsSince(_ context.Context, _ uint64, _ time.Time) ([]*model.DailyCoupleMetric, error) {
	return nil, nil
}

type fakeSignalRepo struct {
	rows map[string]*model.PartnerEmotionSignal
}

func (f *fakeSignalRepo) UpsertSignal(_ context.Context, signal *model.PartnerEmotionSignal) error {
	if f.rows == nil {
		f.rows = make(map[string]*model.PartnerEmotionSignal)
	}
	key := signal.SignalDate.Format(time.DateOnly) + ":" + strconv.FormatUint(signal.UserID, 10)
	f.rows[key] = signal
	return nil
}

func (f *fakeSignalRepo) GetSignalsSince(_ context.Context, _, _ uint64, _ time.Time) ([]*model.PartnerEmotionSignal, error) {
	return nil, nil
}

func TestRecomputeDailySeriesIdempotent(t *testing.T) {
	start := day(2026, 8, 3)
	checkInRepo := &fakeCheckInRepo{checkIns: []*model.CheckIn{
		checkIn(1, 10, start.Add(8*time.Hour), 5),
		checkIn(1, 20, start.Add(9*time.Hour), 3),
		checkIn(1, 10, timeday.AddDays(start, 2).Add(10*time.Hour), 4),
	}}
	metricRepo := &fakeMetricRepo{}
	signalRepo := &fakeSignalRepo{}
	svc := NewDailyMetricService(checkInRepo, metricRepo, signalRepo)

	end := timeday.AddDays(start, 3)
	first, err := svc.RecomputeDailySeries(context.Background(), 1, time.UTC, start, end)
	require.NoError(t, err)
	assert.Equal(t, 3, first.DaysCovered)
	assert.Equal(t, 3, first.MetricUpserts)
	assert.Equal(t, 3, first.SignalUpserts)

	second, err := svc.RecomputeDailySeries(context.Background(), 1, time.UTC, start, end)
	require.NoError(t, err)
	assert.Equal(t, first.MetricUpserts, second.MetricUpserts)
	assert.Len(t, metricRepo.rows, 3)

	// 没有签到的那天也要有覆盖行，分数置空
	middle := metricRepo.rows[timeday.AddDays(start, 1).Format(time.DateOnly)]
	require.NotNil(t, middle)
	assert.Nil(t, middle.BondScore)
	assert.Equal(t, 0, middle.CheckInCount)
}
