package service

import (
	"Attune/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-08-03 是周一
func weekCheckIns(ratings map[int]int, tags map[int][]string) []*model.CheckIn {
	monday := day(2026, 8, 3)
	var result []*model.CheckIn
	for offset, rating := range ratings {
		c := checkIn(1, 10, monday.AddDate(0, 0, offset).Add(12*time.Hour), rating, tags[offset]...)
		result = append(result, c)
	}
	return result
}

func TestBuildPatternReportMidWeekDipAndRecovery(t *testing.T) {
	// 周三明显低于基线，周四反弹达标，周四的标签成为恢复触发
	checkIns := weekCheckIns(
		map[int]int{0: 4, 1: 4, 2: 2, 3: 4, 4: 5},
		map[int][]string{3: {"TIME", "HUMOR"}},
	)

	report := buildPatternReport(checkIns, time.UTC)

	assert.Equal(t, 5, report.Stats.DaysCheckedIn)
	assert.InDelta(t, 3.8, report.Stats.Avg, 1e-9)

	require.Len(t, report.MidWeekDips, 1)
	dip := report.MidWeekDips[0]
	assert.Equal(t, "Wednesday", dip.Weekday)
	assert.InDelta(t, -1.8, dip.Delta, 1e-9)

	require.Len(t, report.RecoveryTriggers, 2)
	assert.Equal(t, RecoveryTrigger{Tag: "TIME", Hits: 1}, report.RecoveryTriggers[0])
	assert.Equal(t, RecoveryTrigger{Tag: "HUMOR", Hits: 1}, report.RecoveryTriggers[1])
}

func TestBuildPatternReportNoReboundNoTriggers(t *testing.T) {
	checkIns := weekCheckIns(
		map[int]int{0: 4, 1: 4, 2: 2, 3: 2, 4: 2},
		map[int][]string{3: {"TIME"}, 4: {"HUMOR"}},
	)

	report := buildPatternReport(checkIns, time.UTC)

	require.NotEmpty(t, report.MidWeekDips)
	assert.Empty(t, report.RecoveryTriggers)
}

func TestBuildPatternReportMondayLowIsNotMidWeekDip(t *testing.T) {
	checkIns := weekCheckIns(
		map[int]int{0: 2, 1: 4, 2: 4, 3: 4, 4: 4},
		nil,
	)

	report := buildPatternReport(checkIns, time.UTC)

	assert.Empty(t, report.MidWeekDips)
	assert.Equal(t, "Monday", report.HardestDay.Weekday)
}

func TestBuildPatternReportBestDayTieKeepsEarliest(t *testing.T) {
	checkIns := weekCheckIns(
		map[int]int{0: 4, 1: 3, 2: 4},
		nil,
	)

	report := buildPatternReport(checkIns, time.UTC)

	require.NotNil(t, report.BestDay)
	assert.Equal(t, day(2026, 8, 3), report.BestDay.Date)
	assert.Equal(t, "Monday", report.BestDay.Weekday)
}

func TestBuildPatternReportDipsSortedByDepth(t *testing.T) {
	// 周二与周四都低于基线，更深的排在前面
	checkIns := weekCheckIns(
		map[int]int{0: 5, 1: 2, 2: 5, 3: 3, 4: 5, 7: 5, 8: 5},
		nil,
	)

	report := buildPatternReport(checkIns, time.UTC)

	require.Len(t, report.MidWeekDips, 2)
	assert.Equal(t, "Tuesday", report.MidWeekDips[0].Weekday)
	assert.Equal(t, "Thursday", report.MidWeekDips[1].Weekday)
	assert.Less(t, report.MidWeekDips[0].Delta, report.MidWeekDips[1].Delta)
}

func TestBuildPatternReportEmptyWindow(t *testing.T) {
	report := buildPatternReport(nil, time.UTC)

	assert.Equal(t, 0, report.Stats.DaysCheckedIn)
	assert.Nil(t, report.BestDay)
	assert.Nil(t, report.HardestDay)
	assert.Empty(t, report.MidWeekDips)
	assert.Empty(t, report.RecoveryTriggers)
}

func TestBuildSubjectDaysMergesAndSorts(t *testing.T) {
	monday := day(2026, 8, 3)
	checkIns := []*model.CheckIn{
		checkIn(1, 10, monday.AddDate(0, 0, 1).Add(9*time.Hour), 4, "TIME"),
		checkIn(1, 10, monday.Add(20*time.Hour), 2),
		checkIn(1, 10, monday.Add(8*time.Hour), 4),
	}

	days := buildSubjectDays(checkIns, time.UTC)

	require.Len(t, days, 2)
	assert.Equal(t, monday, days[0].day)
	assert.InDelta(t, 3.0, days[0].avg, 1e-9)
	assert.Equal(t, []string{"TIME"}, days[1].tags)
}
