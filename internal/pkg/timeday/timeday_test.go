package timeday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeyStableWithinDay(t *testing.T) {
	loc, err := LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	morning := time.Date(2026, 3, 14, 0, 0, 1, 0, loc)
	night := time.Date(2026, 3, 14, 23, 59, 59, 0, loc)

	assert.Equal(t, DayKey(morning, loc), DayKey(night, loc))
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), DayKey(morning, loc))
}

func TestDayKeyCrossTimezone(t *testing.T) {
	sh, err := LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	ny, err := LoadLocation("America/New_York")
	require.NoError(t, err)

	// UTC 2026-03-14 18:00 在上海已是 15 日，在纽约仍是 14 日
	instant := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 15, DayKey(instant, sh).Day())
	assert.Equal(t, 14, DayKey(instant, ny).Day())
}

func TestAddDaysAcrossDSTBoundary(t *testing.T) {
	ny, err := LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-08 美东进入夏令时，当天只有 23 小时
	before := time.Date(2026, 3, 7, 0, 0, 0, 0, ny)
	after := AddDays(before, 1)

	assert.Equal(t, 8, after.Day())
	assert.Equal(t, 0, after.Hour())

	// 与真实时间戳推进一个本地日的结果一致
	sameDayNoon := time.Date(2026, 3, 8, 12, 0, 0, 0, ny)
	assert.Equal(t, after, DayKey(sameDayNoon, ny))
	assert.Equal(t, AddDays(DayKey(before, ny), 2), DayKey(time.Date(2026, 3, 9, 1, 0, 0, 0, ny), ny))
}

func TestDaysBetween(t *testing.T) {
	loc, err := LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	start := time.Date(2026, 3, 27, 0, 0, 0, 0, loc)
	end := AddDays(start, 5) // 跨 3-29 夏令时切换

	assert.Equal(t, 5, DaysBetween(start, end))
	assert.Equal(t, 0, DaysBetween(start, start))
}

func TestLoadLocationUnknown(t *testing.T) {
	_, err := LoadLocation("Mars/Olympus")
	assert.ErrorIs(t, err, ErrUnknownTimezone)

	_, err = LoadLocation("")
	assert.ErrorIs(t, err, ErrUnknownTimezone)
}

func TestIsMidWeek(t *testing.T) {
	loc := time.UTC
	// 2026-08-31 是周一
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)

	assert.False(t, IsMidWeek(monday))
	assert.True(t, IsMidWeek(AddDays(monday, 1)))
	assert.True(t, IsMidWeek(AddDays(monday, 2)))
	assert.True(t, IsMidWeek(AddDays(monday, 3)))
	assert.False(t, IsMidWeek(AddDays(monday, 4)))
}
