package timeday

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownTimezone = errors.New("未知的时区标识")

// DayKey 返回 t 在 loc 时区所在日历日的本地零点。
// 同一时区同一个本地日期的任何时刻都映射到同一个 DayKey，夏令时切换不影响归档
func DayKey(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// AddDays 按日历日平移。DayKey 表示日历日而非固定 24 小时，
// 跨夏令时边界时相邻两天的 DayKey 仍然恰好相差一天
func AddDays(day time.Time, n int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, day.Location())
}

// DaysBetween 计算 [start, end) 覆盖的日历日数，start、end 均应为 DayKey
func DaysBetween(start, end time.Time) int {
	n := 0
	for d := start; d.Before(end); d = AddDays(d, 1) {
		n++
	}
	return n
}

// LoadLocation 解析 IANA 时区名。无法识别时立即报错，由上层决定兜底时区
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, ErrUnknownTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimezone, name)
	}
	return loc, nil
}

// IsMidWeek 判断是否周二至周四
func IsMidWeek(day time.Time) bool {
	wd := day.Weekday()
	return wd >= time.Tuesday && wd <= time.Thursday
}
