package kafka

import (
	"strconv"
	"time"
)

const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

const canalDatetimeLayout = "2006-01-02 15:04:05"

// StrToUint64 解析 Canal 行数据中的数值字段，非法值返回 0
func StrToUint64(v interface{}) uint64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// StrToTime 解析 Canal 行数据中的 datetime 字段，按给定时区解释
func StrToTime(v interface{}, loc *time.Location) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(canalDatetimeLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
