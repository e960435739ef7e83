package consts

// 每日情绪信号状态（由当日均分阈值直接映射）
const (
	SignalStateThriving     = "THRIVING"
	SignalStateGood         = "GOOD"
	SignalStateNeutral      = "NEUTRAL"
	SignalStateStressed     = "STRESSED"
	SignalStateDisconnected = "DISCONNECTED"
)

// 滚动窗口情绪分类状态
const (
	EmotionStateSecure       = "SECURE_AND_CONNECTED"
	EmotionStateDrifting     = "DRIFTING"
	EmotionStateTense        = "TENSE"
	EmotionStateRebuilding   = "REBUILDING"
	EmotionStateDisconnected = "DISCONNECTED"
	EmotionStateMixed        = "MIXED_SIGNALS"
)

const (
	ReasonCodeDailyCheckIn = "DAILY_CHECKIN"
)

const (
	CoupleStatusNormal    = 1
	CoupleStatusDissolved = 2
)

const (
	RatingMin = 1
	RatingMax = 5
)
