package consts

// 分析引擎的手调阈值。数值沿用线上历史版本，不要当作经过统计验证的参数
const (
	// 每日情绪信号均分阈值
	SignalThrivingMin = 4.7
	SignalGoodMin     = 4.0
	SignalNeutralMin  = 3.0
	SignalStressedMin = 2.0

	SignalIntensityStrong  = 88 // THRIVING / DISCONNECTED
	SignalIntensityLean    = 72 // GOOD / STRESSED
	SignalIntensityNeutral = 50

	// 分类器规则阈值
	ClassifierHighAvg        = 4.0
	ClassifierLowAvg         = 3.0
	ClassifierSlopeDown      = -0.08
	ClassifierSlopeUp        = 0.08
	ClassifierVolatilityHigh = 0.9
	ClassifierVolatilityMid  = 0.55
	ClassifierLowHabitRate   = 0.25

	// 综合兜底评分的权重与分档
	CompositeWeightAvg        = 0.35
	CompositeWeightSlope      = 0.20
	CompositeWeightStability  = 0.20
	CompositeWeightHabit      = 0.15
	CompositeWeightTagClarity = 0.10

	CompositeSecureMin     = 0.72
	CompositeRebuildingMin = 0.55
	CompositeDriftingMin   = 0.42
	CompositeMixedMin      = 0.28

	// 置信度权重
	ConfidenceDataWeight    = 0.45
	ConfidencePatternWeight = 0.55
	ConfidenceSaturateDays  = 7

	// 形态检测阈值
	PatternWindowMinDays  = 7
	PatternWindowMaxDays  = 90
	MidWeekDipDelta       = -0.7
	RecoveryReboundDelta  = 1.0
	RecoveryLookaheadDays = 2
	RecoveryTriggerTopN   = 6

	TopTagsPerDay     = 3
	ClassifierTopTags = 3
	ClassifierMaxDays = 30
	DailyBackfillDays = 30
)
