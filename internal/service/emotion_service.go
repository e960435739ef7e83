package service

import (
	"Attune/internal/model"
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/timeday"
	"Attune/internal/repository"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// EmotionDayPoint 窗口内某个有签到的日历日及当日均分
type EmotionDayPoint struct {
	Day    time.Time `json:"day"`
	Rating float64   `json:"rating"`
}

type EmotionMetrics struct {
	DaysConsidered int      `json:"days_considered"`
	DaysCheckedIn  int      `json:"days_checked_in"`
	AvgRating      *float64 `json:"avg_rating"`
	LastRating     *float64 `json:"last_rating"`
	TrendSlope     float64  `json:"trend_slope"`
	Volatility     float64  `json:"volatility"`
	MissingDays    int      `json:"missing_days"`
	TopTags        []string `json:"top_tags"`
}

// EmotionClassification 分类结果。本服务不持久化，调用方可按需快照
type EmotionClassification struct {
	UserID     uint64         `json:"user_id"`
	State      string         `json:"state"`
	Confidence float64        `json:"confidence"`
	Reasons    []string       `json:"reasons"`
	Metrics    EmotionMetrics `json:"metrics"`
}

type EmotionService interface {
	ClassifyPartnerEmotionState(userID uint64, points []EmotionDayPoint, daysConsidered int, tags []string) *EmotionClassification
	ClassifyPartnerFromStore(ctx context.Context, coupleID, userID uint64, loc *time.Location, days int) (*EmotionClassification, error)
}

type emotionServiceImpl struct {
	checkInRepo repository.CheckInRepo
}

func NewEmotionService(checkInRepo repository.CheckInRepo) EmotionService {
	return &emotionServiceImpl{checkInRepo: checkInRepo}
}

// windowSignals 从窗口数据推导出的全部信号
type windowSignals struct {
	daysConsidered int
	daysCheckedIn  int
	avg            *float64
	lastRating     *float64
	slope          float64
	volatility     float64
	checkInRate    float64
	topTags        []string
	tagClarity     float64
}

// emotionRule 单条分类规则。规则按固定顺序逐条求值，命中即停，
// 末位的综合评分兜底单独处理
type emotionRule struct {
	state  string
	match  func(sig *windowSignals) bool
	reason func(sig *windowSignals) string
}

var emotionRules = []emotionRule{
	{
		state: consts.EmotionStateDisconnected,
		match: func(sig *windowSignals) bool {
			return sig.avg == nil || sig.daysCheckedIn == 0
		},
		reason: func(sig *windowSignals) string {
			return "窗口内没有任何签到记录"
		},
	},
	{
		state: consts.EmotionStateSecure,
		match: func(sig *windowSignals) bool {
			return *sig.avg >= consts.ClassifierHighAvg &&
				sig.slope > consts.ClassifierSlopeDown &&
				sig.volatility < consts.ClassifierVolatilityHigh
		},
		reason: func(sig *windowSignals) string {
			return fmt.Sprintf("平均评分 %.1f，走势平稳", *sig.avg)
		},
	},
	{
		state: consts.EmotionStateTense,
		match: func(sig *windowSignals) bool {
			return *sig.avg < consts.ClassifierLowAvg &&
				(sig.slope <= consts.ClassifierSlopeDown || sig.volatility >= consts.ClassifierVolatilityHigh)
		},
		reason: func(sig *windowSignals) string {
			return fmt.Sprintf("平均评分偏低（%.1f）且走势下滑或波动明显", *sig.avg)
		},
	},
	{
		state: consts.EmotionStateDisconnected,
		match: func(sig *windowSignals) bool {
			return *sig.avg < consts.ClassifierLowAvg &&
				sig.checkInRate <= consts.ClassifierLowHabitRate
		},
		reason: func(sig *windowSignals) string {
			return fmt.Sprintf("评分偏低且 %d 天里只签到 %d 天", sig.daysConsidered, sig.daysCheckedIn)
		},
	},
	{
		state: consts.EmotionStateDrifting,
		match: func(sig *windowSignals) bool {
			return *sig.avg >= consts.ClassifierLowAvg &&
				sig.slope <= consts.ClassifierSlopeDown
		},
		reason: func(sig *windowSignals) string {
			return fmt.Sprintf("评分尚可但近期呈下滑趋势（斜率 %.2f）", sig.slope)
		},
	},
	{
		state: consts.EmotionStateRebuilding,
		match: func(sig *windowSignals) bool {
			return *sig.avg < consts.ClassifierLowAvg &&
				sig.slope >= consts.ClassifierSlopeUp
		},
		reason: func(sig *windowSignals) string {
			return fmt.Sprintf("评分偏低但正在回升（斜率 %.2f）", sig.slope)
		},
	},
	{
		state: consts.EmotionStateMixed,
		match: func(sig *windowSignals) bool {
			return sig.volatility >= consts.ClassifierVolatilityMid &&
				sig.volatility < consts.ClassifierVolatilityHigh
		},
		reason: func(sig *windowSignals) string {
			return fmt.Sprintf("评分波动较大（标准差 %.2f），信号不一致", sig.volatility)
		},
	},
}

// ClassifyPartnerEmotionState 基于滚动窗口的日均分序列做规则分类。纯函数，不做任何 I/O。
// 空窗口不是错误，返回置信度接近 0 的 DISCONNECTED
func (s *emotionServiceImpl) ClassifyPartnerEmotionState(
	userID uint64,
	points []EmotionDayPoint,
	daysConsidered int,
	tags []string,
) *EmotionClassification {
	sig := deriveWindowSignals(points, daysConsidered, tags)

	var (
		state  string
		reason string
	)
	matched := false
	for _, rule := range emotionRules {
		if rule.match(sig) {
			state = rule.state
			reason = rule.reason(sig)
			matched = true
			break
		}
	}
	if !matched {
		state, reason = compositeFallback(sig)
	}

	reasons := []string{reason}
	if len(sig.topTags) > 0 {
		reasons = append(reasons, "近期常提到: "+strings.Join(sig.topTags, "、"))
	}
	if sig.daysCheckedIn > 0 && sig.checkInRate < 0.5 {
		reasons = append(reasons, fmt.Sprintf("签到习惯偏弱（%d/%d 天），结果仅供参考", sig.daysCheckedIn, sig.daysConsidered))
	}

	return &EmotionClassification{
		UserID:     userID,
		State:      state,
		Confidence: confidence(sig),
		Reasons:    reasons,
		Metrics: EmotionMetrics{
			DaysConsidered: sig.daysConsidered,
			DaysCheckedIn:  sig.daysCheckedIn,
			AvgRating:      sig.avg,
			LastRating:     sig.lastRating,
			TrendSlope:     sig.slope,
			Volatility:     sig.volatility,
			MissingDays:    sig.daysConsidered - sig.daysCheckedIn,
			TopTags:        sig.topTags,
		},
	}
}

// ClassifyPartnerFromStore 从签到库构建窗口后分类，供 HTTP 层调用
func (s *emotionServiceImpl) ClassifyPartnerFromStore(
	ctx context.Context,
	coupleID, userID uint64,
	loc *time.Location,
	days int,
) (*EmotionClassification, error) {
	if days <= 0 {
		days = 14
	}
	if days > consts.ClassifierMaxDays {
		return nil, ErrWindowTooLarge
	}

	endDay := timeday.AddDays(timeday.DayKey(time.Now(), loc), 1)
	startDay := timeday.AddDays(endDay, -days)

	checkIns, err := s.checkInRepo.GetByCoupleUserBetween(ctx, coupleID, userID, startDay, endDay)
	if err != nil {
		return nil, err
	}

	points, tags := buildDayPoints(checkIns, loc)
	return s.ClassifyPartnerEmotionState(userID, points, days, tags), nil
}

// buildDayPoints 把签到按日归并成日均分序列（升序），并拍平窗口内全部标签
func buildDayPoints(checkIns []*model.CheckIn, loc *time.Location) ([]EmotionDayPoint, []string) {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	days := make([]time.Time, 0)
	tags := make([]string, 0)

	for _, c := range checkIns {
		if c.Rating < consts.RatingMin || c.Rating > consts.RatingMax {
			continue
		}
		day := timeday.DayKey(c.OccurredAt, loc)
		if _, seen := counts[day.Unix()]; !seen {
			days = append(days, day)
		}
		sums[day.Unix()] += float64(c.Rating)
		counts[day.Unix()]++
		tags = append(tags, c.Tags...)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]EmotionDayPoint, 0, len(days))
	for _, day := range days {
		points = append(points, EmotionDayPoint{
			Day:    day,
			Rating: sums[day.Unix()] / float64(counts[day.Unix()]),
		})
	}
	return points, tags
}

func deriveWindowSignals(points []EmotionDayPoint, daysConsidered int, tags []string) *windowSignals {
	if daysConsidered < len(points) {
		daysConsidered = len(points)
	}

	sig := &windowSignals{
		daysConsidered: daysConsidered,
		daysCheckedIn:  len(points),
	}
	if daysConsidered > 0 {
		sig.checkInRate = float64(len(points)) / float64(daysConsidered)
	}

	sig.topTags, sig.tagClarity = tagSignals(tags)

	if len(points) == 0 {
		return sig
	}

	ratings := make([]float64, len(points))
	for i, p := range points {
		ratings[i] = p.Rating
	}

	avg := mean(ratings)
	sig.avg = &avg
	last := ratings[len(ratings)-1]
	sig.lastRating = &last
	sig.volatility = sampleStdDev(ratings)

	// 横轴取点在窗口内的日历日偏移，而不是点的序号，缺签到的日子同样拉开距离
	xs := make([]float64, len(points))
	first := points[0].Day
	for i, p := range points {
		xs[i] = math.Round(p.Day.Sub(first).Hours() / 24)
	}
	sig.slope = olsSlope(xs, ratings)

	return sig
}

// tagSignals 返回频次前 3 的标签和集中度（最高频标签占全部标签次数的比例）
func tagSignals(tags []string) ([]string, float64) {
	if len(tags) == 0 {
		return nil, 0
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, tag := range tags {
		if _, seen := counts[tag]; !seen {
			order = append(order, tag)
		}
		counts[tag]++
	}

	top := []string(topTags(order, counts, consts.ClassifierTopTags))
	return top, float64(counts[top[0]]) / float64(len(tags))
}

// compositeFallback 所有规则都未命中时的加权综合评分兜底
func compositeFallback(sig *windowSignals) (string, string) {
	normAvg := clamp01((*sig.avg - 1) / 4)
	normSlope := clamp01(0.5 + sig.slope/0.5)
	normStability := clamp01(1 - sig.volatility)

	overall := consts.CompositeWeightAvg*normAvg +
		consts.CompositeWeightSlope*normSlope +
		consts.CompositeWeightStability*normStability +
		consts.CompositeWeightHabit*clamp01(sig.checkInRate) +
		consts.CompositeWeightTagClarity*clamp01(sig.tagClarity)

	reason := fmt.Sprintf("综合信号评分 %.2f", overall)

	switch {
	case overall >= consts.CompositeSecureMin:
		return consts.EmotionStateSecure, reason
	case overall >= consts.CompositeRebuildingMin:
		return consts.EmotionStateRebuilding, reason
	case overall >= consts.CompositeDriftingMin:
		return consts.EmotionStateDrifting, reason
	case overall >= consts.CompositeMixedMin:
		return consts.EmotionStateMixed, reason
	default:
		return consts.EmotionStateTense, reason
	}
}

// confidence = 0.45*数据量置信 + 0.55*形态强度
func confidence(sig *windowSignals) float64 {
	saturate := consts.ConfidenceSaturateDays
	if sig.daysConsidered < saturate {
		saturate = sig.daysConsidered
	}

	var dataConfidence float64
	if saturate > 0 {
		dataConfidence = clamp01(float64(sig.daysCheckedIn) / float64(saturate))
	}

	var patternStrength float64
	if sig.avg != nil {
		slopeStrength := clamp01(math.Abs(sig.slope) / 0.2)
		avgDistance := clamp01(math.Abs(*sig.avg-3) / 2)
		calmness := 1 - clamp01(sig.volatility/1.2)
		patternStrength = 0.4*avgDistance + 0.35*slopeStrength + 0.25*calmness
	}

	return consts.ConfidenceDataWeight*dataConfidence + consts.ConfidencePatternWeight*patternStrength
}
