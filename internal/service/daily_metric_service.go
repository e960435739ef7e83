package service

import (
	"Attune/internal/model"
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/redis"
	"Attune/internal/pkg/timeday"
	"Attune/internal/repository"
	"context"
	log "log/slog"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// RecomputeSummary 一次重放写入的行数统计
type RecomputeSummary struct {
	DaysCovered   int `json:"days_covered"`
	MetricUpserts int `json:"metric_upserts"`
	SignalUpserts int `json:"signal_upserts"`
}

type DailyMetricService interface {
	RecomputeDailySeries(ctx context.Context, coupleID uint64, loc *time.Location, startDay, endDay time.Time) (*RecomputeSummary, error)
	GetDailyMetricsBy7Days(ctx context.Context, coupleID uint64, loc *time.Location) ([]*model.DailyCoupleMetric, error)
	GetDailyMetricsBy30Days(ctx context.Context, coupleID uint64, loc *time.Location) ([]*model.DailyCoupleMetric, error)
	GetDailySignals(ctx context.Context, coupleID, userID uint64, loc *time.Location, days int) ([]*model.PartnerEmotionSignal, error)
}

type dailyMetricServiceImpl struct {
	checkInRepo repository.CheckInRepo
	metricRepo  repository.DailyMetricRepo
	signalRepo  repository.EmotionSignalRepo
}

func NewDailyMetricService(
	checkInRepo repository.CheckInRepo,
	metricRepo repository.DailyMetricRepo,
	signalRepo repository.EmotionSignalRepo,
) DailyMetricService {
	return &dailyMetricServiceImpl{
		checkInRepo: checkInRepo,
		metricRepo:  metricRepo,
		signalRepo:  signalRepo,
	}
}

// RecomputeDailySeries 把 [startDay, endDay) 内的签到重放为每日指标与成员情绪信号。
// 纯粹按当前库内签到覆盖写，重复执行结果一致，可在任意时刻安全重跑
func (s *dailyMetricServiceImpl) RecomputeDailySeries(
	ctx context.Context,
	coupleID uint64,
	loc *time.Location,
	startDay, endDay time.Time,
) (*RecomputeSummary, error) {
	checkIns, err := s.checkInRepo.GetByCoupleBetween(ctx, coupleID, startDay, endDay)
	if err != nil {
		return nil, err
	}

	buckets := make(map[int64][]*model.CheckIn)
	for _, c := range checkIns {
		day := timeday.DayKey(c.OccurredAt, loc)
		buckets[day.Unix()] = append(buckets[day.Unix()], c)
	}

	summary := &RecomputeSummary{DaysCovered: timeday.DaysBetween(startDay, endDay)}
	now := time.Now()

	for day := startDay; day.Before(endDay); day = timeday.AddDays(day, 1) {
		dayCheckIns := buckets[day.Unix()]

		metric, memberDays := buildDailyMetric(coupleID, day, dayCheckIns)
		metric.UpdatedAt = now
		if err = s.metricRepo.UpsertMetric(ctx, metric); err != nil {
			return nil, err
		}
		summary.MetricUpserts++

		for _, m := range memberDays {
			state, intensity := dailySignalState(m.Mean)
			signal := &model.PartnerEmotionSignal{
				CoupleID:   coupleID,
				UserID:     m.UserID,
				SignalDate: day,
				State:      state,
				Intensity:  intensity,
				ReasonCode: consts.ReasonCodeDailyCheckIn,
				Note:       m.Note,
				UpdatedAt:  now,
			}
			if err = s.signalRepo.UpsertSignal(ctx, signal); err != nil {
				return nil, err
			}
			summary.SignalUpserts++
		}
	}

	log.InfoContext(ctx, "daily series recomputed",
		"couple_id", coupleID,
		"days", summary.DaysCovered,
		"metric_upserts", summary.MetricUpserts,
		"signal_upserts", summary.SignalUpserts)
	return summary, nil
}

// memberDayStat 某成员当日的均分与最后一条留言
type memberDayStat struct {
	UserID uint64
	Mean   float64
	Note   *string
}

// buildDailyMetric 计算单日指标行，同时返回各成员当日统计（按首次签到顺序）
func buildDailyMetric(
	coupleID uint64,
	day time.Time,
	dayCheckIns []*model.CheckIn,
) (*model.DailyCoupleMetric, []memberDayStat) {
	var (
		ratingSum   float64
		ratingCount int
		userSums    = make(map[uint64]float64)
		userCounts  = make(map[uint64]int)
		userOrder   = make([]uint64, 0, 2)
		userNotes   = make(map[uint64]*string)
		tagCounts   = make(map[string]int)
		tagOrder    = make([]string, 0)
	)

	for _, c := range dayCheckIns {
		// 评分越界的脏数据跳过，不让整批失败
		if c.Rating < consts.RatingMin || c.Rating > consts.RatingMax {
			continue
		}
		ratingSum += float64(c.Rating)
		ratingCount++

		if _, seen := userCounts[c.UserID]; !seen {
			userOrder = append(userOrder, c.UserID)
		}
		userSums[c.UserID] += float64(c.Rating)
		userCounts[c.UserID]++
		if c.Note != nil && *c.Note != "" {
			userNotes[c.UserID] = c.Note
		}

		for _, tag := range c.Tags {
			if _, seen := tagCounts[tag]; !seen {
				tagOrder = append(tagOrder, tag)
			}
			tagCounts[tag]++
		}
	}

	metric := &model.DailyCoupleMetric{
		CoupleID:     coupleID,
		MetricDate:   day,
		CheckInCount: ratingCount,
		TopTags:      topTags(tagOrder, tagCounts, consts.TopTagsPerDay),
	}

	memberDays := make([]memberDayStat, 0, len(userOrder))
	for _, uid := range userOrder {
		memberDays = append(memberDays, memberDayStat{
			UserID: uid,
			Mean:   userSums[uid] / float64(userCounts[uid]),
			Note:   userNotes[uid],
		})
	}

	if ratingCount == 0 {
		return metric, memberDays
	}

	// avgRating 是当日全部评分的合并均值，不是各成员均值的再平均，
	// 避免签到次数不对称的一方被放大或稀释
	avg := ratingSum / float64(ratingCount)
	metric.AvgRating = &avg

	connection := clampScore(int(math.Round(avg * 20)))
	metric.ConnectionScore = &connection

	var stability int
	if len(memberDays) >= 2 {
		diff := math.Abs(memberDays[0].Mean - memberDays[1].Mean)
		stability = clampScore(100 - int(math.Round(diff*20)))
	} else {
		// 只有一人签到时固定给中性分，缺席的一方不应拉低当日稳定度
		stability = 70
	}
	metric.StabilityScore = &stability

	bond := int(math.Round(float64(connection+stability) / 2))
	metric.BondScore = &bond

	return metric, memberDays
}

// dailySignalState 由当日均分映射每日情绪信号
func dailySignalState(mean float64) (string, int) {
	switch {
	case mean >= consts.SignalThrivingMin:
		return consts.SignalStateThriving, consts.SignalIntensityStrong
	case mean >= consts.SignalGoodMin:
		return consts.SignalStateGood, consts.SignalIntensityLean
	case mean >= consts.SignalNeutralMin:
		return consts.SignalStateNeutral, consts.SignalIntensityNeutral
	case mean >= consts.SignalStressedMin:
		return consts.SignalStateStressed, consts.SignalIntensityLean
	default:
		return consts.SignalStateDisconnected, consts.SignalIntensityStrong
	}
}

// topTags 取频次前 n 的标签，频次相同按首次出现顺序
func topTags(order []string, counts map[string]int, n int) model.TagList {
	top := make([]string, len(order))
	copy(top, order)
	// 稳定插入排序，保证并列时保持首次出现顺序
	for i := 1; i < len(top); i++ {
		for j := i; j > 0 && counts[top[j]] > counts[top[j-1]]; j-- {
			top[j], top[j-1] = top[j-1], top[j]
		}
	}
	if len(top) > n {
		top = top[:n]
	}
	return top
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (s *dailyMetricServiceImpl) GetDailyMetricsBy7Days(ctx context.Context, coupleID uint64, loc *time.Location) ([]*model.DailyCoupleMetric, error) {
	key := consts.CoupleMetrics7DaysKey + strconv.FormatUint(coupleID, 10)
	since := timeday.AddDays(timeday.DayKey(time.Now(), loc), -7)
	return s.getDailyMetricsCached(ctx, key, loc, func() ([]*model.DailyCoupleMetric, error) {
		return s.metricRepo.GetMetricsSince(ctx, coupleID, since)
	})
}

func (s *dailyMetricServiceImpl) GetDailyMetricsBy30Days(ctx context.Context, coupleID uint64, loc *time.Location) ([]*model.DailyCoupleMetric, error) {
	key := consts.CoupleMetrics30DaysKey + strconv.FormatUint(coupleID, 10)
	since := timeday.AddDays(timeday.DayKey(time.Now(), loc), -30)
	return s.getDailyMetricsCached(ctx, key, loc, func() ([]*model.DailyCoupleMetric, error) {
		return s.metricRepo.GetMetricsSince(ctx, coupleID, since)
	})
}

// GetDailySignals 获取成员最近 days 天的每日情绪信号，升序
func (s *dailyMetricServiceImpl) GetDailySignals(ctx context.Context, coupleID, userID uint64, loc *time.Location, days int) ([]*model.PartnerEmotionSignal, error) {
	if days <= 0 {
		days = consts.DailyBackfillDays
	}
	if days > consts.PatternWindowMaxDays {
		return nil, ErrWindowTooLarge
	}
	since := timeday.AddDays(timeday.DayKey(time.Now(), loc), -days)
	return s.signalRepo.GetSignalsSince(ctx, coupleID, userID, since)
}

func (s *dailyMetricServiceImpl) getDailyMetricsCached(
	ctx context.Context,
	key string,
	loc *time.Location,
	fetchFromDB func() ([]*model.DailyCoupleMetric, error),
) ([]*model.DailyCoupleMetric, error) {
	list, err := redis.GetList(ctx, key)
	if err != nil {
		return nil, err
	}

	if len(list) != 0 {
		metrics := make([]*model.DailyCoupleMetric, 0, len(list))
		for _, v := range list {
			var metric *model.DailyCoupleMetric
			if err := json.Unmarshal([]byte(v), &metric); err != nil {
				return nil, err
			}
			metrics = append(metrics, metric)
		}
		return metrics, nil
	}

	metrics, err := fetchFromDB()
	if err != nil {
		return nil, err
	}

	s.cacheMetrics(ctx, key, loc, metrics)
	return metrics, nil
}

func (s *dailyMetricServiceImpl) cacheMetrics(ctx context.Context, key string, loc *time.Location, metrics []*model.DailyCoupleMetric) {
	if len(metrics) == 0 {
		return
	}

	metricJsons := make([]string, 0, len(metrics))
	for _, v := range metrics {
		metricJson, err := json.Marshal(v)
		if err != nil {
			return
		}
		metricJsons = append(metricJsons, string(metricJson))
	}

	// 按情侣时区计算距离午夜的时间，提前5分钟过期
	midnight := timeday.AddDays(timeday.DayKey(time.Now(), loc), 1)
	expiration := time.Until(midnight) - time.Minute*5
	if expiration < 0 {
		return
	}

	_ = redis.SetListWithExpiration(ctx, key, metricJsons, expiration)
}
