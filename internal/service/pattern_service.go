package service

import (
	"Attune/internal/model"
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/redis"
	"Attune/internal/pkg/timeday"
	"Attune/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

type PatternStats struct {
	DaysCheckedIn int     `json:"days_checked_in"`
	Avg           float64 `json:"avg"`
	Volatility    float64 `json:"volatility"`
}

// DayHighlight 窗口内均分最高/最低的一天
type DayHighlight struct {
	Weekday string    `json:"weekday"`
	Avg     float64   `json:"avg"`
	Date    time.Time `json:"date"`
}

// MidWeekDip 周二至周四中显著低于基线的一天
type MidWeekDip struct {
	Date    time.Time `json:"date"`
	Weekday string    `json:"weekday"`
	Avg     float64   `json:"avg"`
	Delta   float64   `json:"delta"`
}

type RecoveryTrigger struct {
	Tag  string `json:"tag"`
	Hits int    `json:"hits"`
}

// PatternReport 单个主体（情侣整体或单个成员）的形态报告
type PatternReport struct {
	Stats            PatternStats      `json:"stats"`
	BestDay          *DayHighlight     `json:"best_day"`
	HardestDay       *DayHighlight     `json:"hardest_day"`
	MidWeekDips      []MidWeekDip      `json:"mid_week_dips"`
	RecoveryTriggers []RecoveryTrigger `json:"recovery_triggers"`
}

type PartnerPatternReport struct {
	UserID uint64         `json:"user_id"`
	Report *PatternReport `json:"report"`
}

type PatternBundle struct {
	CoupleID   uint64                  `json:"couple_id"`
	WindowDays int                     `json:"window_days"`
	Couple     *PatternReport          `json:"couple"`
	PerPartner []*PartnerPatternReport `json:"per_partner"`
}

type PatternService interface {
	DetectPatterns(ctx context.Context, coupleID uint64, windowDays int) (*PatternBundle, error)
}

type patternServiceImpl struct {
	checkInRepo repository.CheckInRepo
	coupleRepo  repository.CoupleRepo
	coupleSvc   CoupleService
}

func NewPatternService(checkInRepo repository.CheckInRepo, coupleRepo repository.CoupleRepo, coupleSvc CoupleService) PatternService {
	return &patternServiceImpl{
		checkInRepo: checkInRepo,
		coupleRepo:  coupleRepo,
		coupleSvc:   coupleSvc,
	}
}

// DetectPatterns 扫描窗口内全部签到，产出情侣整体与各成员的形态报告。
// 只读不写；结果按 (couple, windowDays, 当日 DayKey) 缓存到次日凌晨
func (s *patternServiceImpl) DetectPatterns(ctx context.Context, coupleID uint64, windowDays int) (*PatternBundle, error) {
	if windowDays < consts.PatternWindowMinDays {
		windowDays = consts.PatternWindowMinDays
	}
	if windowDays > consts.PatternWindowMaxDays {
		windowDays = consts.PatternWindowMaxDays
	}

	couple, err := s.coupleRepo.GetCoupleByID(ctx, coupleID)
	if err != nil {
		return nil, err
	}
	if couple == nil {
		return nil, ErrCoupleNotFound
	}
	loc, err := s.coupleSvc.ResolveLocation(couple)
	if err != nil {
		return nil, err
	}

	today := timeday.DayKey(time.Now(), loc)
	cacheKey := fmt.Sprintf("%s%d:%d:%s", consts.CouplePatternKey, coupleID, windowDays, today.Format("2006-01-02"))
	if cached, err := redis.GetValue(ctx, cacheKey); err == nil && cached != "" {
		var bundle PatternBundle
		if err := json.Unmarshal([]byte(cached), &bundle); err == nil {
			return &bundle, nil
		}
	}

	memberIDs, err := s.coupleRepo.GetMemberIDs(ctx, coupleID)
	if err != nil {
		return nil, err
	}

	endDay := timeday.AddDays(today, 1)
	startDay := timeday.AddDays(endDay, -windowDays)
	checkIns, err := s.checkInRepo.GetByCoupleBetween(ctx, coupleID, startDay, endDay)
	if err != nil {
		return nil, err
	}

	bundle := &PatternBundle{
		CoupleID:   coupleID,
		WindowDays: windowDays,
		Couple:     buildPatternReport(checkIns, loc),
		PerPartner: make([]*PartnerPatternReport, 0, len(memberIDs)),
	}
	for _, uid := range memberIDs {
		own := make([]*model.CheckIn, 0)
		for _, c := range checkIns {
			if c.UserID == uid {
				own = append(own, c)
			}
		}
		bundle.PerPartner = append(bundle.PerPartner, &PartnerPatternReport{
			UserID: uid,
			Report: buildPatternReport(own, loc),
		})
	}

	s.cacheBundle(ctx, cacheKey, loc, bundle)

	log.InfoContext(ctx, "patterns detected",
		"couple_id", coupleID,
		"window_days", windowDays,
		"couple_days", bundle.Couple.Stats.DaysCheckedIn)
	return bundle, nil
}

// subjectDay 主体在某个日历日的均分与当日标签池
type subjectDay struct {
	day  time.Time
	avg  float64
	tags []string
}

// buildPatternReport 对一个主体的签到做完整的形态扫描
func buildPatternReport(checkIns []*model.CheckIn, loc *time.Location) *PatternReport {
	days := buildSubjectDays(checkIns, loc)

	report := &PatternReport{
		MidWeekDips:      make([]MidWeekDip, 0),
		RecoveryTriggers: make([]RecoveryTrigger, 0),
	}
	if len(days) == 0 {
		return report
	}

	avgs := make([]float64, len(days))
	for i, d := range days {
		avgs[i] = d.avg
	}
	baseline := mean(avgs)
	report.Stats = PatternStats{
		DaysCheckedIn: len(days),
		Avg:           baseline,
		Volatility:    sampleStdDev(avgs),
	}

	// 最好/最难的一天，并列取时间上先出现的
	best, hardest := days[0], days[0]
	for _, d := range days[1:] {
		if d.avg > best.avg {
			best = d
		}
		if d.avg < hardest.avg {
			hardest = d
		}
	}
	report.BestDay = &DayHighlight{Weekday: best.day.Weekday().String(), Avg: best.avg, Date: best.day}
	report.HardestDay = &DayHighlight{Weekday: hardest.day.Weekday().String(), Avg: hardest.avg, Date: hardest.day}

	byUnix := make(map[int64]subjectDay, len(days))
	for _, d := range days {
		byUnix[d.day.Unix()] = d
	}

	for _, d := range days {
		if !timeday.IsMidWeek(d.day) {
			continue
		}
		delta := d.avg - baseline
		if delta <= consts.MidWeekDipDelta {
			report.MidWeekDips = append(report.MidWeekDips, MidWeekDip{
				Date:    d.day,
				Weekday: d.day.Weekday().String(),
				Avg:     d.avg,
				Delta:   delta,
			})
		}
	}
	sort.SliceStable(report.MidWeekDips, func(i, j int) bool {
		return report.MidWeekDips[i].Delta < report.MidWeekDips[j].Delta
	})

	report.RecoveryTriggers = collectRecoveryTriggers(report.MidWeekDips, byUnix)
	return report
}

// collectRecoveryTriggers 对每个低谷日向后看最多 2 天，
// 第一个反弹幅度达标的日子贡献其标签，之后按频次聚合取前 6
func collectRecoveryTriggers(dips []MidWeekDip, byUnix map[int64]subjectDay) []RecoveryTrigger {
	poolCounts := make(map[string]int)
	poolOrder := make([]string, 0)

	for _, dip := range dips {
		for off := 1; off <= consts.RecoveryLookaheadDays; off++ {
			next, ok := byUnix[timeday.AddDays(dip.Date, off).Unix()]
			if !ok {
				continue
			}
			if next.avg-dip.Avg >= consts.RecoveryReboundDelta {
				for _, tag := range next.tags {
					if _, seen := poolCounts[tag]; !seen {
						poolOrder = append(poolOrder, tag)
					}
					poolCounts[tag]++
				}
				break // 每个低谷只取第一个达标的反弹日
			}
		}
	}

	top := topTags(poolOrder, poolCounts, consts.RecoveryTriggerTopN)
	triggers := make([]RecoveryTrigger, 0, len(top))
	for _, tag := range top {
		triggers = append(triggers, RecoveryTrigger{Tag: tag, Hits: poolCounts[tag]})
	}
	return triggers
}

// buildSubjectDays 按日历日归并主体签到，返回升序的日均分与当日标签
func buildSubjectDays(checkIns []*model.CheckIn, loc *time.Location) []subjectDay {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	tags := make(map[int64][]string)
	keys := make([]time.Time, 0)

	for _, c := range checkIns {
		if c.Rating < consts.RatingMin || c.Rating > consts.RatingMax {
			continue
		}
		day := timeday.DayKey(c.OccurredAt, loc)
		if _, seen := counts[day.Unix()]; !seen {
			keys = append(keys, day)
		}
		sums[day.Unix()] += float64(c.Rating)
		counts[day.Unix()]++
		tags[day.Unix()] = append(tags[day.Unix()], c.Tags...)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	days := make([]subjectDay, 0, len(keys))
	for _, day := range keys {
		days = append(days, subjectDay{
			day:  day,
			avg:  sums[day.Unix()] / float64(counts[day.Unix()]),
			tags: tags[day.Unix()],
		})
	}
	return days
}

func (s *patternServiceImpl) cacheBundle(ctx context.Context, key string, loc *time.Location, bundle *PatternBundle) {
	data, err := json.Marshal(bundle)
	if err != nil {
		return
	}

	midnight := timeday.AddDays(timeday.DayKey(time.Now(), loc), 1)
	expiration := time.Until(midnight) - time.Minute*5
	if expiration < 0 {
		return
	}

	_ = redis.SetWithExpiration(ctx, key, string(data), expiration)
}
