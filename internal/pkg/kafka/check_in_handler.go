package kafka

import (
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/redis"
	"Attune/internal/pkg/timeday"
	"Attune/internal/repository"
	"Attune/internal/service"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// CheckInHandler 消费 check_ins 表的 Canal 变更，
// 对受影响的 (情侣, 本地日) 重放每日指标并标脏
type CheckInHandler struct {
	coupleRepo    repository.CoupleRepo
	metricService service.DailyMetricService
	coupleService service.CoupleService
}

func NewCheckInHandler(
	coupleRepo repository.CoupleRepo,
	metricService service.DailyMetricService,
	coupleService service.CoupleService,
) *CheckInHandler {
	return &CheckInHandler{
		coupleRepo:    coupleRepo,
		metricService: metricService,
		coupleService: coupleService,
	}
}

func (s *CheckInHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("check-in consumer setup")
	return nil
}

func (s *CheckInHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("check-in consumer cleanup")
	return nil
}

func (s *CheckInHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-check-ins consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-check-ins process batch error", "err", err)
		return err
	}
	log.Info("topic-check-ins consume claim end")
	return nil
}

func (s *CheckInHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "check_ins")
	if err != nil || canalMsg == nil {
		return nil
	}

	if canalMsg.Type != INSERT && canalMsg.Type != UPDATE {
		return nil
	}

	// 同一批变更里同一情侣可能出现多行，按 (情侣, 本地日) 去重后重放
	type dayTask struct {
		coupleID uint64
		loc      *time.Location
		day      time.Time
	}
	seen := make(map[string]dayTask)

	for _, row := range canalMsg.Data {
		coupleID := StrToUint64(row["couple_id"])
		if coupleID == 0 {
			continue
		}

		couple, err := s.coupleRepo.GetCoupleByID(ctx, coupleID)
		if err != nil {
			return err
		}
		if couple == nil {
			log.Warn("check-in change for unknown couple", "couple_id", coupleID)
			continue
		}

		loc, err := s.coupleService.ResolveLocation(couple)
		if err != nil {
			log.Warn("couple timezone unresolved, skipping change", "couple_id", coupleID, "err", err)
			continue
		}

		occurredAt, ok := StrToTime(row["occurred_at"], time.UTC)
		if !ok {
			continue
		}

		day := timeday.DayKey(occurredAt, loc)
		key := strconv.FormatUint(coupleID, 10) + ":" + day.Format("2006-01-02")
		seen[key] = dayTask{coupleID: coupleID, loc: loc, day: day}
	}

	var dirty []interface{}
	for _, task := range seen {
		if _, err := s.metricService.RecomputeDailySeries(ctx, task.coupleID, task.loc, task.day, timeday.AddDays(task.day, 1)); err != nil {
			return err
		}
		idStr := strconv.FormatUint(task.coupleID, 10)
		dirty = append(dirty, idStr)
		_ = redis.DeleteKey(ctx, consts.CoupleMetrics7DaysKey+idStr)
		_ = redis.DeleteKey(ctx, consts.CoupleMetrics30DaysKey+idStr)
	}

	if len(dirty) > 0 {
		if err := redis.GetRdbClient().SAdd(ctx, consts.CoupleDirtyKey, dirty...).Err(); err != nil {
			log.Error("failed to mark couples dirty", "err", err)
			return err
		}
	}

	return nil
}
