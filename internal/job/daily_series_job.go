package job

import (
	"Attune/internal/pkg/consts"
	"Attune/internal/pkg/logger"
	"Attune/internal/pkg/redis"
	"Attune/internal/pkg/util"
	"Attune/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// DailySeriesJob 每日回填任务。
// 把脏集合里的情侣最近一个窗口的签到重放为每日指标与情绪信号，
// 兜住补签、跨时区迟到数据和当天同步重算的失败
type DailySeriesJob struct {
	checkInSvc service.CheckInService
}

func NewDailySeriesJob(checkInSvc service.CheckInService) *DailySeriesJob {
	return &DailySeriesJob{checkInSvc: checkInSvc}
}

func (s *DailySeriesJob) Run() {
	traceID := "job-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	processingKey := consts.CoupleDirtyKey + ":processing"
	err := redis.Rename(ctx, consts.CoupleDirtyKey, processingKey)
	if err != nil {
		return
	}

	tempSet, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get dirty set error", "err", err)
		return
	}

	coupleIDs, err := util.StrSliceToUInt64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert set to int slice error", "err", err)
		return
	}

	for _, coupleID := range coupleIDs {
		summary, err := s.checkInSvc.RecomputeWindow(ctx, coupleID, consts.DailyBackfillDays)
		if err != nil {
			log.ErrorContext(ctx, "recompute daily series error", "couple_id", coupleID, "err", err)
			continue
		}
		log.InfoContext(ctx, "daily series recomputed",
			"couple_id", coupleID,
			"days", summary.DaysCovered,
			"metric_upserts", summary.MetricUpserts,
			"signal_upserts", summary.SignalUpserts,
		)
	}

	err = redis.DeleteKey(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "delete dirty set error", "err", err)
	}

	log.InfoContext(ctx, "daily series backfill finished", "couples", len(coupleIDs))
}
