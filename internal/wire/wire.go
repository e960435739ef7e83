package wire

import (
	"Attune/internal/api"
	"Attune/internal/api/config"
	"Attune/internal/api/handler"
	"Attune/internal/job"
	"Attune/internal/pkg/cron"
	"Attune/internal/pkg/kafka"
	attunemongo "Attune/internal/pkg/mongo"
	"Attune/internal/repository"
	"Attune/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	checkInRepo := repository.NewCheckInRepo(db)
	coupleRepo := repository.NewCoupleRepo(db)
	metricRepo := repository.NewDailyMetricRepo(db)
	signalRepo := repository.NewEmotionSignalRepo(db)
	snapshotRepo := attunemongo.NewEmotionSnapshotRepo(mongoDB)

	coupleService := service.NewCoupleService(coupleRepo)
	dailyMetricService := service.NewDailyMetricService(checkInRepo, metricRepo, signalRepo)
	checkInService := service.NewCheckInService(checkInRepo, coupleService, dailyMetricService)
	emotionService := service.NewEmotionService(checkInRepo)
	patternService := service.NewPatternService(checkInRepo, coupleRepo, coupleService)

	handlers := &api.HandlersGroup{
		CheckInHandler: handler.NewCheckInHandler(checkInService, coupleService),
		MetricHandler:  handler.NewMetricHandler(checkInService, coupleService, dailyMetricService),
		InsightHandler: handler.NewInsightHandler(coupleService, emotionService, patternService, snapshotRepo),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, coupleRepo, dailyMetricService, coupleService)
	if err != nil {
		return nil, err
	}

	dailySeriesJob := job.NewDailySeriesJob(checkInService)
	cronMgr := cron.NewCronManager(dailySeriesJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
