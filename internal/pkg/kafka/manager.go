package kafka

import (
	"Attune/internal/api/config"
	"Attune/internal/repository"
	"Attune/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	checkInConsumer sarama.ConsumerGroup
	checkInHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	coupleRepo repository.CoupleRepo,
	metricService service.DailyMetricService,
	coupleService service.CoupleService,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	checkInConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCheckInConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	checkInHandler := NewCheckInHandler(coupleRepo, metricService, coupleService)

	return &ConsumerManager{
		checkInConsumer: checkInConsumer,
		checkInHandler:  checkInHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaCheckInConsumer.Topic
		log.Info("Check-in consumer started", "topic", topic)
		for {
			if err := m.checkInConsumer.Consume(ctx, []string{topic}, m.checkInHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.checkInConsumer.Close(); err != nil {
		log.Error("Failed to close check-in consumer", "err", err)
	}

	return nil
}
