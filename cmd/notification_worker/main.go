package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/config"
	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/infrastructure/broker"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

// feedKey holds the most recent pushed notifications, newest first.
const (
	feedKey  = "admin:notifications:feed"
	feedSize = 200
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotificationsQueue == "" {
		log.Println("RABBITMQ_URL not set; notification worker disabled")
		return
	}
	logger := helpers.NewLogger(cfg.AppName+"-notification-worker", cfg.Env, cfg.LogLevel)

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	consumer, err := broker.NewConsumer(cfg.RabbitMQURL, cfg.RabbitMQNotificationsQueue, 16, logger)
	if err != nil {
		log.Fatalf("amqp consumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.WithField("queue", cfg.RabbitMQNotificationsQueue).Info("notification worker listening")
	err = consumer.Consume(ctx, func(ctx context.Context, n entity.Notification) error {
		b, err := json.Marshal(n)
		if err != nil {
			return err
		}
		pipe := rdb.TxPipeline()
		pipe.LPush(ctx, feedKey, b)
		pipe.LTrim(ctx, feedKey, 0, feedSize-1)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		helpers.LogInfo(logger, "notification archived", logrus.Fields{"notification_id": n.ID})
		return nil
	})
	if err != nil {
		helpers.LogError(logger, "consume failed", err, logrus.Fields{"queue": cfg.RabbitMQNotificationsQueue})
	}
	logger.Info("notification worker stopped")
}
