package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"planboard/contracts/mq"
	"planboard/internal/mqhandler"
	"planboard/internal/repository"
	"planboard/pkg/config"
	"planboard/pkg/db"
	"planboard/pkg/logger"
	"planboard/pkg/redis"
	"planboard/pkg/util"

	pkgmq "planboard/pkg/mq"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting planboard worker...")

	// Redis for event dedup
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	deduper := util.NewDeduperWithLogger(rdb, time.Hour, log)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established")

	notiLogRepo := repository.NewNotificationLogRepository(dbConn)

	// Handlers
	planCreatedHandler := mqhandler.NewPlanCreatedHandler(notiLogRepo, deduper, log)
	planCompletedHandler := mqhandler.NewPlanCompletedHandler(notiLogRepo, deduper, log)
	taskCompletedHandler := mqhandler.NewTaskCompletedHandler(notiLogRepo, deduper, log)

	specs := []struct {
		queue      string
		routingKey string
		handler    pkgmq.MessageHandler
	}{
		{"plan.created.log.q", mq.RoutingKeyPlanCreated, planCreatedHandler.Handle},
		{"plan.completed.log.q", mq.RoutingKeyPlanCompleted, planCompletedHandler.Handle},
		{"task.completed.log.q", mq.RoutingKeyTaskCompleted, taskCompletedHandler.Handle},
	}

	consumers := make([]*pkgmq.Consumer, 0, len(specs))
	for _, s := range specs {
		log.Info("Initializing consumer",
			zap.String("queue", s.queue),
			zap.String("routing_key", s.routingKey),
		)
		consumer, err := pkgmq.NewConsumer(cfg.MQ.URL, s.queue, s.routingKey, log)
		if err != nil {
			log.Fatal("Failed to init consumer",
				zap.String("queue", s.queue),
				zap.Error(err),
			)
		}
		consumer.SetHandler(s.handler)
		consumers = append(consumers, consumer)

		go func(c *pkgmq.Consumer, queue string) {
			if err := c.StartConsuming(); err != nil {
				log.Fatal("Consumer failed", zap.String("queue", queue), zap.Error(err))
			}
		}(consumer, s.queue)
	}

	log.Info("All consumers started, worker is ready to process messages")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down planboard worker gracefully...")

	for _, c := range consumers {
		c.Stop()
	}

	log.Info("planboard worker shutdown complete")
}
