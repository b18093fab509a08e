package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"planboard/internal/handler"
	"planboard/internal/httpserver"
	"planboard/internal/repository"
	"planboard/internal/service"
	"planboard/pkg/config"
	"planboard/pkg/db"
	"planboard/pkg/logger"
	"planboard/pkg/mq"
	"planboard/pkg/outbox"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting planboard server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established")

	// MQ publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	planRepo := repository.NewPlanRepository(dbConn, outboxRepo, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn)
	notiLogRepo := repository.NewNotificationLogRepository(dbConn)

	// Services
	aggregator := service.NewAggregator(planRepo, taskRepo, publisher, log)
	planService := service.NewPlanService(planRepo, taskRepo, aggregator, log)
	taskService := service.NewTaskService(taskRepo, planRepo, aggregator, publisher, log)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AdminInviteToken, log)

	// Outbox dispatcher drains plan.created events to MQ
	dispatchCtx, dispatchCancel := context.WithCancel(context.Background())
	defer dispatchCancel()
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(dispatchCtx)

	// Handlers and router
	authHandler := handler.NewAuthHandler(authService, log)
	planHandler := handler.NewPlanHandler(planService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	notificationHandler := handler.NewNotificationHandler(notiLogRepo, log)
	userHandler := handler.NewUserHandler(authService, log)

	router := httpserver.NewRouter(authHandler, planHandler, taskHandler, notificationHandler, userHandler, cfg.JWT.Secret, log, dbConn, publisher)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("planboard server is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down planboard server gracefully...")

	dispatchCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	publisher.Close()
	dbConn.Close()

	log.Info("planboard server shutdown complete")
}
