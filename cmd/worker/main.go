package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcelsud/webhookhub/config"
	"github.com/marcelsud/webhookhub/delivery"
	eventredis "github.com/marcelsud/webhookhub/event/redis"
	queueredis "github.com/marcelsud/webhookhub/queue/redis"
	routeredis "github.com/marcelsud/webhookhub/route/redis"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("connecting to Redis", "error", err)
		return
	}
	defer client.Close()

	routeRepo := routeredis.NewRepositoryWithClient(client)
	eventRepo := eventredis.NewRepositoryWithClient(client)
	deliveryQueue := queueredis.NewQueueWithClient(client)

	dispatcher := delivery.NewDispatcher(cfg.DeliveryTimeout())
	orchestrator := delivery.NewOrchestrator(eventRepo, routeRepo, deliveryQueue, dispatcher, logger)

	pool := delivery.NewPool(deliveryQueue, orchestrator, deliveryQueue, cfg.WorkerCount, cfg.PollInterval(), logger)
	pool.Start(ctx)
	logger.Info("delivery workers started", "workers", cfg.WorkerCount)

	<-ctx.Done()
	logger.Info("shutting down, waiting for in-flight deliveries")
	pool.Stop()
}
