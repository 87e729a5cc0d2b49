package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/webhookhub/config"
	"github.com/marcelsud/webhookhub/event"
	eventredis "github.com/marcelsud/webhookhub/event/redis"
	"github.com/marcelsud/webhookhub/internal/http/chi"
	"github.com/marcelsud/webhookhub/metrics"
	queueredis "github.com/marcelsud/webhookhub/queue/redis"
	"github.com/marcelsud/webhookhub/route"
	routeredis "github.com/marcelsud/webhookhub/route/redis"
	"github.com/redis/go-redis/v9"
)

const TIMEOUT = 30 * time.Second

/* main é a porta de entrada e saída da aplicação: é aqui que as
 * dependências são iniciadas e amarradas umas às outras
 * As importações seguem apenas uma direção: para baixo
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
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
		fmt.Println(fmt.Errorf("connecting to Redis: %w", err))
		return
	}
	defer client.Close()

	routeRepo := routeredis.NewRepositoryWithClient(client)
	eventRepo := eventredis.NewRepositoryWithClient(client)
	deliveryQueue := queueredis.NewQueueWithClient(client)

	if err := seedRoutes(ctx, cfg.SeedFile, routeRepo); err != nil {
		fmt.Println(err)
		return
	}

	eventService := event.NewService(eventRepo, routeRepo, deliveryQueue)

	collector := metrics.NewStoreCollector(eventRepo, deliveryQueue, metrics.NewQueueHeartbeatSource(deliveryQueue))
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(context.Background())

	r := chi.Handlers(ctx, eventService, routeRepo, exporter)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

// seedRoutes provisions projects, routes and destinations from the seed
// file; a missing file just means the store already holds the routes
func seedRoutes(ctx context.Context, seedFile string, repo route.Repository) error {
	if _, err := os.Stat(seedFile); os.IsNotExist(err) {
		fmt.Printf("Seed file %s not found, skipping\n", seedFile)
		return nil
	}

	loader := route.NewLoader()
	if err := loader.Load(seedFile); err != nil {
		return fmt.Errorf("loading seed file: %w", err)
	}
	if err := loader.Seed(ctx, repo); err != nil {
		return fmt.Errorf("seeding routes: %w", err)
	}
	fmt.Printf("Seeded %d route(s) from %s\n", len(loader.List()), seedFile)
	return nil
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
