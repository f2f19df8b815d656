// Package server boots the application: configuration, store, storage,
// queue workers, HTTP stack.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/motomart/app/jobs"
	"github.com/shashiranjanraj/motomart/app/repositories"
	"github.com/shashiranjanraj/motomart/app/routes"
	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/config"
	"github.com/shashiranjanraj/motomart/pkg/database"
	"github.com/shashiranjanraj/motomart/pkg/logger"
	"github.com/shashiranjanraj/motomart/pkg/metrics"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
	"github.com/shashiranjanraj/motomart/pkg/queue"
	"github.com/shashiranjanraj/motomart/pkg/reqid"
	"github.com/shashiranjanraj/motomart/pkg/router"
	"github.com/shashiranjanraj/motomart/pkg/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	queueWorkers    = 2
)

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and stops the queue workers.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(context.Background()); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()

	storage.Connect()

	if config.QueueDriver() == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
		})
		queue.SetDriver(queue.NewRedisDriver(rdb))
	}
	jobs.Register()
	queue.OnResult(func(res queue.JobResult) {
		if res.Err != nil && res.Type == jobs.InvoiceEmailJobName {
			logger.Warn("invoice delivery failed, not retrying", "error", res.Err)
		}
	})
	queue.StartWorkers(ctx, queueWorkers)

	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)

	authService := services.NewAuthService(users)
	productService := services.NewProductService(products)
	orderService := services.NewOrderService(orders, products)
	paymentService := services.NewPaymentService(services.NewStripeClient())

	r := router.New()
	r.Use(
		reqid.Middleware(),
		metrics.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
	)
	routes.RegisterAPI(r, routes.Deps{
		Auth:    authService,
		Product: productService,
		Order:   orderService,
		Payment: paymentService,
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return database.Ping(pingCtx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
		return err
	}
	return nil
}
