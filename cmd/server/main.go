package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/artisan-market/internal/adapter/handler"
	"github.com/rl1809/artisan-market/internal/adapter/handler/rpc"
	"github.com/rl1809/artisan-market/internal/adapter/storage"
	"github.com/rl1809/artisan-market/internal/auth"
	"github.com/rl1809/artisan-market/internal/config"
	"github.com/rl1809/artisan-market/internal/core/service"
	"github.com/rl1809/artisan-market/internal/logger"
	"github.com/rl1809/artisan-market/internal/port"
	"github.com/rl1809/artisan-market/internal/telemetry"
)

func main() {
	envPath := flag.String("env", "", "path to a .env file (default ./.env)")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	dbCfg := storage.DBConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	if cfg.Database.Migrate {
		if err := storage.Migrate(ctx, dbCfg, log); err != nil {
			return err
		}
	}

	// Initialize database
	db, dialect, err := storage.Open(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	checks := map[string]handler.HealthCheck{"database": db.PingContext}

	// Initialize Redis; without it purchases run without idempotency keys.
	var idempotency port.CacheRepository
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: 100,
		})
		defer rdb.Close()

		redisAdapter := storage.NewRedisAdapter(rdb, cfg.Redis.IdempotencyTTL)
		if err := redisAdapter.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		idempotency = redisAdapter
		checks["redis"] = redisAdapter.Ping
	} else {
		log.Warn("REDIS_ADDR is empty, idempotency keys disabled")
	}

	// Initialize services
	store := storage.NewSQLStore(db, dialect)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	purchases, err := service.NewPurchaseService(store, service.PurchaseConfig{
		CommissionRate: cfg.Purchase.CommissionRate,
		Timeout:        cfg.Purchase.Timeout,
		Now:            time.Now,
	}, log, tel.Tracer, tel.Meter)
	if err != nil {
		return err
	}

	deps := handler.Dependencies{
		Purchases:   purchases,
		Accounts:    service.NewAccountService(store, tokens, log),
		Catalog:     service.NewCatalogService(store, store, log),
		Orders:      service.NewOrderService(store, store, log),
		Audit:       service.NewAuditService(store, cfg.Purchase.CommissionRate, log),
		Tokens:      tokens,
		Idempotency: idempotency,
		Checks:      checks,
		Logger:      log,
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(handler.UnaryLogging(log)))
	rpc.RegisterPurchaseServiceServer(grpcServer, handler.NewGRPCHandler(purchases, tokens, idempotency, log))

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPC.Addr, err)
	}

	serveErr := make(chan error, 2)
	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.NewHTTPHandler(deps).Router(otelgin.Middleware(cfg.Telemetry.ServiceName)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serveErr:
		log.Error("server failed, shutting down", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("telemetry shutdown", zap.Error(err))
	}

	log.Info("connections closed")
	return nil
}
