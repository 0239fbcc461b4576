package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/adapter/storage"
	"github.com/rl1809/artisan-market/internal/auth"
	"github.com/rl1809/artisan-market/internal/config"
	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/core/service"
)

func main() {
	envPath := flag.String("env", "", "path to a .env file (default ./.env)")
	initialStock := flag.Int("stock", 20, "stock of the seeded product")
	totalRequests := flag.Int("requests", 50, "number of concurrent purchases")
	quantity := flag.Int("quantity", 1, "units per purchase")
	retries := flag.Int("retries", 0, "resubmissions after LOCK_CONTENTION")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	dbCfg := storage.DBConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	if err := storage.Migrate(ctx, dbCfg, zap.NewNop()); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	db, dialect, err := storage.Open(ctx, dbCfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	store := storage.NewSQLStore(db, dialect)

	// Seed an artisan, a buyer and one product
	run := uuid.NewString()[:8]
	hash, err := auth.HashPassword("stress-test")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	artisan, err := store.CreateUser(ctx, domain.User{
		Username: "stress-artisan-" + run, PasswordHash: hash, Role: domain.RoleArtisan,
		FullName: "Stress Artisan", Email: "artisan-" + run + "@example.com",
	})
	if err != nil {
		log.Fatalf("failed to seed artisan: %v", err)
	}
	buyer, err := store.CreateUser(ctx, domain.User{
		Username: "stress-buyer-" + run, PasswordHash: hash, Role: domain.RoleBuyer,
		FullName: "Stress Buyer", Email: "buyer-" + run + "@example.com",
	})
	if err != nil {
		log.Fatalf("failed to seed buyer: %v", err)
	}
	product, err := store.CreateProduct(ctx, domain.Product{
		ArtisanID:     artisan.ID,
		Name:          "Stress Item " + run,
		Price:         decimal.RequireFromString("19.99"),
		StockQuantity: *initialStock,
	})
	if err != nil {
		log.Fatalf("failed to seed product: %v", err)
	}

	purchases, err := service.NewPurchaseService(store, service.PurchaseConfig{
		CommissionRate: cfg.Purchase.CommissionRate,
		Timeout:        cfg.Purchase.Timeout,
	}, zap.NewNop(), tracenoop.NewTracerProvider().Tracer("stress"), noop.NewMeterProvider().Meter("stress"))
	if err != nil {
		log.Fatalf("failed to init purchase service: %v", err)
	}

	// Counters
	var (
		successCount    atomic.Int32
		contentionCount atomic.Int32
		soldOutCount    atomic.Int32
		otherCount      atomic.Int32
	)

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			intent := domain.PurchaseIntent{
				BuyerID:         buyer.ID,
				ProductID:       product.ID,
				Quantity:        *quantity,
				ShippingAddress: "Stress Test Lane",
				ClientAddress:   "127.0.0.1",
			}
			result := purchases.Purchase(ctx, intent)
			for attempt := 0; attempt < *retries && result.Outcome.Retryable(); attempt++ {
				result = purchases.Purchase(ctx, intent)
			}

			switch result.Outcome {
			case domain.OutcomeSuccess:
				successCount.Add(1)
			case domain.OutcomeLockContention:
				contentionCount.Add(1)
			case domain.OutcomeSoldOut, domain.OutcomeInsufficientStock:
				soldOutCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	final, err := store.GetProduct(ctx, product.ID)
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Product:          %d (%s)\n", product.ID, product.Name)
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d x %d units\n", *totalRequests, *quantity)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Lock Contention:  %d\n", contentionCount.Load())
	fmt.Printf("Sold Out / Short: %d\n", soldOutCount.Load())
	fmt.Printf("Other Failures:   %d\n", otherCount.Load())
	fmt.Printf("Final Stock:      %d\n", final.StockQuantity)
	fmt.Printf("Time Elapsed:     %v\n", elapsed)
	fmt.Println("==========================================")

	sold := int(successCount.Load()) * *quantity
	switch {
	case final.StockQuantity < 0, sold > *initialStock:
		log.Fatalf("FAIL: oversold, %d units sold from a stock of %d", sold, *initialStock)
	case final.StockQuantity != *initialStock-sold:
		log.Fatalf("FAIL: final stock %d, expected %d", final.StockQuantity, *initialStock-sold)
	default:
		fmt.Println("PASS: no oversell")
	}
}
