package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/NinnOgTonic/antaeus/internal/postgres"
	"github.com/NinnOgTonic/antaeus/internal/repository"
	"github.com/NinnOgTonic/antaeus/internal/service"
	"github.com/NinnOgTonic/antaeus/internal/types"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	seedCustomers := flag.Int("seed", 0, "Insert this many customers with sample invoices after migrating")
	invoicesPerCustomer := flag.Int("invoices", 10, "Sample invoices per seeded customer, the last one is left pending")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		for _, stmt := range postgres.Schema() {
			fmt.Printf("%s;\n\n", stmt)
		}
		return
	}

	m := metrics.NewMetrics(metrics.NewRegistry())

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger, m)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("Running database migrations...")
	if err := db.Migrate(ctx); err != nil {
		logger.Fatalw("Failed to create schema resources", "error", err)
	}
	logger.Info("Migration completed successfully")

	if *seedCustomers > 0 {
		params := service.ServiceParams{
			Logger:       logger,
			Config:       cfg,
			Metrics:      m,
			CustomerRepo: repository.NewCustomerRepository(db, logger),
			InvoiceRepo:  repository.NewInvoiceRepository(db, logger),
		}
		if err := seed(ctx, params, *seedCustomers, *invoicesPerCustomer); err != nil {
			logger.Fatalw("Failed to seed sample data", "error", err)
		}
	}

	fmt.Println("Migration process completed")
}

// seed creates customers in random currencies, each with invoices that are
// all paid except the most recent one
func seed(ctx context.Context, params service.ServiceParams, customers, invoices int) error {
	customerSvc := service.NewCustomerService(params)
	invoiceSvc := service.NewInvoiceService(params)
	amounts := service.NewRandomAmountPolicy(nil)

	for i := 0; i < customers; i++ {
		currency := types.SupportedCurrencies[rand.IntN(len(types.SupportedCurrencies))]
		c, err := customerSvc.CreateCustomer(ctx, currency, "")
		if err != nil {
			return err
		}

		for j := 0; j < invoices; j++ {
			status := types.InvoiceStatusPaid
			if j == invoices-1 {
				status = types.InvoiceStatusPending
			}
			amount, err := amounts.AmountFor(ctx, c)
			if err != nil {
				return err
			}
			if _, err := invoiceSvc.CreateInvoice(ctx, amount, c, status); err != nil {
				return err
			}
		}
	}

	params.Logger.Infow("Seeded sample data",
		"customers", customers,
		"invoices_per_customer", invoices,
	)
	return nil
}
