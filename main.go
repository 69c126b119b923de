package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"econsync/config"
	"econsync/models"
	"econsync/scheduler"
	"econsync/services/datasource"
	"econsync/services/datastore"
	"econsync/services/syncer"
)

func main() {
	log.Println("==============================================")
	log.Println("  Economic Indicator Sync - Starting...")
	log.Println("==============================================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Config load issue: %v", err)
	}

	// Initialize database connection
	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	// Run database migrations
	log.Println("Running database migrations...")
	if err := models.MigrateIndicatorModels(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Database migrations completed successfully")

	// Build and initialize the provider adapters. Sources with missing
	// credentials are reported unavailable and skipped at sync time.
	sourceConfigs := cfg.SourceConfigs()
	factory := buildFactory(sourceConfigs)
	factory.Initialize()

	limiter := datasource.NewRateLimiter(rateIntervals(sourceConfigs))

	store := datastore.NewStore(db)
	mirror, err := datastore.NewMongoMirror(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Printf("MongoDB mirror unavailable: %v", err)
	}

	orchestrator := syncer.NewOrchestrator(store, factory, limiter, mirror)
	if _, err := orchestrator.BootstrapIndicators(); err != nil {
		log.Fatalf("Indicator bootstrap failed: %v", err)
	}

	// Start background scheduler
	jobScheduler := scheduler.NewScheduler(orchestrator, factory.Sources(), scheduler.Options{
		JobTimeout:    cfg.SyncJobTimeout,
		MaxRetries:    cfg.SyncMaxRetries,
		RetryDelay:    cfg.SyncRetryDelay,
		ResultLogSize: cfg.ResultLogSize,
	})
	jobScheduler.Start()

	if cfg.SyncOnStart {
		result := jobScheduler.TriggerSync("")
		if result.Success {
			log.Printf("Startup sync: %s", result.Output)
		} else {
			log.Printf("Startup sync not started: %s", result.Error)
		}
	}

	log.Println("Application fully initialized")
	log.Println("==============================================")

	// Graceful shutdown
	gracefulShutdown(jobScheduler, db, mirror)
}

// buildFactory registers every provider adapter
func buildFactory(configs map[string]datasource.SourceConfig) *datasource.Factory {
	factory := datasource.NewFactory()
	factory.Register(datasource.NewFREDAdapter(configs[datasource.SourceFRED]))
	factory.Register(datasource.NewAlphaVantageAdapter(configs[datasource.SourceAlphaVantage]))
	factory.Register(datasource.NewBLSAdapter(configs[datasource.SourceBLS]))
	factory.Register(datasource.NewWorldBankAdapter(configs[datasource.SourceWorldBank]))
	factory.Register(datasource.NewECBAdapter(configs[datasource.SourceECB]))
	factory.Register(datasource.NewIMFAdapter(configs[datasource.SourceIMF]))
	factory.Register(datasource.NewTreasuryAdapter(configs[datasource.SourceTreasury]))
	factory.Register(datasource.NewSECAdapter(configs[datasource.SourceSEC]))
	factory.Register(datasource.NewRapidAPIAdapter(configs[datasource.SourceRapidAPI]))
	return factory
}

// rateIntervals extracts the per-source minimum call intervals
func rateIntervals(configs map[string]datasource.SourceConfig) map[string]time.Duration {
	intervals := make(map[string]time.Duration, len(configs))
	for source, sourceConfig := range configs {
		intervals[source] = sourceConfig.RateLimit
	}
	return intervals
}

// gracefulShutdown waits for a signal and stops components in order
func gracefulShutdown(jobScheduler *scheduler.Scheduler, db *gorm.DB, mirror *datastore.MongoMirror) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	// Stop scheduler first so no new syncs start
	jobScheduler.Stop()

	if mirror != nil {
		if err := mirror.Close(); err != nil {
			log.Printf("MongoDB disconnect error: %v", err)
		}
	}

	// Close database connection
	if db != nil {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
			log.Println("Database connection closed")
		}
	}

	log.Println("Shutdown completed")
}
