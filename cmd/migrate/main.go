package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/modvault/modvault-backend/internal/config"
	"github.com/modvault/modvault-backend/internal/migration"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/internal/service"
	pkges "github.com/modvault/modvault-backend/pkg/elasticsearch"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	dryRun := flag.Bool("dry-run", false, "show the tables that would be migrated without executing")
	verify := flag.Bool("verify", false, "report records whose status and scheduled_at disagree")
	reindex := flag.Bool("reindex", false, "rebuild the search index from published records")
	batchSize := flag.Int("batch-size", 500, "reindex page size")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *dryRun {
		for _, m := range migration.Models() {
			log.Printf("[dry-run] Would migrate: %T", m)
		}
		log.Printf("[dry-run] Would seed %d categories when empty", len(migration.DefaultCategories()))
		return
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	start := time.Now()
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("[migrate] Schema up to date (%s)", time.Since(start).Round(time.Millisecond))

	ctx := context.Background()

	if *verify {
		runVerify(ctx, db)
	}

	if *reindex {
		runReindex(ctx, cfg, db, *batchSize)
	}
}

func runVerify(ctx context.Context, db *gorm.DB) {
	found, err := service.NewPublicationService(nil, repository.NewPublicationStore(db)).Audit(ctx)
	if err != nil {
		log.Fatalf("[verify] %v", err)
	}
	if len(found) == 0 {
		log.Println("[verify] OK: no inconsistent records")
		return
	}
	for table, ids := range found {
		log.Printf("[verify] %s: %d inconsistent %v", table, len(ids), ids)
	}
}

func runReindex(ctx context.Context, cfg *config.Config, db *gorm.DB, batchSize int) {
	if !cfg.Elasticsearch.Enabled || len(cfg.Elasticsearch.Addresses) == 0 {
		log.Fatal("[reindex] elasticsearch is not enabled")
	}
	client, err := pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
	if err != nil {
		log.Fatalf("[reindex] %v", err)
	}

	index := service.NewSearchIndex(client, cfg.Elasticsearch.Index)
	if err := index.EnsureIndex(ctx); err != nil {
		log.Fatalf("[reindex] ensure index %s: %v", index.Name(), err)
	}

	search := service.NewSearchService(
		index,
		repository.NewAppRepository(db),
		repository.NewGameRepository(db),
		repository.NewBlogRepository(db),
		nil,
	)
	start := time.Now()
	n, err := search.Reindex(ctx, batchSize)
	if err != nil {
		log.Fatalf("[reindex] %v", err)
	}
	log.Printf("[reindex] %d documents into %s (%s)", n, index.Name(), time.Since(start).Round(time.Millisecond))
}
