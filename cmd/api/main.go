package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/modvault/modvault-backend/internal/config"
	"github.com/modvault/modvault-backend/internal/handler"
	"github.com/modvault/modvault-backend/internal/middleware"
	"github.com/modvault/modvault-backend/internal/migration"
	"github.com/modvault/modvault-backend/internal/publication"
	"github.com/modvault/modvault-backend/internal/realtime"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/internal/routes"
	"github.com/modvault/modvault-backend/internal/scheduler"
	"github.com/modvault/modvault-backend/internal/service"
	"github.com/modvault/modvault-backend/internal/slug"
	pkgcache "github.com/modvault/modvault-backend/pkg/cache"
	pkges "github.com/modvault/modvault-backend/pkg/elasticsearch"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	pkgredis "github.com/modvault/modvault-backend/pkg/redis"
	pkgstorage "github.com/modvault/modvault-backend/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           ModVault Backend API
// @version         1.0
// @description     Mod APK, game and blog publishing API
//
// @host            localhost:8080
// @BasePath        /api/v1

// getConfigPath CONFIG_PATH wins, otherwise configs/config.<APP_ENV>.yaml
func getConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// MySQL 연결 (필수)
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		pkglogger.Warn("Migration warning: %v", err)
	}

	// Redis 연결
	redisClient, err := pkgredis.NewClient(pkgredis.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		pkglogger.Info("Warning: Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}
	cacheService := pkgcache.NewService(redisClient)

	// Elasticsearch 연결
	var searchIndex *service.SearchIndex
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, esErr := pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr != nil {
			pkglogger.Info("Warning: Elasticsearch connection failed: %v (continuing without ES)", esErr)
		} else {
			searchIndex = service.NewSearchIndex(esClient, cfg.Elasticsearch.Index)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := searchIndex.EnsureIndex(ctx); err != nil {
				pkglogger.Warn("Elasticsearch index %s: %v", searchIndex.Name(), err)
			}
			cancel()
			pkglogger.Info("Connected to Elasticsearch (index %s)", searchIndex.Name())
		}
	}

	// S3-compatible storage
	mediaResolver := pkgstorage.NewResolver(cfg.Storage.Buckets)
	var blobStore service.BlobStore
	if cfg.Storage.Enabled {
		s3Client, s3Err := pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
			Buckets:         cfg.Storage.Buckets,
		})
		if s3Err != nil {
			pkglogger.Info("Warning: S3 storage init failed: %v (continuing without S3)", s3Err)
		} else {
			blobStore = s3Client
			mediaResolver = s3Client.Resolver()
			pkglogger.Info("Connected to S3 storage (%d buckets)", len(cfg.Storage.Buckets))
		}
	}

	// Realtime hub
	hub := realtime.NewHub(redisClient)
	go hub.Run()

	// Repositories
	store := repository.NewPublicationStore(db)
	appRepo := repository.NewAppRepository(db)
	gameRepo := repository.NewGameRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Services
	slugs := slug.NewResolver(store, cfg.Publication.SlugRetryLimit)
	deps := &service.ContentDeps{
		DB:           db,
		Slugs:        slugs,
		Machine:      publication.NewMachine(cfg.Location()),
		Categories:   categoryRepo,
		Associations: repository.NewAssociationRepository(db),
		Versions:     repository.NewVersionRepository(db),
		Cache:        cacheService,
		Events:       hub,
		Media:        mediaResolver,
	}
	if searchIndex != nil {
		deps.Index = searchIndex
	}

	appService := service.NewAppService(appRepo, deps)
	gameService := service.NewGameService(gameRepo, deps)
	blogService := service.NewBlogService(blogRepo, deps)
	categoryService := service.NewCategoryService(categoryRepo, slugs)
	searchService := service.NewSearchService(searchIndex, appRepo, gameRepo, blogRepo, mediaResolver)
	sitemapService := service.NewSitemapService(store, cacheService)
	mediaService := service.NewMediaService(blobStore, mediaResolver, cfg.Storage.DefaultBucket)

	var locker publication.Locker
	if redisClient != nil {
		locker = publication.NewRedisLocker(redisClient)
	}
	sweeper := publication.NewSweeper(store, locker, cfg.Publication.SweepInterval)
	sweeper.OnPromoted(blogService.Promoted)
	publicationService := service.NewPublicationService(sweeper, store)

	// Scheduler
	sched := scheduler.New(0)
	sched.Register("publication-sweep", cfg.Publication.SweepInterval, publicationService.SweepTask)
	sched.Register("publication-audit", time.Hour, publicationService.AuditTask)
	sched.Register("db-stats", 30*time.Second, func(context.Context, time.Time) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		middleware.SetDBConnectionsInUse(sqlDB.Stats().InUse)
		return nil
	})
	sched.Start(context.Background())
	defer sched.Stop()

	// Gin 라우터 생성
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS 설정
	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", handler.AdminUserHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		MaxAge:           12 * time.Hour,
	}))

	// Middleware
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "modvault-backend",
			"redis":   redisClient != nil,
			"search":  searchIndex != nil,
			"storage": blobStore != nil,
			"time":    time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, routes.Handlers{
		Apps:        handler.NewPackageHandler(appService),
		Games:       handler.NewPackageHandler(gameService),
		Blogs:       handler.NewBlogHandler(blogService),
		Categories:  handler.NewCategoryHandler(categoryService),
		Search:      handler.NewSearchHandler(searchService),
		Media:       handler.NewMediaHandler(mediaService),
		Publication: handler.NewPublicationHandler(publicationService),
		Realtime:    handler.NewWSHandler(hub, cfg.CORS.AllowOrigins),
		Sitemap:     handler.NewSitemapHandler(sitemapService, cfg.Server.BaseURL),
	})

	// 서버 시작
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		hub.Stop()
		log.Fatalf("Failed to start server: %v", err)
	}
}

// splitAndTrim splits a string by delimiter and trims spaces
func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("DSN 파싱 실패: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	mysqlCfg.Params["time_zone"] = "'+00:00'" // scheduled_at 은 UTC 로 저장

	logLevel := gormlogger.Warn
	if cfg.Database.LogSQL {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}
