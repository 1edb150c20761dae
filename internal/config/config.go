package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 설정
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Storage       StorageConfig       `yaml:"storage"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	CORS          CORSConfig          `yaml:"cors"`
	Publication   PublicationConfig   `yaml:"publication"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port    int    `yaml:"port"`
	Mode    string `yaml:"mode"`     // debug, release, test
	BaseURL string `yaml:"base_url"` // public site origin used in the sitemap
}

// DatabaseConfig MySQL 설정
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
	LogSQL          bool   `yaml:"log_sql"`
}

// RedisConfig Redis 설정
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// StorageConfig S3 호환 스토리지 설정
type StorageConfig struct {
	Enabled         bool              `yaml:"enabled"`
	Endpoint        string            `yaml:"endpoint"`
	Region          string            `yaml:"region"`
	AccessKeyID     string            `yaml:"access_key_id"`
	SecretAccessKey string            `yaml:"secret_access_key"`
	DefaultBucket   string            `yaml:"default_bucket"`
	Buckets         map[string]string `yaml:"buckets"` // name -> public base URL
	ForcePathStyle  bool              `yaml:"force_path_style"`
}

// ElasticsearchConfig 검색 인덱스 설정
type ElasticsearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Index     string   `yaml:"index"`
}

// CORSConfig comma separated origins
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// PublicationConfig 발행 설정
type PublicationConfig struct {
	TimeZone       string        `yaml:"time_zone"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	SlugRetryLimit int           `yaml:"slug_retry_limit"`
}

// Default values applied before the file is read
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, Mode: "debug", BaseURL: "http://localhost:8080"},
		Database: DatabaseConfig{Host: "localhost", Port: 3306, MaxIdleConns: 10, MaxOpenConns: 50, ConnMaxLifetime: 3600},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10},
		Elasticsearch: ElasticsearchConfig{
			Index: "modvault-content",
		},
		Publication: PublicationConfig{
			TimeZone:       "UTC",
			SweepInterval:  time.Minute,
			SlugRetryLimit: 5,
		},
	}
}

// Load reads the YAML file at path, then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setInt(&cfg.Server.Port, "SERVER_PORT")

	setString(&cfg.Storage.AccessKeyID, "STORAGE_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretAccessKey, "STORAGE_SECRET_ACCESS_KEY")

	setString(&cfg.Publication.TimeZone, "PUBLICATION_TIME_ZONE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate rejects settings the publication layer cannot run with
func (c *Config) Validate() error {
	var errs []error

	if _, err := time.LoadLocation(c.Publication.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("publication.time_zone: unknown zone %q", c.Publication.TimeZone))
	}
	if c.Publication.SlugRetryLimit < 1 {
		errs = append(errs, fmt.Errorf("publication.slug_retry_limit: must be at least 1"))
	}
	if c.Publication.SweepInterval < time.Second {
		errs = append(errs, fmt.Errorf("publication.sweep_interval: must be at least 1s"))
	}
	if c.Storage.Enabled {
		if len(c.Storage.Buckets) == 0 {
			errs = append(errs, fmt.Errorf("storage.buckets: at least one bucket is required when storage is enabled"))
		}
		if c.Storage.DefaultBucket != "" {
			if _, ok := c.Storage.Buckets[c.Storage.DefaultBucket]; !ok {
				errs = append(errs, fmt.Errorf("storage.default_bucket: %q is not in storage.buckets", c.Storage.DefaultBucket))
			}
		}
	}
	return errors.Join(errs...)
}

// Location parsed publication.time_zone (UTC when invalid; Validate reports that)
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Publication.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment debug mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "" || c.Server.Mode == "debug"
}

// GetDSN MySQL DSN (utf8mb4, parseTime, UTC)
func (d DatabaseConfig) GetDSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// LogResolved logs the effective settings without secrets
func LogResolved(c *Config) {
	pkglogger.GetLogger().Info().
		Int("server_port", c.Server.Port).
		Str("db", fmt.Sprintf("%s@%s:%d/%s", c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name)).
		Str("redis", fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)).
		Bool("storage", c.Storage.Enabled).
		Bool("elasticsearch", c.Elasticsearch.Enabled).
		Str("time_zone", c.Publication.TimeZone).
		Dur("sweep_interval", c.Publication.SweepInterval).
		Str("cors", strings.TrimSpace(c.CORS.AllowOrigins)).
		Msg("config resolved")
}
