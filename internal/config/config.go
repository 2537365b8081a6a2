package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLTTL          time.Duration
}

// StorageConfig selects where export files go: "local" or "s3".
type StorageConfig struct {
	Driver       string
	Dir          string
	PublicPrefix string
	ExternalURL  string
	Retention    time.Duration
}

// EngagementConfig holds the interaction weights used for engagement scores.
type EngagementConfig struct {
	View        float64
	Like        float64
	Share       float64
	Bookmark    float64
	Comment     float64
	Submission  float64
	FullScoreAt float64
}

type CronConfig struct {
	CleanupSpec  string
	ReminderSpec string
}

type AppConfig struct {
	Port         string
	Postgres     PostgresConfig
	Redis        RedisConfig
	S3           S3Config
	Storage      StorageConfig
	Engagement   EngagementConfig
	Cron         CronConfig
	SummaryTTL   time.Duration
	ExportPrefix string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func mustFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("invalid float value %q: %v", s, err)
	}
	return f
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration value %q: %v", s, err)
	}
	return d
}

func Load() AppConfig {
	return AppConfig{
		Port: getenv("APP_PORT", "8010"),
		Postgres: PostgresConfig{
			Host:         getenv("PG_HOST", "127.0.0.1"),
			Port:         mustAtoi(getenv("PG_PORT", "5432")),
			User:         getenv("PG_USER", "postgres"),
			Password:     getenv("PG_PASSWORD", "postgres"),
			DBName:       getenv("PG_DB", "classroom"),
			SSLMode:      getenv("PG_SSLMODE", "disable"),
			MaxOpenConns: mustAtoi(getenv("PG_MAX_OPEN_CONNS", "20")),
			MaxIdleConns: mustAtoi(getenv("PG_MAX_IDLE_CONNS", "5")),
			AutoMigrate:  mustBool(getenv("PG_AUTO_MIGRATE", "false")),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "classroom_ledger:"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "exports"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", "exports/"),
			URLTTL:          mustDuration(getenv("S3_URL_TTL", "1h")),
		},
		Storage: StorageConfig{
			Driver:       getenv("STORAGE_DRIVER", "local"),
			Dir:          getenv("EXPORT_DIR", "./exports"),
			PublicPrefix: getenv("FILES_PUBLIC_PREFIX", "/files"),
			ExternalURL:  getenv("EXTERNAL_URL", ""),
			Retention:    mustDuration(getenv("EXPORT_RETENTION", "30m")),
		},
		Engagement: EngagementConfig{
			View:        mustFloat(getenv("ENGAGEMENT_VIEW_WEIGHT", "0.1")),
			Like:        mustFloat(getenv("ENGAGEMENT_LIKE_WEIGHT", "0.5")),
			Share:       mustFloat(getenv("ENGAGEMENT_SHARE_WEIGHT", "1")),
			Bookmark:    mustFloat(getenv("ENGAGEMENT_BOOKMARK_WEIGHT", "0.5")),
			Comment:     mustFloat(getenv("ENGAGEMENT_COMMENT_WEIGHT", "2")),
			Submission:  mustFloat(getenv("ENGAGEMENT_SUBMISSION_WEIGHT", "5")),
			FullScoreAt: mustFloat(getenv("ENGAGEMENT_FULL_SCORE_AT", "50")),
		},
		Cron: CronConfig{
			CleanupSpec:  getenv("CRON_EXPORT_CLEANUP", "*/5 * * * *"),
			ReminderSpec: getenv("CRON_REMINDERS", "0 8 * * *"),
		},
		SummaryTTL:   mustDuration(getenv("SUMMARY_CACHE_TTL", "10m")),
		ExportPrefix: getenv("EXPORT_CACHE_PREFIX", "exports:"),
	}
}
