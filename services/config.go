package services

import (
	"os"
	"strconv"
	"strings"
	"time"

	"habitat-nav/algorithms"
	"habitat-nav/models"
)

// Config - 환경 변수 기반 서버 설정
type Config struct {
	Port         string
	AllowOrigins string

	// DB ("mysql" | "sqlite" | "" 이면 텔레메트리 저장 안 함)
	DBDriver      string
	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	SQLitePath    string

	// 경로 엔진
	GridResolution   float64
	MaxIterations    int
	BatchConcurrency int

	// 로깅
	LogLevel         string
	LogFlushSize     int
	LogFlushInterval time.Duration
}

// LoadConfig - 환경 변수에서 설정 읽기 (.env 는 main 에서 먼저 로드)
func LoadConfig() Config {
	return Config{
		Port:         envString("PORT", "3000"),
		AllowOrigins: envString("CORS_ORIGINS", "http://localhost:5173, http://localhost:3000"),

		DBDriver:      strings.ToLower(envString("DB_DRIVER", "")),
		MySQLHost:     os.Getenv("MYSQL_HOST"),
		MySQLPort:     envInt("MYSQL_PORT", 3306),
		MySQLUser:     os.Getenv("MYSQL_USER"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLDatabase: os.Getenv("MYSQL_DATABASE"),
		SQLitePath:    envString("SQLITE_PATH", "habitat-nav.db"),

		GridResolution:   envFloat("GRID_RESOLUTION", models.GridResolution),
		MaxIterations:    envInt("MAX_ITERATIONS", algorithms.MaxIterations),
		BatchConcurrency: envInt("BATCH_CONCURRENCY", 4),

		LogLevel:         envString("LOG_LEVEL", "info"),
		LogFlushSize:     envInt("LOG_FLUSH_SIZE", 50),
		LogFlushInterval: envDuration("LOG_FLUSH_INTERVAL", 10*time.Second),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil || !(v > 0) {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
