package services

import (
	"errors"
	"fmt"
	"time"

	"habitat-nav/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrDatabaseDisabled - DB_DRIVER 미설정
var ErrDatabaseDisabled = errors.New("services: database disabled")

// OpenDatabase - 설정에 따라 MySQL 또는 SQLite 연결 후 마이그레이션
func OpenDatabase(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "":
		return nil, ErrDatabaseDisabled
	case "mysql":
		if cfg.MySQLHost == "" || cfg.MySQLUser == "" || cfg.MySQLDatabase == "" {
			return nil, fmt.Errorf("MySQL 환경 변수가 모두 설정되지 않았습니다: MYSQL_HOST, MYSQL_USER, MYSQL_DATABASE")
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database ready",
		zap.String("driver", cfg.DBDriver),
		zap.String("host", cfg.MySQLHost),
		zap.String("database", cfg.MySQLDatabase))
	return db, nil
}

// Migrate - 텔레메트리 테이블 자동 생성
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.QueryLog{}); err != nil {
		return fmt.Errorf("마이그레이션 실패: %w", err)
	}
	return nil
}

// QueryLogRepository - 질의 로그 조회
type QueryLogRepository struct {
	db *gorm.DB
}

// NewQueryLogRepository - 질의 로그 조회용 저장소
func NewQueryLogRepository(db *gorm.DB) *QueryLogRepository {
	return &QueryLogRepository{db: db}
}

// Recent - 최근 로그 조회
func (r *QueryLogRepository) Recent(limit int) ([]models.QueryLog, error) {
	var logs []models.QueryLog
	err := r.db.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ByKind - 결과 종류별 로그 조회
func (r *QueryLogRepository) ByKind(kind string, limit int) ([]models.QueryLog, error) {
	var logs []models.QueryLog
	err := r.db.Where("kind = ?", kind).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ByLayout - 배치별 로그 조회
func (r *QueryLogRepository) ByLayout(layoutID string, limit int) ([]models.QueryLog, error) {
	var logs []models.QueryLog
	err := r.db.Where("layout_id = ?", layoutID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// Stats - 최근 hours 시간 동안의 질의 통계
func (r *QueryLogRepository) Stats(hours int) (*models.QueryLogStats, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	scope := r.db.Model(&models.QueryLog{}).Where("created_at >= ?", since)

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var kindCounts []struct {
		Kind  string
		Count int64
	}
	if err := scope.Session(&gorm.Session{}).
		Select("kind, COUNT(*) as count").
		Group("kind").
		Scan(&kindCounts).Error; err != nil {
		return nil, err
	}

	var agg struct {
		Passed      int64
		AvgDuration float64
	}
	if err := scope.Session(&gorm.Session{}).
		Select("COALESCE(SUM(CASE WHEN passes THEN 1 ELSE 0 END), 0) as passed, COALESCE(AVG(duration_ms), 0) as avg_duration").
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	stats := &models.QueryLogStats{
		TotalQueries: total,
		KindCounts:   make(map[string]int64),
		AvgDuration:  agg.AvgDuration,
		TimeRange:    fmt.Sprintf("Last %d hours", hours),
	}
	for _, kc := range kindCounts {
		stats.KindCounts[kc.Kind] = kc.Count
	}
	if found := stats.KindCounts[models.ResultFound]; found > 0 {
		stats.PassRate = float64(agg.Passed) / float64(found)
	}
	return stats, nil
}
