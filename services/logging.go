package services

import (
	"sync"
	"time"

	"habitat-nav/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QueryLogBuffer - 질의 텔레메트리 버퍼 (비동기 일괄 저장)
type QueryLogBuffer struct {
	db     *gorm.DB
	logger *zap.Logger

	logs      []models.QueryLog
	mu        sync.Mutex
	flushMu   sync.Mutex
	flushSize int           // 일괄 저장 크기
	flushTime time.Duration // 자동 플러시 시간

	flushNow chan struct{}
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewQueryLogBuffer - 버퍼 생성 및 자동 플러시 고루틴 시작
func NewQueryLogBuffer(db *gorm.DB, flushSize int, flushInterval time.Duration, logger *zap.Logger) *QueryLogBuffer {
	if flushSize <= 0 {
		flushSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	lb := &QueryLogBuffer{
		db:        db,
		logger:    logger,
		logs:      make([]models.QueryLog, 0, flushSize*2),
		flushSize: flushSize,
		flushTime: flushInterval,
		flushNow:  make(chan struct{}, 1),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	go lb.autoFlush()

	logger.Info("query log buffer started",
		zap.Int("flush_size", flushSize),
		zap.Duration("flush_interval", flushInterval))
	return lb
}

// autoFlush - 주기적 로그 저장
func (lb *QueryLogBuffer) autoFlush() {
	defer close(lb.done)
	ticker := time.NewTicker(lb.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lb.Flush()
		case <-lb.flushNow:
			lb.Flush()
		case <-lb.stopChan:
			lb.Flush() // 종료 시 남은 로그 저장
			return
		}
	}
}

// ObserveQuery - Navigator 텔레메트리 훅
func (lb *QueryLogBuffer) ObserveQuery(q Query, res *Result) {
	entry := models.QueryLog{
		CreatedAt:     time.Now(),
		QueryID:       res.QueryID,
		LayoutID:      q.LayoutID,
		Kind:          res.Kind,
		StartX:        q.Start.X,
		StartZ:        q.Start.Z,
		EndX:          q.End.X,
		EndZ:          q.End.Z,
		BoundaryShape: q.Boundary.ShapeOrDefault(),
		Radius:        q.Boundary.Radius,
		Obstacles:     len(q.Obstacles),
		Resolution:    res.GridResolution,
		DurationMs:    float64(res.Duration.Microseconds()) / 1000,
		Iterations:    res.Stats.Iterations,
		Waypoints:     len(res.Path),
		Error:         res.Error,
	}
	if res.Report != nil {
		entry.TotalDistance = res.Report.TotalDistance
		entry.MinWidth = res.Report.MinWidth
		entry.NarrowSegments = res.Report.NarrowSegments
		entry.Passes = res.Report.Passes
	}
	lb.Add(entry)
}

// Add - 로그 버퍼에 추가
func (lb *QueryLogBuffer) Add(entry models.QueryLog) {
	lb.mu.Lock()
	lb.logs = append(lb.logs, entry)
	size := len(lb.logs)
	lb.mu.Unlock()

	// 버퍼 크기가 차면 즉시 플러시
	if size >= lb.flushSize {
		select {
		case lb.flushNow <- struct{}{}:
		default:
		}
	}
}

// Pending - 아직 저장되지 않은 버퍼 항목 수
func (lb *QueryLogBuffer) Pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.logs)
}

// Flush - 버퍼의 모든 로그를 DB에 저장
func (lb *QueryLogBuffer) Flush() {
	lb.flushMu.Lock()
	defer lb.flushMu.Unlock()

	lb.mu.Lock()
	if len(lb.logs) == 0 {
		lb.mu.Unlock()
		return
	}

	// 로그 복사 및 버퍼 초기화
	logsToSave := make([]models.QueryLog, len(lb.logs))
	copy(logsToSave, lb.logs)
	lb.logs = lb.logs[:0]
	lb.mu.Unlock()

	if lb.db == nil {
		return
	}
	if err := lb.db.CreateInBatches(logsToSave, 100).Error; err != nil {
		lb.logger.Error("query log flush failed", zap.Int("count", len(logsToSave)), zap.Error(err))
		return
	}
	lb.logger.Debug("query logs saved", zap.Int("count", len(logsToSave)))
}

// Stop - 자동 플러시 종료 (남은 로그 저장). 여러 번 호출해도 안전.
func (lb *QueryLogBuffer) Stop() {
	lb.stopOnce.Do(func() {
		close(lb.stopChan)
		<-lb.done
		lb.logger.Info("query log buffer stopped")
	})
}
