package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habitat-nav/algorithms"
	"habitat-nav/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Query - 한 번의 경로 질의
type Query struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	LayoutID   string            `json:"layout_id,omitempty" yaml:"layout_id,omitempty"`
	Start      models.Position   `json:"start" yaml:"start"`
	End        models.Position   `json:"end" yaml:"end"`
	Boundary   models.Boundary   `json:"boundary" yaml:"boundary"`
	Obstacles  []models.Obstacle `json:"obstacles" yaml:"obstacles"`
	Resolution float64           `json:"resolution,omitempty" yaml:"resolution,omitempty"` // 0 이면 기본값
	Simplify   float64           `json:"simplify,omitempty" yaml:"simplify,omitempty"`     // Douglas-Peucker 허용 오차, 0 이면 끔
}

// Result - 경로 질의 결과
type Result struct {
	QueryID        string                 `json:"query_id"`
	Kind           string                 `json:"kind"` // models.Result*
	Path           models.Path            `json:"path,omitempty"`
	Report         *models.Report         `json:"report,omitempty"`
	Stats          algorithms.SearchStats `json:"stats"`
	GridResolution float64                `json:"grid_resolution"`
	Duration       time.Duration          `json:"-"`
	Error          string                 `json:"error,omitempty"`
}

// Found - 경로를 찾았는지
func (r *Result) Found() bool {
	return r.Kind == models.ResultFound
}

// QueryObserver - 질의 단위 텔레메트리 훅
type QueryObserver interface {
	ObserveQuery(q Query, res *Result)
}

// Navigator - 격자 생성 → A* → 통로 폭 분석 → 보고서 파이프라인
type Navigator struct {
	resolution    float64
	maxIterations int
	concurrency   int
	observer      QueryObserver
	logger        *zap.Logger
}

// NewNavigator - Navigator 생성
func NewNavigator(cfg Config, observer QueryObserver, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Navigator{
		resolution:    cfg.GridResolution,
		maxIterations: cfg.MaxIterations,
		concurrency:   cfg.BatchConcurrency,
		observer:      observer,
		logger:        logger,
	}
	if n.resolution <= 0 {
		n.resolution = models.GridResolution
	}
	if n.concurrency <= 0 {
		n.concurrency = 1
	}
	return n
}

// Resolution - 질의에 적용되는 기본 격자 해상도
func (n *Navigator) Resolution() float64 {
	return n.resolution
}

// Evaluate - 질의 하나를 끝까지 실행
//
// 경로가 없는 것은 에러가 아니다 (Kind "not_found").
// 외형 오류와 범위 초과는 결과와 함께 algorithms 에러를 감싸 반환한다.
func (n *Navigator) Evaluate(q Query) (*Result, error) {
	began := time.Now()
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	// 질의 동안 호출자의 슬라이스가 바뀌어도 영향 없도록 복사
	q.Obstacles = append([]models.Obstacle(nil), q.Obstacles...)

	res := &Result{
		QueryID:        q.ID,
		GridResolution: q.Resolution,
	}
	if res.GridResolution == 0 {
		res.GridResolution = n.resolution
	}

	err := n.run(q, res)
	res.Duration = time.Since(began)

	switch {
	case err == nil:
		res.Kind = models.ResultFound
	case errors.Is(err, algorithms.ErrNotFound):
		res.Kind = models.ResultNotFound
		err = nil
	case errors.Is(err, algorithms.ErrOutOfBounds):
		res.Kind = models.ResultOutOfBounds
	default:
		res.Kind = models.ResultGeometryError
	}
	if err != nil {
		res.Error = err.Error()
	}

	n.logger.Debug("path query",
		zap.String("query_id", res.QueryID),
		zap.String("layout_id", q.LayoutID),
		zap.String("kind", res.Kind),
		zap.Int("iterations", res.Stats.Iterations),
		zap.Duration("duration", res.Duration))
	if n.observer != nil {
		n.observer.ObserveQuery(q, res)
	}
	return res, err
}

func (n *Navigator) run(q Query, res *Result) error {
	grid, err := algorithms.BuildGrid(q.Boundary, q.Obstacles, res.GridResolution)
	if err != nil {
		return err
	}

	path, stats, err := algorithms.FindPathWithOptions(grid, q.Start, q.End,
		algorithms.SearchOptions{MaxIterations: n.maxIterations})
	res.Stats = stats
	if err != nil {
		return err
	}

	if q.Simplify > 0 {
		path = algorithms.SimplifyPath(grid, path, q.Simplify)
	}
	report := algorithms.Analyze(path, q.Obstacles, q.Boundary)
	res.Path = path
	res.Report = &report
	return nil
}

// BatchItem - 일괄 질의의 개별 결과
type BatchItem struct {
	Result *Result `json:"result"`
	Error  string  `json:"error,omitempty"`
}

// EvaluateBatch - 독립 질의들을 동시에 평가, 입력 순서대로 반환
//
// 질의별 실패는 항목에 기록되고, context 취소만 일괄 처리를 중단한다.
func (n *Navigator) EvaluateBatch(ctx context.Context, queries []Query) ([]BatchItem, error) {
	items := make([]BatchItem, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i := range queries {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := n.Evaluate(queries[i])
			items[i] = BatchItem{Result: res}
			if err != nil {
				items[i].Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch evaluation aborted: %w", err)
	}
	return items, nil
}
