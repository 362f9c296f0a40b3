package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"habitat-nav/algorithms"
	"habitat-nav/models"

	"github.com/google/uuid"
)

var (
	// ErrLayoutNotFound - 알 수 없는 배치 id
	ErrLayoutNotFound = errors.New("services: layout not found")
	// ErrObstacleNotFound - 배치 안에 없는 모듈 id
	ErrObstacleNotFound = errors.New("services: obstacle not found")
	// ErrInvalidPlacement - 모듈 중심이 사용 가능한 바닥 밖
	ErrInvalidPlacement = errors.New("services: obstacle outside habitat floor")
)

// 모듈 종류 (랜덤 생성용)
var moduleTypes = []string{"living", "galley", "hygiene", "medical", "storage", "exercise", "workstation"}

// LayoutStore - 거주구 배치 보관소 (경로 엔진에 외벽/장애물 스냅샷 제공)
type LayoutStore struct {
	mu           sync.RWMutex
	layouts      map[string]*models.Layout
	generationMu sync.Mutex
	rng          *rand.Rand
}

// NewLayoutStore - 빈 보관소 생성, seed는 랜덤 배치에 사용
func NewLayoutStore(seed int64) *LayoutStore {
	return &LayoutStore{
		layouts: make(map[string]*models.Layout),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Create - 주어진 외벽/장애물로 배치 생성
func (s *LayoutStore) Create(name string, boundary models.Boundary, obstacles []models.Obstacle) (models.Layout, error) {
	if err := algorithms.ValidateBoundary(boundary); err != nil {
		return models.Layout{}, err
	}
	if err := algorithms.ValidateObstacles(obstacles); err != nil {
		return models.Layout{}, err
	}
	placed := make([]models.Obstacle, 0, len(obstacles))
	for _, obs := range obstacles {
		if !onFloor(boundary, obs.Position) {
			return models.Layout{}, fmt.Errorf("%w: (%.2f, %.2f)", ErrInvalidPlacement, obs.Position.X, obs.Position.Z)
		}
		if obs.ID == "" {
			obs.ID = uuid.New().String()
		}
		placed = append(placed, obs)
	}

	now := time.Now()
	layout := &models.Layout{
		ID:        uuid.New().String(),
		Name:      name,
		Boundary:  boundary,
		Obstacles: placed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.layouts[layout.ID] = layout
	s.mu.Unlock()
	return layout.Clone(), nil
}

// Generate - 랜덤 모듈 배치 생성
//
// 모듈끼리 겹치지 않고 외벽 여유 안쪽에 놓인다. 자리가 없으면 count 보다 적게 놓일 수 있다.
func (s *LayoutStore) Generate(name string, boundary models.Boundary, count int) (models.Layout, error) {
	if err := algorithms.ValidateBoundary(boundary); err != nil {
		return models.Layout{}, err
	}

	s.generationMu.Lock()
	obstacles := s.generateObstacles(boundary, count)
	s.generationMu.Unlock()

	return s.Create(name, boundary, obstacles)
}

// generateObstacles - 겹치지 않는 모듈을 최대 count개 생성
func (s *LayoutStore) generateObstacles(boundary models.Boundary, count int) []models.Obstacle {
	obstacles := make([]models.Obstacle, 0, count)
	usable := boundary.Radius - models.BoundaryMargin

	for attempt := 0; len(obstacles) < count && attempt < count*50; attempt++ {
		size := 1.0 + s.rng.Float64()*1.5 // 바운딩 크기 1.0~2.5m
		reach := usable - size/2
		if reach <= 0 {
			continue
		}
		// 원 안에서 균일 분포
		r := reach * math.Sqrt(s.rng.Float64())
		theta := s.rng.Float64() * 2 * math.Pi
		candidate := models.Obstacle{
			ID:       uuid.New().String(),
			Name:     fmt.Sprintf("module-%d", len(obstacles)+1),
			Position: models.Position{X: r * math.Cos(theta), Z: r * math.Sin(theta)},
			Size:     size,
			Type:     moduleTypes[s.rng.Intn(len(moduleTypes))],
		}
		if overlapsAny(candidate, obstacles) {
			continue
		}
		obstacles = append(obstacles, candidate)
	}
	return obstacles
}

func overlapsAny(c models.Obstacle, placed []models.Obstacle) bool {
	for _, o := range placed {
		if c.Position.DistanceTo(o.Position) < c.FootprintRadius()+o.FootprintRadius() {
			return true
		}
	}
	return false
}

// Get - 이후 변경의 영향을 받지 않는 배치 스냅샷
func (s *LayoutStore) Get(id string) (models.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layout, ok := s.layouts[id]
	if !ok {
		return models.Layout{}, fmt.Errorf("%w: %s", ErrLayoutNotFound, id)
	}
	return layout.Clone(), nil
}

// List - 생성 순서대로 모든 배치 스냅샷
func (s *LayoutStore) List() []models.Layout {
	s.mu.RLock()
	out := make([]models.Layout, 0, len(s.layouts))
	for _, layout := range s.layouts {
		out = append(out, layout.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete - 배치 삭제
func (s *LayoutStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layouts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, id)
	}
	delete(s.layouts, id)
	return nil
}

// PlaceObstacle - 배치에 모듈 추가
func (s *LayoutStore) PlaceObstacle(layoutID string, obs models.Obstacle) (models.Obstacle, error) {
	if err := algorithms.ValidateObstacles([]models.Obstacle{obs}); err != nil {
		return models.Obstacle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	layout, ok := s.layouts[layoutID]
	if !ok {
		return models.Obstacle{}, fmt.Errorf("%w: %s", ErrLayoutNotFound, layoutID)
	}
	if !onFloor(layout.Boundary, obs.Position) {
		return models.Obstacle{}, fmt.Errorf("%w: (%.2f, %.2f)", ErrInvalidPlacement, obs.Position.X, obs.Position.Z)
	}
	if obs.ID == "" {
		obs.ID = uuid.New().String()
	}
	layout.Obstacles = append(layout.Obstacles, obs)
	layout.UpdatedAt = time.Now()
	return obs, nil
}

// MoveObstacle - 모듈 위치 변경
func (s *LayoutStore) MoveObstacle(layoutID, obstacleID string, position models.Position) error {
	if err := algorithms.ValidatePosition(position); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	layout, ok := s.layouts[layoutID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, layoutID)
	}
	if !onFloor(layout.Boundary, position) {
		return fmt.Errorf("%w: (%.2f, %.2f)", ErrInvalidPlacement, position.X, position.Z)
	}
	for i := range layout.Obstacles {
		if layout.Obstacles[i].ID == obstacleID {
			layout.Obstacles[i].Position = position
			layout.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrObstacleNotFound, obstacleID)
}

// RemoveObstacle - 모듈 제거
func (s *LayoutStore) RemoveObstacle(layoutID, obstacleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout, ok := s.layouts[layoutID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, layoutID)
	}
	for i := range layout.Obstacles {
		if layout.Obstacles[i].ID == obstacleID {
			layout.Obstacles = append(layout.Obstacles[:i], layout.Obstacles[i+1:]...)
			layout.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrObstacleNotFound, obstacleID)
}

// IsPositionClear - 바닥 점이 외벽 여유 안쪽이고 모든 모듈 점유 반경 밖인지 검사
func (s *LayoutStore) IsPositionClear(layoutID string, pos models.Position) (bool, error) {
	if err := algorithms.ValidatePosition(pos); err != nil {
		return false, err
	}
	layout, err := s.Get(layoutID)
	if err != nil {
		return false, err
	}
	if !onFloor(layout.Boundary, pos) {
		return false, nil
	}
	for _, obs := range layout.Obstacles {
		if pos.DistanceTo(obs.Position) < obs.FootprintRadius() {
			return false, nil
		}
	}
	return true, nil
}

// onFloor - 외벽 여유 안쪽인지 검사
func onFloor(b models.Boundary, p models.Position) bool {
	return math.Hypot(p.X, p.Z) <= b.Radius-models.BoundaryMargin
}
