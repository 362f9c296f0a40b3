package models

import "time"

// Layout - 거주구 배치 (외벽 + 모듈)
type Layout struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Boundary  Boundary   `json:"boundary"`
	Obstacles []Obstacle `json:"obstacles"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Clone - 슬라이스를 공유하지 않는 깊은 복사
func (l *Layout) Clone() Layout {
	out := *l
	out.Obstacles = append([]Obstacle(nil), l.Obstacles...)
	return out
}

// 배치 변경 종류
const (
	LayoutCreated         = "created"
	LayoutDeleted         = "deleted"
	LayoutObstacleAdded   = "obstacle_added"
	LayoutObstacleMoved   = "obstacle_moved"
	LayoutObstacleRemoved = "obstacle_removed"
)

// LayoutMessage - 배치 변경 브로드캐스트 데이터
type LayoutMessage struct {
	LayoutID  string     `json:"layout_id"`
	Action    string     `json:"action"` // Layout* 상수
	Boundary  Boundary   `json:"boundary"`
	Obstacles []Obstacle `json:"obstacles"`
}
