package models

import (
	"time"
)

// 경로 질의 결과 종류
const (
	ResultFound         = "found"
	ResultNotFound      = "not_found"
	ResultOutOfBounds   = "out_of_bounds"
	ResultGeometryError = "geometry_error"
)

// QueryLog - 경로 질의 텔레메트리
type QueryLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	QueryID   string    `gorm:"size:36;index" json:"query_id"`
	LayoutID  string    `gorm:"size:36;index" json:"layout_id"`
	Kind      string    `gorm:"size:32;index" json:"kind"`

	// 질의 입력
	StartX        float64 `json:"start_x"`
	StartZ        float64 `json:"start_z"`
	EndX          float64 `json:"end_x"`
	EndZ          float64 `json:"end_z"`
	BoundaryShape string  `gorm:"size:16" json:"boundary_shape"`
	Radius        float64 `json:"radius"`
	Obstacles     int     `json:"obstacles"`
	Resolution    float64 `json:"resolution"`

	// 탐색 통계
	DurationMs float64 `json:"duration_ms"`
	Iterations int     `json:"iterations"`
	Waypoints  int     `json:"waypoints"`

	// 인증 결과
	TotalDistance  float64 `json:"total_distance"`
	MinWidth       float64 `json:"min_width"`
	NarrowSegments int     `json:"narrow_segments"`
	Passes         bool    `json:"passes"`

	Error string `json:"error,omitempty"`
}

// QueryLogStats - 질의 로그 통계
type QueryLogStats struct {
	TotalQueries int64            `json:"total_queries"`
	KindCounts   map[string]int64 `json:"kind_counts"`
	PassRate     float64          `json:"pass_rate"` // found 중 통과 비율
	AvgDuration  float64          `json:"avg_duration_ms"`
	TimeRange    string           `json:"time_range"`
}
