package models

import "math"

// ========================================
// 크루 통행 기준 상수
// ========================================
const (
	MinPathWidth      = 1.0  // 인증 최소 통로 폭 (m)
	GridResolution    = 0.5  // 기본 격자 해상도 (m/cell)
	BoundaryMargin    = 0.3  // 외벽 여유 (m)
	KeepOutBuffer     = 0.3  // 탐색용 장애물 완충 (m)
	DefaultModuleSize = 1.5  // 크기 미지정 모듈의 바운딩 크기 (m)
	WaypointElevation = 0.1  // 웨이포인트 고정 높이 (m)
	MaxReportedWidth  = 100.0 // 보고서에 기록되는 최대 통로 폭 (m)
)

// 거주구 외형
const (
	ShapeCylinder = "cylinder"
	ShapeDome     = "dome"
)

// Position - 바닥 평면 좌표 (미터)
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Z float64 `json:"z" yaml:"z"`
}

// DistanceTo - 바닥 평면 거리
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Z-o.Z)
}

// Boundary - 거주구 외벽
type Boundary struct {
	Shape  string  `json:"shape" yaml:"shape"`   // "cylinder" | "dome"
	Radius float64 `json:"radius" yaml:"radius"` // 반경 (m)
	Height float64 `json:"height" yaml:"height"` // 원통 높이 (평면 분석에는 사용하지 않음)
}

// ShapeOrDefault - 외형, 비어 있으면 원통
func (b Boundary) ShapeOrDefault() string {
	if b.Shape == "" {
		return ShapeCylinder
	}
	return b.Shape
}

// Obstacle - 바닥에 놓인 원형 모듈
type Obstacle struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Position Position `json:"position" yaml:"position"`
	Radius   float64  `json:"radius,omitempty" yaml:"radius,omitempty"` // 점유 반경 (m)
	Size     float64  `json:"size,omitempty" yaml:"size,omitempty"`     // 바운딩 크기 (m), Radius 미지정 시 사용
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`     // "living", "storage", ...
}

// FootprintRadius - 장애물 점유 반경
//
// Radius가 있으면 그대로, 없으면 Size/2, 둘 다 없으면 기본 모듈 크기의 절반.
func (o Obstacle) FootprintRadius() float64 {
	switch {
	case o.Radius > 0:
		return o.Radius
	case o.Size > 0:
		return o.Size / 2
	default:
		return DefaultModuleSize / 2
	}
}

// Waypoint - 경로 포인트
type Waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"` // 고정 높이
	Z float64 `json:"z"`
}

// Floor - 웨이포인트를 바닥 평면에 투영
func (w Waypoint) Floor() Position {
	return Position{X: w.X, Z: w.Z}
}

// Path - 시작점부터 끝점까지의 웨이포인트 목록
type Path []Waypoint

// Segment - 연속한 두 웨이포인트 구간
type Segment struct {
	Start     Waypoint `json:"start"`
	End       Waypoint `json:"end"`
	Length    float64  `json:"length"`
	Clearance float64  `json:"clearance"` // 구간 최소 통로 폭 (m)
	Passes    bool     `json:"passes"`
}

// Report - 경로 통행 인증 결과
type Report struct {
	TotalDistance  float64   `json:"total_distance"`
	TotalSegments  int       `json:"total_segments"`
	ClearSegments  int       `json:"clear_segments"`
	NarrowSegments int       `json:"narrow_segments"`
	MinWidth       float64   `json:"min_width"`
	MeanWidth      float64   `json:"mean_width"` // 구간 길이 가중 평균 통로 폭
	Passes         bool      `json:"passes"`
	Segments       []Segment `json:"segments"`
}
