package algorithms

import (
	"fmt"
	"math"

	"habitat-nav/models"
)

// GridPadding - 격자 크기 계산용 외벽 지름 배율 (10% 여유)
const GridPadding = 1.1

// MaxGridCells - 격자 칸 수 상한 (너무 작은 해상도로 메모리 고갈 방지)
const MaxGridCells = 4_000_000

// Cell - 격자 칸
type Cell struct {
	I, J     int     // 격자 좌표
	X, Z     float64 // 칸 중심 월드 좌표
	Walkable bool

	// A* 탐색 중에만 사용
	G, H, F float64
	Parent  int // 선행 칸 인덱스, 없으면 -1
}

// Grid - 한 번의 질의에 쓰이는 보행 격자
//
// Cells는 i*Size+j 로 주소를 갖는 arena 이다.
type Grid struct {
	Size       int
	Resolution float64
	Cells      []Cell

	// 지름길 검사용 생성 입력
	obstacles []models.Obstacle
	buffer    float64
}

// GridOptions - 보행 가능 판정 기준
type GridOptions struct {
	Resolution float64 // m/cell
	Margin     float64 // 외벽 여유
	Buffer     float64 // 장애물 완충
}

// DefaultGridOptions - 기본 해상도/외벽 여유/완충
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Resolution: models.GridResolution,
		Margin:     models.BoundaryMargin,
		Buffer:     models.KeepOutBuffer,
	}
}

// BuildGrid - 외벽과 장애물로 보행 격자 생성
func BuildGrid(boundary models.Boundary, obstacles []models.Obstacle, resolution float64) (*Grid, error) {
	opts := DefaultGridOptions()
	opts.Resolution = resolution
	return BuildGridWithOptions(boundary, obstacles, opts)
}

// BuildGridWithOptions - 거주구를 새 격자로 이산화
//
// 입력이 같으면 항상 같은 격자가 나온다.
func BuildGridWithOptions(boundary models.Boundary, obstacles []models.Obstacle, opts GridOptions) (*Grid, error) {
	if err := ValidateBoundary(boundary); err != nil {
		return nil, err
	}
	if err := ValidateObstacles(obstacles); err != nil {
		return nil, err
	}
	res := opts.Resolution
	if !(res > 0) || math.IsInf(res, 0) {
		return nil, fmt.Errorf("%w: resolution %v must be positive", ErrGeometry, res)
	}

	side := math.Ceil(boundary.Radius * 2 * GridPadding / res)
	if side*side > MaxGridCells {
		return nil, fmt.Errorf("%w: %.0fx%.0f grid exceeds %d cells", ErrGeometry, side, side, MaxGridCells)
	}
	size := int(side)

	g := &Grid{
		Size:       size,
		Resolution: res,
		Cells:      make([]Cell, size*size),
		obstacles:  append([]models.Obstacle(nil), obstacles...),
		buffer:     opts.Buffer,
	}

	limit := boundary.Radius - opts.Margin
	half := float64(size) / 2
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			x := (float64(i) - half) * res
			z := (float64(j) - half) * res
			g.Cells[i*size+j] = Cell{
				I:        i,
				J:        j,
				X:        x,
				Z:        z,
				Walkable: math.Hypot(x, z) <= limit && clearOfObstacles(x, z, obstacles, opts.Buffer),
				Parent:   -1,
			}
		}
	}
	return g, nil
}

// clearOfObstacles - 모든 장애물의 완충 반경 밖인지 검사
func clearOfObstacles(x, z float64, obstacles []models.Obstacle, buffer float64) bool {
	for _, obs := range obstacles {
		keepOut := obs.FootprintRadius() + buffer
		if math.Hypot(x-obs.Position.X, z-obs.Position.Z) < keepOut {
			return false
		}
	}
	return true
}

// ValidateBoundary - 0 이하/무한 반경과 알 수 없는 외형은 ErrGeometry
func ValidateBoundary(b models.Boundary) error {
	if !(b.Radius > 0) || math.IsInf(b.Radius, 0) {
		return fmt.Errorf("%w: boundary radius %v must be positive", ErrGeometry, b.Radius)
	}
	switch b.ShapeOrDefault() {
	case models.ShapeCylinder, models.ShapeDome:
	default:
		return fmt.Errorf("%w: unknown boundary shape %q", ErrGeometry, b.Shape)
	}
	return nil
}

// ValidateObstacles - 장애물 좌표/크기 검사
//
// NaN, Inf, 음수 반경/크기는 ErrGeometry.
func ValidateObstacles(obstacles []models.Obstacle) error {
	for i, obs := range obstacles {
		if err := ValidatePosition(obs.Position); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
		if !finite(obs.Radius) || obs.Radius < 0 || !finite(obs.Size) || obs.Size < 0 {
			return fmt.Errorf("%w: obstacle %d radius %v / size %v must be finite and non-negative", ErrGeometry, i, obs.Radius, obs.Size)
		}
	}
	return nil
}

// ValidatePosition - NaN/Inf 좌표는 ErrGeometry
func ValidatePosition(p models.Position) error {
	if !finite(p.X) || !finite(p.Z) {
		return fmt.Errorf("%w: position (%v, %v) is not finite", ErrGeometry, p.X, p.Z)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Index - (i, j)의 arena 인덱스
func (g *Grid) Index(i, j int) int {
	return i*g.Size + j
}

// InBounds - (i, j)가 격자 안인지
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.Size && j >= 0 && j < g.Size
}

// CellAt - (i, j) 칸, 호출 전 InBounds 확인 필요
func (g *Grid) CellAt(i, j int) *Cell {
	return &g.Cells[g.Index(i, j)]
}

// WorldToGrid - 월드 좌표 → 가장 가까운 칸
func (g *Grid) WorldToGrid(p models.Position) (int, int, bool) {
	half := float64(g.Size) / 2
	fi := math.Floor(p.X/g.Resolution + half + 0.5)
	fj := math.Floor(p.Z/g.Resolution + half + 0.5)
	if fi < 0 || fj < 0 || fi >= float64(g.Size) || fj >= float64(g.Size) || math.IsNaN(fi) || math.IsNaN(fj) {
		return 0, 0, false
	}
	return int(fi), int(fj), true
}

// WalkableCount - 보행 가능 칸 수
func (g *Grid) WalkableCount() int {
	n := 0
	for i := range g.Cells {
		if g.Cells[i].Walkable {
			n++
		}
	}
	return n
}

// WalkableMask - arena 순서의 보행 가능 여부
func (g *Grid) WalkableMask() []bool {
	mask := make([]bool, len(g.Cells))
	for i := range g.Cells {
		mask[i] = g.Cells[i].Walkable
	}
	return mask
}

// SegmentClear - 두 점을 잇는 직선이 장애물 완충 영역과 막힌 칸을 피하는지 검사
//
// 선분과 각 장애물 중심 사이 거리가 점유 반경 + 완충 이상이어야 하고,
// 1/4 칸 간격 표본점이 모두 보행 가능한 칸에 떨어져야 한다.
func (g *Grid) SegmentClear(a, b models.Position) bool {
	for _, obs := range g.obstacles {
		if pointSegmentDistance(obs.Position, a, b) < obs.FootprintRadius()+g.buffer {
			return false
		}
	}

	steps := int(math.Ceil(a.DistanceTo(b) / (g.Resolution / 4)))
	if steps < 1 {
		steps = 1
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		i, j, ok := g.WorldToGrid(models.Position{X: a.X + (b.X-a.X)*t, Z: a.Z + (b.Z-a.Z)*t})
		if !ok || !g.CellAt(i, j).Walkable {
			return false
		}
	}
	return true
}

// pointSegmentDistance - 점에서 선분까지 최단 거리
func pointSegmentDistance(p, a, b models.Position) float64 {
	dx, dz := b.X-a.X, b.Z-a.Z
	lenSq := dx*dx + dz*dz
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	t := ((p.X-a.X)*dx + (p.Z-a.Z)*dz) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.DistanceTo(models.Position{X: a.X + t*dx, Z: a.Z + t*dz})
}
