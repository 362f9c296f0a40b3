package algorithms

import (
	"container/heap"
	"fmt"
	"math"

	"habitat-nav/models"
)

// MaxIterations - 탐색 1회당 open set 최대 pop 횟수
const MaxIterations = 50000

// SearchOptions - A* 탐색 설정
type SearchOptions struct {
	MaxIterations int // 0 이하이면 MaxIterations
}

// SearchStats - 탐색 통계
type SearchStats struct {
	Iterations    int  `json:"iterations"`
	Expanded      int  `json:"expanded"`
	OpenRemaining int  `json:"open_remaining"`
	ForcedStart   bool `json:"forced_start"` // 시작 칸을 강제로 보행 가능 처리
	ForcedEnd     bool `json:"forced_end"`
	CapReached    bool `json:"cap_reached"`
}

// openItem - 우선순위 큐 항목
type openItem struct {
	cell  int
	f     float64
	seq   int // 최초 삽입 순서
	index int // heap 내 위치
}

// PriorityQueue - A* 우선순위 큐
//
// f가 같으면 먼저 열린 칸이 우선한다.
type PriorityQueue []*openItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	item := x.(*openItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// directions - 8방향 이동 (상하좌우 + 대각선)
var directions = [8][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath - A* 알고리즘으로 경로 찾기
func FindPath(grid *Grid, start, end models.Position) (models.Path, SearchStats, error) {
	return FindPathWithOptions(grid, start, end, SearchOptions{})
}

// FindPathWithOptions - start→end 최소 비용 경로 탐색
//
// grid는 호출한 질의 전용이다. 강제 개방 칸과 탐색 기록이 grid에 쓰인다.
// 끝점이 격자 밖이면 ErrOutOfBounds, open set이 비거나 반복 상한에 닿으면 ErrNotFound.
func FindPathWithOptions(grid *Grid, start, end models.Position, opts SearchOptions) (models.Path, SearchStats, error) {
	var stats SearchStats
	if grid == nil || grid.Size == 0 {
		return nil, stats, fmt.Errorf("%w: empty grid", ErrGeometry)
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = MaxIterations
	}

	si, sj, ok := grid.WorldToGrid(start)
	if !ok {
		return nil, stats, fmt.Errorf("%w: start (%.2f, %.2f)", ErrOutOfBounds, start.X, start.Z)
	}
	gi, gj, ok := grid.WorldToGrid(end)
	if !ok {
		return nil, stats, fmt.Errorf("%w: end (%.2f, %.2f)", ErrOutOfBounds, end.X, end.Z)
	}

	// 사용자가 고른 점은 완충 영역 안이라도 허용
	stats.ForcedStart = grid.forceWalkable(si, sj)
	stats.ForcedEnd = grid.forceWalkable(gi, gj)

	for k := range grid.Cells {
		c := &grid.Cells[k]
		c.G, c.H, c.F, c.Parent = 0, 0, 0, -1
	}

	startIdx := grid.Index(si, sj)
	goalIdx := grid.Index(gi, gj)
	goal := &grid.Cells[goalIdx]

	open := make(PriorityQueue, 0)
	heap.Init(&open)
	items := make([]*openItem, len(grid.Cells))
	closed := make([]bool, len(grid.Cells))
	seq := 0

	s := &grid.Cells[startIdx]
	s.H = cellDistance(s, goal)
	s.F = s.H
	items[startIdx] = &openItem{cell: startIdx, f: s.F, seq: seq}
	heap.Push(&open, items[startIdx])

	for open.Len() > 0 {
		if stats.Iterations >= maxIter {
			stats.CapReached = true
			break
		}
		stats.Iterations++

		current := heap.Pop(&open).(*openItem)
		if current.cell == goalIdx {
			stats.OpenRemaining = open.Len()
			return grid.reconstructPath(goalIdx), stats, nil
		}
		closed[current.cell] = true
		stats.Expanded++

		cur := &grid.Cells[current.cell]
		for _, d := range directions {
			ni, nj := cur.I+d[0], cur.J+d[1]
			if !grid.InBounds(ni, nj) {
				continue
			}
			nIdx := grid.Index(ni, nj)
			neighbor := &grid.Cells[nIdx]
			if !neighbor.Walkable || closed[nIdx] {
				continue
			}

			tentativeG := cur.G + cellDistance(cur, neighbor)
			item := items[nIdx]
			if item != nil && tentativeG >= neighbor.G {
				continue
			}

			// 더 나은 경로 발견
			neighbor.Parent = current.cell
			neighbor.G = tentativeG
			neighbor.H = cellDistance(neighbor, goal)
			neighbor.F = neighbor.G + neighbor.H

			if item == nil {
				seq++
				items[nIdx] = &openItem{cell: nIdx, f: neighbor.F, seq: seq}
				heap.Push(&open, items[nIdx])
			} else {
				item.f = neighbor.F
				heap.Fix(&open, item.index)
			}
		}
	}

	stats.OpenRemaining = open.Len()
	if stats.CapReached {
		return nil, stats, fmt.Errorf("%w: iteration cap %d reached", ErrNotFound, maxIter)
	}
	return nil, stats, fmt.Errorf("%w: open set exhausted after %d iterations", ErrNotFound, stats.Iterations)
}

// forceWalkable - 막힌 끝점 칸과 8방향 이웃을 강제로 개방, 개방한 칸이 있으면 true
func (g *Grid) forceWalkable(i, j int) bool {
	if g.CellAt(i, j).Walkable {
		return false
	}
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			if g.InBounds(i+di, j+dj) {
				g.CellAt(i+di, j+dj).Walkable = true
			}
		}
	}
	return true
}

// reconstructPath - 선행 인덱스를 따라 경로 재구성
func (g *Grid) reconstructPath(goal int) models.Path {
	var path models.Path
	for idx := goal; idx >= 0; idx = g.Cells[idx].Parent {
		c := &g.Cells[idx]
		path = append(path, models.Waypoint{X: c.X, Y: models.WaypointElevation, Z: c.Z})
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// cellDistance - 두 칸 중심 사이 유클리드 거리 (간선 비용과 휴리스틱 공용)
func cellDistance(a, b *Cell) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}
