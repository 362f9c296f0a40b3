package algorithms

import (
	"math"

	"habitat-nav/models"
)

// MaxSimplifyTolerance - 간소화 허용 오차 상한 (m)
//
// 생략된 웨이포인트는 새 구간에서 장애물 완충 폭 이상 벗어나지 않는다.
const MaxSimplifyTolerance = models.KeepOutBuffer

// SimplifyPath - Douglas-Peucker 알고리즘으로 경로 간소화
//
// epsilon <= 0 이거나 grid가 nil 이면 입력을 그대로 돌려준다. epsilon은
// MaxSimplifyTolerance 로 잘리고, 두 점을 잇는 지름길은 grid.SegmentClear 를
// 통과할 때만 채택된다. 끝점은 항상 유지된다.
func SimplifyPath(grid *Grid, path models.Path, epsilon float64) models.Path {
	if grid == nil || epsilon <= 0 || len(path) < 3 {
		return path
	}
	return simplify(grid, path, math.Min(epsilon, MaxSimplifyTolerance))
}

func simplify(grid *Grid, path models.Path, epsilon float64) models.Path {
	if len(path) < 3 {
		return path
	}

	first, last := path[0].Floor(), path[len(path)-1].Floor()
	dmax := 0.0
	index := 0
	for i := 1; i < len(path)-1; i++ {
		d := pointSegmentDistance(path[i].Floor(), first, last)
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax <= epsilon {
		if grid.SegmentClear(first, last) {
			return models.Path{path[0], path[len(path)-1]}
		}
		// 지름길이 막혔으면 가운데서 나눠 다시 시도
		index = (len(path) - 1) / 2
	}

	left := simplify(grid, path[:index+1], epsilon)
	right := simplify(grid, path[index:], epsilon)
	out := make(models.Path, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}
