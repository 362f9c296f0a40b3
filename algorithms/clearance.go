package algorithms

import (
	"math"

	"habitat-nav/models"
)

// SegmentSamples - 구간당 표본 간격 수 (양 끝점 포함)
const SegmentSamples = 5

// Analyze - 경로 구간별 통로 폭 측정 후 보고서 생성
func Analyze(path models.Path, obstacles []models.Obstacle, boundary models.Boundary) models.Report {
	if len(path) < 2 {
		return AssembleReport(nil)
	}

	segments := make([]models.Segment, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		segments = append(segments, AnalyzeSegment(path[i], path[i+1], obstacles, boundary))
	}
	return AssembleReport(segments)
}

// AnalyzeSegment - 한 구간의 최소 통로 폭 측정
func AnalyzeSegment(start, end models.Waypoint, obstacles []models.Obstacle, boundary models.Boundary) models.Segment {
	a, b := start.Floor(), end.Floor()
	dx := b.X - a.X
	dz := b.Z - a.Z
	length := a.DistanceTo(b)

	seg := models.Segment{Start: start, End: end, Length: length}
	if length == 0 {
		seg.Clearance = models.MinPathWidth
		seg.Passes = true
		return seg
	}

	dir := models.Position{X: dx / length, Z: dz / length}
	minWidth := math.Inf(1)
	for i := 0; i <= SegmentSamples; i++ {
		t := float64(i) / SegmentSamples
		p := models.Position{X: a.X + dx*t, Z: a.Z + dz*t}
		minWidth = math.Min(minWidth, MeasureClearance(p, dir, obstacles, boundary))
	}

	seg.Passes = minWidth >= models.MinPathWidth
	seg.Clearance = math.Min(minWidth, models.MaxReportedWidth)
	return seg
}

// MeasureClearance - 한 점의 통로 폭
//
// dir은 단위 진행 방향. 장애물은 진행 방향 기준 좌/우로 나뉘고, 장애물이 없는
// 쪽은 외벽까지의 여유로 대신한다. 결과는 min(좌+우, 2*외벽여유), 0 이상.
func MeasureClearance(point, dir models.Position, obstacles []models.Obstacle, boundary models.Boundary) float64 {
	perpX, perpZ := -dir.Z, dir.X

	left := math.Inf(1)
	right := math.Inf(1)
	for _, obs := range obstacles {
		toX := obs.Position.X - point.X
		toZ := obs.Position.Z - point.Z
		clearance := math.Max(0, math.Hypot(toX, toZ)-obs.FootprintRadius())

		if toX*perpX+toZ*perpZ < 0 {
			left = math.Min(left, clearance)
		} else {
			right = math.Min(right, clearance)
		}
	}

	wall := BoundaryClearance(point, boundary)
	if math.IsInf(left, 1) {
		left = wall
	}
	if math.IsInf(right, 1) {
		right = wall
	}

	return math.Max(0, math.Min(left+right, wall*2))
}

// BoundaryClearance - 점에서 외벽까지 사용 가능한 거리 (음수 없음)
func BoundaryClearance(point models.Position, boundary models.Boundary) float64 {
	d := math.Hypot(point.X, point.Z)
	return math.Max(0, boundary.Radius-d-models.BoundaryMargin)
}
