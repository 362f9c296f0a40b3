package algorithms

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"habitat-nav/models"
)

// AssembleReport - 구간 결과를 하나의 인증 보고서로 집계
//
// 구간이 없으면 모든 수치 0, Passes=false.
func AssembleReport(segments []models.Segment) models.Report {
	if len(segments) == 0 {
		return models.Report{Segments: []models.Segment{}}
	}

	lengths := make([]float64, len(segments))
	widths := make([]float64, len(segments))
	report := models.Report{
		TotalSegments: len(segments),
		Segments:      segments,
	}
	for i, seg := range segments {
		lengths[i] = seg.Length
		widths[i] = seg.Clearance
		if seg.Passes {
			report.ClearSegments++
		} else {
			report.NarrowSegments++
		}
	}

	report.TotalDistance = floats.Sum(lengths)
	report.MinWidth = floats.Min(widths)
	if report.TotalDistance > 0 {
		report.MeanWidth = stat.Mean(widths, lengths)
	} else {
		report.MeanWidth = stat.Mean(widths, nil)
	}
	report.Passes = report.NarrowSegments == 0
	return report
}
