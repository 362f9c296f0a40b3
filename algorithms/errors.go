package algorithms

import "errors"

var (
	// ErrGeometry - 사용할 수 없는 외벽/장애물/격자 설정
	ErrGeometry = errors.New("algorithms: invalid geometry")
	// ErrOutOfBounds - 시작/끝점이 격자 범위 밖
	ErrOutOfBounds = errors.New("algorithms: point outside grid")
	// ErrNotFound - 목표에 닿지 못하고 탐색 종료
	ErrNotFound = errors.New("algorithms: no route under current layout")
)
