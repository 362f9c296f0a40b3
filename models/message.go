package models

// ========================================
// 메시지 타입 상수
// ========================================
const (
	// Server → Web
	MessageTypePathUpdate   = "path_update"   // 경로 + 통행 인증 결과
	MessageTypeLayoutUpdate = "layout_update" // 배치 변경
	MessageTypeSystemInfo   = "system_info"   // 시스템 정보
)

// ========================================
// 공통 WebSocket 메시지 형식
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// ========================================
// 경로 데이터
// ========================================
type PathData struct {
	QueryID        string  `json:"query_id"`
	LayoutID       string  `json:"layout_id,omitempty"`
	Points         Path    `json:"points"`
	Report         *Report `json:"report"`
	GridResolution float64 `json:"grid_resolution"` // 경로 수치의 정밀도 한계
	Algorithm      string  `json:"algorithm"`       // "a_star"
}
