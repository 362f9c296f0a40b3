package handlers

import (
	"time"

	"habitat-nav/models"
	"habitat-nav/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// upgradeOnly - websocket 경로의 일반 HTTP 요청 거부
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebClientWebSocket - 웹 클라이언트 WebSocket (경로/배치 갱신 수신 전용)
func (h *Handlers) HandleWebClientWebSocket(c *websocket.Conn) {
	// 허브 등록 전에 보내야 브로드캐스트와 동시 쓰기가 생기지 않음
	welcomeMsg := models.WebSocketMessage{
		Type: models.MessageTypeSystemInfo,
		Data: map[string]interface{}{
			"message":         "web client connected",
			"connected_at":    time.Now().Format(time.RFC3339),
			"min_path_width":  models.MinPathWidth,
			"grid_resolution": h.navigator.Resolution(),
		},
		Timestamp: time.Now().UnixMilli(),
	}
	if err := c.WriteJSON(welcomeMsg); err != nil {
		h.logger.Warn("websocket welcome failed", zap.Error(err))
		return
	}

	h.hub.Register(c)
	defer h.hub.Unregister(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.logger.Debug("websocket read ended", zap.Error(err))
			return
		}
	}
}

// broadcastPath - 경로 탐색 성공 알림
func (h *Handlers) broadcastPath(layoutID string, res *services.Result) {
	h.hub.BroadcastMessage(models.WebSocketMessage{
		Type: models.MessageTypePathUpdate,
		Data: models.PathData{
			QueryID:        res.QueryID,
			LayoutID:       layoutID,
			Points:         res.Path,
			Report:         res.Report,
			GridResolution: res.GridResolution,
			Algorithm:      "a_star",
		},
	})
}

// broadcastLayout - 배치 변경 알림
func (h *Handlers) broadcastLayout(action string, layout models.Layout) {
	h.hub.BroadcastMessage(models.WebSocketMessage{
		Type: models.MessageTypeLayoutUpdate,
		Data: models.LayoutMessage{
			LayoutID:  layout.ID,
			Action:    action,
			Boundary:  layout.Boundary,
			Obstacles: layout.Obstacles,
		},
	})
}
