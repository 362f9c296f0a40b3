package handlers

import (
	"strconv"

	"habitat-nav/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func queryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// requireLogs - 로그 저장소가 꺼져 있으면 503
func (h *Handlers) requireLogs(c *fiber.Ctx) bool {
	if h.logs != nil {
		return true
	}
	_ = c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"error":   "query log storage is disabled (set DB_DRIVER)",
	})
	return false
}

// HandleGetRecentLogs - 최근 질의 로그 (layout_id 로 필터 가능)
func (h *Handlers) HandleGetRecentLogs(c *fiber.Ctx) error {
	if !h.requireLogs(c) {
		return nil
	}
	limit := queryInt(c, "limit", 100)

	var (
		logs []models.QueryLog
		err  error
	)
	if layoutID := c.Query("layout_id"); layoutID != "" {
		logs, err = h.logs.ByLayout(layoutID, limit)
	} else {
		logs, err = h.logs.Recent(limit)
	}
	if err != nil {
		h.logger.Error("query log fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch logs",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}

// HandleGetLogsByKind - 결과 종류별 질의 로그
func (h *Handlers) HandleGetLogsByKind(c *fiber.Ctx) error {
	if !h.requireLogs(c) {
		return nil
	}
	kind := c.Query("kind")
	if kind == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "kind parameter is required",
		})
	}

	logs, err := h.logs.ByKind(kind, queryInt(c, "limit", 100))
	if err != nil {
		h.logger.Error("query log fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch logs",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"kind":    kind,
		"logs":    logs,
	})
}

// HandleGetLogStats - 질의 통계
func (h *Handlers) HandleGetLogStats(c *fiber.Ctx) error {
	if !h.requireLogs(c) {
		return nil
	}
	stats, err := h.logs.Stats(queryInt(c, "hours", 24))
	if err != nil {
		h.logger.Error("query log stats failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stats",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
