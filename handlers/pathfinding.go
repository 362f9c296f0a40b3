package handlers

import (
	"fmt"

	"habitat-nav/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// 한 번의 일괄 요청에서 허용하는 최대 질의 수
const maxBatchQueries = 100

// PathfindingResponse - 경로 탐색 응답
type PathfindingResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	*services.Result
}

// BatchRequest - 일괄 경로 탐색 요청
type BatchRequest struct {
	Queries []services.Query `json:"queries"`
}

// HandlePathfinding - 경로 탐색 + 통행 인증
//
// layout_id 가 있으면 저장된 배치의 외벽/모듈 스냅샷으로 질의한다.
func (h *Handlers) HandlePathfinding(c *fiber.Ctx) error {
	var q services.Query
	if err := c.BodyParser(&q); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.resolveLayout(&q); err != nil {
		return errorResponse(c, err)
	}

	res, err := h.navigator.Evaluate(q)
	if err != nil {
		h.logger.Info("path query rejected",
			zap.String("query_id", res.QueryID),
			zap.String("kind", res.Kind),
			zap.Error(err))
		return c.Status(statusFor(err)).JSON(PathfindingResponse{
			Success: false,
			Message: err.Error(),
			Result:  res,
		})
	}

	if !res.Found() {
		return c.Status(fiber.StatusOK).JSON(PathfindingResponse{
			Success: false,
			Message: "no route between start and end",
			Result:  res,
		})
	}

	h.broadcastPath(q.LayoutID, res)
	return c.Status(fiber.StatusOK).JSON(PathfindingResponse{
		Success: true,
		Result:  res,
	})
}

// HandlePathfindingBatch - 독립 질의 일괄 평가 (입력 순서 유지)
func (h *Handlers) HandlePathfindingBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Queries) == 0 {
		return badRequest(c, "queries must not be empty")
	}
	if len(req.Queries) > maxBatchQueries {
		return badRequest(c, fmt.Sprintf("at most %d queries per batch", maxBatchQueries))
	}
	for i := range req.Queries {
		if err := h.resolveLayout(&req.Queries[i]); err != nil {
			return errorResponse(c, fmt.Errorf("query %d: %w", i, err))
		}
	}

	items, err := h.navigator.EvaluateBatch(c.UserContext(), req.Queries)
	if err != nil {
		return errorResponse(c, err)
	}

	found := 0
	for i, item := range items {
		if item.Result != nil && item.Result.Found() {
			found++
			h.broadcastPath(req.Queries[i].LayoutID, item.Result)
		}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"found":   found,
		"results": items,
	})
}

// resolveLayout - 질의 외형을 배치 스냅샷으로 교체
func (h *Handlers) resolveLayout(q *services.Query) error {
	if q.LayoutID == "" {
		return nil
	}
	layout, err := h.layouts.Get(q.LayoutID)
	if err != nil {
		return err
	}
	q.Boundary = layout.Boundary
	q.Obstacles = layout.Obstacles
	return nil
}
