package handlers

import (
	"strconv"

	"habitat-nav/models"

	"github.com/gofiber/fiber/v2"
)

// 랜덤 생성 모듈 수 제한
const (
	defaultGenerateCount = 5
	maxGenerateCount     = 50
)

// LayoutRequest - 배치 생성 요청
type LayoutRequest struct {
	Name      string            `json:"name"`
	Boundary  models.Boundary   `json:"boundary"`
	Obstacles []models.Obstacle `json:"obstacles"`
}

// GenerateRequest - 랜덤 배치 생성 요청
type GenerateRequest struct {
	Name     string          `json:"name"`
	Boundary models.Boundary `json:"boundary"`
	Count    int             `json:"count"`
}

// MoveRequest - 모듈 이동 요청
type MoveRequest struct {
	Position models.Position `json:"position"`
}

// HandleListLayouts - 배치 목록
func (h *Handlers) HandleListLayouts(c *fiber.Ctx) error {
	layouts := h.layouts.List()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(layouts),
		"layouts": layouts,
	})
}

// HandleCreateLayout - 배치 생성
func (h *Handlers) HandleCreateLayout(c *fiber.Ctx) error {
	var req LayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	layout, err := h.layouts.Create(req.Name, req.Boundary, req.Obstacles)
	if err != nil {
		return errorResponse(c, err)
	}
	h.broadcastLayout(models.LayoutCreated, layout)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"layout":  layout,
	})
}

// HandleGenerateLayout - 랜덤 모듈 배치 생성
func (h *Handlers) HandleGenerateLayout(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Count <= 0 {
		req.Count = defaultGenerateCount
	}
	if req.Count > maxGenerateCount {
		req.Count = maxGenerateCount
	}
	if req.Boundary.Radius == 0 {
		req.Boundary = models.Boundary{Shape: models.ShapeCylinder, Radius: 5, Height: 3}
	}

	layout, err := h.layouts.Generate(req.Name, req.Boundary, req.Count)
	if err != nil {
		return errorResponse(c, err)
	}
	h.broadcastLayout(models.LayoutCreated, layout)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"layout":  layout,
	})
}

// HandleGetLayout - 배치 조회
func (h *Handlers) HandleGetLayout(c *fiber.Ctx) error {
	layout, err := h.layouts.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"layout":  layout,
	})
}

// HandleDeleteLayout - 배치 삭제
func (h *Handlers) HandleDeleteLayout(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.layouts.Delete(id); err != nil {
		return errorResponse(c, err)
	}
	h.broadcastLayout(models.LayoutDeleted, models.Layout{ID: id})
	return c.JSON(fiber.Map{"success": true})
}

// HandlePlaceObstacle - 모듈 추가
func (h *Handlers) HandlePlaceObstacle(c *fiber.Ctx) error {
	var obs models.Obstacle
	if err := c.BodyParser(&obs); err != nil {
		return badRequest(c, "invalid request body")
	}
	id := c.Params("id")
	placed, err := h.layouts.PlaceObstacle(id, obs)
	if err != nil {
		return errorResponse(c, err)
	}
	h.notifyLayoutChanged(models.LayoutObstacleAdded, id)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"obstacle": placed,
	})
}

// HandleMoveObstacle - 모듈 이동
func (h *Handlers) HandleMoveObstacle(c *fiber.Ctx) error {
	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	id := c.Params("id")
	if err := h.layouts.MoveObstacle(id, c.Params("obstacleId"), req.Position); err != nil {
		return errorResponse(c, err)
	}
	h.notifyLayoutChanged(models.LayoutObstacleMoved, id)
	return c.JSON(fiber.Map{"success": true})
}

// HandleRemoveObstacle - 모듈 제거
func (h *Handlers) HandleRemoveObstacle(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.layouts.RemoveObstacle(id, c.Params("obstacleId")); err != nil {
		return errorResponse(c, err)
	}
	h.notifyLayoutChanged(models.LayoutObstacleRemoved, id)
	return c.JSON(fiber.Map{"success": true})
}

// HandleCheckPosition - 바닥 점이 비어 있는지 확인 (모듈 배치 전 점검용)
func (h *Handlers) HandleCheckPosition(c *fiber.Ctx) error {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	z, errZ := strconv.ParseFloat(c.Query("z"), 64)
	if errX != nil || errZ != nil {
		return badRequest(c, "x and z query parameters must be numbers")
	}
	pos := models.Position{X: x, Z: z}
	ok, err := h.layouts.IsPositionClear(c.Params("id"), pos)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"position": pos,
		"clear":    ok,
	})
}

// notifyLayoutChanged - 변경된 배치의 현재 스냅샷 브로드캐스트
func (h *Handlers) notifyLayoutChanged(action, layoutID string) {
	layout, err := h.layouts.Get(layoutID)
	if err != nil {
		// 그 사이 삭제됨
		return
	}
	h.broadcastLayout(action, layout)
}
