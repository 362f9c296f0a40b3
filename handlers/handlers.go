package handlers

import (
	"errors"
	"time"

	"habitat-nav/algorithms"
	"habitat-nav/models"
	"habitat-nav/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Handlers - HTTP/WebSocket 핸들러 묶음
type Handlers struct {
	navigator *services.Navigator
	layouts   *services.LayoutStore
	logs      *services.QueryLogRepository // nil 이면 로그 API 비활성
	hub       *ClientManager
	logger    *zap.Logger
}

// New - 핸들러 생성, DB 미설정 시 repo는 nil
func New(navigator *services.Navigator, layouts *services.LayoutStore, repo *services.QueryLogRepository, hub *ClientManager, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		navigator: navigator,
		layouts:   layouts,
		logs:      repo,
		hub:       hub,
		logger:    logger,
	}
}

// Register - 라우트 등록
func (h *Handlers) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", h.HandleHealth)
	api.Get("/standards", h.HandleStandards)

	// 경로 탐색
	api.Post("/pathfinding", h.HandlePathfinding)
	api.Post("/pathfinding/batch", h.HandlePathfindingBatch)

	// 배치
	layouts := api.Group("/layouts")
	layouts.Get("/", h.HandleListLayouts)
	layouts.Post("/", h.HandleCreateLayout)
	layouts.Post("/generate", h.HandleGenerateLayout)
	layouts.Get("/:id", h.HandleGetLayout)
	layouts.Delete("/:id", h.HandleDeleteLayout)
	layouts.Get("/:id/clear", h.HandleCheckPosition)
	layouts.Post("/:id/obstacles", h.HandlePlaceObstacle)
	layouts.Put("/:id/obstacles/:obstacleId", h.HandleMoveObstacle)
	layouts.Delete("/:id/obstacles/:obstacleId", h.HandleRemoveObstacle)

	// 질의 로그
	logsAPI := api.Group("/logs")
	logsAPI.Get("/recent", h.HandleGetRecentLogs)
	logsAPI.Get("/kind", h.HandleGetLogsByKind)
	logsAPI.Get("/stats", h.HandleGetLogStats)

	// WebSocket
	app.Use("/websocket", upgradeOnly)
	app.Get("/websocket/web", websocket.New(h.HandleWebClientWebSocket))
}

// HandleHealth - 서버 상태
func (h *Handlers) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "OK",
		"clients":  h.hub.GetClientCount(),
		"database": h.logs != nil,
		"time":     time.Now().Format(time.RFC3339),
	})
}

// HandleStandards - 크루 통행 기준
func (h *Handlers) HandleStandards(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"min_path_width":  models.MinPathWidth,
		"grid_resolution": h.navigator.Resolution(),
		"boundary_margin": models.BoundaryMargin,
		"keep_out_buffer": models.KeepOutBuffer,
	})
}

// statusFor - 서비스/엔진 에러 → HTTP 상태 코드
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrLayoutNotFound), errors.Is(err, services.ErrObstacleNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, algorithms.ErrGeometry),
		errors.Is(err, algorithms.ErrOutOfBounds),
		errors.Is(err, services.ErrInvalidPlacement):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
