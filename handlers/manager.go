package handlers

import (
	"sync"
	"time"

	"habitat-nav/models"

	"go.uber.org/zap"
)

// Conn - 브로드캐스트 대상 연결 (*websocket.Conn 이 만족)
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// ClientManager - WebSocket 클라이언트 관리 및 브로드캐스트
type ClientManager struct {
	clients    map[Conn]struct{}
	broadcast  chan models.WebSocketMessage
	register   chan Conn
	unregister chan Conn
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *zap.Logger
}

// NewClientManager - 관리자 생성 (Start 로 루프 시작)
func NewClientManager(logger *zap.Logger) *ClientManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientManager{
		clients:    make(map[Conn]struct{}),
		broadcast:  make(chan models.WebSocketMessage, 100),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Start - 클라이언트 관리 루프 (Stop 까지 블록)
func (manager *ClientManager) Start() {
	defer close(manager.done)
	for {
		select {
		case conn := <-manager.register:
			manager.mutex.Lock()
			manager.clients[conn] = struct{}{}
			manager.mutex.Unlock()
			manager.logger.Debug("websocket client registered")

		case conn := <-manager.unregister:
			manager.remove(conn)

		case message := <-manager.broadcast:
			manager.handleBroadcast(message)

		case <-manager.stop:
			manager.mutex.Lock()
			for conn := range manager.clients {
				_ = conn.Close()
				delete(manager.clients, conn)
			}
			manager.mutex.Unlock()
			return
		}
	}
}

// Stop - 루프 종료 후 모든 클라이언트 닫기 (여러 번 호출해도 안전)
func (manager *ClientManager) Stop() {
	manager.stopOnce.Do(func() {
		close(manager.stop)
	})
	<-manager.done
}

func (manager *ClientManager) remove(conn Conn) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if _, ok := manager.clients[conn]; ok {
		delete(manager.clients, conn)
		_ = conn.Close()
		manager.logger.Debug("websocket client unregistered")
	}
}

func (manager *ClientManager) handleBroadcast(message models.WebSocketMessage) {
	manager.mutex.RLock()
	var failed []Conn
	for conn := range manager.clients {
		if err := conn.WriteJSON(message); err != nil {
			manager.logger.Warn("websocket send failed", zap.String("type", message.Type), zap.Error(err))
			failed = append(failed, conn)
		}
	}
	manager.mutex.RUnlock()

	for _, conn := range failed {
		manager.remove(conn)
	}
}

// Register - 클라이언트 등록, 종료 후에는 무시
func (manager *ClientManager) Register(conn Conn) {
	select {
	case manager.register <- conn:
	case <-manager.stop:
	}
}

// Unregister - 클라이언트 제거 후 닫기
func (manager *ClientManager) Unregister(conn Conn) {
	select {
	case manager.unregister <- conn:
	case <-manager.stop:
	}
}

// BroadcastMessage - 메시지 브로드캐스트 (큐가 가득 차면 버림)
func (manager *ClientManager) BroadcastMessage(msg models.WebSocketMessage) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	select {
	case manager.broadcast <- msg:
	default:
		manager.logger.Warn("broadcast queue full, message dropped", zap.String("type", msg.Type))
	}
}

// GetClientCount - 연결된 클라이언트 수
func (manager *ClientManager) GetClientCount() int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.clients)
}
