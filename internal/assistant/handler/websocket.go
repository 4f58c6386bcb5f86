package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"dv-relay/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	maxFrameSize = 8 << 10
)

// SocketMessage is the frame format in both directions.
type SocketMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
	*ChatResponse
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket handles GET /api/chat/ws
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(c.Request.Context(), "WebSocket upgrade failed", err)
		return
	}

	s := newChatSocket(conn, h.assistant, h.logger)
	s.run(c.Request.Context())
}

// chatSocket serves one browser connection. Turns are answered in order; a
// ping goroutine shares the connection, so writes go through writeMutex.
type chatSocket struct {
	conn       *websocket.Conn
	assistant  Assistant
	logger     *observability.Logger
	sessionID  string
	writeMutex sync.Mutex
}

func newChatSocket(conn *websocket.Conn, assistant Assistant, logger *observability.Logger) *chatSocket {
	return &chatSocket{
		conn:      conn,
		assistant: assistant,
		logger:    logger,
		sessionID: uuid.NewString(),
	}
}

func (s *chatSocket) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer s.close()

	ctx = observability.WithFields(ctx, observability.Field{Key: "channel", Value: "websocket"})
	s.logger.Info(ctx, "chat WebSocket connection established")

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go s.ping(ctx)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info(ctx, "chat WebSocket closed normally")
			} else {
				s.logger.WarnWithError(ctx, "chat WebSocket read error", err)
			}
			return
		}

		var msg SocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.WarnWithError(ctx, "failed to parse chat frame", err)
			s.write(ctx, SocketMessage{Type: "error", Text: "Messages must be JSON."})
			continue
		}

		if id := strings.TrimSpace(msg.SessionID); id != "" && id != s.sessionID {
			if _, err := sessionKey(id); err != nil {
				s.write(ctx, SocketMessage{Type: "error", Text: err.Error()})
				continue
			}
			s.sessionID = id
		}
		key := webSessionPrefix + s.sessionID
		turnCtx := observability.WithFields(ctx, observability.Field{Key: "session_id", Value: key})

		switch msg.Type {
		case "message":
			resp := toChatResponse(s.assistant.GetResponse(turnCtx, key, msg.Text))
			s.write(turnCtx, SocketMessage{Type: "response", SessionID: s.sessionID, ChatResponse: &resp})

		case "reset":
			s.assistant.EndSession(turnCtx, key)
			s.write(turnCtx, SocketMessage{Type: "reset", SessionID: s.sessionID})

		default:
			s.logger.Debug(turnCtx, "unknown chat frame type: "+msg.Type)
			s.write(turnCtx, SocketMessage{Type: "error", Text: "Unknown message type."})
		}
	}
}

func (s *chatSocket) ping(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.writeMutex.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMutex.Unlock()
			if err != nil {
				s.logger.WarnWithError(ctx, "chat WebSocket ping failed", err)
				return
			}
		}
	}
}

func (s *chatSocket) write(ctx context.Context, msg SocketMessage) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.WarnWithError(ctx, "failed to write chat frame", err)
	}
}

func (s *chatSocket) close() {
	s.writeMutex.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	s.writeMutex.Unlock()
	s.conn.Close()
}
