package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"brainself/internal/access"
	"brainself/internal/realtime"
	"brainself/internal/services"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 4096
)

// AuthEvents источник событий входа и выхода
type AuthEvents interface {
	Subscribe() (<-chan access.AuthEvent, func())
}

type ChatHandler struct {
	chatService services.ChatService
	resolver    *access.Resolver
	events      AuthEvents
	upgrader    websocket.Upgrader
}

func NewChatHandler(chatService services.ChatService, resolver *access.Resolver, events AuthEvents, allowedOrigins []string) *ChatHandler {
	origins := originSet(allowedOrigins)
	return &ChatHandler{
		chatService: chatService,
		resolver:    resolver,
		events:      events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

func parseSince(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
		return nil, false
	}
	return &t, true
}

// GET /api/groups/:id/messages?since=
func (h *ChatHandler) GetMessages(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	since, ok := parseSince(c)
	if !ok {
		return
	}
	msgs, err := h.chatService.List(c.Request.Context(), SessionFrom(c), gid, since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

// POST /api/groups/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ev, err := h.chatService.Send(c.Request.Context(), SessionFrom(c), gid, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": ev})
}

// wsFrame кадр, который сервер отправляет клиенту
type wsFrame struct {
	Type    string              `json:"type"`
	Message *realtime.ChatEvent `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// GET /api/groups/:id/stream?since=
//
// Порядок важен: сначала подписка, затем догоняющая выборка с since, затем живой поток.
// Сообщения, уже отданные выборкой, из потока не повторяются.
func (h *ChatHandler) Stream(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	since, ok := parseSince(c)
	if !ok {
		return
	}
	session := SessionFrom(c)
	log := logger(c).With(slog.String("group_id", gid.String()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	live, unsubscribe, err := h.chatService.Subscribe(ctx, session, gid)
	if err != nil {
		respondError(c, err)
		return
	}
	defer unsubscribe()

	backlog, err := h.chatService.List(ctx, session, gid, since)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	tracker := access.NewTracker(h.resolver, &session.UserID)
	tracker.Refresh(ctx)
	events, stopEvents := h.events.Subscribe()
	defer stopEvents()
	go tracker.Run(ctx, events, func(s access.Session) {
		if !s.IsAuthenticated() {
			log.Info("identity signed out, closing chat stream")
			cancel()
		}
	})

	failures := make(chan string, 4)
	go h.readLoop(ctx, cancel, conn, tracker, gid, failures)

	seen := make(map[uuid.UUID]struct{}, len(backlog))
	for i := range backlog {
		seen[backlog[i].ID] = struct{}{}
		if err := writeFrame(conn, wsFrame{Type: "message", Message: &backlog[i]}); err != nil {
			return
		}
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
				time.Now().Add(wsWriteWait))
			return
		case ev, ok := <-live:
			if !ok {
				return
			}
			if _, dup := seen[ev.ID]; dup {
				delete(seen, ev.ID)
				continue
			}
			if err := writeFrame(conn, wsFrame{Type: "message", Message: &ev}); err != nil {
				return
			}
		case msg := <-failures:
			if err := writeFrame(conn, wsFrame{Type: "error", Error: msg}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readLoop принимает сообщения клиента и отправляет их от имени текущей сессии
func (h *ChatHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, tracker *access.Tracker, gid uuid.UUID, failures chan<- string) {
	defer cancel()
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var req sendMessageReq
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if _, err := h.chatService.Send(ctx, tracker.Current(), gid, req.Message); err != nil {
			select {
			case failures <- err.Error():
			default:
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, f wsFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(f)
}
