package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/hub"
	"github.com/clauseiq/clauseiq/internal/logging"
	"github.com/clauseiq/clauseiq/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler owns the realtime side of the chat relay.
type WSHandler struct {
	hub    *hub.Hub
	chat   service.ChatService
	hubCfg hub.Config
}

// NewWSHandler creates the websocket handler.
func NewWSHandler(h *hub.Hub, chat service.ChatService, hubCfg hub.Config) *WSHandler {
	return &WSHandler{
		hub:    h,
		chat:   chat,
		hubCfg: hubCfg,
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and starts the pumps.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.hubCfg)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleFrame)
}

// handleFrame dispatches one inbound frame. Frames from a single
// connection arrive here sequentially, which preserves submission order
// through the relay.
func (h *WSHandler) handleFrame(client *hub.Client, frame []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(frame, &base); err != nil {
		client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.EventSendMessage:
		var ev domain.SendMessageEvent
		if err := json.Unmarshal(frame, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid send_message event"))
			return
		}
		h.handleSend(ctx, client, &ev)

	default:
		client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "unknown event type"))
	}
}

func (h *WSHandler) handleSend(ctx context.Context, client *hub.Client, ev *domain.SendMessageEvent) {
	if _, err := h.chat.Relay(ctx, ev); err != nil {
		logging.L().Error().Err(err).Str(logging.FieldClientID, client.ID).Msg("relay failed")
		switch err {
		case service.ErrEmptyContent, service.ErrInvalidSender:
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, err.Error()))
		default:
			// The optimistic broadcast is not retracted; only the
			// submitter learns the message was not made durable.
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeInternalError, "failed to persist message"))
		}
	}
}
