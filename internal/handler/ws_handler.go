package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/galantry1/luba.tv/internal/domain"
	"github.com/galantry1/luba.tv/internal/hub"
	"github.com/galantry1/luba.tv/internal/service"
	pkglog "github.com/galantry1/luba.tv/pkg/log"
)

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub      *hub.Hub
	service  service.WatchService
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler. An empty allowedOrigins list
// accepts any origin.
func NewWSHandler(h *hub.Hub, svc service.WatchService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := pkglog.L()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(h.hub, conn, uuid.New().String())

	client.SetDisconnectHandler(func(cl *hub.Client) {
		if err := h.service.HandleDisconnect(context.Background(), cl); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, cl.ID()).Msg("disconnect handler error")
		}
	})

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	l := pkglog.L()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeCreateRoom:
		if err := h.service.HandleCreateRoom(ctx, client); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID()).Msg("create room failed")
		}

	case domain.MsgTypeJoinRoom:
		var msg domain.JoinRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid join_room message"))
			return
		}
		if msg.RoomID == "" {
			client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "room_id is required"))
			return
		}
		if err := h.service.HandleJoinRoom(ctx, client, msg.RoomID, msg.HostSecret); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID()).Msg("join room failed")
		}

	case domain.MsgTypeClaimHost:
		var msg domain.ClaimHostMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid claim_host message"))
			return
		}
		if err := h.service.HandleClaimHost(ctx, client, msg.RoomID, msg.HostSecret); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID()).Msg("claim host failed")
		}

	case domain.MsgTypeSetVideo:
		var msg domain.SetVideoMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid set_video message"))
			return
		}
		if err := h.service.HandleSetVideo(ctx, client, msg.RoomID, msg.Provider, msg.URL); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID()).Msg("set video failed")
		}

	case domain.MsgTypeControl:
		var msg domain.ControlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid control message"))
			return
		}
		if err := h.service.HandleControl(ctx, client, msg.RoomID, msg.Action, msg.Time); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID()).Msg("control failed")
		}

	case domain.MsgTypeRequestState:
		var msg domain.RequestStateMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid request_state message"))
			return
		}
		if err := h.service.HandleRequestState(ctx, client, msg.RoomID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID()).Msg("request state failed")
		}

	case domain.MsgTypeLeaveRoom:
		var msg domain.LeaveRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid leave_room message"))
			return
		}
		if err := h.service.HandleLeaveRoom(ctx, client, msg.RoomID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID()).Msg("leave room failed")
		}

	case domain.MsgTypePing:
		client.Send(map[string]string{"type": domain.MsgTypePong})

	default:
		client.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "unknown message type: "+base.Type))
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}
