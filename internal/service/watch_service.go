package service

import (
	"context"
	"errors"

	"github.com/galantry1/luba.tv/internal/domain"
	"github.com/galantry1/luba.tv/internal/registry"
	pkglog "github.com/galantry1/luba.tv/pkg/log"
)

// Config holds coordinator options.
type Config struct {
	// AllowHostClaim enables reclaiming host privilege with the room secret,
	// both via claim_host and via the join_room host_secret field.
	AllowHostClaim bool
}

type watchService struct {
	hub            Broadcaster
	registry       *registry.Registry
	allowHostClaim bool
}

// NewWatchService creates the session coordinator.
func NewWatchService(b Broadcaster, reg *registry.Registry, cfg Config) WatchService {
	return &watchService{
		hub:            b,
		registry:       reg,
		allowHostClaim: cfg.AllowHostClaim,
	}
}

func (s *watchService) HandleCreateRoom(ctx context.Context, c Conn) error {
	info := s.registry.Create(c.ID())
	if info == nil {
		return c.Send(domain.NewErrorMessage(domain.ErrCodeCreateFailed, "could not create room"))
	}

	s.applyLeave(c.ID(), info.Left)
	s.hub.JoinRoom(c.ID(), info.RoomID)

	return c.Send(&domain.RoomCreatedMessage{
		Type:       domain.MsgTypeRoomCreated,
		RoomID:     info.RoomID,
		HostID:     info.HostID,
		HostSecret: info.HostSecret,
		State:      info.State,
	})
}

func (s *watchService) HandleJoinRoom(ctx context.Context, c Conn, roomID, hostSecret string) error {
	roomID = domain.NormalizeRoomID(roomID)
	if !s.allowHostClaim {
		hostSecret = ""
	}

	info, err := s.registry.Join(c.ID(), roomID, hostSecret)
	if err != nil {
		return s.sendErr(c, err)
	}

	s.applyLeave(c.ID(), info.Left)
	s.hub.JoinRoom(c.ID(), roomID)

	if err := c.Send(&domain.RoomJoinedMessage{
		Type:   domain.MsgTypeRoomJoined,
		RoomID: info.RoomID,
		HostID: info.HostID,
		IsHost: info.IsHost,
		State:  info.State,
	}); err != nil {
		return err
	}

	l := pkglog.L()
	l.Info().
		Str(pkglog.FieldConnID, c.ID()).
		Str(pkglog.FieldRoomID, roomID).
		Msg("client joined room")

	return s.hub.BroadcastToRoom(roomID, &domain.HostUpdateMessage{
		Type:   domain.MsgTypeHostUpdate,
		RoomID: roomID,
		HostID: info.HostID,
	})
}

func (s *watchService) HandleClaimHost(ctx context.Context, c Conn, roomID, hostSecret string) error {
	if !s.allowHostClaim {
		return c.Send(domain.NewErrorMessage(domain.ErrCodeForbidden, "host claim is disabled"))
	}

	roomID = domain.NormalizeRoomID(roomID)
	hostID, err := s.registry.ClaimHost(c.ID(), roomID, hostSecret)
	if err != nil {
		return s.sendErr(c, err)
	}

	if err := c.Send(&domain.HostClaimedMessage{
		Type:   domain.MsgTypeHostClaimed,
		RoomID: roomID,
		HostID: hostID,
		IsHost: true,
	}); err != nil {
		return err
	}

	l := pkglog.L()
	l.Info().
		Str(pkglog.FieldRoomID, roomID).
		Str(pkglog.FieldHostID, hostID).
		Msg("host reclaimed")

	return s.hub.BroadcastToRoom(roomID, &domain.HostUpdateMessage{
		Type:   domain.MsgTypeHostUpdate,
		RoomID: roomID,
		HostID: hostID,
	})
}

func (s *watchService) HandleSetVideo(ctx context.Context, c Conn, roomID, provider, url string) error {
	if provider == "" || url == "" {
		return c.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "provider and url are required"))
	}

	roomID = domain.NormalizeRoomID(roomID)
	state, err := s.registry.SetVideo(c.ID(), roomID, provider, url)
	if err != nil {
		return s.sendErr(c, err)
	}

	if err := s.hub.BroadcastToRoom(roomID, &domain.StateUpdateMessage{
		Type:   domain.MsgTypeStateUpdate,
		RoomID: roomID,
		State:  state,
	}); err != nil {
		return err
	}

	return c.Send(&domain.AckMessage{Type: domain.MsgTypeAck, Op: domain.MsgTypeSetVideo})
}

func (s *watchService) HandleControl(ctx context.Context, c Conn, roomID, action string, seconds *float64) error {
	act := domain.ControlAction(action)
	if !act.Valid() {
		return c.Send(domain.NewErrorMessage(domain.ErrCodeBadRequest, "unknown control action: "+action))
	}

	roomID = domain.NormalizeRoomID(roomID)
	state, err := s.registry.Control(c.ID(), roomID, act, seconds)
	if err != nil {
		return s.sendErr(c, err)
	}

	if err := s.hub.BroadcastToRoom(roomID, &domain.StateUpdateMessage{
		Type:   domain.MsgTypeStateUpdate,
		RoomID: roomID,
		State:  state,
	}); err != nil {
		return err
	}

	return c.Send(&domain.AckMessage{Type: domain.MsgTypeAck, Op: domain.MsgTypeControl})
}

func (s *watchService) HandleRequestState(ctx context.Context, c Conn, roomID string) error {
	roomID = domain.NormalizeRoomID(roomID)
	st, err := s.registry.State(roomID)
	if err != nil {
		return s.sendErr(c, err)
	}

	return c.Send(&domain.StateMessage{
		Type:   domain.MsgTypeState,
		RoomID: st.RoomID,
		HostID: st.HostID,
		State:  st.State,
	})
}

func (s *watchService) HandleLeaveRoom(ctx context.Context, c Conn, roomID string) error {
	roomID = domain.NormalizeRoomID(roomID)
	left := s.registry.Leave(c.ID(), roomID)
	s.applyLeave(c.ID(), left)
	return nil
}

func (s *watchService) HandleDisconnect(ctx context.Context, c Conn) error {
	left := s.registry.LeaveAll(c.ID())
	s.applyLeave(c.ID(), left)
	return nil
}

// applyLeave mirrors a registry departure into the hub and notifies the
// remaining members of a host change.
func (s *watchService) applyLeave(connID string, left *registry.LeaveInfo) {
	if left == nil {
		return
	}
	s.hub.LeaveRoom(connID, left.RoomID)

	if left.HostChanged && !left.Emptied {
		s.hub.BroadcastToRoom(left.RoomID, &domain.HostUpdateMessage{
			Type:   domain.MsgTypeHostUpdate,
			RoomID: left.RoomID,
			HostID: left.HostID,
		})
	}
}

func (s *watchService) sendErr(c Conn, err error) error {
	switch {
	case errors.Is(err, registry.ErrRoomNotFound):
		return c.Send(domain.NewErrorMessage(domain.ErrCodeRoomNotFound, "room not found"))
	case errors.Is(err, registry.ErrForbidden):
		return c.Send(domain.NewErrorMessage(domain.ErrCodeForbidden, "host privilege required"))
	}
	return err
}
