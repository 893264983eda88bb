package service

import (
	"context"
)

// Conn is a single connected participant as the coordinator sees it:
// an identity plus an ordered, fire-and-forget message channel.
type Conn interface {
	ID() string
	Send(message interface{}) error
}

// Broadcaster fans messages out to the members of a room.
type Broadcaster interface {
	JoinRoom(connID, roomID string)
	LeaveRoom(connID, roomID string)
	BroadcastToRoom(roomID string, message interface{}) error
}

// WatchService handles watch-party protocol events.
type WatchService interface {
	// HandleCreateRoom creates a room and joins the caller as host.
	HandleCreateRoom(ctx context.Context, c Conn) error

	// HandleJoinRoom joins a room; a correct hostSecret grants host privilege.
	HandleJoinRoom(ctx context.Context, c Conn, roomID, hostSecret string) error

	// HandleClaimHost reclaims host privilege with the room's secret.
	HandleClaimHost(ctx context.Context, c Conn, roomID, hostSecret string) error

	// HandleSetVideo replaces the room's video. Host only.
	HandleSetVideo(ctx context.Context, c Conn, roomID, provider, url string) error

	// HandleControl applies play/pause/seek. Host only.
	HandleControl(ctx context.Context, c Conn, roomID, action string, seconds *float64) error

	// HandleRequestState returns the room's materialized snapshot.
	HandleRequestState(ctx context.Context, c Conn, roomID string) error

	// HandleLeaveRoom handles a client leaving a room.
	HandleLeaveRoom(ctx context.Context, c Conn, roomID string) error

	// HandleDisconnect handles a client disconnecting.
	HandleDisconnect(ctx context.Context, c Conn) error
}
