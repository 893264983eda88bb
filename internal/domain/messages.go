package domain

// WebSocket message types from client.
const (
	MsgTypeCreateRoom   = "create_room"
	MsgTypeJoinRoom     = "join_room"
	MsgTypeClaimHost    = "claim_host"
	MsgTypeSetVideo     = "set_video"
	MsgTypeControl      = "control"
	MsgTypeRequestState = "request_state"
	MsgTypeLeaveRoom    = "leave_room"
	MsgTypePing         = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeRoomCreated = "room_created"
	MsgTypeRoomJoined  = "room_joined"
	MsgTypeHostClaimed = "host_claimed"
	MsgTypeState       = "state"
	MsgTypeAck         = "ack"
	MsgTypeStateUpdate = "state_update"
	MsgTypeHostUpdate  = "host_update"
	MsgTypeError       = "error"
	MsgTypePong        = "pong"
)

// BaseMessage is the type-discriminated envelope for all messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// JoinRoomMessage asks to join a room. HostSecret, when present and correct,
// makes the joiner host immediately (rejoin-as-host after a drop).
type JoinRoomMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"room_id"`
	HostSecret string `json:"host_secret,omitempty"`
}

// ClaimHostMessage reclaims host privilege with the room's secret.
type ClaimHostMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"room_id"`
	HostSecret string `json:"host_secret"`
}

// SetVideoMessage replaces the room's video. Host only.
type SetVideoMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// ControlMessage drives playback: play, pause, or seek. Host only.
// Time, when present, is the seek target in seconds.
type ControlMessage struct {
	Type   string   `json:"type"`
	RoomID string   `json:"room_id"`
	Action string   `json:"action"`
	Time   *float64 `json:"time,omitempty"`
}

// RequestStateMessage asks for the room's current snapshot.
type RequestStateMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// LeaveRoomMessage leaves a room.
type LeaveRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// Server -> Client messages

// RoomCreatedMessage answers create_room. The host secret is handed out only
// here; presenting it later reclaims host privilege.
type RoomCreatedMessage struct {
	Type       string      `json:"type"`
	RoomID     string      `json:"room_id"`
	HostID     string      `json:"host_id"`
	HostSecret string      `json:"host_secret,omitempty"`
	State      PlayerState `json:"state"`
}

// RoomJoinedMessage answers join_room.
type RoomJoinedMessage struct {
	Type   string      `json:"type"`
	RoomID string      `json:"room_id"`
	HostID string      `json:"host_id"`
	IsHost bool        `json:"is_host"`
	State  PlayerState `json:"state"`
}

// HostClaimedMessage answers claim_host.
type HostClaimedMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	HostID string `json:"host_id"`
	IsHost bool   `json:"is_host"`
}

// StateMessage answers request_state.
type StateMessage struct {
	Type   string      `json:"type"`
	RoomID string      `json:"room_id"`
	HostID string      `json:"host_id"`
	State  PlayerState `json:"state"`
}

// AckMessage confirms a host mutation that has no richer reply.
type AckMessage struct {
	Type string `json:"type"`
	Op   string `json:"op"`
}

// StateUpdateMessage is broadcast to a room whenever its snapshot changes.
// The state is always freshly materialized, never a stale stored one.
type StateUpdateMessage struct {
	Type   string      `json:"type"`
	RoomID string      `json:"room_id"`
	State  PlayerState `json:"state"`
}

// HostUpdateMessage is broadcast when host privilege moves.
type HostUpdateMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	HostID string `json:"host_id"`
}

// ErrorMessage reports a failed request.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeRoomNotFound = "ROOM_NOT_FOUND"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeCreateFailed = "CREATE_FAILED"
	ErrCodeBadRequest   = "BAD_REQUEST"
)

// NewErrorMessage creates a new error message.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
