package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/galantry1/luba.tv/internal/domain"
	pkglog "github.com/galantry1/luba.tv/pkg/log"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrForbidden    = errors.New("forbidden")
)

// Registry owns every live room. All room state is read and mutated under a
// single lock, so each operation runs to completion before the next one; the
// only thing that fires outside a request is the empty-room deletion timer,
// which re-checks the room under the lock.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*domain.Room
	memberOf map[string]string // connID -> roomID, at most one per connection
	emptyTTL time.Duration
}

// New creates an empty registry. emptyTTL is how long a room with no
// participants is kept before deletion.
func New(emptyTTL time.Duration) *Registry {
	return &Registry{
		rooms:    make(map[string]*domain.Room),
		memberOf: make(map[string]string),
		emptyTTL: emptyTTL,
	}
}

// LeaveInfo describes the side effects of removing a connection from a room.
type LeaveInfo struct {
	RoomID      string
	HostID      string // host after the departure, "" if none
	HostChanged bool
	Emptied     bool // room has no participants left; deletion is scheduled
}

// CreateInfo is the result of creating a room.
type CreateInfo struct {
	RoomID     string
	HostID     string
	HostSecret string
	State      domain.PlayerState
	Left       *LeaveInfo // departure from the previously joined room, if any
}

// JoinInfo is the result of joining a room.
type JoinInfo struct {
	RoomID      string
	HostID      string
	IsHost      bool
	HostChanged bool
	State       domain.PlayerState
	Left        *LeaveInfo
}

// StateInfo is a read-only view of a room.
type StateInfo struct {
	RoomID       string
	HostID       string
	Participants []string
	State        domain.PlayerState
}

// Create makes a new room with a unique code and joins the creator as host.
// The connection's previous membership, if any, is dissolved first.
func (r *Registry) Create(connID string) *CreateInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := r.leaveLocked(connID)

	id := domain.NewRoomCode()
	for {
		if _, exists := r.rooms[id]; !exists {
			break
		}
		id = domain.NewRoomCode()
	}

	now := time.Now()
	room := &domain.Room{
		ID:           id,
		HostID:       connID,
		HostSecret:   domain.NewHostSecret(),
		Participants: []string{connID},
		Player:       domain.NewPlayerState(now),
	}
	r.rooms[id] = room
	r.memberOf[connID] = id

	l := pkglog.L()
	l.Info().Str(pkglog.FieldRoomID, id).Str(pkglog.FieldConnID, connID).Msg("room created")

	return &CreateInfo{
		RoomID:     id,
		HostID:     connID,
		HostSecret: room.HostSecret,
		State:      room.Player.Materialized(now),
		Left:       left,
	}
}

// Join adds the connection to the room, dissolving any previous membership
// first. A room with no host adopts the joiner; so does a correct hostSecret.
// A pending deletion for the room is canceled.
func (r *Registry) Join(connID, roomID, hostSecret string) (*JoinInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	left := r.leaveLocked(connID)

	room.AddParticipant(connID)
	r.memberOf[connID] = roomID
	r.cancelDeleteLocked(room)

	hostChanged := false
	if room.HostID == "" {
		room.HostID = connID
		hostChanged = true
	} else if hostSecret != "" && hostSecret == room.HostSecret && room.HostID != connID {
		room.HostID = connID
		hostChanged = true
	}

	return &JoinInfo{
		RoomID:      roomID,
		HostID:      room.HostID,
		IsHost:      room.HostID == connID,
		HostChanged: hostChanged,
		State:       room.Player.Materialized(time.Now()),
		Left:        left,
	}, nil
}

// State returns a materialized view of the room.
func (r *Registry) State(roomID string) (*StateInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r.stateLocked(room), nil
}

// SetVideo replaces the room's video and resets playback: paused at zero,
// stamped now. Host only.
func (r *Registry) SetVideo(connID, roomID, provider, url string) (domain.PlayerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return domain.PlayerState{}, ErrRoomNotFound
	}
	if room.HostID != connID {
		return domain.PlayerState{}, ErrForbidden
	}

	room.Player = domain.PlayerState{
		Video:       &domain.VideoRef{Provider: provider, URL: url},
		UpdatedAtMS: time.Now().UnixMilli(),
	}
	return room.Player, nil
}

// Control applies a host playback command. The stored snapshot is
// materialized before the mutation so that elapsed play time is neither
// double-counted nor dropped. Host only.
func (r *Registry) Control(connID, roomID string, action domain.ControlAction, seconds *float64) (domain.PlayerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return domain.PlayerState{}, ErrRoomNotFound
	}
	if room.HostID != connID {
		return domain.PlayerState{}, ErrForbidden
	}

	room.Player = room.Player.Materialized(time.Now())

	if seconds != nil {
		room.Player.Time = *seconds
		if room.Player.Time < 0 {
			room.Player.Time = 0
		}
	}

	switch action {
	case domain.ActionPlay:
		room.Player.Playing = true
	case domain.ActionPause:
		room.Player.Playing = false
	}

	return room.Player, nil
}

// ClaimHost reassigns host privilege to a member presenting the room's
// secret. Non-members and wrong secrets are rejected; the host invariant
// (host is always a participant) is preserved.
func (r *Registry) ClaimHost(connID, roomID, secret string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return "", ErrRoomNotFound
	}
	if secret == "" || secret != room.HostSecret || !room.HasParticipant(connID) {
		return "", ErrForbidden
	}

	room.HostID = connID
	return room.HostID, nil
}

// Leave removes the connection from the room. Returns nil if the connection
// is not a member of that room.
func (r *Registry) Leave(connID, roomID string) *LeaveInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberOf[connID] != roomID {
		return nil
	}
	return r.leaveLocked(connID)
}

// LeaveAll removes the connection from whichever room currently contains it.
// Used on abrupt disconnect.
func (r *Registry) LeaveAll(connID string) *LeaveInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(connID)
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

func (r *Registry) stateLocked(room *domain.Room) *StateInfo {
	participants := make([]string, len(room.Participants))
	copy(participants, room.Participants)
	return &StateInfo{
		RoomID:       room.ID,
		HostID:       room.HostID,
		Participants: participants,
		State:        room.Player.Materialized(time.Now()),
	}
}

func (r *Registry) leaveLocked(connID string) *LeaveInfo {
	roomID, ok := r.memberOf[connID]
	if !ok {
		return nil
	}
	delete(r.memberOf, connID)

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	room.RemoveParticipant(connID)

	info := &LeaveInfo{RoomID: roomID, HostID: room.HostID}
	if room.HostID == connID {
		room.HostID = room.NextHost()
		info.HostID = room.HostID
		info.HostChanged = true
	}
	if len(room.Participants) == 0 {
		r.scheduleDeleteLocked(room)
		info.Emptied = true
	}
	return info
}

func (r *Registry) scheduleDeleteLocked(room *domain.Room) {
	if room.DeleteTimer != nil {
		room.DeleteTimer.Stop()
	}
	id := room.ID
	room.DeleteTimer = time.AfterFunc(r.emptyTTL, func() {
		r.deleteIfEmpty(id)
	})
}

func (r *Registry) cancelDeleteLocked(room *domain.Room) {
	if room.DeleteTimer != nil {
		room.DeleteTimer.Stop()
		room.DeleteTimer = nil
	}
}

// deleteIfEmpty runs when a deletion timer fires. The room may have been
// re-joined between scheduling and firing, so emptiness is re-checked.
func (r *Registry) deleteIfEmpty(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok || len(room.Participants) > 0 {
		return
	}
	delete(r.rooms, roomID)
	l := pkglog.L()
	l.Info().Str(pkglog.FieldRoomID, roomID).Msg("removed empty room after TTL")
}
