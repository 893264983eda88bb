package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const roomCodeLength = 6

// VideoRef identifies the video a room is watching.
type VideoRef struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// PlayerState is the playback snapshot shared with every room member.
// Time is the playback position in seconds; UpdatedAtMS is the wall-clock
// instant (unix ms) at which Time was last known accurate.
type PlayerState struct {
	Video       *VideoRef `json:"video"`
	Playing     bool      `json:"playing"`
	Time        float64   `json:"time"`
	UpdatedAtMS int64     `json:"-"`
}

// NewPlayerState returns the default snapshot for a fresh room: no video,
// paused at zero, stamped now.
func NewPlayerState(now time.Time) PlayerState {
	return PlayerState{UpdatedAtMS: now.UnixMilli()}
}

// Materialized returns the snapshot as of now: while playing, the position
// advances by the elapsed wall-clock time; while paused it is frozen. The
// result is always re-stamped with now. Pure; the receiver is not modified.
func (s PlayerState) Materialized(now time.Time) PlayerState {
	ms := now.UnixMilli()
	if s.Playing {
		delta := float64(ms-s.UpdatedAtMS) / 1000.0
		s.Time = math.Max(0, s.Time+delta)
	}
	s.UpdatedAtMS = ms
	return s
}

// ControlAction is a host playback command.
type ControlAction string

const (
	ActionPlay  ControlAction = "play"
	ActionPause ControlAction = "pause"
	ActionSeek  ControlAction = "seek"
)

// Valid reports whether the action is one the coordinator understands.
func (a ControlAction) Valid() bool {
	switch a {
	case ActionPlay, ActionPause, ActionSeek:
		return true
	}
	return false
}

// Room is a watch-party session. It is owned by the registry: all reads and
// writes happen under the registry lock, never from outside it.
type Room struct {
	ID         string
	HostID     string
	HostSecret string

	// Participants is kept in join order; the earliest-joined member is the
	// host failover target.
	Participants []string

	Player PlayerState

	// DeleteTimer is the pending empty-room deletion, if any.
	DeleteTimer *time.Timer
}

// AddParticipant appends the connection unless it is already a member.
func (r *Room) AddParticipant(connID string) {
	if r.HasParticipant(connID) {
		return
	}
	r.Participants = append(r.Participants, connID)
}

// RemoveParticipant removes the connection, preserving join order.
// It reports whether the connection was a member.
func (r *Room) RemoveParticipant(connID string) bool {
	for i, id := range r.Participants {
		if id == connID {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// HasParticipant reports whether the connection is a member.
func (r *Room) HasParticipant(connID string) bool {
	for _, id := range r.Participants {
		if id == connID {
			return true
		}
	}
	return false
}

// NextHost returns the earliest-joined participant, or "" for an empty room.
func (r *Room) NextHost() string {
	if len(r.Participants) == 0 {
		return ""
	}
	return r.Participants[0]
}

// NewRoomCode generates a short uppercase room code. Uniqueness against live
// rooms is the registry's job.
func NewRoomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:roomCodeLength])
}

// NewHostSecret mints the opaque token that lets a connection reclaim host
// privilege for a room.
func NewHostSecret() string {
	return uuid.NewString()
}

// NormalizeRoomID maps user-supplied room ids onto the code format.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
