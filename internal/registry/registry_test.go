package registry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/galantry1/luba.tv/internal/domain"
)

func TestCreateJoinsCreatorAsHost(t *testing.T) {
	r := New(time.Minute)

	info := r.Create("conn1")
	if info == nil {
		t.Fatal("expected create result")
	}
	if len(info.RoomID) != 6 {
		t.Fatalf("expected 6-char room code, got %q", info.RoomID)
	}
	if info.HostID != "conn1" {
		t.Fatalf("creator is not host: %q", info.HostID)
	}
	if info.HostSecret == "" {
		t.Fatal("expected a host secret")
	}
	if info.State.Video != nil || info.State.Playing || info.State.Time != 0 {
		t.Fatalf("expected default snapshot, got %+v", info.State)
	}

	st, err := r.State(info.RoomID)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Participants) != 1 || st.Participants[0] != "conn1" {
		t.Fatalf("unexpected participants: %v", st.Participants)
	}
}

func TestCreateCodesAreUnique(t *testing.T) {
	r := New(time.Minute)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		info := r.Create(fmt.Sprintf("conn%d", i))
		if seen[info.RoomID] {
			t.Fatalf("duplicate live room code %q", info.RoomID)
		}
		seen[info.RoomID] = true
	}
	if r.Count() != 50 {
		t.Fatalf("expected 50 rooms, got %d", r.Count())
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	r := New(time.Minute)
	if _, err := r.Join("conn1", "NOPE42", ""); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestSingleMembership(t *testing.T) {
	r := New(time.Minute)
	a := r.Create("host")
	b := r.Create("other")

	if _, err := r.Join("guest", a.RoomID, ""); err != nil {
		t.Fatal(err)
	}
	info, err := r.Join("guest", b.RoomID, "")
	if err != nil {
		t.Fatal(err)
	}
	if info.Left == nil || info.Left.RoomID != a.RoomID {
		t.Fatalf("expected departure from %s, got %+v", a.RoomID, info.Left)
	}

	stA, _ := r.State(a.RoomID)
	stB, _ := r.State(b.RoomID)
	for _, p := range stA.Participants {
		if p == "guest" {
			t.Fatal("guest still member of first room")
		}
	}
	found := false
	for _, p := range stB.Participants {
		if p == "guest" {
			found = true
		}
	}
	if !found {
		t.Fatal("guest not member of second room")
	}
}

func TestHostFailoverEarliestJoined(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("a")
	roomID := info.RoomID
	r.Join("b", roomID, "")
	r.Join("c", roomID, "")

	left := r.LeaveAll("a")
	if left == nil || !left.HostChanged {
		t.Fatalf("expected host change, got %+v", left)
	}
	if left.HostID != "b" {
		t.Fatalf("expected earliest-joined b as new host, got %q", left.HostID)
	}

	left = r.Leave("b", roomID)
	if left.HostID != "c" {
		t.Fatalf("expected c as new host, got %q", left.HostID)
	}

	left = r.Leave("c", roomID)
	if left.HostID != "" || !left.Emptied {
		t.Fatalf("expected empty hostless room, got %+v", left)
	}
}

func TestHostAlwaysAParticipant(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("a")
	roomID := info.RoomID
	r.Join("b", roomID, "")
	r.Join("c", roomID, "")
	r.LeaveAll("a")
	r.Join("a", roomID, "")
	r.Leave("b", roomID)

	st, err := r.State(roomID)
	if err != nil {
		t.Fatal(err)
	}
	if st.HostID == "" {
		t.Fatal("expected a host while members remain")
	}
	found := false
	for _, p := range st.Participants {
		if p == st.HostID {
			found = true
		}
	}
	if !found {
		t.Fatalf("host %q is not a participant %v", st.HostID, st.Participants)
	}
}

func TestHostlessRoomAdoptsJoiner(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("a")
	r.LeaveAll("a")

	join, err := r.Join("b", info.RoomID, "")
	if err != nil {
		t.Fatal(err)
	}
	if !join.IsHost || !join.HostChanged || join.HostID != "b" {
		t.Fatalf("expected joiner to become host, got %+v", join)
	}
}

func TestSetVideoRequiresHost(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("host")
	r.Join("guest", info.RoomID, "")

	if _, err := r.SetVideo("guest", info.RoomID, "youtube", "https://youtube.com/watch?v=X"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	state, err := r.SetVideo("host", info.RoomID, "youtube", "https://youtube.com/watch?v=X")
	if err != nil {
		t.Fatal(err)
	}
	if state.Video == nil || state.Video.Provider != "youtube" {
		t.Fatalf("unexpected video: %+v", state.Video)
	}
	if state.Playing || state.Time != 0 {
		t.Fatalf("set video must reset playback, got %+v", state)
	}
}

func TestControlPlayAccruesElapsedTime(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("host")
	roomID := info.RoomID
	r.SetVideo("host", roomID, "youtube", "https://youtube.com/watch?v=X")

	if _, err := r.Control("host", roomID, domain.ActionPlay, nil); err != nil {
		t.Fatal(err)
	}

	// Rewind the stamp by 5s to simulate elapsed play time.
	r.mu.Lock()
	r.rooms[roomID].Player.UpdatedAtMS -= 5000
	r.mu.Unlock()

	st, err := r.State(roomID)
	if err != nil {
		t.Fatal(err)
	}
	if st.State.Time < 4.9 || st.State.Time > 5.5 {
		t.Fatalf("expected ~5s of playback, got %v", st.State.Time)
	}
}

func TestControlPauseFreezesTime(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("host")
	roomID := info.RoomID
	r.Control("host", roomID, domain.ActionPlay, nil)

	r.mu.Lock()
	r.rooms[roomID].Player.UpdatedAtMS -= 3000
	r.mu.Unlock()

	paused, err := r.Control("host", roomID, domain.ActionPause, nil)
	if err != nil {
		t.Fatal(err)
	}
	if paused.Time < 2.9 || paused.Time > 3.5 {
		t.Fatalf("pause lost elapsed time: %v", paused.Time)
	}

	r.mu.Lock()
	r.rooms[roomID].Player.UpdatedAtMS -= 60000
	r.mu.Unlock()

	st, _ := r.State(roomID)
	if st.State.Time != paused.Time {
		t.Fatalf("paused position moved: %v -> %v", paused.Time, st.State.Time)
	}
}

func TestControlSeekClampsNegative(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("host")

	target := -12.0
	state, err := r.Control("host", info.RoomID, domain.ActionSeek, &target)
	if err != nil {
		t.Fatal(err)
	}
	if state.Time != 0 {
		t.Fatalf("expected seek clamp to 0, got %v", state.Time)
	}
}

func TestControlRequiresHost(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("host")
	r.Join("guest", info.RoomID, "")

	if _, err := r.Control("guest", info.RoomID, domain.ActionPlay, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEmptyRoomDeletedAfterTTL(t *testing.T) {
	r := New(40 * time.Millisecond)
	info := r.Create("conn1")

	left := r.LeaveAll("conn1")
	if left == nil || !left.Emptied {
		t.Fatalf("expected emptied room, got %+v", left)
	}

	time.Sleep(120 * time.Millisecond)

	if _, err := r.State(info.RoomID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected room to be gone, got %v", err)
	}
	if r.Count() != 0 {
		t.Fatalf("expected 0 rooms, got %d", r.Count())
	}
}

func TestJoinBeforeTTLCancelsDeletion(t *testing.T) {
	r := New(60 * time.Millisecond)
	info := r.Create("conn1")
	r.LeaveAll("conn1")

	time.Sleep(20 * time.Millisecond)
	if _, err := r.Join("conn2", info.RoomID, ""); err != nil {
		t.Fatal(err)
	}

	// Well past the point the original timer would have fired.
	time.Sleep(100 * time.Millisecond)

	if _, err := r.State(info.RoomID); err != nil {
		t.Fatalf("room deleted despite re-join: %v", err)
	}
}

func TestClaimHost(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("a")
	roomID := info.RoomID
	r.Join("b", roomID, "")

	if _, err := r.ClaimHost("b", roomID, "wrong"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for wrong secret, got %v", err)
	}
	if _, err := r.ClaimHost("stranger", roomID, info.HostSecret); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-member, got %v", err)
	}

	hostID, err := r.ClaimHost("b", roomID, info.HostSecret)
	if err != nil {
		t.Fatal(err)
	}
	if hostID != "b" {
		t.Fatalf("expected b as host, got %q", hostID)
	}
}

func TestJoinWithSecretGrantsHost(t *testing.T) {
	r := New(time.Minute)
	info := r.Create("a")
	r.Join("b", info.RoomID, "")

	// The original host reconnects under a new connection id.
	join, err := r.Join("a2", info.RoomID, info.HostSecret)
	if err != nil {
		t.Fatal(err)
	}
	if !join.IsHost || join.HostID != "a2" {
		t.Fatalf("expected secret to grant host, got %+v", join)
	}
}
