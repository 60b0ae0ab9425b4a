package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// startHub runs a hub for the test's lifetime.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// connect registers an in-process client; the network pumps are not started,
// the test reads straight from the send channel.
func connect(hub *Hub, userID, role string) *Client {
	c := newClient(hub, nil, userID, userID+"@example.com", role)
	hub.register <- c
	return c
}

func recv(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func requireSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestRSVPUpdateReachesAllIncludingSender(t *testing.T) {
	hub := startHub(t)
	alice := connect(hub, "alice", "STUDENT")
	bob := connect(hub, "bob", "TEACHER")

	payload := map[string]any{"classId": "c1", "userId": "alice", "status": "CONFIRMED", "currentCount": float64(3)}
	hub.dispatch(alice, Envelope{Event: EventRSVPUpdate, Data: raw(t, payload)})

	for _, c := range []*Client{alice, bob} {
		msg := recv(t, c)
		require.Equal(t, EventRSVPUpdate, msg.Event)

		var got map[string]any
		require.NoError(t, json.Unmarshal(msg.Data.(json.RawMessage), &got))
		require.Equal(t, payload, got)
	}
}

func TestAnnouncementTargetsRoleRooms(t *testing.T) {
	hub := startHub(t)
	admin := connect(hub, "amy", "ADMIN")
	student := connect(hub, "sam", "STUDENT")
	teacher := connect(hub, "tia", "TEACHER")

	hub.dispatch(teacher, Envelope{Event: EventAnnouncement, Data: raw(t, map[string]any{
		"title":       "Staff meeting",
		"message":     "Green room, 5pm",
		"targetRoles": []string{"ADMIN"},
	})})

	msg := recv(t, admin)
	require.Equal(t, EventAnnouncement, msg.Event)
	requireSilent(t, student)
	requireSilent(t, teacher)
}

func TestAnnouncementWithoutTargetsReachesEveryone(t *testing.T) {
	hub := startHub(t)
	admin := connect(hub, "amy", "ADMIN")
	student := connect(hub, "sam", "STUDENT")

	hub.dispatch(admin, Envelope{Event: EventAnnouncement, Data: raw(t, map[string]any{
		"title":   "Schedule posted",
		"message": "See the dashboard",
		"urgent":  true,
	})})

	require.Equal(t, EventAnnouncement, recv(t, admin).Event)
	require.Equal(t, EventAnnouncement, recv(t, student).Event)
}

func TestAnnouncementDeduplicatesOverlappingRooms(t *testing.T) {
	hub := startHub(t)
	student := connect(hub, "sam", "STUDENT")
	sender := connect(hub, "amy", "ADMIN")

	// Both rooms name the same client once each; it must receive one copy.
	hub.dispatch(sender, Envelope{Event: EventAnnouncement, Data: raw(t, map[string]any{
		"title":       "Hi",
		"targetRoles": []string{"STUDENT", "student"},
	})})

	recv(t, student)
	requireSilent(t, student)
}

func TestUserStatusMergesIdentityAndExcludesSender(t *testing.T) {
	hub := startHub(t)
	alice := connect(hub, "alice", "STUDENT")
	bob := connect(hub, "bob", "STUDENT")

	hub.dispatch(alice, Envelope{Event: EventUserStatus, Data: raw(t, map[string]any{"mood": "ready"})})

	msg := recv(t, bob)
	require.Equal(t, EventUserStatus, msg.Event)
	data := msg.Data.(map[string]any)
	require.Equal(t, "alice", data["userId"])
	require.Equal(t, true, data["online"])
	require.Equal(t, "ready", data["mood"])

	requireSilent(t, alice)
}

func TestUserStatusRespectsExplicitOnlineFlag(t *testing.T) {
	hub := startHub(t)
	alice := connect(hub, "alice", "STUDENT")
	bob := connect(hub, "bob", "STUDENT")

	hub.dispatch(alice, Envelope{Event: EventUserStatus, Data: raw(t, map[string]any{"online": false})})

	data := recv(t, bob).Data.(map[string]any)
	require.Equal(t, false, data["online"])
}

func TestDisconnectBroadcastsOffline(t *testing.T) {
	hub := startHub(t)
	alice := connect(hub, "alice", "STUDENT")
	bob := connect(hub, "bob", "STUDENT")

	hub.unregister <- alice

	msg := recv(t, bob)
	require.Equal(t, EventUserStatus, msg.Event)
	data := msg.Data.(map[string]any)
	require.Equal(t, "alice", data["userId"])
	require.Equal(t, false, data["online"])

	// The departed client's channel is closed, no offline echo to itself.
	_, ok := <-alice.send
	require.False(t, ok)
}

func TestUnknownEventIsDropped(t *testing.T) {
	hub := startHub(t)
	alice := connect(hub, "alice", "STUDENT")
	bob := connect(hub, "bob", "STUDENT")

	hub.dispatch(alice, Envelope{Event: "made:up", Data: raw(t, map[string]any{})})
	requireSilent(t, alice)
	requireSilent(t, bob)
}
