// Package realtime is the WebSocket gateway: connections authenticate during
// the handshake with an access token, join a role room and an identity room,
// and exchange fire-and-forget events. Delivery is best-effort while
// connected; no ordering is guaranteed across clients.
package realtime

import "encoding/json"

// Event names exchanged with clients.
const (
	EventRSVPUpdate   = "rsvp:update"
	EventClassUpdate  = "class:update"
	EventAnnouncement = "announcement"
	EventUserStatus   = "user:status"
)

// Envelope is the wire frame: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Message is an outbound frame with an already-materialized payload.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// announcementTarget is the slice of an announcement payload the gateway
// inspects for routing; the payload itself is relayed verbatim.
type announcementTarget struct {
	TargetRoles []string `json:"targetRoles"`
}
