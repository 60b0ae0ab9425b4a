package realtime

import (
	"context"
	"encoding/json"
	"strings"

	pkglog "github.com/chills-dance/camp-api/pkg/log"
)

// Hub owns the connection and room tables. All mutation happens on the Run
// goroutine; clients and handlers communicate with it exclusively through
// channels, so no table access is ever shared.
type Hub struct {
	log pkglog.Logger

	register   chan *Client
	unregister chan *Client
	broadcasts chan broadcast
}

// broadcast is one fan-out request. Nil rooms means every connection; a
// non-nil exclude skips the sender.
type broadcast struct {
	rooms   []string
	exclude *Client
	msg     Message
}

func NewHub(log pkglog.Logger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcasts: make(chan broadcast, 64),
	}
}

// RoleRoom returns the broadcast group for a role ("student", "admin", ...).
func RoleRoom(role string) string { return strings.ToLower(role) }

// UserRoom returns the identity-scoped broadcast group.
func UserRoom(userID string) string { return "user:" + userID }

// Run processes registrations, departures and broadcasts until ctx is
// cancelled. Exactly one Run goroutine may exist per Hub.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*Client]struct{})
	rooms := make(map[string]map[*Client]struct{})

	join := func(room string, c *Client) {
		if rooms[room] == nil {
			rooms[room] = make(map[*Client]struct{})
		}
		rooms[room][c] = struct{}{}
	}
	leave := func(room string, c *Client) {
		if members := rooms[room]; members != nil {
			delete(members, c)
			if len(members) == 0 {
				delete(rooms, room)
			}
		}
	}
	drop := func(c *Client) {
		if _, ok := clients[c]; !ok {
			return
		}
		delete(clients, c)
		leave(RoleRoom(c.Role), c)
		leave(UserRoom(c.UserID), c)
		close(c.send)
	}
	deliver := func(c *Client, msg Message) {
		select {
		case c.send <- msg:
		default:
			// Slow consumer: best-effort delivery means we drop the
			// connection rather than block the hub.
			h.log.Warn().Str("user_id", c.UserID).Msg("send buffer full, dropping connection")
			drop(c)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				drop(c)
			}
			return

		case c := <-h.register:
			clients[c] = struct{}{}
			join(RoleRoom(c.Role), c)
			join(UserRoom(c.UserID), c)
			h.log.Info().Str("user_id", c.UserID).Str("role", c.Role).Msg("realtime client connected")

		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				drop(c)
				h.log.Info().Str("user_id", c.UserID).Msg("realtime client disconnected")
				// Presence: tell everyone else this user went offline.
				offline := Message{Event: EventUserStatus, Data: map[string]any{"userId": c.UserID, "online": false}}
				for other := range clients {
					deliver(other, offline)
				}
			}

		case b := <-h.broadcasts:
			if b.rooms == nil {
				for c := range clients {
					if c == b.exclude {
						continue
					}
					deliver(c, b.msg)
				}
				continue
			}
			seen := make(map[*Client]struct{})
			for _, room := range b.rooms {
				for c := range rooms[room] {
					if c == b.exclude {
						continue
					}
					if _, dup := seen[c]; dup {
						continue
					}
					seen[c] = struct{}{}
					deliver(c, b.msg)
				}
			}
		}
	}
}

// Broadcast fans msg out to every connection.
func (h *Hub) Broadcast(msg Message) {
	h.broadcasts <- broadcast{msg: msg}
}

// BroadcastToRooms fans msg out to the named rooms, deduplicating clients in
// several of them.
func (h *Hub) BroadcastToRooms(rooms []string, msg Message) {
	h.broadcasts <- broadcast{rooms: rooms, msg: msg}
}

// dispatch routes one inbound client frame per the relay contract. Unknown
// events are dropped.
func (h *Hub) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventRSVPUpdate, EventClassUpdate:
		// Rebroadcast verbatim to everyone, sender included. The
		// authoritative state lives in the store; this layer only relays.
		h.broadcasts <- broadcast{msg: Message{Event: env.Event, Data: env.Data}}

	case EventAnnouncement:
		var target announcementTarget
		_ = json.Unmarshal(env.Data, &target)
		if len(target.TargetRoles) == 0 {
			h.broadcasts <- broadcast{msg: Message{Event: env.Event, Data: env.Data}}
			return
		}
		rooms := make([]string, 0, len(target.TargetRoles))
		for _, role := range target.TargetRoles {
			rooms = append(rooms, RoleRoom(role))
		}
		h.broadcasts <- broadcast{rooms: rooms, msg: Message{Event: env.Event, Data: env.Data}}

	case EventUserStatus:
		// Merge the sender's identity and default online=true, then relay to
		// everyone but the sender.
		data := map[string]any{}
		_ = json.Unmarshal(env.Data, &data)
		data["userId"] = c.UserID
		if _, ok := data["online"]; !ok {
			data["online"] = true
		}
		h.broadcasts <- broadcast{exclude: c, msg: Message{Event: env.Event, Data: data}}

	default:
		h.log.Debug().Str("event", env.Event).Str("user_id", c.UserID).Msg("unknown realtime event ignored")
	}
}
