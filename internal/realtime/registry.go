// Package realtime tracks live websocket connections per user and fans out
// server events to them.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
)

// Event is the wire envelope for every server -> client push.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one authenticated connection. Messages queued on Send are
// written by the connection's writer goroutine.
type Client struct {
	ID     string
	UserID uuid.UUID
	Role   models.Role

	send      chan []byte
	closeOnce sync.Once
}

const sendBuffer = 32

func NewClient(userID uuid.UUID, role models.Role) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   role,
		send:   make(chan []byte, sendBuffer),
	}
}

// Send is drained by the writer; it is closed once the client is unregistered.
func (c *Client) Send() <-chan []byte { return c.send }

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

func UserRoom(userID uuid.UUID) string { return "user:" + userID.String() }
func RoleRoom(role models.Role) string { return "role:" + string(role) }

// Registry maps user id -> live connections, plus named broadcast rooms.
// Its size is bounded by concurrently connected users.
type Registry struct {
	mu    sync.RWMutex
	users map[uuid.UUID]map[string]*Client
	rooms map[string]map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[uuid.UUID]map[string]*Client),
		rooms: make(map[string]map[string]*Client),
	}
}

func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.users[c.UserID]
	if !ok {
		set = make(map[string]*Client)
		r.users[c.UserID] = set
	}
	set[c.ID] = c

	r.join(UserRoom(c.UserID), c)
	r.join(RoleRoom(c.Role), c)
}

func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.users[c.UserID]; ok {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(r.users, c.UserID)
		}
	}
	r.leave(UserRoom(c.UserID), c)
	r.leave(RoleRoom(c.Role), c)
	c.close()
}

// IsOnline reports whether the user holds at least one live connection.
func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok
}

// OnlineUsers is the number of users with a live connection.
func (r *Registry) OnlineUsers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// OnlineInRole counts distinct users of a role with a live connection.
func (r *Registry) OnlineInRole(role models.Role) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[uuid.UUID]struct{})
	for _, c := range r.rooms[RoleRoom(role)] {
		seen[c.UserID] = struct{}{}
	}
	return len(seen)
}

// EmitToUser queues the event for every connection of the user and returns
// how many connections accepted it.
func (r *Registry) EmitToUser(userID uuid.UUID, event string, data interface{}) (int, error) {
	return r.emit(UserRoom(userID), event, data)
}

// Close unregisters every connection; used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.users {
		for _, c := range set {
			c.close()
		}
	}
	r.users = make(map[uuid.UUID]map[string]*Client)
	r.rooms = make(map[string]map[string]*Client)
}

func (r *Registry) emit(room, event string, data interface{}) (int, error) {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, c := range r.rooms[room] {
		select {
		case c.send <- payload:
			delivered++
		default:
			slog.Warn("realtime send queue full, dropping event",
				"user_id", c.UserID.String(), "conn_id", c.ID, "event", event)
		}
	}
	return delivered, nil
}

// join and leave expect r.mu to be held.
func (r *Registry) join(room string, c *Client) {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		r.rooms[room] = members
	}
	members[c.ID] = c
}

func (r *Registry) leave(room string, c *Client) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, c.ID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}
