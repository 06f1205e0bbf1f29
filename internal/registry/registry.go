package registry

import "sync"

// RoomKind separates the two group namespaces that share the websocket
// transport: chat conversations and game rooms. A room id is only meaningful
// within its kind.
type RoomKind string

const (
	KindChat RoomKind = "chat"
	KindGame RoomKind = "game"
)

// RoomUser is one live connection's room membership.
type RoomUser struct {
	ConnID   string
	RoomID   string
	Nickname string
	Kind     RoomKind
}

type roomKey struct {
	kind RoomKind
	room string
}

// Registry tracks which room each connection occupies, with a reverse map
// from rooms to members. Pure in-memory bookkeeping, no I/O.
type Registry struct {
	mu      sync.RWMutex
	users   map[string]RoomUser
	members map[roomKey]map[string]struct{}
}

func New() *Registry {
	return &Registry{
		users:   make(map[string]RoomUser),
		members: make(map[roomKey]map[string]struct{}),
	}
}

// Join registers the connection under the room. A connection that was already
// in a room is moved; it never holds two memberships at once.
func (r *Registry) Join(connID, roomID, nickname string, kind RoomKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.users[connID]; ok {
		r.removeMember(prev)
	}

	user := RoomUser{ConnID: connID, RoomID: roomID, Nickname: nickname, Kind: kind}
	r.users[connID] = user

	key := roomKey{kind, roomID}
	if r.members[key] == nil {
		r.members[key] = make(map[string]struct{})
	}
	r.members[key][connID] = struct{}{}
}

// Leave removes the connection's entry and returns the membership it held.
// Idempotent: a second call for the same connection reports false.
func (r *Registry) Leave(connID string) (RoomUser, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[connID]
	if !ok {
		return RoomUser{}, false
	}
	delete(r.users, connID)
	r.removeMember(user)
	return user, true
}

// Lookup returns the connection's current membership.
func (r *Registry) Lookup(connID string) (RoomUser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[connID]
	return user, ok
}

// MemberCount returns how many connections are registered under the room.
func (r *Registry) MemberCount(kind RoomKind, roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[roomKey{kind, roomID}])
}

// removeMember drops the reverse-map entry, deleting the room set once empty.
// Caller holds the lock.
func (r *Registry) removeMember(user RoomUser) {
	key := roomKey{user.Kind, user.RoomID}
	if set, ok := r.members[key]; ok {
		delete(set, user.ConnID)
		if len(set) == 0 {
			delete(r.members, key)
		}
	}
}
