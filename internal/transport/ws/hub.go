package ws

import (
	"arcadechat/internal/registry"
	"encoding/json"
	"log"
	"sync"
)

// MessageType names an action or event on the wire
type MessageType string

// Inbound actions
const (
	ActionRegister       MessageType = "register"
	ActionEnterRoom      MessageType = "enterRoom"
	ActionEnterGame      MessageType = "enterGame"
	ActionTypingStarted  MessageType = "typingStarted"
	ActionTypingStopped  MessageType = "typingStopped"
	ActionChatMessage    MessageType = "chatMessageSent"
	ActionJoinMatch      MessageType = "joinMatch"
	ActionSubmitMove     MessageType = "submitMove"
	ActionStartCountdown MessageType = "startLobbyCountdown"
	ActionRaceProgress   MessageType = "raceProgress"
)

// Outbound events
const (
	MsgRegistered   MessageType = "registered"
	MsgChatMessage  MessageType = "chatMessage"
	MsgMatchJoined  MessageType = "matchJoined"
	MsgMovePlayed   MessageType = "movePlayed"
	MsgGameWon      MessageType = "gameWon"
	MsgGameDraw     MessageType = "gameDraw"
	MsgUserLeft     MessageType = "userLeft"
	MsgSessionEnded MessageType = "sessionEnded"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type groupKey struct {
	kind registry.RoomKind
	room string
}

// member is one connection's seat in a room group, with the name it joined
// under. The name lets a broadcast exclude an author across all of their
// connections, not just the one that sent the message.
type member struct {
	conn *Connection
	name string
}

// Hub manages WebSocket connections and their room groups. Every outbound
// event funnels through one broadcast channel drained by a single goroutine,
// so events addressed to a room are delivered in the order they were
// enqueued. submitMove relies on this: the move notice is enqueued before the
// win or draw notice.
type Hub struct {
	conns    map[string]*Connection
	groups   map[groupKey]map[string]member
	memberOf map[string]groupKey

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	ID       string
	PlayerID string // Empty for anonymous connections
	Nickname string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message plus its delivery scope: one connection, a
// room group, or everyone but the sender.
type BroadcastMessage struct {
	Kind       registry.RoomKind
	RoomID     string
	ToConn     string // deliver to this connection only
	Except     string // excluded connection id
	ExceptName string // excluded member name, all of that member's connections
	Global     bool   // all connections (minus Except)
	Message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		groups:     make(map[groupKey]map[string]member),
		memberOf:   make(map[string]groupKey),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn.ID] = conn
			h.mu.Unlock()
			log.Printf("connection %s registered", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.ID]; ok && existing == conn {
				h.leaveGroupLocked(conn)
				delete(h.conns, conn.ID)
				close(conn.Send)
				log.Printf("connection %s unregistered", conn.ID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			switch {
			case msg.ToConn != "":
				if conn, ok := h.conns[msg.ToConn]; ok {
					h.deliver(conn, data)
				}
			case msg.Global:
				for id, conn := range h.conns {
					if id == msg.Except {
						continue
					}
					h.deliver(conn, data)
				}
			default:
				if members, ok := h.groups[groupKey{msg.Kind, msg.RoomID}]; ok {
					for id, m := range members {
						if id == msg.Except {
							continue
						}
						if msg.ExceptName != "" && m.name == msg.ExceptName {
							continue
						}
						h.deliver(m.conn, data)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) deliver(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		// Drop message if buffer full
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// JoinGroup binds the connection to a room group under the given member name,
// leaving any previous group.
func (h *Hub) JoinGroup(conn *Connection, kind registry.RoomKind, roomID, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveGroupLocked(conn)

	key := groupKey{kind, roomID}
	if h.groups[key] == nil {
		h.groups[key] = make(map[string]member)
	}
	h.groups[key][conn.ID] = member{conn: conn, name: name}
	h.memberOf[conn.ID] = key
}

// LeaveGroup removes the connection from its current room group.
func (h *Hub) LeaveGroup(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveGroupLocked(conn)
}

func (h *Hub) leaveGroupLocked(conn *Connection) {
	key, ok := h.memberOf[conn.ID]
	if !ok {
		return
	}
	delete(h.memberOf, conn.ID)
	if members, ok := h.groups[key]; ok {
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.groups, key)
		}
	}
}

// SendToConn sends a message to a single connection
func (h *Hub) SendToConn(connID string, msgType MessageType, payload interface{}) {
	h.enqueue(&BroadcastMessage{ToConn: connID, Message: envelope(msgType, payload)})
}

// BroadcastToRoom sends a message to every connection in a room group
func (h *Hub) BroadcastToRoom(kind registry.RoomKind, roomID string, msgType MessageType, payload interface{}) {
	h.enqueue(&BroadcastMessage{Kind: kind, RoomID: roomID, Message: envelope(msgType, payload)})
}

// BroadcastToRoomExcept sends a message to a room group, skipping one connection
func (h *Hub) BroadcastToRoomExcept(kind registry.RoomKind, roomID, exceptConnID string, msgType MessageType, payload interface{}) {
	h.enqueue(&BroadcastMessage{Kind: kind, RoomID: roomID, Except: exceptConnID, Message: envelope(msgType, payload)})
}

// BroadcastToRoomExceptUser sends a message to a room group, skipping the
// named member on every connection they hold there.
func (h *Hub) BroadcastToRoomExceptUser(kind registry.RoomKind, roomID, exceptConnID, exceptName string, msgType MessageType, payload interface{}) {
	h.enqueue(&BroadcastMessage{Kind: kind, RoomID: roomID, Except: exceptConnID, ExceptName: exceptName, Message: envelope(msgType, payload)})
}

// BroadcastToAllExcept sends a message to every connection but the sender
func (h *Hub) BroadcastToAllExcept(exceptConnID string, msgType MessageType, payload interface{}) {
	h.enqueue(&BroadcastMessage{Global: true, Except: exceptConnID, Message: envelope(msgType, payload)})
}

// BroadcastToGame sends a message to a game room (implements race.Broadcaster)
func (h *Hub) BroadcastToGame(gameID string, msgType string, payload interface{}) {
	h.BroadcastToRoom(registry.KindGame, gameID, MessageType(msgType), payload)
}

func (h *Hub) enqueue(msg *BroadcastMessage) {
	h.broadcast <- msg
}

func envelope(msgType MessageType, payload interface{}) *Message {
	data, _ := json.Marshal(payload)
	return &Message{
		Type:    msgType,
		Payload: data,
	}
}
