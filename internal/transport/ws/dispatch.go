package ws

import (
	"arcadechat/internal/match"
	"arcadechat/internal/race"
	"arcadechat/internal/registry"
	"arcadechat/internal/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// Inbound payload shapes.

type enterRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type enterGamePayload struct {
	GameID string `json:"gameId"`
}

type typingPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type chatPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

type joinMatchPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type submitMovePayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Move   int    `json:"move"`
}

type startCountdownPayload struct {
	PlayerID string `json:"playerId"`
	GameID   string `json:"gameId"`
}

type raceProgressPayload struct {
	GameID    string  `json:"gameId"`
	PlayerID  string  `json:"playerId"`
	WordIndex int     `json:"wordIndex"`
	WPM       float64 `json:"wpm"`
}

// Outbound payload shapes.

type registeredPayload struct {
	ConnectionID string `json:"connectionId"`
}

type matchJoinedPayload struct {
	Message string `json:"message"`
}

type movePlayedPayload struct {
	Move   int    `json:"move"`
	UserID string `json:"userId"`
}

type gameWonPayload struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	WinningPattern []int  `json:"winningPattern"`
}

type gameDrawPayload struct {
	RoomID string `json:"roomId"`
}

type userLeftPayload struct {
	RoomID string `json:"roomId"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// dispatch routes one inbound action. Every failure is confined here: a bad
// action gets an error payload on the sending connection and nothing else.
func (h *Handler) dispatch(conn *Connection, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic handling action from %s: %v", conn.ID, r)
			h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: "internal error"})
		}
	}()

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: "malformed message"})
		return
	}

	switch msg.Type {
	case ActionRegister:
		h.hub.SendToConn(conn.ID, MsgRegistered, registeredPayload{ConnectionID: conn.ID})

	case ActionEnterRoom:
		var p enterRoomPayload
		if !h.decode(conn, msg.Payload, &p) {
			return
		}
		h.reg.Join(conn.ID, p.RoomID, p.Username, registry.KindChat)
		h.hub.JoinGroup(conn, registry.KindChat, p.RoomID, p.Username)

	case ActionEnterGame:
		var p enterGamePayload
		if !h.decode(conn, msg.Payload, &p) {
			return
		}
		h.reg.Join(conn.ID, p.GameID, conn.Nickname, registry.KindGame)
		h.hub.JoinGroup(conn, registry.KindGame, p.GameID, conn.Nickname)

	case ActionTypingStarted, ActionTypingStopped:
		var p typingPayload
		if !h.decode(conn, msg.Payload, &p) {
			return
		}
		h.hub.BroadcastToRoomExcept(registry.KindChat, p.RoomID, conn.ID, msg.Type, p)

	case ActionChatMessage:
		var p chatPayload
		if !h.decode(conn, msg.Payload, &p) {
			return
		}
		// Exclude the author everywhere, not just the sending connection;
		// an author with a second connection in the room hears nothing.
		h.hub.BroadcastToRoomExceptUser(registry.KindChat, p.RoomID, conn.ID, p.Username, MsgChatMessage, p)

	case ActionJoinMatch:
		h.handleJoinMatch(conn, msg.Payload)

	case ActionSubmitMove:
		h.handleSubmitMove(conn, msg.Payload)

	case ActionStartCountdown:
		h.handleStartCountdown(conn, msg.Payload)

	case ActionRaceProgress:
		h.handleRaceProgress(conn, msg.Payload)

	default:
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: fmt.Sprintf("unknown action %q", msg.Type)})
	}
}

func (h *Handler) handleJoinMatch(conn *Connection, payload json.RawMessage) {
	var p joinMatchPayload
	if !h.decode(conn, payload, &p) {
		return
	}

	if err := h.matches.BindPlayer(p.RoomID, p.UserID, p.Username); err != nil {
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: err.Error()})
		return
	}

	h.reg.Join(conn.ID, p.RoomID, p.Username, registry.KindGame)
	h.hub.JoinGroup(conn, registry.KindGame, p.RoomID, p.Username)
	h.hub.SendToConn(conn.ID, MsgMatchJoined, matchJoinedPayload{
		Message: fmt.Sprintf("Welcome to tic-tac-toe, %s", p.Username),
	})
}

func (h *Handler) handleSubmitMove(conn *Connection, payload json.RawMessage) {
	var p submitMovePayload
	if !h.decode(conn, payload, &p) {
		return
	}

	// The store records the move and decides win/draw in one critical
	// section; racing end-of-game moves serialize there.
	res, err := h.matches.RecordMove(p.RoomID, p.UserID, p.Move)
	if err != nil {
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: err.Error()})
		return
	}

	// Protocol guarantee: the move lands in every client before any
	// end-of-game notice. Both go through the hub's single broadcast
	// channel, so enqueue order is delivery order.
	h.hub.BroadcastToRoom(registry.KindGame, p.RoomID, MsgMovePlayed, movePlayedPayload{
		Move:   p.Move,
		UserID: p.UserID,
	})

	switch res.Outcome {
	case match.OutcomeWin:
		username := p.UserID
		if ru, ok := h.reg.Lookup(conn.ID); ok {
			username = ru.Nickname
		}
		h.hub.BroadcastToRoom(registry.KindGame, p.RoomID, MsgGameWon, gameWonPayload{
			UserID:         p.UserID,
			Username:       username,
			WinningPattern: res.WinningLine[:],
		})
	case match.OutcomeDraw:
		h.hub.BroadcastToRoom(registry.KindGame, p.RoomID, MsgGameDraw, gameDrawPayload{RoomID: p.RoomID})
	}
}

func (h *Handler) handleStartCountdown(conn *Connection, payload json.RawMessage) {
	var p startCountdownPayload
	if !h.decode(conn, payload, &p) {
		return
	}

	err := h.sched.StartLobby(context.Background(), p.GameID, p.PlayerID)
	switch {
	case err == nil:
	case errors.Is(err, race.ErrNotAuthorized), errors.Is(err, race.ErrCountdownRunning):
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: err.Error()})
	default:
		log.Printf("start lobby countdown for game %s: %v", p.GameID, err)
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: "could not start countdown"})
	}
}

func (h *Handler) handleRaceProgress(conn *Connection, payload json.RawMessage) {
	var p raceProgressPayload
	if !h.decode(conn, payload, &p) {
		return
	}

	game, err := h.gameSvc.RecordProgress(context.Background(), p.GameID, p.PlayerID, p.WordIndex, p.WPM)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) || errors.Is(err, service.ErrPlayerNotFound) {
			h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: err.Error()})
			return
		}
		log.Printf("record progress for game %s: %v", p.GameID, err)
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: "could not record progress"})
		return
	}

	h.hub.BroadcastToRoom(registry.KindGame, p.GameID, MessageType(race.MsgGameUpdate), race.GameUpdate{Game: game})
}

// handleDisconnect evicts the connection from its room and tells everyone.
// Runs exactly once per connection, from the read pump's defer.
func (h *Handler) handleDisconnect(conn *Connection) {
	if ru, ok := h.reg.Leave(conn.ID); ok {
		h.hub.LeaveGroup(conn)
		h.hub.BroadcastToRoomExcept(ru.Kind, ru.RoomID, conn.ID, MsgUserLeft, userLeftPayload{RoomID: ru.RoomID})

		// Last one out drops the room's in-memory state.
		if ru.Kind == registry.KindGame && h.reg.MemberCount(registry.KindGame, ru.RoomID) == 0 {
			h.matches.Evict(ru.RoomID)
			h.sched.Cancel(ru.RoomID)
		}
	}
	h.hub.BroadcastToAllExcept(conn.ID, MsgSessionEnded, struct{}{})
}

func (h *Handler) decode(conn *Connection, payload json.RawMessage, out interface{}) bool {
	if err := json.Unmarshal(payload, out); err != nil {
		h.hub.SendToConn(conn.ID, MsgError, errorPayload{Error: "malformed payload"})
		return false
	}
	return true
}
