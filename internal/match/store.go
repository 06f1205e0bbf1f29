package match

import (
	"errors"
	"sync"
)

var (
	ErrRoomNotFound    = errors.New("match room not found")
	ErrRoomFull        = errors.New("match room already has two players")
	ErrPlayerNotInRoom = errors.New("player holds no slot in this room")
	ErrGameOver        = errors.New("game is already over")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidMove     = errors.New("move index out of range")
)

// Phase is the per-room state machine. Once a room reaches Won or Drawn no
// further moves are accepted.
type Phase string

const (
	PhaseEmpty    Phase = "empty"
	PhaseOneBound Phase = "one_bound"
	PhaseTwoBound Phase = "two_bound"
	PhaseWon      Phase = "won"
	PhaseDrawn    Phase = "drawn"
)

const boardCells = 9

// Slot is one of the two fixed player positions in a room.
type Slot struct {
	PlayerID string
	Nickname string
	Moves    []int
}

type room struct {
	slots [2]*Slot
	phase Phase
}

// Store holds the in-memory state of every live grid-game room. Rooms are
// created implicitly on first bind and evicted when the last registered
// participant leaves, so the map never outgrows the set of active matches.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*room)}
}

// BindPlayer assigns the player to the first free slot, creating the room if
// it does not exist. Rebinding an already-seated player is a no-op. A third
// distinct player is rejected with ErrRoomFull.
func (s *Store) BindPlayer(roomID, playerID, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.rooms[roomID]
	if rm == nil {
		rm = &room{phase: PhaseEmpty}
		s.rooms[roomID] = rm
	}

	if rm.slot(playerID) != nil {
		return nil
	}
	for i, slot := range rm.slots {
		if slot == nil {
			rm.slots[i] = &Slot{PlayerID: playerID, Nickname: nickname}
			if i == 0 {
				rm.phase = PhaseOneBound
			} else {
				rm.phase = PhaseTwoBound
			}
			return nil
		}
	}
	return ErrRoomFull
}

// Outcome is what a recorded move did to the game.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeDraw
)

// MoveResult reports how a move resolved. WinningLine is meaningful only when
// Outcome is OutcomeWin.
type MoveResult struct {
	Outcome     Outcome
	WinningLine [3]int
}

// RecordMove appends the move to the player's slot and resolves the game in
// the same critical section: a move that completes a line transitions the room
// to Won, a move that fills the board without winning transitions it to Drawn.
// Two racing end-of-game moves therefore serialize here, and exactly one of
// them gets a terminal outcome; the other sees ErrGameOver. The same cell
// cannot be taken twice, and a finished room rejects all moves.
func (s *Store) RecordMove(roomID, playerID string, move int) (MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.rooms[roomID]
	if rm == nil {
		return MoveResult{}, ErrRoomNotFound
	}
	if rm.phase == PhaseWon || rm.phase == PhaseDrawn {
		return MoveResult{}, ErrGameOver
	}
	if move < 0 || move >= boardCells {
		return MoveResult{}, ErrInvalidMove
	}
	slot := rm.slot(playerID)
	if slot == nil {
		return MoveResult{}, ErrPlayerNotInRoom
	}
	total := 0
	for _, other := range rm.slots {
		if other == nil {
			continue
		}
		total += len(other.Moves)
		for _, m := range other.Moves {
			if m == move {
				return MoveResult{}, ErrCellOccupied
			}
		}
	}
	slot.Moves = append(slot.Moves, move)

	if line, won := Evaluate(slot.Moves); won {
		rm.phase = PhaseWon
		return MoveResult{Outcome: OutcomeWin, WinningLine: line}, nil
	}
	if total+1 == boardCells {
		rm.phase = PhaseDrawn
		return MoveResult{Outcome: OutcomeDraw}, nil
	}
	return MoveResult{}, nil
}

// PlayerMoves returns a copy of the player's recorded moves, in play order.
func (s *Store) PlayerMoves(roomID, playerID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.rooms[roomID]
	if rm == nil {
		return nil, ErrRoomNotFound
	}
	slot := rm.slot(playerID)
	if slot == nil {
		return nil, ErrPlayerNotInRoom
	}
	moves := make([]int, len(slot.Moves))
	copy(moves, slot.Moves)
	return moves, nil
}

// TotalMoves is the sum of both slots' move counts. The board is full at 9.
func (s *Store) TotalMoves(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.rooms[roomID]
	if rm == nil {
		return 0
	}
	total := 0
	for _, slot := range rm.slots {
		if slot != nil {
			total += len(slot.Moves)
		}
	}
	return total
}

// RoomPhase returns the room's current phase.
func (s *Store) RoomPhase(roomID string) (Phase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return "", false
	}
	return rm.phase, true
}

// Evict drops the room's state. Called when the last participant leaves.
func (s *Store) Evict(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

func (r *room) slot(playerID string) *Slot {
	for _, slot := range r.slots {
		if slot != nil && slot.PlayerID == playerID {
			return slot
		}
	}
	return nil
}
