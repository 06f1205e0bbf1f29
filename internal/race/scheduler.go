package race

import (
	"arcadechat/internal/cache"
	"arcadechat/internal/model"
	"arcadechat/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	ErrNotAuthorized    = errors.New("only the party leader may start the countdown")
	ErrCountdownRunning = errors.New("a countdown is already running for this game")
)

const (
	lobbySeconds = 5
	raceSeconds  = 120
)

// Scheduler message types
const (
	MsgLobbyCountdown = "lobbyCountdown"
	MsgRaceTimer      = "raceTimer"
	MsgGameUpdate     = "gameUpdate"
	MsgGameError      = "gameError"
)

// Broadcaster fans scheduler events out to every connection in a game's room
// (implemented by the websocket hub).
type Broadcaster interface {
	BroadcastToGame(gameID string, msgType string, payload interface{})
}

// LobbyTick is broadcast once per second while the lobby counts down.
type LobbyTick struct {
	CountDown int    `json:"countDown"`
	Message   string `json:"message"`
}

// RaceTick is broadcast once per second while the race runs.
type RaceTick struct {
	TimeRemaining string `json:"timeRemaining"`
	Message       string `json:"message"`
}

// GameUpdate carries a snapshot of the game document.
type GameUpdate struct {
	Game *model.Game `json:"game"`
}

// GameError is a fatal-for-this-game notice; the countdown that hit it is
// already stopped.
type GameError struct {
	GameID string `json:"gameId"`
	Error  string `json:"error"`
}

// Scheduler drives the two countdown phases of a typing race: the 5-second
// lobby countdown and the 120-second race countdown. At most one countdown is
// active per game id; starts are start-if-absent and every countdown is
// cancellable.
type Scheduler struct {
	games    repository.GameRepo
	results  cache.ResultCache
	interval time.Duration
	bc       Broadcaster

	mu     sync.Mutex
	active map[string]*countdown
}

type countdown struct {
	cancel    chan struct{}
	closeOnce sync.Once
}

func (c *countdown) stop() {
	c.closeOnce.Do(func() { close(c.cancel) })
}

func (c *countdown) cancelled() bool {
	select {
	case <-c.cancel:
		return true
	default:
		return false
	}
}

// NewScheduler creates a scheduler. interval is how long one tick lasts;
// production passes one second, tests shrink it.
func NewScheduler(games repository.GameRepo, results cache.ResultCache, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		games:    games,
		results:  results,
		interval: interval,
		active:   make(map[string]*countdown),
	}
}

// SetBroadcaster injects the outbound fan-out (the ws hub implements Broadcaster)
func (s *Scheduler) SetBroadcaster(bc Broadcaster) {
	s.bc = bc
}

// StartLobby begins the lobby countdown for a game. Only the party leader may
// start it. If the game or player cannot be found, a single zero-count notice
// is broadcast and no timer starts.
func (s *Scheduler) StartLobby(ctx context.Context, gameID, playerID string) error {
	game, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("load game %s: %w", gameID, err)
	}
	if game == nil {
		s.broadcastStillborn(gameID, nil, "game not found")
		return nil
	}
	player := game.FindPlayer(playerID)
	if player == nil {
		s.broadcastStillborn(gameID, game, "player not found")
		return nil
	}
	if !player.IsPartyLeader {
		return ErrNotAuthorized
	}

	s.mu.Lock()
	if _, ok := s.active[gameID]; ok {
		s.mu.Unlock()
		return ErrCountdownRunning
	}
	cd := &countdown{cancel: make(chan struct{})}
	s.active[gameID] = cd
	s.mu.Unlock()

	go s.runLobby(gameID, cd)
	return nil
}

// Cancel stops whatever countdown is running for the game.
func (s *Scheduler) Cancel(gameID string) {
	s.mu.Lock()
	cd, ok := s.active[gameID]
	if ok {
		delete(s.active, gameID)
	}
	s.mu.Unlock()
	if ok {
		cd.stop()
	}
}

// Active reports whether a countdown is running for the game.
func (s *Scheduler) Active(gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[gameID]
	return ok
}

// Shutdown cancels every running countdown.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	cds := make([]*countdown, 0, len(s.active))
	for id, cd := range s.active {
		cds = append(cds, cd)
		delete(s.active, id)
	}
	s.mu.Unlock()
	for _, cd := range cds {
		cd.stop()
	}
}

func (s *Scheduler) runLobby(gameID string, cd *countdown) {
	ctx := context.Background()
	count := lobbySeconds
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cd.cancel:
			return
		case <-ticker.C:
			if count >= 0 {
				game, err := s.games.FindByID(ctx, gameID)
				if err != nil {
					s.abort(gameID, cd, fmt.Errorf("load game: %w", err))
					return
				}
				if game == nil {
					s.abort(gameID, cd, fmt.Errorf("game %s vanished mid-countdown", gameID))
					return
				}
				// The load suspends us; a cancel may have landed meanwhile.
				if cd.cancelled() {
					return
				}
				s.bc.BroadcastToGame(gameID, MsgLobbyCountdown, LobbyTick{CountDown: count, Message: "race starting in"})
				s.bc.BroadcastToGame(gameID, MsgGameUpdate, GameUpdate{Game: game})
				count--
				continue
			}

			// Terminal tick: close the lobby and hand off to the race.
			game, err := s.games.FindByID(ctx, gameID)
			if err != nil {
				s.abort(gameID, cd, fmt.Errorf("load game: %w", err))
				return
			}
			if game == nil {
				s.abort(gameID, cd, fmt.Errorf("game %s vanished mid-countdown", gameID))
				return
			}
			game.IsOpen = false
			if err := s.games.Save(ctx, game); err != nil {
				s.abort(gameID, cd, fmt.Errorf("save game: %w", err))
				return
			}
			if cd.cancelled() {
				return
			}
			s.bc.BroadcastToGame(gameID, MsgGameUpdate, GameUpdate{Game: game})
			s.handoff(gameID, cd)
			return
		}
	}
}

// handoff swaps the lobby countdown for the race countdown, keeping the
// one-countdown-per-game invariant. A cancel that raced in wins.
func (s *Scheduler) handoff(gameID string, prev *countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[gameID] != prev {
		return
	}
	next := &countdown{cancel: make(chan struct{})}
	s.active[gameID] = next
	go s.runRace(gameID, next)
}

func (s *Scheduler) runRace(gameID string, cd *countdown) {
	ctx := context.Background()

	game, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		s.abort(gameID, cd, fmt.Errorf("load game: %w", err))
		return
	}
	if game == nil {
		s.abort(gameID, cd, fmt.Errorf("game %s vanished before race start", gameID))
		return
	}
	game.StartTime = time.Now().Unix()
	if err := s.games.Save(ctx, game); err != nil {
		s.abort(gameID, cd, fmt.Errorf("save game: %w", err))
		return
	}
	if cd.cancelled() {
		return
	}

	count := raceSeconds
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cd.cancel:
			return
		case <-ticker.C:
			if count >= 0 {
				s.bc.BroadcastToGame(gameID, MsgRaceTimer, RaceTick{TimeRemaining: formatSeconds(count), Message: "time remaining"})
				count--
				continue
			}

			game, err := s.games.FindByID(ctx, gameID)
			if err != nil {
				s.abort(gameID, cd, fmt.Errorf("load game: %w", err))
				return
			}
			if game == nil {
				s.abort(gameID, cd, fmt.Errorf("game %s vanished mid-race", gameID))
				return
			}
			game.IsOver = true
			if err := s.games.Save(ctx, game); err != nil {
				s.abort(gameID, cd, fmt.Errorf("save game: %w", err))
				return
			}
			if cd.cancelled() {
				return
			}
			s.bc.BroadcastToGame(gameID, MsgGameUpdate, GameUpdate{Game: game})
			s.recordResults(ctx, game)
			s.finish(gameID, cd)
			return
		}
	}
}

// abort stops the countdown after a persistence failure and tells the room.
// The process keeps serving every other game.
func (s *Scheduler) abort(gameID string, cd *countdown, err error) {
	log.Printf("countdown for game %s stopped: %v", gameID, err)
	s.finish(gameID, cd)
	s.bc.BroadcastToGame(gameID, MsgGameError, GameError{GameID: gameID, Error: err.Error()})
}

func (s *Scheduler) finish(gameID string, cd *countdown) {
	s.mu.Lock()
	if s.active[gameID] == cd {
		delete(s.active, gameID)
	}
	s.mu.Unlock()
	cd.stop()
}

func (s *Scheduler) broadcastStillborn(gameID string, game *model.Game, note string) {
	s.bc.BroadcastToGame(gameID, MsgLobbyCountdown, LobbyTick{CountDown: 0, Message: note})
	s.bc.BroadcastToGame(gameID, MsgGameUpdate, GameUpdate{Game: game})
}

func (s *Scheduler) recordResults(ctx context.Context, game *model.Game) {
	for _, p := range game.Players {
		if err := s.results.RecordResult(ctx, game.ID, p.ID, p.WPM); err != nil {
			log.Printf("record result for %s in game %s: %v", p.ID, game.ID, err)
		}
	}
}

func formatSeconds(total int) string {
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
