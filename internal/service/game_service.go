package service

import (
	"arcadechat/internal/model"
	"arcadechat/internal/repository"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameClosed     = errors.New("game is no longer open for joining")
	ErrPlayerNotFound = errors.New("player not in game")
)

var raceWords = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
	"pack", "my", "box", "with", "five", "dozen", "liquor", "jugs",
	"how", "vexingly", "daft", "zebras", "jump", "bright", "vixens",
	"waltz", "nymph", "for", "quartz", "sphinx", "of", "black",
}

const wordsPerRace = 20

// GameService owns the typing-race document lifecycle: create, join while
// open, and per-player progress updates. Countdown phase transitions belong
// to race.Scheduler.
type GameService struct {
	games repository.GameRepo
	auth  *AuthService
}

// NewGameService creates a new game service
func NewGameService(games repository.GameRepo, auth *AuthService) *GameService {
	return &GameService{
		games: games,
		auth:  auth,
	}
}

// JoinResult is returned when a player creates or joins a game.
type JoinResult struct {
	Game     *model.Game `json:"game"`
	PlayerID string      `json:"playerId"`
	Token    string      `json:"token"`
}

// CreateGame creates an open game with the caller as party leader.
func (s *GameService) CreateGame(ctx context.Context, nickname string) (*JoinResult, error) {
	playerID := uuid.New().String()
	game := &model.Game{
		ID:     uuid.New().String(),
		Words:  pickWords(wordsPerRace),
		IsOpen: true,
		Players: []model.Player{
			{ID: playerID, Nickname: nickname, IsPartyLeader: true},
		},
		CreatedAt: time.Now(),
	}

	if err := s.games.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	token, err := s.auth.GenerateGuestToken(playerID, nickname)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &JoinResult{Game: game, PlayerID: playerID, Token: token}, nil
}

// JoinGame adds a player to an open game.
func (s *GameService) JoinGame(ctx context.Context, gameID, nickname string) (*JoinResult, error) {
	game, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if !game.IsOpen {
		return nil, ErrGameClosed
	}

	playerID := uuid.New().String()
	game.Players = append(game.Players, model.Player{ID: playerID, Nickname: nickname})

	if err := s.games.Save(ctx, game); err != nil {
		return nil, fmt.Errorf("save game %s: %w", gameID, err)
	}

	token, err := s.auth.GenerateGuestToken(playerID, nickname)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &JoinResult{Game: game, PlayerID: playerID, Token: token}, nil
}

// GetGame retrieves a game by id, nil when absent.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	return s.games.FindByID(ctx, gameID)
}

// RecordProgress updates one player's word index and wpm and returns the
// fresh snapshot.
func (s *GameService) RecordProgress(ctx context.Context, gameID, playerID string, wordIndex int, wpm float64) (*model.Game, error) {
	game, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	player := game.FindPlayer(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	player.CurrentWordIndex = wordIndex
	player.WPM = wpm

	if err := s.games.Save(ctx, game); err != nil {
		return nil, fmt.Errorf("save game %s: %w", gameID, err)
	}
	return game, nil
}

func pickWords(n int) []string {
	picked := make([]string, n)
	for i := range picked {
		picked[i] = raceWords[rand.Intn(len(raceWords))]
	}
	return picked
}
