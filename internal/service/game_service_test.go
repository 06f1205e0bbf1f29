package service_test

import (
	"context"
	"sync"
	"testing"

	"arcadechat/internal/model"
	"arcadechat/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[string]*model.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*model.Game)}
}

func (f *fakeGameRepo) Create(ctx context.Context, game *model.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[game.ID] = game
	return nil
}

func (f *fakeGameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return nil, nil
	}
	cp := *game
	cp.Players = append([]model.Player(nil), game.Players...)
	return &cp, nil
}

func (f *fakeGameRepo) Save(ctx context.Context, game *model.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[game.ID] = game
	return nil
}

func newGameService() (*service.GameService, *fakeGameRepo) {
	repo := newFakeGameRepo()
	return service.NewGameService(repo, service.NewAuthService("test-secret")), repo
}

func TestGameService_CreateGame(t *testing.T) {
	svc, _ := newGameService()

	result, err := svc.CreateGame(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, result.Game)

	assert.NotEmpty(t, result.Game.ID)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.Game.IsOpen)
	assert.False(t, result.Game.IsOver)
	assert.NotEmpty(t, result.Game.Words)

	require.Len(t, result.Game.Players, 1)
	creator := result.Game.Players[0]
	assert.Equal(t, result.PlayerID, creator.ID)
	assert.Equal(t, "alice", creator.Nickname)
	assert.True(t, creator.IsPartyLeader, "creator is the party leader")
}

func TestGameService_JoinGame(t *testing.T) {
	svc, _ := newGameService()

	created, err := svc.CreateGame(context.Background(), "alice")
	require.NoError(t, err)
	gameID := created.Game.ID

	joined, err := svc.JoinGame(context.Background(), gameID, "bob")
	require.NoError(t, err)
	require.Len(t, joined.Game.Players, 2)
	assert.False(t, joined.Game.Players[1].IsPartyLeader, "joiners are not leaders")
	assert.NotEqual(t, created.PlayerID, joined.PlayerID)
}

func TestGameService_JoinGameErrors(t *testing.T) {
	svc, repo := newGameService()

	_, err := svc.JoinGame(context.Background(), "missing", "bob")
	assert.ErrorIs(t, err, service.ErrGameNotFound)

	created, err := svc.CreateGame(context.Background(), "alice")
	require.NoError(t, err)

	repo.games[created.Game.ID].IsOpen = false
	_, err = svc.JoinGame(context.Background(), created.Game.ID, "bob")
	assert.ErrorIs(t, err, service.ErrGameClosed)
}

func TestGameService_RecordProgress(t *testing.T) {
	svc, _ := newGameService()

	created, err := svc.CreateGame(context.Background(), "alice")
	require.NoError(t, err)

	game, err := svc.RecordProgress(context.Background(), created.Game.ID, created.PlayerID, 12, 80.5)
	require.NoError(t, err)

	player := game.FindPlayer(created.PlayerID)
	require.NotNil(t, player)
	assert.Equal(t, 12, player.CurrentWordIndex)
	assert.InDelta(t, 80.5, player.WPM, 0.001)

	_, err = svc.RecordProgress(context.Background(), created.Game.ID, "ghost", 1, 10)
	assert.ErrorIs(t, err, service.ErrPlayerNotFound)

	_, err = svc.RecordProgress(context.Background(), "missing", created.PlayerID, 1, 10)
	assert.ErrorIs(t, err, service.ErrGameNotFound)
}
