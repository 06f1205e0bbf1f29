package match_test

import (
	"errors"
	"sync"
	"testing"

	"arcadechat/internal/match"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BindPlayer(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(s *match.Store)
		playerID string
		wantErr  error
	}{
		{
			name:     "first player creates room",
			setup:    func(s *match.Store) {},
			playerID: "p1",
		},
		{
			name: "second player takes slot B",
			setup: func(s *match.Store) {
				require.NoError(t, s.BindPlayer("R1", "p1", "alice"))
			},
			playerID: "p2",
		},
		{
			name: "rebinding a seated player is a no-op",
			setup: func(s *match.Store) {
				require.NoError(t, s.BindPlayer("R1", "p1", "alice"))
				require.NoError(t, s.BindPlayer("R1", "p2", "bob"))
			},
			playerID: "p1",
		},
		{
			name: "third distinct player is rejected",
			setup: func(s *match.Store) {
				require.NoError(t, s.BindPlayer("R1", "p1", "alice"))
				require.NoError(t, s.BindPlayer("R1", "p2", "bob"))
			},
			playerID: "p3",
			wantErr:  match.ErrRoomFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := match.NewStore()
			tt.setup(s)

			err := s.BindPlayer("R1", tt.playerID, "nick")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStore_RecordMove(t *testing.T) {
	s := match.NewStore()
	require.NoError(t, s.BindPlayer("R1", "p1", "alice"))
	require.NoError(t, s.BindPlayer("R1", "p2", "bob"))

	res, err := s.RecordMove("R1", "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, match.OutcomeNone, res.Outcome)

	res, err = s.RecordMove("R1", "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, match.OutcomeNone, res.Outcome)

	// A cell taken by either slot cannot be taken again.
	_, err = s.RecordMove("R1", "p2", 4)
	assert.ErrorIs(t, err, match.ErrCellOccupied)

	_, err = s.RecordMove("R1", "p3", 1)
	assert.ErrorIs(t, err, match.ErrPlayerNotInRoom)

	_, err = s.RecordMove("R1", "p1", 9)
	assert.ErrorIs(t, err, match.ErrInvalidMove)

	_, err = s.RecordMove("R1", "p1", -1)
	assert.ErrorIs(t, err, match.ErrInvalidMove)

	_, err = s.RecordMove("missing", "p1", 1)
	assert.ErrorIs(t, err, match.ErrRoomNotFound)

	assert.Equal(t, 2, s.TotalMoves("R1"))
}

func TestStore_WinningMoveFinishesRoom(t *testing.T) {
	s := match.NewStore()
	require.NoError(t, s.BindPlayer("R1", "p1", "alice"))
	require.NoError(t, s.BindPlayer("R1", "p2", "bob"))

	plays := []struct {
		player string
		cell   int
	}{
		{"p1", 0}, {"p2", 3}, {"p1", 1}, {"p2", 4},
	}
	for _, m := range plays {
		res, err := s.RecordMove("R1", m.player, m.cell)
		require.NoError(t, err)
		assert.Equal(t, match.OutcomeNone, res.Outcome)
	}

	res, err := s.RecordMove("R1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, match.OutcomeWin, res.Outcome)
	assert.ElementsMatch(t, []int{0, 1, 2}, res.WinningLine[:])

	phase, ok := s.RoomPhase("R1")
	require.True(t, ok)
	assert.Equal(t, match.PhaseWon, phase)

	_, err = s.RecordMove("R1", "p2", 5)
	assert.ErrorIs(t, err, match.ErrGameOver)

	// The rejected move must not have mutated any slot.
	moves, err := s.PlayerMoves("R1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, moves)
	assert.Equal(t, 5, s.TotalMoves("R1"))
}

// Both players are one move from a winning line; the final moves land
// concurrently. The store must resolve exactly one winner, every trial.
func TestStore_ConcurrentWinningMovesResolveOnce(t *testing.T) {
	for trial := 0; trial < 200; trial++ {
		s := match.NewStore()
		require.NoError(t, s.BindPlayer("R1", "p1", "alice"))
		require.NoError(t, s.BindPlayer("R1", "p2", "bob"))

		setup := []struct {
			player string
			cell   int
		}{
			{"p1", 0}, {"p2", 3}, {"p1", 1}, {"p2", 4},
		}
		for _, m := range setup {
			_, err := s.RecordMove("R1", m.player, m.cell)
			require.NoError(t, err)
		}

		type attempt struct {
			res match.MoveResult
			err error
		}
		results := make([]attempt, 2)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for i, m := range []struct {
			player string
			cell   int
		}{
			{"p1", 2}, {"p2", 5},
		} {
			wg.Add(1)
			go func(i int, player string, cell int) {
				defer wg.Done()
				<-start
				res, err := s.RecordMove("R1", player, cell)
				results[i] = attempt{res, err}
			}(i, m.player, m.cell)
		}
		close(start)
		wg.Wait()

		wins, rejected := 0, 0
		for _, a := range results {
			switch {
			case a.err == nil && a.res.Outcome == match.OutcomeWin:
				wins++
			case errors.Is(a.err, match.ErrGameOver):
				rejected++
			}
		}
		require.Equal(t, 1, wins, "trial %d: exactly one winning outcome", trial)
		require.Equal(t, 1, rejected, "trial %d: the slower move is rejected", trial)

		phase, ok := s.RoomPhase("R1")
		require.True(t, ok)
		require.Equal(t, match.PhaseWon, phase)
	}
}

func TestStore_DrawOnFullBoard(t *testing.T) {
	s := match.NewStore()
	require.NoError(t, s.BindPlayer("R1", "p1", "alice"))
	require.NoError(t, s.BindPlayer("R1", "p2", "bob"))

	// Alternating fill with no completed line for either player.
	moves := []struct {
		player string
		cell   int
	}{
		{"p1", 0}, {"p2", 2}, {"p1", 1}, {"p2", 3}, {"p1", 5},
		{"p2", 4}, {"p1", 6}, {"p2", 7},
	}
	for _, m := range moves {
		res, err := s.RecordMove("R1", m.player, m.cell)
		require.NoError(t, err)
		assert.Equal(t, match.OutcomeNone, res.Outcome, "unexpected outcome after cell %d", m.cell)
	}

	// The board-filling move resolves to a draw in the same call.
	res, err := s.RecordMove("R1", "p1", 8)
	require.NoError(t, err)
	assert.Equal(t, match.OutcomeDraw, res.Outcome)
	assert.Equal(t, 9, s.TotalMoves("R1"))

	phase, ok := s.RoomPhase("R1")
	require.True(t, ok)
	assert.Equal(t, match.PhaseDrawn, phase)

	_, err = s.RecordMove("R1", "p2", 8)
	assert.ErrorIs(t, err, match.ErrGameOver)
}

func TestStore_Evict(t *testing.T) {
	s := match.NewStore()
	require.NoError(t, s.BindPlayer("R1", "p1", "alice"))

	s.Evict("R1")

	_, ok := s.RoomPhase("R1")
	assert.False(t, ok)

	// Eviction frees the room id for a fresh match.
	require.NoError(t, s.BindPlayer("R1", "p9", "carol"))
	phase, ok := s.RoomPhase("R1")
	require.True(t, ok)
	assert.Equal(t, match.PhaseOneBound, phase)
}
