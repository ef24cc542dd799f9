package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/monitor"
	"github.com/rocketscienceinc/tictactoe-arena/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newArena wires a game registry to a player registry with alice and bob
// already registered.
func newArena(t *testing.T) (*GameRegistry, *PlayerRegistry, *entity.Player, *entity.Player) {
	t.Helper()

	logger := testLogger()
	metrics := monitor.NewMetrics(prometheus.NewRegistry(), "test")

	players := NewPlayerRegistry(logger, nil, metrics)
	games := NewGameRegistry(logger, players, nil, metrics)

	alice, err := players.Create("alice", "alice@example.org")
	require.NoError(t, err)
	bob, err := players.Create("bob", "bob@example.org")
	require.NoError(t, err)

	return games, players, alice, bob
}

// playToWin drives a game to completion with the first seat winning the
// left column.
func playToWin(t *testing.T, games *GameRegistry, gameID, winnerID, loserID string) {
	t.Helper()

	moves := []struct {
		player   string
		position int
	}{
		{winnerID, 0}, {loserID, 1}, {winnerID, 3}, {loserID, 2}, {winnerID, 6},
	}
	for _, move := range moves {
		_, err := games.MakeMove(gameID, move.player, move.position)
		require.NoError(t, err)
	}
}

func TestGameRegistry_Create(t *testing.T) {
	games, _, _, _ := newArena(t)

	game := games.Create("friday arena")

	assert.NotEmpty(t, game.ID)
	assert.Equal(t, "friday arena", game.Name)
	assert.Equal(t, entity.StatusWaiting, game.Status)
	assert.Equal(t, 1, games.Count())
}

func TestGameRegistry_GetByID(t *testing.T) {
	games, _, _, _ := newArena(t)
	created := games.Create("arena")

	t.Run("Found", func(t *testing.T) {
		game, err := games.GetByID(created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, game.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := games.GetByID("missing")

		assert.True(t, errors.Is(err, apperror.ErrGameNotFound))
	})
}

func TestGameRegistry_Delete(t *testing.T) {
	games, _, _, _ := newArena(t)
	created := games.Create("arena")

	assert.True(t, games.Delete(created.ID))
	assert.False(t, games.Delete(created.ID))
	assert.Equal(t, 0, games.Count())
}

func TestGameRegistry_AddPlayer(t *testing.T) {
	t.Run("UnknownPlayer_Rejected", func(t *testing.T) {
		games, _, _, _ := newArena(t)
		created := games.Create("arena")

		// When: a player id nobody registered tries to join
		_, err := games.AddPlayer(created.ID, "ghost")

		assert.True(t, errors.Is(err, apperror.ErrPlayerNotFound))
	})

	t.Run("SecondJoin_ActivatesGame", func(t *testing.T) {
		games, _, alice, bob := newArena(t)
		created := games.Create("arena")

		_, err := games.AddPlayer(created.ID, alice.ID)
		require.NoError(t, err)

		game, err := games.AddPlayer(created.ID, bob.ID)

		require.NoError(t, err)
		assert.Equal(t, entity.StatusActive, game.Status)
		assert.Equal(t, alice.ID, game.CurrentPlayerID)
	})

	t.Run("UnknownGame_Rejected", func(t *testing.T) {
		games, _, alice, _ := newArena(t)

		_, err := games.AddPlayer("missing", alice.ID)

		assert.True(t, errors.Is(err, apperror.ErrGameNotFound))
	})
}

func TestGameRegistry_MakeMove(t *testing.T) {
	t.Run("Win_UpdatesBothPlayersStats", func(t *testing.T) {
		games, players, alice, bob := newArena(t)
		created := games.Create("arena")
		_, err := games.AddPlayer(created.ID, alice.ID)
		require.NoError(t, err)
		_, err = games.AddPlayer(created.ID, bob.ID)
		require.NoError(t, err)

		// When: alice wins the left column
		playToWin(t, games, created.ID, alice.ID, bob.ID)

		// Then: the game is completed with alice as winner
		status, err := games.StatusOf(created.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, status)

		winnerID, err := games.WinnerOf(created.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, winnerID)

		// Then: both players' stats reflect exactly one finished game
		aliceStats, err := players.StatsOf(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Stats{
			GamesPlayed: 1, GamesWon: 1, TotalMoves: 1,
			WinRate: 1, AverageMovesPerWin: 1, Efficiency: 1,
		}, aliceStats)

		bobStats, err := players.StatsOf(bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, bobStats.GamesPlayed)
		assert.Equal(t, 1, bobStats.GamesLost)
		assert.Zero(t, bobStats.GamesWon)
		assert.Zero(t, bobStats.WinRate)
	})

	t.Run("Draw_UpdatesBothPlayersStats", func(t *testing.T) {
		games, players, alice, bob := newArena(t)
		created := games.Create("arena")
		_, err := games.AddPlayer(created.ID, alice.ID)
		require.NoError(t, err)
		_, err = games.AddPlayer(created.ID, bob.ID)
		require.NoError(t, err)

		sequence := []struct {
			player   string
			position int
		}{
			{alice.ID, 0}, {bob.ID, 1}, {alice.ID, 2}, {bob.ID, 4},
			{alice.ID, 3}, {bob.ID, 5}, {alice.ID, 7}, {bob.ID, 6}, {alice.ID, 8},
		}
		for _, move := range sequence {
			_, err = games.MakeMove(created.ID, move.player, move.position)
			require.NoError(t, err)
		}

		status, err := games.StatusOf(created.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusDraw, status)

		for _, id := range []string{alice.ID, bob.ID} {
			stats, statsErr := players.StatsOf(id)
			require.NoError(t, statsErr)
			assert.Equal(t, 1, stats.GamesDrawn)
			assert.Equal(t, 1, stats.GamesPlayed)
		}
	})

	t.Run("RejectedMove_LeavesStatsUntouched", func(t *testing.T) {
		games, players, alice, bob := newArena(t)
		created := games.Create("arena")
		_, err := games.AddPlayer(created.ID, alice.ID)
		require.NoError(t, err)
		_, err = games.AddPlayer(created.ID, bob.ID)
		require.NoError(t, err)

		// When: bob moves out of turn
		_, err = games.MakeMove(created.ID, bob.ID, 0)

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrNotYourTurn))

		stats, err := players.StatsOf(bob.ID)
		require.NoError(t, err)
		assert.Zero(t, stats.GamesPlayed)
	})
}

func TestGameRegistry_Queries(t *testing.T) {
	games, _, alice, bob := newArena(t)
	created := games.Create("arena")
	_, err := games.AddPlayer(created.ID, alice.ID)
	require.NoError(t, err)
	_, err = games.AddPlayer(created.ID, bob.ID)
	require.NoError(t, err)
	_, err = games.MakeMove(created.ID, alice.ID, 4)
	require.NoError(t, err)

	t.Run("BoardOf", func(t *testing.T) {
		board, boardErr := games.BoardOf(created.ID)

		require.NoError(t, boardErr)
		assert.Equal(t, tictactoe.SymbolX, board[4])
	})

	t.Run("CurrentPlayerOf", func(t *testing.T) {
		currentID, turnErr := games.CurrentPlayerOf(created.ID)

		require.NoError(t, turnErr)
		assert.Equal(t, bob.ID, currentID)
	})

	t.Run("MovesOf", func(t *testing.T) {
		moves, movesErr := games.MovesOf(created.ID)

		require.NoError(t, movesErr)
		require.Len(t, moves, 1)
		assert.Equal(t, 4, moves[0].Position)
		assert.Equal(t, 1, moves[0].MoveNumber)
	})

	t.Run("WinnerOf_EmptyWhileOngoing", func(t *testing.T) {
		winnerID, winErr := games.WinnerOf(created.ID)

		require.NoError(t, winErr)
		assert.Empty(t, winnerID)
	})
}

func TestGameRegistry_Listings(t *testing.T) {
	games, _, alice, bob := newArena(t)

	waiting := games.Create("lobby one")
	active := games.Create("midgame")
	finished := games.Create("done deal")

	for _, id := range []string{active.ID, finished.ID} {
		_, err := games.AddPlayer(id, alice.ID)
		require.NoError(t, err)
		_, err = games.AddPlayer(id, bob.ID)
		require.NoError(t, err)
	}
	playToWin(t, games, finished.ID, alice.ID, bob.ID)

	t.Run("ListByStatus", func(t *testing.T) {
		waitingGames := games.ListByStatus(entity.StatusWaiting)

		require.Len(t, waitingGames, 1)
		assert.Equal(t, waiting.ID, waitingGames[0].ID)
	})

	t.Run("ListCompleted_CoversBothTerminalStatuses", func(t *testing.T) {
		completed := games.ListCompleted()

		require.Len(t, completed, 1)
		assert.Equal(t, finished.ID, completed[0].ID)
	})

	t.Run("ListByPlayer", func(t *testing.T) {
		assert.Len(t, games.ListByPlayer(alice.ID), 2)
		assert.Empty(t, games.ListByPlayer("ghost"))
	})

	t.Run("SearchByName", func(t *testing.T) {
		found := games.SearchByName("LOBBY")

		require.Len(t, found, 1)
		assert.Equal(t, waiting.ID, found[0].ID)
	})

	t.Run("MostMoves", func(t *testing.T) {
		top := games.MostMoves(1)

		require.Len(t, top, 1)
		assert.Equal(t, finished.ID, top[0].ID)
	})

	t.Run("RecentGames_RespectsLimit", func(t *testing.T) {
		assert.Len(t, games.RecentGames(2), 2)
		assert.Len(t, games.RecentGames(-1), 3)
	})
}

func TestGameRegistry_ConcurrentCreateAndJoin(t *testing.T) {
	games, _, alice, _ := newArena(t)

	const created = 100

	// When: games are created while other goroutines discover them through
	// List and immediately join
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < created; i++ {
			games.Create("arena")
		}
	}()

	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				for _, game := range games.List() {
					_, _ = games.AddPlayer(game.ID, alice.ID)
				}

				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}
	wg.Wait()

	// Then: every created game is present and consistently readable
	require.Equal(t, created, games.Count())
	for _, game := range games.List() {
		if len(game.Seats) == 1 {
			assert.Equal(t, alice.ID, game.Seats[0].PlayerID)
		}
	}
}

func TestGameRegistry_ClearAll(t *testing.T) {
	games, _, alice, bob := newArena(t)

	games.Create("lobby")
	active := games.Create("midgame")
	_, err := games.AddPlayer(active.ID, alice.ID)
	require.NoError(t, err)
	_, err = games.AddPlayer(active.ID, bob.ID)
	require.NoError(t, err)

	// When: the registry is wiped
	cleared := games.ClearAll()

	// Then: both games are gone and the count reports them
	assert.Equal(t, 2, cleared)
	assert.Equal(t, 0, games.Count())
	assert.Equal(t, 0, games.ClearAll())

	_, err = games.GetByID(active.ID)
	assert.True(t, errors.Is(err, apperror.ErrGameNotFound))
}

func TestGameRegistry_ConcurrentMoves(t *testing.T) {
	games, players, alice, bob := newArena(t)
	created := games.Create("arena")
	_, err := games.AddPlayer(created.ID, alice.ID)
	require.NoError(t, err)
	_, err = games.AddPlayer(created.ID, bob.ID)
	require.NoError(t, err)

	// When: both players hammer every cell from separate goroutines until
	// the game reaches a terminal state
	var wg sync.WaitGroup
	for _, playerID := range []string{alice.ID, bob.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for {
				snapshot, snapErr := games.GetByID(created.ID)
				if snapErr != nil || snapshot.IsFinished() {
					return
				}
				for position := 0; position < tictactoe.BoardSize; position++ {
					_, _ = games.MakeMove(created.ID, id, position)
				}
			}
		}(playerID)
	}
	wg.Wait()

	// Then: the game reached a terminal state with a consistent history
	game, err := games.GetByID(created.ID)
	require.NoError(t, err)
	require.True(t, game.IsFinished())

	marks := 0
	for _, cell := range game.Board {
		if cell != tictactoe.EmptyCell {
			marks++
		}
	}
	assert.Equal(t, marks, len(game.Moves))

	// Then: exactly one finished game landed in each player's stats
	for _, id := range []string{alice.ID, bob.ID} {
		stats, statsErr := players.StatsOf(id)
		require.NoError(t, statsErr)
		assert.Equal(t, 1, stats.GamesPlayed, "player %s", id)
	}
}
