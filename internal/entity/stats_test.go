package entity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_WinRate(t *testing.T) {
	t.Run("NoGames_StaysZero", func(t *testing.T) {
		// Given: fresh stats
		var stats Stats

		// Then: every rate stays at zero, no division happens
		assert.Zero(t, stats.WinRate)
		assert.Zero(t, stats.AverageMovesPerWin)
		assert.Zero(t, stats.Efficiency)
	})

	t.Run("WinsOverGamesPlayed", func(t *testing.T) {
		var stats Stats

		// Given: three finished games, two of them won
		for i := 0; i < 3; i++ {
			stats.IncrementGamesPlayed()
		}
		stats.IncrementGamesWon()
		stats.IncrementGamesWon()
		stats.IncrementGamesLost()

		// Then: the win rate is 2/3
		assert.InDelta(t, 2.0/3.0, stats.WinRate, 1e-9)
	})
}

func TestStats_AverageMovesPerWin(t *testing.T) {
	t.Run("NoWins_StaysZero", func(t *testing.T) {
		var stats Stats

		// Given: move units recorded but no wins
		stats.AddMoves(5)

		assert.Zero(t, stats.AverageMovesPerWin)
	})

	t.Run("MovesOverWins", func(t *testing.T) {
		var stats Stats

		stats.IncrementGamesWon()
		stats.IncrementGamesWon()
		stats.AddMoves(6)

		assert.InDelta(t, 3.0, stats.AverageMovesPerWin, 1e-9)
	})
}

func TestStats_Efficiency(t *testing.T) {
	t.Run("WinsPerMoveUnit", func(t *testing.T) {
		var stats Stats

		// Given: four finished games, one won
		stats.IncrementGamesWon()
		stats.AddMoves(4)

		assert.InDelta(t, 0.25, stats.Efficiency, 1e-9)
	})

	t.Run("StaysWithinUnitInterval", func(t *testing.T) {
		var stats Stats
		rng := rand.New(rand.NewSource(42))

		// Given: a random sequence of finished games
		for i := 0; i < 500; i++ {
			stats.IncrementGamesPlayed()
			stats.AddMoves(1)

			switch rng.Intn(3) {
			case 0:
				stats.IncrementGamesWon()
			case 1:
				stats.IncrementGamesLost()
			default:
				stats.IncrementGamesDrawn()
			}

			// Then: derived rates never leave their ranges
			require.GreaterOrEqual(t, stats.WinRate, 0.0)
			require.LessOrEqual(t, stats.WinRate, 1.0)
			require.GreaterOrEqual(t, stats.Efficiency, 0.0)
			require.LessOrEqual(t, stats.Efficiency, 1.0)
		}

		// Then: counters are consistent with the sequence
		require.Equal(t, stats.GamesPlayed, stats.GamesWon+stats.GamesLost+stats.GamesDrawn)
		require.Equal(t, stats.GamesPlayed, stats.TotalMoves)
	})
}
