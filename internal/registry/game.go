package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/monitor"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-arena/internal/tictactoe"
)

func now() time.Time {
	return time.Now()
}

// GameArchive is the optional durable backing store for game snapshots.
type GameArchive interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	DeleteByID(ctx context.Context, id string) error
}

// gameEntry pairs a game with the mutex serializing every read-modify-write
// on it. Two concurrent moves on the same game can never both see "my turn".
type gameEntry struct {
	mu   sync.Mutex
	game *entity.Game
}

// GameRegistry owns all game state and drives the per-game state machine.
// Lock order is fixed: map lock, then a game entry lock, then the player
// registry lock; the player registry never calls back in, so the order
// cannot cycle.
type GameRegistry struct {
	logger  *slog.Logger
	players *PlayerRegistry
	archive GameArchive
	metrics *monitor.Metrics

	mu    sync.RWMutex
	games map[string]*gameEntry
}

func NewGameRegistry(logger *slog.Logger, players *PlayerRegistry, archive GameArchive, metrics *monitor.Metrics) *GameRegistry {
	return &GameRegistry{
		logger:  logger.With("component", "game_registry"),
		players: players,
		archive: archive,
		metrics: metrics,
		games:   make(map[string]*gameEntry),
	}
}

// Restore seeds the registry from archived snapshots at startup.
func (that *GameRegistry) Restore(games []*entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, game := range games {
		that.games[game.ID] = &gameEntry{game: game.Clone()}

		if that.metrics != nil && game.IsActive() {
			that.metrics.ActiveGames.Inc()
		}
	}
}

func (that *GameRegistry) Create(name string) *entity.Game {
	game := entity.NewGame(pkg.GenerateID(), name)

	// archive and clone while the game is still unshared; once the entry is
	// published, every access must go through the entry lock
	that.save(game)
	clone := game.Clone()

	that.mu.Lock()
	that.games[game.ID] = &gameEntry{game: game}
	that.mu.Unlock()

	if that.metrics != nil {
		that.metrics.GamesCreated.Inc()
	}

	return clone
}

func (that *GameRegistry) GetByID(id string) (*entity.Game, error) {
	entry, err := that.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.Clone(), nil
}

func (that *GameRegistry) Delete(id string) bool {
	that.mu.Lock()
	entry, ok := that.games[id]
	delete(that.games, id)
	that.mu.Unlock()

	if !ok {
		return false
	}

	entry.mu.Lock()
	wasActive := entry.game.IsActive()
	entry.mu.Unlock()

	if that.metrics != nil && wasActive {
		that.metrics.ActiveGames.Dec()
	}

	if that.archive != nil {
		if err := that.archive.DeleteByID(context.Background(), id); err != nil {
			that.logger.Error("failed to delete archived game", "error", err, "game_id", id)
		}
	}

	return true
}

// ClearAll removes every game and reports how many were dropped.
func (that *GameRegistry) ClearAll() int {
	that.mu.Lock()
	entries := that.games
	that.games = make(map[string]*gameEntry)
	that.mu.Unlock()

	for id, entry := range entries {
		entry.mu.Lock()
		wasActive := entry.game.IsActive()
		entry.mu.Unlock()

		if that.metrics != nil && wasActive {
			that.metrics.ActiveGames.Dec()
		}

		if that.archive != nil {
			if err := that.archive.DeleteByID(context.Background(), id); err != nil {
				that.logger.Error("failed to delete archived game", "error", err, "game_id", id)
			}
		}
	}

	return len(entries)
}

func (that *GameRegistry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}

// AddPlayer seats an existing player; on the second join the game goes
// active with the first joiner to move.
func (that *GameRegistry) AddPlayer(gameID, playerID string) (*entity.Game, error) {
	if !that.players.exists(playerID) {
		return nil, apperror.ErrPlayerNotFound
	}

	entry, err := that.entry(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err = entry.game.AddPlayer(playerID); err != nil {
		return nil, fmt.Errorf("failed to add player to game %s: %w", gameID, err)
	}

	if that.metrics != nil && entry.game.IsActive() {
		that.metrics.ActiveGames.Inc()
	}

	that.save(entry.game)

	return entry.game.Clone(), nil
}

// MakeMove applies one move. On a terminal transition both participants'
// stats are updated inside the same per-game critical section as the
// status change, so no caller can observe a finished game with stale
// stats.
func (that *GameRegistry) MakeMove(gameID, playerID string, position int) (*entity.Game, error) {
	entry, err := that.entry(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	outcome, err := entry.game.ApplyMove(playerID, position)
	if err != nil {
		return nil, fmt.Errorf("failed to make move in game %s: %w", gameID, err)
	}

	if that.metrics != nil {
		that.metrics.MovesPlayed.Inc()
	}

	if outcome != entity.OutcomeOngoing {
		participants := make([]string, 0, len(entry.game.Seats))
		for _, seat := range entry.game.Seats {
			participants = append(participants, seat.PlayerID)
		}

		that.players.applyGameResult(entry.game.WinnerID, participants)

		if that.metrics != nil {
			that.metrics.ActiveGames.Dec()
		}
	}

	that.save(entry.game)

	return entry.game.Clone(), nil
}

func (that *GameRegistry) StatusOf(gameID string) (string, error) {
	entry, err := that.entry(gameID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.Status, nil
}

func (that *GameRegistry) BoardOf(gameID string) (tictactoe.Board, error) {
	entry, err := that.entry(gameID)
	if err != nil {
		return tictactoe.Board{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.Board, nil
}

// CurrentPlayerOf returns the id of the player holding the turn, empty
// until two players joined.
func (that *GameRegistry) CurrentPlayerOf(gameID string) (string, error) {
	entry, err := that.entry(gameID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.CurrentPlayerID, nil
}

// WinnerOf returns the winner id, empty unless the game is COMPLETED.
func (that *GameRegistry) WinnerOf(gameID string) (string, error) {
	entry, err := that.entry(gameID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.WinnerID, nil
}

func (that *GameRegistry) MovesOf(gameID string) ([]entity.Move, error) {
	entry, err := that.entry(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.MoveHistory(), nil
}

func (that *GameRegistry) List() []*entity.Game {
	return that.collect(func(*entity.Game) bool { return true })
}

func (that *GameRegistry) ListByStatus(status string) []*entity.Game {
	return that.collect(func(game *entity.Game) bool { return game.Status == status })
}

// ListCompleted returns games that reached either terminal status.
func (that *GameRegistry) ListCompleted() []*entity.Game {
	return that.collect(func(game *entity.Game) bool { return game.IsFinished() })
}

func (that *GameRegistry) ListByPlayer(playerID string) []*entity.Game {
	return that.collect(func(game *entity.Game) bool { return game.HasPlayer(playerID) })
}

// SearchByName matches case-insensitively on a substring of the game name.
func (that *GameRegistry) SearchByName(term string) []*entity.Game {
	needle := strings.ToLower(strings.TrimSpace(term))

	return that.collect(func(game *entity.Game) bool {
		return needle == "" || strings.Contains(strings.ToLower(game.Name), needle)
	})
}

// RecentGames returns up to limit games, newest first.
func (that *GameRegistry) RecentGames(limit int) []*entity.Game {
	games := that.List()

	sort.Slice(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.After(games[j].CreatedAt)
		}
		return games[i].ID < games[j].ID
	})

	if limit >= 0 && limit < len(games) {
		games = games[:limit]
	}

	return games
}

// MostMoves returns up to limit games ordered by move count, descending.
func (that *GameRegistry) MostMoves(limit int) []*entity.Game {
	games := that.List()

	sort.Slice(games, func(i, j int) bool {
		if len(games[i].Moves) != len(games[j].Moves) {
			return len(games[i].Moves) > len(games[j].Moves)
		}
		return games[i].ID < games[j].ID
	})

	if limit >= 0 && limit < len(games) {
		games = games[:limit]
	}

	return games
}

func (that *GameRegistry) entry(id string) (*gameEntry, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return entry, nil
}

func (that *GameRegistry) collect(match func(*entity.Game) bool) []*entity.Game {
	that.mu.RLock()
	entries := make([]*gameEntry, 0, len(that.games))
	for _, entry := range that.games {
		entries = append(entries, entry)
	}
	that.mu.RUnlock()

	games := make([]*entity.Game, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if match(entry.game) {
			games = append(games, entry.game.Clone())
		}
		entry.mu.Unlock()
	}

	return games
}

func (that *GameRegistry) save(game *entity.Game) {
	if that.archive == nil {
		return
	}

	if err := that.archive.CreateOrUpdate(context.Background(), game); err != nil {
		that.logger.Error("failed to archive game", "error", err, "game_id", game.ID)
	}
}
