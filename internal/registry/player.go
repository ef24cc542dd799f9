package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/monitor"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
)

const (
	SortByWinRate    = "winrate"
	SortByWins       = "wins"
	SortByEfficiency = "efficiency"
)

// PlayerArchive is the optional durable backing store; every mutation is
// written through best-effort.
type PlayerArchive interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	DeleteByID(ctx context.Context, id string) error
}

// PlayerRegistry owns all player state. Mutations run under its lock; the
// GameRegistry calls applyGameResult while holding the per-game lock, so
// stats land before the terminal game status becomes visible.
type PlayerRegistry struct {
	logger  *slog.Logger
	archive PlayerArchive
	metrics *monitor.Metrics

	mu      sync.RWMutex
	players map[string]*entity.Player
}

func NewPlayerRegistry(logger *slog.Logger, archive PlayerArchive, metrics *monitor.Metrics) *PlayerRegistry {
	return &PlayerRegistry{
		logger:  logger.With("component", "player_registry"),
		archive: archive,
		metrics: metrics,
		players: make(map[string]*entity.Player),
	}
}

// Restore seeds the registry from archived snapshots at startup.
func (that *PlayerRegistry) Restore(players []*entity.Player) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, player := range players {
		that.players[player.ID] = player.Clone()
	}
}

func (that *PlayerRegistry) Create(name, email string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.findByEmail(email) != nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrEmailTaken, email)
	}

	player := entity.NewPlayer(pkg.GenerateID(), name, email)
	that.players[player.ID] = player

	that.save(player)

	if that.metrics != nil {
		that.metrics.PlayersCreated.Inc()
	}

	return player.Clone(), nil
}

func (that *PlayerRegistry) GetByID(id string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[id]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	return player.Clone(), nil
}

func (that *PlayerRegistry) GetByEmail(email string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player := that.findByEmail(email)
	if player == nil {
		return nil, apperror.ErrPlayerNotFound
	}

	return player.Clone(), nil
}

func (that *PlayerRegistry) Update(id, name, email string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[id]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	if existing := that.findByEmail(email); existing != nil && existing.ID != id {
		return nil, fmt.Errorf("%w: %s", apperror.ErrEmailTaken, email)
	}

	player.Name = name
	player.Email = email
	player.UpdatedAt = now()

	that.save(player)

	return player.Clone(), nil
}

func (that *PlayerRegistry) Delete(id string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.players[id]; !ok {
		return false
	}

	delete(that.players, id)

	if that.archive != nil {
		if err := that.archive.DeleteByID(context.Background(), id); err != nil {
			that.logger.Error("failed to delete archived player", "error", err, "player_id", id)
		}
	}

	return true
}

// ClearAll removes every player and reports how many were dropped.
func (that *PlayerRegistry) ClearAll() int {
	that.mu.Lock()
	players := that.players
	that.players = make(map[string]*entity.Player)
	that.mu.Unlock()

	for id := range players {
		if that.archive != nil {
			if err := that.archive.DeleteByID(context.Background(), id); err != nil {
				that.logger.Error("failed to delete archived player", "error", err, "player_id", id)
			}
		}
	}

	return len(players)
}

// SearchByName matches case-insensitively on a substring; an empty term
// returns every player.
func (that *PlayerRegistry) SearchByName(term string) []*entity.Player {
	that.mu.RLock()
	defer that.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(term))

	result := make([]*entity.Player, 0, len(that.players))
	for _, player := range that.players {
		if needle == "" || strings.Contains(strings.ToLower(player.Name), needle) {
			result = append(result, player.Clone())
		}
	}

	return result
}

func (that *PlayerRegistry) StatsOf(id string) (entity.Stats, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[id]
	if !ok {
		return entity.Stats{}, apperror.ErrPlayerNotFound
	}

	return player.Stats, nil
}

func (that *PlayerRegistry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.players)
}

// Leaderboard ranks players with at least one finished game, descending by
// the sort key, ties broken by player id so results are reproducible.
func (that *PlayerRegistry) Leaderboard(limit int, sortKey string) ([]*entity.Player, error) {
	ranked, err := that.ranked(sortKey)
	if err != nil {
		return nil, err
	}

	if limit >= 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	return ranked, nil
}

// LeaderboardPaginated slices the ranked list into fixed pages. An empty
// leaderboard yields a single empty page; any page index at or past the
// end is rejected otherwise.
func (that *PlayerRegistry) LeaderboardPaginated(page, size int, sortKey string) (*entity.PaginatedResponse[*entity.Player], error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidPage, page)
	}

	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidPageSize, size)
	}

	ranked, err := that.ranked(sortKey)
	if err != nil {
		return nil, err
	}

	total := len(ranked)
	if total == 0 {
		return &entity.PaginatedResponse[*entity.Player]{
			Content: []*entity.Player{},
			Page:    entity.PageInfo{Number: 0, Size: size, TotalElements: 0, TotalPages: 0, First: true, Last: true},
		}, nil
	}

	totalPages := (total + size - 1) / size
	if page >= totalPages {
		return nil, fmt.Errorf("%w: page %d, total pages %d", apperror.ErrPageOutOfRange, page, totalPages)
	}

	offset := page * size
	end := offset + size
	if end > total {
		end = total
	}

	return &entity.PaginatedResponse[*entity.Player]{
		Content: ranked[offset:end],
		Page: entity.PageInfo{
			Number:        page,
			Size:          size,
			TotalElements: total,
			TotalPages:    totalPages,
			First:         page == 0,
			Last:          page == totalPages-1,
		},
	}, nil
}

// MostActivePlayers ranks every player by games played, most active first.
func (that *PlayerRegistry) MostActivePlayers(limit int) []*entity.Player {
	that.mu.RLock()
	players := make([]*entity.Player, 0, len(that.players))
	for _, player := range that.players {
		players = append(players, player.Clone())
	}
	that.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].Stats.GamesPlayed != players[j].Stats.GamesPlayed {
			return players[i].Stats.GamesPlayed > players[j].Stats.GamesPlayed
		}
		return players[i].ID < players[j].ID
	})

	if limit >= 0 && limit < len(players) {
		players = players[:limit]
	}

	return players
}

func (that *PlayerRegistry) ranked(sortKey string) ([]*entity.Player, error) {
	keyOf, err := sortKeyFunc(sortKey)
	if err != nil {
		return nil, err
	}

	that.mu.RLock()
	eligible := make([]*entity.Player, 0, len(that.players))
	for _, player := range that.players {
		if player.Stats.GamesPlayed > 0 {
			eligible = append(eligible, player.Clone())
		}
	}
	that.mu.RUnlock()

	sort.Slice(eligible, func(i, j int) bool {
		a, b := keyOf(eligible[i]), keyOf(eligible[j])
		if a != b {
			return a > b
		}
		return eligible[i].ID < eligible[j].ID
	})

	return eligible, nil
}

func sortKeyFunc(sortKey string) (func(*entity.Player) float64, error) {
	switch strings.ToLower(sortKey) {
	case "", SortByWinRate:
		return func(p *entity.Player) float64 { return p.Stats.WinRate }, nil
	case SortByWins:
		return func(p *entity.Player) float64 { return float64(p.Stats.GamesWon) }, nil
	case SortByEfficiency:
		return func(p *entity.Player) float64 { return p.Stats.Efficiency }, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidSortKey, sortKey)
	}
}

// exists reports whether a player id is registered, without copying.
func (that *PlayerRegistry) exists(id string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.players[id]

	return ok
}

// applyGameResult updates both participants' stats after a terminal game
// transition. The caller holds the per-game lock, which makes the status
// change and the stats visible together. With winnerID empty the game is a
// draw. Each finished game adds one move unit per participant.
func (that *PlayerRegistry) applyGameResult(winnerID string, participantIDs []string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, id := range participantIDs {
		player, ok := that.players[id]
		if !ok {
			that.logger.Warn("participant vanished before stats update", "player_id", id)
			continue
		}

		player.Stats.IncrementGamesPlayed()
		player.Stats.AddMoves(1)

		switch {
		case winnerID == "":
			player.Stats.IncrementGamesDrawn()
		case id == winnerID:
			player.Stats.IncrementGamesWon()
		default:
			player.Stats.IncrementGamesLost()
		}

		player.UpdatedAt = now()
		that.save(player)
	}
}

func (that *PlayerRegistry) findByEmail(email string) *entity.Player {
	for _, player := range that.players {
		if player.Email == email {
			return player
		}
	}

	return nil
}

func (that *PlayerRegistry) save(player *entity.Player) {
	if that.archive == nil {
		return
	}

	if err := that.archive.CreateOrUpdate(context.Background(), player); err != nil {
		that.logger.Error("failed to archive player", "error", err, "player_id", player.ID)
	}
}
