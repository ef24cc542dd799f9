package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-arena/internal/validation"
)

const defaultLeaderboardLimit = 10

type playerRegistry interface {
	Create(name, email string) (*entity.Player, error)
	GetByID(id string) (*entity.Player, error)
	Update(id, name, email string) (*entity.Player, error)
	Delete(id string) bool
	SearchByName(term string) []*entity.Player
	StatsOf(id string) (entity.Stats, error)
	Count() int
	ClearAll() int
	Leaderboard(limit int, sortKey string) ([]*entity.Player, error)
	LeaderboardPaginated(page, size int, sortKey string) (*entity.PaginatedResponse[*entity.Player], error)
	MostActivePlayers(limit int) []*entity.Player
}

type gameRegistry interface {
	Create(name string) *entity.Game
	GetByID(id string) (*entity.Game, error)
	Delete(id string) bool
	Count() int
	ClearAll() int
	AddPlayer(gameID, playerID string) (*entity.Game, error)
	MakeMove(gameID, playerID string, position int) (*entity.Game, error)
	StatusOf(gameID string) (string, error)
	BoardOf(gameID string) (tictactoe.Board, error)
	CurrentPlayerOf(gameID string) (string, error)
	WinnerOf(gameID string) (string, error)
	MovesOf(gameID string) ([]entity.Move, error)
	List() []*entity.Game
	ListByStatus(status string) []*entity.Game
	ListCompleted() []*entity.Game
	ListByPlayer(playerID string) []*entity.Game
	SearchByName(term string) []*entity.Game
	RecentGames(limit int) []*entity.Game
	MostMoves(limit int) []*entity.Game
}

type limiter interface {
	Middleware(next http.Handler) http.Handler
}

type handlers struct {
	logger  *slog.Logger
	players playerRegistry
	games   gameRegistry
}

func newHandlers(logger *slog.Logger, players playerRegistry, games gameRegistry) *handlers {
	return &handlers{
		logger:  logger.With("component", "rest_handlers"),
		players: players,
		games:   games,
	}
}

func (that *handlers) mount(router chi.Router) {
	router.Route("/api/games", func(r chi.Router) {
		r.Post("/", that.createGame)
		r.Get("/", that.listGames)
		r.Get("/active", that.listByStatus(entity.StatusActive))
		r.Get("/waiting", that.listByStatus(entity.StatusWaiting))
		r.Get("/completed", that.listCompleted)
		r.Get("/recent", that.recentGames)
		r.Get("/most-moves", that.mostMoves)
		r.Get("/count", that.countGames)
		r.Delete("/clear", that.clearGames)
		r.Get("/player/{playerID}", that.gamesByPlayer)
		r.Get("/leaderboard", that.leaderboard)
		r.Get("/leaderboard/paginated", that.leaderboardPaginated)

		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", that.getGame)
			r.Delete("/", that.deleteGame)
			r.Post("/players", that.addPlayer)
			r.Post("/moves", that.makeMove)
			r.Get("/status", that.gameStatus)
			r.Get("/board", that.gameBoard)
			r.Get("/current-player", that.currentPlayer)
			r.Get("/winner", that.winner)
			r.Get("/moves", that.gameMoves)
		})
	})

	router.Route("/api/players", func(r chi.Router) {
		r.Post("/", that.createPlayer)
		r.Get("/", that.searchPlayers)
		r.Get("/count", that.countPlayers)
		r.Delete("/clear", that.clearPlayers)
		r.Get("/most-active", that.mostActivePlayers)

		r.Route("/{playerID}", func(r chi.Router) {
			r.Get("/", that.getPlayer)
			r.Put("/", that.updatePlayer)
			r.Delete("/", that.deletePlayer)
			r.Get("/stats", that.playerStats)
		})
	})
}

type createGameRequest struct {
	Name string `json:"name"`
}

type addPlayerRequest struct {
	PlayerID string `json:"playerId"`
}

type makeMoveRequest struct {
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

type createPlayerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePlayerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !that.decode(w, r, &req) {
		return
	}

	if err := validation.GameName(req.Name); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, that.games.Create(req.Name))
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetByID(chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) listGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status, err := entity.ParseStatus(raw)
		if err != nil {
			that.writeError(w, err)
			return
		}

		that.writeJSON(w, http.StatusOK, that.games.ListByStatus(status))

		return
	}

	if playerID := query.Get("playerId"); playerID != "" {
		that.writeJSON(w, http.StatusOK, that.games.ListByPlayer(playerID))
		return
	}

	if name := query.Get("name"); name != "" {
		that.writeJSON(w, http.StatusOK, that.games.SearchByName(name))
		return
	}

	that.writeJSON(w, http.StatusOK, that.games.List())
}

func (that *handlers) listByStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		that.writeJSON(w, http.StatusOK, that.games.ListByStatus(status))
	}
}

func (that *handlers) listCompleted(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.games.ListCompleted())
}

func (that *handlers) recentGames(w http.ResponseWriter, r *http.Request) {
	limit, ok := that.limitParam(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, that.games.RecentGames(limit))
}

func (that *handlers) mostMoves(w http.ResponseWriter, r *http.Request) {
	limit, ok := that.limitParam(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, that.games.MostMoves(limit))
}

func (that *handlers) countGames(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, map[string]int{"count": that.games.Count()})
}

func (that *handlers) clearGames(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, map[string]int{"cleared": that.games.ClearAll()})
}

func (that *handlers) gamesByPlayer(w http.ResponseWriter, r *http.Request) {
	that.writeJSON(w, http.StatusOK, that.games.ListByPlayer(chi.URLParam(r, "playerID")))
}

func (that *handlers) addPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, err := that.games.AddPlayer(chi.URLParam(r, "gameID"), req.PlayerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) makeMove(w http.ResponseWriter, r *http.Request) {
	var req makeMoveRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, err := that.games.MakeMove(chi.URLParam(r, "gameID"), req.PlayerID, req.Position)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) gameStatus(w http.ResponseWriter, r *http.Request) {
	status, err := that.games.StatusOf(chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (that *handlers) gameBoard(w http.ResponseWriter, r *http.Request) {
	board, err := that.games.BoardOf(chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, board)
}

func (that *handlers) currentPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := that.games.CurrentPlayerOf(chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	if playerID == "" {
		that.writeError(w, apperror.ErrPlayerNotFound)
		return
	}

	player, err := that.players.GetByID(playerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, player)
}

func (that *handlers) winner(w http.ResponseWriter, r *http.Request) {
	winnerID, err := that.games.WinnerOf(chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	if winnerID == "" {
		that.writeError(w, apperror.ErrPlayerNotFound)
		return
	}

	player, err := that.players.GetByID(winnerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, player)
}

func (that *handlers) gameMoves(w http.ResponseWriter, r *http.Request) {
	moves, err := that.games.MovesOf(chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, moves)
}

func (that *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if !that.games.Delete(chi.URLParam(r, "gameID")) {
		that.writeError(w, apperror.ErrGameNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := that.limitParam(w, r)
	if !ok {
		return
	}

	players, err := that.players.Leaderboard(limit, r.URL.Query().Get("sortBy"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, players)
}

func (that *handlers) leaderboardPaginated(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil {
		that.writeError(w, apperror.ErrInvalidPage)
		return
	}

	size, err := strconv.Atoi(query.Get("size"))
	if err != nil {
		that.writeError(w, apperror.ErrInvalidPageSize)
		return
	}

	response, err := that.players.LeaderboardPaginated(page, size, query.Get("sortBy"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, response)
}

func (that *handlers) createPlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if !that.decode(w, r, &req) {
		return
	}

	if err := validation.PlayerName(req.Name); err != nil {
		that.writeError(w, err)
		return
	}

	if err := validation.PlayerEmail(req.Email); err != nil {
		that.writeError(w, err)
		return
	}

	player, err := that.players.Create(req.Name, req.Email)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, player)
}

func (that *handlers) getPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := that.players.GetByID(chi.URLParam(r, "playerID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, player)
}

func (that *handlers) searchPlayers(w http.ResponseWriter, r *http.Request) {
	that.writeJSON(w, http.StatusOK, that.players.SearchByName(r.URL.Query().Get("name")))
}

func (that *handlers) updatePlayer(w http.ResponseWriter, r *http.Request) {
	var req updatePlayerRequest
	if !that.decode(w, r, &req) {
		return
	}

	if err := validation.PlayerName(req.Name); err != nil {
		that.writeError(w, err)
		return
	}

	if err := validation.PlayerEmail(req.Email); err != nil {
		that.writeError(w, err)
		return
	}

	player, err := that.players.Update(chi.URLParam(r, "playerID"), req.Name, req.Email)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, player)
}

func (that *handlers) deletePlayer(w http.ResponseWriter, r *http.Request) {
	if !that.players.Delete(chi.URLParam(r, "playerID")) {
		that.writeError(w, apperror.ErrPlayerNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) playerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.players.StatsOf(chi.URLParam(r, "playerID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, stats)
}

func (that *handlers) countPlayers(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, map[string]int{"count": that.players.Count()})
}

func (that *handlers) clearPlayers(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, map[string]int{"cleared": that.players.ClearAll()})
}

func (that *handlers) mostActivePlayers(w http.ResponseWriter, r *http.Request) {
	limit, ok := that.limitParam(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, that.players.MostActivePlayers(limit))
}

func (that *handlers) limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLeaderboardLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		that.writeError(w, apperror.ErrInvalidLimit)
		return 0, false
	}

	return limit, true
}

func (that *handlers) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		that.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}

	return true
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindConflict:
		status = http.StatusConflict
	case apperror.KindInvalidState:
		status = http.StatusConflict
	case apperror.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperror.KindInternal:
		that.logger.Error("internal error", "error", err)
	}

	that.writeJSON(w, status, map[string]string{"error": err.Error()})
}
