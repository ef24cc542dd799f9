package entity

import (
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/tictactoe"
)

const (
	StatusWaiting   = "WAITING"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusDraw      = "DRAW"

	MaxPlayers = 2
)

// ParseStatus normalizes a status filter value.
func ParseStatus(raw string) (string, error) {
	switch status := strings.ToUpper(raw); status {
	case StatusWaiting, StatusActive, StatusCompleted, StatusDraw:
		return status, nil
	default:
		return "", apperror.ErrInvalidStatus
	}
}

// Seat ties a joined player to the symbol assigned by join order.
// The first joiner always holds X and moves first; this follows from seat
// insertion order and is relied on throughout.
type Seat struct {
	PlayerID string `json:"playerId"`
	Symbol   string `json:"symbol"`
}

// Move is an append-only record of one accepted placement.
type Move struct {
	GameID     string    `json:"gameId"`
	PlayerID   string    `json:"playerId"`
	Position   int       `json:"position"`
	Symbol     string    `json:"symbol"`
	MoveNumber int       `json:"moveNumber"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Outcome reports what an accepted move did to the game.
type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomeWin
	OutcomeDraw
)

type Game struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	Board           tictactoe.Board `json:"board"`
	Seats           []Seat          `json:"players"`
	CurrentPlayerID string          `json:"currentPlayerId,omitempty"`
	WinnerID        string          `json:"winnerId,omitempty"`
	Moves           []Move          `json:"moves"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func NewGame(id, name string) *Game {
	now := time.Now()

	return &Game{
		ID:        id,
		Name:      name,
		Status:    StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsActive() bool {
	return that.Status == StatusActive
}

// IsFinished reports whether the game reached a terminal status.
func (that *Game) IsFinished() bool {
	return that.Status == StatusCompleted || that.Status == StatusDraw
}

func (that *Game) HasPlayer(playerID string) bool {
	_, ok := that.seatOf(playerID)
	return ok
}

// OpponentOf returns the other joined player's id.
func (that *Game) OpponentOf(playerID string) (string, bool) {
	for _, seat := range that.Seats {
		if seat.PlayerID != playerID {
			return seat.PlayerID, true
		}
	}

	return "", false
}

func (that *Game) seatOf(playerID string) (Seat, bool) {
	for _, seat := range that.Seats {
		if seat.PlayerID == playerID {
			return seat, true
		}
	}

	return Seat{}, false
}

// AddPlayer seats a player. On the second join the game becomes active and
// the first-joined player gets the turn.
func (that *Game) AddPlayer(playerID string) error {
	if that.HasPlayer(playerID) {
		return apperror.ErrAlreadyJoined
	}

	if len(that.Seats) >= MaxPlayers {
		return apperror.ErrGameFull
	}

	symbol := tictactoe.SymbolX
	if len(that.Seats) == 1 {
		symbol = tictactoe.SymbolO
	}

	that.Seats = append(that.Seats, Seat{PlayerID: playerID, Symbol: symbol})
	that.UpdatedAt = time.Now()

	if len(that.Seats) == MaxPlayers {
		that.Status = StatusActive
		that.CurrentPlayerID = that.Seats[0].PlayerID
	}

	return nil
}

// ApplyMove validates and applies one placement, records it, and advances
// the state machine. On failure the game is left untouched. The returned
// Outcome tells the caller whether a terminal transition happened; stats
// bookkeeping is the caller's job so it can run inside the same critical
// section as the status change.
func (that *Game) ApplyMove(playerID string, position int) (Outcome, error) {
	if !that.IsActive() {
		return OutcomeOngoing, apperror.ErrGameNotActive
	}

	seat, ok := that.seatOf(playerID)
	if !ok {
		return OutcomeOngoing, apperror.ErrPlayerNotInGame
	}

	if that.CurrentPlayerID != playerID {
		return OutcomeOngoing, apperror.ErrNotYourTurn
	}

	if position < 0 || position >= tictactoe.BoardSize {
		return OutcomeOngoing, apperror.ErrInvalidPosition
	}

	if !tictactoe.IsLegalMove(that.Board, position) {
		return OutcomeOngoing, apperror.ErrCellOccupied
	}

	that.Board[position] = seat.Symbol
	that.Moves = append(that.Moves, Move{
		GameID:     that.ID,
		PlayerID:   playerID,
		Position:   position,
		Symbol:     seat.Symbol,
		MoveNumber: len(that.Moves) + 1,
		CreatedAt:  time.Now(),
	})
	that.UpdatedAt = time.Now()

	switch {
	case tictactoe.IsWin(that.Board, seat.Symbol):
		that.Status = StatusCompleted
		that.WinnerID = playerID

		return OutcomeWin, nil
	case tictactoe.IsDraw(that.Board):
		that.Status = StatusDraw

		return OutcomeDraw, nil
	default:
		if opponent, ok := that.OpponentOf(playerID); ok {
			that.CurrentPlayerID = opponent
		}

		return OutcomeOngoing, nil
	}
}

// MoveHistory returns a defensive copy of the move list.
func (that *Game) MoveHistory() []Move {
	moves := make([]Move, len(that.Moves))
	copy(moves, that.Moves)

	return moves
}

// Clone returns an independent copy, safe to hand out to callers.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Seats = make([]Seat, len(that.Seats))
	copy(clone.Seats, that.Seats)
	clone.Moves = that.MoveHistory()

	return &clone
}
