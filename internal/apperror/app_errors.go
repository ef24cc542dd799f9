package apperror

import "errors"

// Kind classifies an error for the transport layer. Every sentinel below
// belongs to exactly one kind; anything unmapped is KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidState
	KindInvalidArgument
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")

	ErrEmailTaken = errors.New("email already in use by another player")

	ErrGameFull        = errors.New("game is full")
	ErrAlreadyJoined   = errors.New("player already joined this game")
	ErrGameNotActive   = errors.New("game is not active")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrPlayerNotInGame = errors.New("player is not in this game")

	ErrInvalidPosition = errors.New("position must be between 0 and 8")
	ErrInvalidPage     = errors.New("page number must be non-negative")
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrInvalidLimit    = errors.New("limit must be a non-negative integer")
	ErrPageOutOfRange  = errors.New("page number is out of range")
	ErrInvalidSortKey  = errors.New("unknown leaderboard sort key")
	ErrInvalidStatus   = errors.New("unknown game status")
	ErrInvalidName     = errors.New("name is empty or contains invalid characters")
	ErrInvalidEmail    = errors.New("email is empty or malformed")
)

var kinds = map[error]Kind{
	ErrGameNotFound:   KindNotFound,
	ErrPlayerNotFound: KindNotFound,

	ErrEmailTaken: KindConflict,

	ErrGameFull:        KindInvalidState,
	ErrAlreadyJoined:   KindInvalidState,
	ErrGameNotActive:   KindInvalidState,
	ErrNotYourTurn:     KindInvalidState,
	ErrCellOccupied:    KindInvalidState,
	ErrPlayerNotInGame: KindInvalidState,

	ErrInvalidPosition: KindInvalidArgument,
	ErrInvalidPage:     KindInvalidArgument,
	ErrInvalidPageSize: KindInvalidArgument,
	ErrInvalidLimit:    KindInvalidArgument,
	ErrPageOutOfRange:  KindInvalidArgument,
	ErrInvalidSortKey:  KindInvalidArgument,
	ErrInvalidStatus:   KindInvalidArgument,
	ErrInvalidName:     KindInvalidArgument,
	ErrInvalidEmail:    KindInvalidArgument,
}

// KindOf resolves the taxonomy kind of err through any wrapping.
func KindOf(err error) Kind {
	for sentinel, kind := range kinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return KindInternal
}
