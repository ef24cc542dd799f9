package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const (
	maxNameLength  = 100
	maxEmailLength = 255
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	playerNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-_']+$`)
	gameNameRegex   = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
)

// PlayerName checks the display name: non-empty, at most 100 characters,
// letters, digits, spaces, hyphens, underscores and apostrophes.
func PlayerName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(name) > maxNameLength || !playerNameRegex.MatchString(name) {
		return fmt.Errorf("%w: player name %q", apperror.ErrInvalidName, name)
	}

	return nil
}

// PlayerEmail checks the email shape and length.
func PlayerEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" || len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidEmail, email)
	}

	return nil
}

// GameName is like PlayerName but without apostrophes.
func GameName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(name) > maxNameLength || !gameNameRegex.MatchString(name) {
		return fmt.Errorf("%w: game name %q", apperror.ErrInvalidName, name)
	}

	return nil
}
