package pkg

import "github.com/google/uuid"

// GenerateID returns an opaque unique identifier for games and players.
func GenerateID() string {
	return uuid.NewString()
}
