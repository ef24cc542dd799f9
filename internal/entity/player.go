package entity

import "time"

type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Stats     Stats     `json:"stats"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewPlayer(id, name, email string) *Player {
	now := time.Now()

	return &Player{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns an independent copy, safe to hand out to callers.
func (that *Player) Clone() *Player {
	clone := *that
	return &clone
}
