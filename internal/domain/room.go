package domain

import "time"

type RoomID string

// Room is a signaling scope: the set of connections sharing one call
// context. Covers both 1:1 and group calls.
type Room struct {
	ID        RoomID
	CreatedAt time.Time
}
