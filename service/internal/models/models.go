// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Match is one game as seen by our agent.
type Match struct {
	ID        uuid.UUID `json:"id"`
	MyID      int       `json:"myId"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Map       []string  `json:"map"`   // raw map rows, 'x' land, '.' water
	Start     string    `json:"start"` // the "x y" line we answered with
	StartedAt time.Time `json:"startedAt"`
}

// TurnRecord captures one decision cycle for later inspection.
type TurnRecord struct {
	MatchID       uuid.UUID `json:"matchId"`
	Turn          int       `json:"turn"`
	Input         []string  `json:"input"`  // raw referee lines for the turn
	Output        string    `json:"output"` // the line we emitted
	Mode          string    `json:"mode"`   // belief mode after the update
	Candidates    int       `json:"candidates"`
	HitCase       string    `json:"hitCase"`
	ElapsedMicros int64     `json:"elapsedMicros"`
	RecordedAt    time.Time `json:"recordedAt"`
}
