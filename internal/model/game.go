package model

import "time"

// Game is the persisted typing-race document. Grid-game rooms are
// memory-resident only and never stored (see internal/match).
type Game struct {
	ID        string    `json:"id" bson:"_id"`
	Players   []Player  `json:"players" bson:"players"`
	Words     []string  `json:"words" bson:"words"`
	IsOpen    bool      `json:"isOpen" bson:"isOpen"`
	IsOver    bool      `json:"isOver" bson:"isOver"`
	StartTime int64     `json:"startTime" bson:"startTime"` // epoch seconds, 0 until the race starts
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Player is one race participant inside a Game document.
type Player struct {
	ID               string  `json:"playerId" bson:"playerId"`
	Nickname         string  `json:"nickname" bson:"nickname"`
	IsPartyLeader    bool    `json:"isPartyLeader" bson:"isPartyLeader"`
	CurrentWordIndex int     `json:"currentWordIndex" bson:"currentWordIndex"`
	WPM              float64 `json:"wpm" bson:"wpm"`
}

// FindPlayer returns the player with the given id, or nil.
func (g *Game) FindPlayer(playerID string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i]
		}
	}
	return nil
}
