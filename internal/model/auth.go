package model

import "github.com/golang-jwt/jwt/v5"

// GuestClaims identifies a connected participant. No accounts, no passwords:
// a token is minted when a player joins a game and only proves which playerId
// the connection speaks for.
type GuestClaims struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}
