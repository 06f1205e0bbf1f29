package service

import (
	"arcadechat/internal/model"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService mints and validates guest tokens. A token only binds a live
// connection to the playerId it was issued for; there are no accounts.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service. The secret comes from config.
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// GenerateGuestToken creates a token for a joining player
func (s *AuthService) GenerateGuestToken(playerID, nickname string) (string, error) {
	claims := &model.GuestClaims{
		PlayerID: playerID,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 24h for game sessions
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateGuestToken validates a guest JWT and returns claims
func (s *AuthService) ValidateGuestToken(tokenString string) (*model.GuestClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.GuestClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.GuestClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
