package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coreybb/locallibrary/models"
)

const defaultTokenTTL = 10 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Username     string   `json:"username"`
	Capabilities []string `json:"caps"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: defaultTokenTTL, now: time.Now}
}

// WithClock replaces the issuer's time source.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	ti.now = now
	return ti
}

// Issue creates a signed token for user.
func (ti *TokenIssuer) Issue(user *models.User) (string, error) {
	now := ti.now()
	c := claims{
		Username:     user.Username,
		Capabilities: user.Capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and returns the actor it describes.
func (ti *TokenIssuer) Parse(tokenString string) (*Actor, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Actor{
		ID:           c.Subject,
		Username:     c.Username,
		Capabilities: c.Capabilities,
	}, nil
}
