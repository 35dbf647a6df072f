package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

type AccessClaims struct {
	WalletAddress string
	ExpiresAt     time.Time
}

type AuthResult struct {
	AccessToken   string
	AccessExpires time.Time
	WalletAddress string
}
