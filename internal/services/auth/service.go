package auth

import (
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/pkg/validate"
)

// Service issues wallet-scoped access tokens. The wallet itself is the
// identity; signature verification happens client side in the wallet
// connector, so login only normalizes and validates the address shape.
type Service struct {
	jwt *JWTManager
}

func NewService(jwtManager *JWTManager) *Service {
	return &Service{jwt: jwtManager}
}

func (s *Service) Login(walletAddress string) (AuthResult, error) {
	if !validate.WalletAddress(walletAddress) {
		return AuthResult{}, ErrInvalidInput
	}

	address := validate.NormalizeAddress(walletAddress)
	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(address)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:   accessToken,
		AccessExpires: accessExpires,
		WalletAddress: address,
	}, nil
}

func (s *Service) ValidateAccessToken(accessToken string) (AccessClaims, error) {
	return s.jwt.ParseAccessToken(accessToken)
}
