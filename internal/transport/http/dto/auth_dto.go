package dto

type WalletAuthRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type AuthTokensResponse struct {
	AccessToken   string `json:"access_token"`
	ExpiresInSec  int64  `json:"expires_in_sec"`
	WalletAddress string `json:"wallet_address"`
}
