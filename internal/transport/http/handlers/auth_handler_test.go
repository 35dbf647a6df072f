package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
)

func newAuthHandler() *AuthHandler {
	manager := authsvc.NewJWTManager("test-secret", time.Hour)
	return NewAuthHandler(authsvc.NewService(manager))
}

func TestWalletLoginReturnsToken(t *testing.T) {
	h := newAuthHandler()

	body, err := json.Marshal(map[string]any{
		"wallet_address": "0xABCDEF0123456789abcdef0123456789ABCDEF01",
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/wallet", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Wallet(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		AccessToken   string `json:"access_token"`
		ExpiresInSec  int64  `json:"expires_in_sec"`
		WalletAddress string `json:"wallet_address"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.AccessToken == "" {
		t.Fatal("expected a non-empty access token")
	}
	if payload.WalletAddress != "0xabcdef0123456789abcdef0123456789abcdef01" {
		t.Fatalf("unexpected wallet address: %q", payload.WalletAddress)
	}
	if payload.ExpiresInSec <= 0 {
		t.Fatalf("unexpected expires_in_sec: %d", payload.ExpiresInSec)
	}
}

func TestWalletLoginRejectsMalformedAddress(t *testing.T) {
	h := newAuthHandler()

	body := []byte(`{"wallet_address":"not-an-address"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/wallet", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Wallet(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestWalletLoginRejectsUnknownFields(t *testing.T) {
	h := newAuthHandler()

	body := []byte(`{"wallet_address":"0xabcdef0123456789abcdef0123456789abcdef01","extra":true}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/wallet", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Wallet(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}
