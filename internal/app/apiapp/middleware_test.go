package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
)

const testWallet = "0xabcdef0123456789abcdef0123456789abcdef01"

func newAuthService(t *testing.T) *authsvc.Service {
	t.Helper()
	return authsvc.NewService(authsvc.NewJWTManager("test-secret", time.Hour))
}

func TestAuthMiddlewarePassesIdentity(t *testing.T) {
	svc := newAuthService(t)
	res, err := svc.Login(testWallet)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var gotWallet string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("expected identity in request context")
		}
		gotWallet = identity.WalletAddress
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rr := httptest.NewRecorder()
	AuthMiddleware(svc, nil)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
	if gotWallet != testWallet {
		t.Fatalf("unexpected wallet in identity: got %q want %q", gotWallet, testWallet)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	svc := newAuthService(t)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	rr := httptest.NewRecorder()
	AuthMiddleware(svc, nil)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	svc := newAuthService(t)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run with a bad token")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	AuthMiddleware(svc, nil)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}
