package keycloak

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"

	"github.com/acikabubo/keycloak-rbac-go/auth"
)

type fakeRealm struct {
	srv    *httptest.Server
	issuer string
	pk     *rsa.PrivateKey
	kid    string

	// loginFunc handles the token endpoint; nil rejects every login.
	loginFunc http.HandlerFunc
}

// newFakeRealm stands up a Keycloak-shaped realm: OIDC discovery, a JWKS
// and a token endpoint, all under /realms/test/.
func newFakeRealm(t *testing.T) *fakeRealm {
	t.Helper()
	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	f := &fakeRealm{pk: pk, kid: "realm-key"}

	jwk := jose.JSONWebKey{Key: &pk.PublicKey, KeyID: f.kid, Algorithm: "RS256", Use: "sig"}
	handler := http.NewServeMux()
	handler.HandleFunc("/realms/test/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 f.issuer,
			"jwks_uri":               f.issuer + "/protocol/openid-connect/certs",
			"authorization_endpoint": f.issuer + "/protocol/openid-connect/auth",
			"token_endpoint":         f.issuer + "/protocol/openid-connect/token",
		})
	})
	handler.HandleFunc("/realms/test/protocol/openid-connect/certs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []jose.JSONWebKey{jwk}})
	})
	handler.HandleFunc("/realms/test/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		if f.loginFunc == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":             "invalid_grant",
				"error_description": "Invalid user credentials",
			})
			return
		}
		f.loginFunc(w, r)
	})

	f.srv = httptest.NewServer(handler)
	f.issuer = f.srv.URL + "/realms/test"
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRealm) settings() *auth.Settings {
	return &auth.Settings{
		ServerURL: f.srv.URL + "/",
		Realm:     "test",
		ClientID:  "app",
	}
}

func (f *fakeRealm) signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = f.kid
	s, err := tok.SignedString(f.pk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func (f *fakeRealm) userClaims(exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":                f.issuer,
		"sub":                "user-123",
		"exp":                exp.Unix(),
		"iat":                time.Now().Unix(),
		"preferred_username": "alice",
		"azp":                "app",
		"resource_access": map[string]any{
			"app": map[string]any{"roles": []string{"admin"}},
		},
	}
}

func TestNewManager_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := &auth.Settings{ServerURL: srv.URL + "/", Realm: "missing"}
	if _, err := NewManager(context.Background(), s); err == nil {
		t.Fatal("expected discovery error for unknown realm")
	}
}

func TestDecodeToken_Valid(t *testing.T) {
	realm := newFakeRealm(t)
	m, err := NewManager(context.Background(), realm.settings())
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}

	tok := realm.signToken(t, realm.userClaims(time.Now().Add(time.Hour)))
	claims, err := m.DecodeToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("DecodeToken() failed: %v", err)
	}

	p, err := auth.NewPrincipal(claims)
	if err != nil {
		t.Fatalf("NewPrincipal() failed: %v", err)
	}
	if p.ID != "user-123" || p.Username != "alice" {
		t.Errorf("principal = %+v, want user-123/alice", p)
	}
	if !p.HasRole("admin") {
		t.Errorf("principal roles = %v, want admin", p.Roles)
	}
}

func TestDecodeToken_ErrorClassification(t *testing.T) {
	realm := newFakeRealm(t)
	m, err := NewManager(context.Background(), realm.settings())
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}

	expired := realm.signToken(t, realm.userClaims(time.Now().Add(-time.Hour)))

	badIssuer := realm.userClaims(time.Now().Add(time.Hour))
	badIssuer["iss"] = "https://evil.example.com/realms/test"

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, auth.ErrTokenExpired},
		{"not a jwt", "garbage", auth.ErrTokenDecode},
		{"empty", "", auth.ErrTokenDecode},
		{"wrong issuer", realm.signToken(t, badIssuer), auth.ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.DecodeToken(context.Background(), tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("DecodeToken() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	realm := newFakeRealm(t)
	realm.loginFunc = func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "password" {
			t.Errorf("grant_type = %q, want password", got)
		}
		if got := r.PostForm.Get("username"); got != "alice" {
			t.Errorf("username = %q, want alice", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":       "at-123",
			"refresh_token":      "rt-456",
			"token_type":         "Bearer",
			"expires_in":         300,
			"refresh_expires_in": 1800,
		})
	}

	m, err := NewManager(context.Background(), realm.settings())
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}

	set, err := m.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if set.AccessToken != "at-123" {
		t.Errorf("AccessToken = %q", set.AccessToken)
	}
	if set.RefreshToken != "rt-456" {
		t.Errorf("RefreshToken = %q", set.RefreshToken)
	}
	if set.RefreshExpiresIn != 1800 {
		t.Errorf("RefreshExpiresIn = %d, want 1800", set.RefreshExpiresIn)
	}
	if set.ExpiresIn < 295 || set.ExpiresIn > 300 {
		t.Errorf("ExpiresIn = %d, want about 300", set.ExpiresIn)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	realm := newFakeRealm(t)
	m, err := NewManager(context.Background(), realm.settings())
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}

	if _, err := m.Login(context.Background(), "alice", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}
