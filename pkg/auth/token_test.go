package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "lcdt",
		ExpirationMinutes: 30,
	}
}

func TestMintedTokenRoundTrips(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, Role: enums.RoleChef})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user_id %s, want %s", claims.UserID, userID)
	}
	if claims.Role != enums.RoleChef {
		t.Fatalf("role %s, want chef", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer %s, want %s", claims.Issuer, cfg.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("empty JTI must be filled with a generated one")
	}

	wantExp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	if gap := claims.ExpiresAt.Sub(wantExp).Abs(); gap >= time.Second {
		t.Fatalf("exp %v, want about %v", claims.ExpiresAt.UTC(), wantExp)
	}
}

func TestMintPreservesSuppliedJTI(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.RoleUser,
		JTI:    "session-abc",
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.ID != "session-abc" {
		t.Fatalf("jti %q, want the supplied one", claims.ID)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("tampered signature must not parse")
	}
}

func TestExpiredTokenRejectedButReadableForRefresh(t *testing.T) {
	cfg := testJWTConfig()
	issuedAnHourAgo := time.Now().Add(-time.Hour)
	token, err := MintAccessToken(cfg, issuedAnHourAgo, AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleAdmin})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessTokenAllowExpired: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("refresh flow needs the jti from the expired token")
	}
}

func TestMintRejectsUnknownRole(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: "sommelier"}); err == nil {
		t.Fatal("expected invalid role error")
	}
}
