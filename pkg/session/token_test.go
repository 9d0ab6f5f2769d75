package session

import (
	"strings"
	"testing"
	"time"

	"github.com/arkfood/ordering-backend/pkg/config"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret",
		Issuer:     "ark-ordering",
		TTLMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	token, sessionID, err := Mint(cfg, now)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected non-empty session id")
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a JWT, got %q", token)
	}

	claims, err := Parse(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != sessionID {
		t.Fatalf("expected session id %q, got %q", sessionID, claims.SessionID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %q, got %q", cfg.Issuer, claims.Issuer)
	}
}

func TestMintForKeepsSessionID(t *testing.T) {
	cfg := testConfig()

	token, sessionID, err := MintFor(cfg, time.Now(), "s-123")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if sessionID != "s-123" {
		t.Fatalf("expected s-123, got %q", sessionID)
	}

	claims, err := Parse(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != "s-123" {
		t.Fatalf("expected s-123, got %q", claims.SessionID)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := testConfig()

	token, _, err := Mint(cfg, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := Parse(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()

	token, _, err := Mint(cfg, time.Now())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "another-secret"
	if _, err := Parse(other, token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}
