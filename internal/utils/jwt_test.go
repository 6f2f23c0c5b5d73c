package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenCarriesClaims(t *testing.T) {
	at, err := NewAccessToken("secret", 7, "RH", "a.benali@esi.dz", "BENALI Amina", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["role"] != "RH" || claims["email"] != "a.benali@esi.dz" || claims["name"] != "BENALI Amina" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 7 {
		t.Fatalf("sub = %v, want 7", claims["sub"])
	}
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length = %d, want 96 hex chars", len(rt.Raw))
	}
	if HashRefreshRaw(rt.Raw) != HashRefreshRaw(rt.Raw) {
		t.Fatal("hash of same input differs")
	}
	other, _ := NewRefreshToken(7)
	if HashRefreshRaw(rt.Raw) == HashRefreshRaw(other.Raw) {
		t.Fatal("two tokens share one hash")
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	raw, err := NewResetToken("secret", 7, "$2a$10$hash", 30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	uid, err := ParseResetToken("secret", "$2a$10$hash", raw)
	if err != nil {
		t.Fatalf("ParseResetToken: %v", err)
	}
	if uid != 7 {
		t.Fatalf("uid = %d, want 7", uid)
	}
}

func TestResetTokenInvalidAfterPasswordChange(t *testing.T) {
	raw, err := NewResetToken("secret", 7, "$2a$10$oldhash", 30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if _, err := ParseResetToken("secret", "$2a$10$newhash", raw); err != ErrResetTokenInvalid {
		t.Fatalf("got %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetTokenRejectsTampering(t *testing.T) {
	raw, err := NewResetToken("secret", 7, "$2a$10$hash", 30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", raw)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := ParseResetToken("secret", "$2a$10$hash", tampered); err != ErrResetTokenInvalid {
		t.Fatalf("got %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	raw, err := NewResetToken("secret", 7, "$2a$10$hash", -1)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if _, err := ParseResetToken("secret", "$2a$10$hash", raw); err != ErrResetTokenInvalid {
		t.Fatalf("got %v, want ErrResetTokenInvalid", err)
	}
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret", 7, "SG", "x@esi.dz", "X", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	if err == nil && tok.Valid {
		t.Fatal("token validated with the wrong secret")
	}
}
