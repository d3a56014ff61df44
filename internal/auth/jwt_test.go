package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-at-least-32-bytes-long!"

func TestNewJWTService(t *testing.T) {
	t.Run("accepts a sufficiently long secret", func(t *testing.T) {
		if svc := NewJWTService(testSecret); svc == nil {
			t.Fatal("NewJWTService() = nil for a valid secret")
		}
	})

	t.Run("rejects a short secret", func(t *testing.T) {
		if svc := NewJWTService("too-short"); svc != nil {
			t.Error("NewJWTService() should return nil for a secret shorter than MinJWTSecretBytes")
		}
	})

	t.Run("rejects an empty secret", func(t *testing.T) {
		if svc := NewJWTService(""); svc != nil {
			t.Error("NewJWTService() should return nil for an empty secret")
		}
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(testSecret)

	token, err := svc.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned an empty token")
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q does not look like a compact JWT", token)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("claims.UserID = %d, want 42", claims.UserID)
	}

	wantExpiry := claims.IssuedAt.Time.Add(7 * 24 * time.Hour)
	if !claims.ExpiresAt.Time.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want iat + 7 days = %v", claims.ExpiresAt.Time, wantExpiry)
	}
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	svc := NewJWTService(testSecret)
	token, _ := svc.GenerateToken(1)

	tampered := token[:len(token)-1] + "x"
	if _, err := svc.ValidateToken(tampered); err == nil {
		t.Error("ValidateToken() accepted a tampered signature")
	}
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	svc1 := NewJWTService(testSecret)
	svc2 := NewJWTService("a-completely-different-32-byte-secret!!")

	token, _ := svc1.GenerateToken(7)
	if _, err := svc2.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted a token signed with a different secret")
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	svc := NewJWTService(testSecret)
	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Error("ValidateToken() accepted a malformed token")
	}
}
