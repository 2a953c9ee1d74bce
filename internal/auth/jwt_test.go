package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "agency-one")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user_id = %s, want %s", claims.UserID, userID)
	}
	if claims.Username != "agency-one" {
		t.Errorf("username = %q", claims.Username)
	}
	if claims.ID == "" {
		t.Error("jti missing; logout revocation needs it")
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "u")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTService("secret-b", 1).Validate(token); err == nil {
		t.Fatal("token signed with another secret validated")
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Validate(tok); err == nil {
			t.Errorf("Validate(%q) accepted", tok)
		}
	}
}
