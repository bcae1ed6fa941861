package services

import (
	"context"
	"errors"
	"testing"

	"phishing-detection-api/config"
	"phishing-detection-api/database"
	"phishing-detection-api/models"
)

func newTestAuthService(t *testing.T) *AuthService {
	return NewAuthService(database.OpenTestDB(t), config.JWTConfig{
		Secret:      "test-secret-key",
		ExpiryHours: 24,
	})
}

func TestHashAndCheckPassword(t *testing.T) {
	svc := NewAuthService(nil, config.JWTConfig{Secret: "s", ExpiryHours: 1})

	hash, err := svc.HashPassword("mypassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" || hash == "mypassword123" {
		t.Fatalf("HashPassword returned %q", hash)
	}

	if !svc.CheckPassword(hash, "mypassword123") {
		t.Error("CheckPassword should return true for correct password")
	}
	if svc.CheckPassword(hash, "wrongpassword") {
		t.Error("CheckPassword should return false for wrong password")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewAuthService(nil, config.JWTConfig{Secret: "test-secret-key", ExpiryHours: 24})

	token, err := svc.GenerateToken(42, "analyst@phishguard.io", models.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "analyst@phishguard.io" {
		t.Errorf("Email = %q", claims.Email)
	}
	if !claims.IsAdmin() {
		t.Errorf("IsAdmin() = false for role %q", claims.Role)
	}
	if claims.Issuer != "phishguard" || claims.Subject != "42" {
		t.Errorf("Issuer/Subject = %q/%q", claims.Issuer, claims.Subject)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Error("ExpiresAt and IssuedAt should be set")
	}
}

func TestValidateTokenRejects(t *testing.T) {
	svc1 := NewAuthService(nil, config.JWTConfig{Secret: "secret-1", ExpiryHours: 24})
	svc2 := NewAuthService(nil, config.JWTConfig{Secret: "secret-2", ExpiryHours: 24})
	expired := NewAuthService(nil, config.JWTConfig{Secret: "secret-1", ExpiryHours: -1})

	good, _ := svc1.GenerateToken(1, "user@test.com", models.RoleUser)
	old, _ := expired.GenerateToken(1, "user@test.com", models.RoleUser)

	tests := []struct {
		name  string
		svc   *AuthService
		token string
	}{
		{"garbage", svc1, "invalid.token.string"},
		{"wrong secret", svc2, good},
		{"expired", svc1, old},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Admin@Example.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if first.Role != models.RoleAdmin {
		t.Errorf("first user role = %q, want admin", first.Role)
	}
	if first.Email != "admin@example.com" {
		t.Errorf("Email = %q, want lowercased", first.Email)
	}

	second, err := svc.Register(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if second.Role != models.RoleUser {
		t.Errorf("second user role = %q, want user", second.Role)
	}

	if _, err := svc.Register(ctx, "USER@example.com", "other-password"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register error = %v, want ErrEmailTaken", err)
	}

	got, err := svc.Authenticate(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("Authenticate ID = %d, want %d", got.ID, second.ID)
	}

	if _, err := svc.Authenticate(ctx, "user@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}
