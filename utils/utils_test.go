package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"eventify/models"
)

func TestHashAndComparePasswords(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("Password stored in plain text")
	}
	if !ComparePasswords(hash, []byte("s3cret-password")) {
		t.Error("Correct password rejected")
	}
	if ComparePasswords(hash, []byte("wrong-password")) {
		t.Error("Wrong password accepted")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("SECRET", "test-secret")
	user := models.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: "user"}

	token, err := GenerateAccessToken(user, AccessTokenExpiry)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/v1/events", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	userID, err := VerifyToken(r)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Expected user-1, got %s", userID)
	}
}

func TestVerifyTokenRejectsBadInput(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	r := httptest.NewRequest("GET", "/api/v1/events", nil)
	if _, err := VerifyToken(r); err == nil {
		t.Error("Expected error for missing Authorization header")
	}

	r.Header.Set("Authorization", "Bearer not-a-token")
	if _, err := VerifyToken(r); err == nil {
		t.Error("Expected error for garbage token")
	}

	expired, err := GenerateAccessToken(models.User{ID: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	r.Header.Set("Authorization", "Bearer "+expired)
	if _, err := VerifyToken(r); err == nil {
		t.Error("Expected error for expired token")
	}
}

func TestRefreshTokenCarriesUserID(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	token, err := GenerateRefreshToken(models.User{ID: "user-7"}, RefreshTokenExpiry)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}
	userID, err := UserIDFromRefreshToken(token)
	if err != nil {
		t.Fatalf("UserIDFromRefreshToken failed: %v", err)
	}
	if userID != "user-7" {
		t.Errorf("Expected user-7, got %s", userID)
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP failed: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("Expected 6 digits, got %q", otp)
		}
		for _, c := range otp {
			if c < '0' || c > '9' {
				t.Fatalf("Non-digit in OTP %q", otp)
			}
		}
	}
}
