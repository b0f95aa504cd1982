package storage

import (
	"context"
	"testing"
	"time"

	"eventify/models"
)

func TestCreateUserDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "alice")
	_, err := store.CreateUser(ctx, models.User{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "hashed-password",
	})
	if err != ErrDuplicateUser {
		t.Errorf("Expected ErrDuplicateUser for reused email, got %v", err)
	}
	_, err = store.CreateUser(ctx, models.User{
		Username: "alice",
		Email:    "alice-other@example.com",
		Password: "hashed-password",
	})
	if err != ErrDuplicateUser {
		t.Errorf("Expected ErrDuplicateUser for reused username, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")

	byID, err := store.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Username != "alice" || byID.Role != "user" {
		t.Errorf("Unexpected user: %+v", byID)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != alice.ID {
		t.Errorf("Lookup by email returned a different user: %s", byEmail.ID)
	}

	if _, err := store.GetUserByID(ctx, "no-such-user"); err != ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")

	if err := store.UpdateRefreshToken(ctx, alice.ID, "token-1"); err != nil {
		t.Fatalf("UpdateRefreshToken failed: %v", err)
	}
	token, err := store.GetRefreshToken(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetRefreshToken failed: %v", err)
	}
	if token != "token-1" {
		t.Errorf("Expected token-1, got %s", token)
	}

	// Logout clears the stored token.
	if err := store.UpdateRefreshToken(ctx, alice.ID, ""); err != nil {
		t.Fatalf("Clearing refresh token failed: %v", err)
	}
	token, err = store.GetRefreshToken(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetRefreshToken failed: %v", err)
	}
	if token != "" {
		t.Errorf("Expected cleared token, got %s", token)
	}

	if err := store.UpdateRefreshToken(ctx, "no-such-user", "token-2"); err != ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUsernameConflict(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")
	createTestUser(t, store, "bob")

	if err := store.UpdateUsername(ctx, alice.ID, "bob"); err != ErrDuplicateUser {
		t.Errorf("Expected ErrDuplicateUser, got %v", err)
	}
	if err := store.UpdateUsername(ctx, alice.ID, "alice-renamed"); err != nil {
		t.Fatalf("UpdateUsername failed: %v", err)
	}
	got, err := store.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Username != "alice-renamed" {
		t.Errorf("Username not persisted: %s", got.Username)
	}
}

// Signing up again before verifying replaces the previous pending row
// and its code.
func TestUpsertPendingUserReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pending := models.PendingUser{
		Email:     "carol@example.com",
		Username:  "carol",
		Password:  "hashed-password",
		OTP:       "111111",
		OTPExpiry: time.Now().Add(10 * time.Minute),
	}
	if err := store.UpsertPendingUser(ctx, pending); err != nil {
		t.Fatalf("UpsertPendingUser failed: %v", err)
	}

	pending.OTP = "222222"
	if err := store.UpsertPendingUser(ctx, pending); err != nil {
		t.Fatalf("Second UpsertPendingUser failed: %v", err)
	}

	got, err := store.GetPendingUser(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("GetPendingUser failed: %v", err)
	}
	if got.OTP != "222222" {
		t.Errorf("Expected replaced OTP, got %s", got.OTP)
	}
	if rows := countRows(t, store, "SELECT COUNT(*) FROM pending_users WHERE email = ?", "carol@example.com"); rows != 1 {
		t.Errorf("Expected a single pending row, got %d", rows)
	}

	if err := store.DeletePendingUser(ctx, "carol@example.com"); err != nil {
		t.Fatalf("DeletePendingUser failed: %v", err)
	}
	if _, err := store.GetPendingUser(ctx, "carol@example.com"); err != ErrPendingNotFound {
		t.Errorf("Expected ErrPendingNotFound, got %v", err)
	}
}
