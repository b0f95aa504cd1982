package storage

import (
	"context"
	"database/sql"
	"time"

	"eventify/models"

	"github.com/google/uuid"
)

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = uuid.NewString()
	if user.Role == "" {
		user.Role = "user"
	}
	now := formatTime(time.Now())
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password, profile_image, role, department, student_id, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		user.ID, user.Username, user.Email, user.Password, user.ProfileImage, user.Role, user.Department, user.StudentID, now, now)
	if isDuplicateKeyErr(err) {
		return models.User{}, ErrDuplicateUser
	}
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password, profile_image, role, department, student_id, created_at, updated_at
		FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password, profile_image, role, department, student_id, created_at, updated_at
		FROM users WHERE email = ?`, email))
}

func (s *Store) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.ProfileImage,
		&user.Role, &user.Department, &user.StudentID, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?",
		refreshToken, formatTime(time.Now()), userID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func (s *Store) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, "SELECT refresh_token FROM users WHERE id = ?", userID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", ErrUserNotFound
	}
	return token, err
}

func (s *Store) UpdatePassword(ctx context.Context, userID, hashedPassword string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password = ?, updated_at = ? WHERE id = ?",
		hashedPassword, formatTime(time.Now()), userID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func (s *Store) UpdateUsername(ctx context.Context, userID, username string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET username = ?, updated_at = ? WHERE id = ?",
		username, formatTime(time.Now()), userID)
	if isDuplicateKeyErr(err) {
		return ErrDuplicateUser
	}
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func (s *Store) UpdateAvatar(ctx context.Context, userID, imageURL string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET profile_image = ?, updated_at = ? WHERE id = ?",
		imageURL, formatTime(time.Now()), userID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ? OR email = ?",
		username, email).Scan(&n)
	return n > 0, err
}

// UpsertPendingUser replaces any pending signup for the same email, so a
// user who never received the mail can simply sign up again.
func (s *Store) UpsertPendingUser(ctx context.Context, pending models.PendingUser) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pending_users WHERE email = ?", pending.Email); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO pending_users (email, username, password, profile_image, otp, otp_expiry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pending.Email, pending.Username, pending.Password, pending.ProfileImage,
		pending.OTP, formatTime(pending.OTPExpiry), formatTime(time.Now()))
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetPendingUser(ctx context.Context, email string) (models.PendingUser, error) {
	var pending models.PendingUser
	var expiry string
	err := s.db.QueryRowContext(ctx, `
		SELECT email, username, password, profile_image, otp, otp_expiry
		FROM pending_users WHERE email = ?`, email).
		Scan(&pending.Email, &pending.Username, &pending.Password, &pending.ProfileImage, &pending.OTP, &expiry)
	if err == sql.ErrNoRows {
		return models.PendingUser{}, ErrPendingNotFound
	}
	if err != nil {
		return models.PendingUser{}, err
	}
	pending.OTPExpiry, err = parseTime(expiry)
	return pending, err
}

func (s *Store) DeletePendingUser(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_users WHERE email = ?", email)
	return err
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
