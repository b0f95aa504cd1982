package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"eventify/models"
	"eventify/storage"
	"eventify/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Controller struct{}

var validate = validator.New()

const otpExpiry = 10 * time.Minute

// Signup parses the multipart signup form, stashes a pending user and
// mails a one-time code. The real user row is only created once the
// code is verified.
func (c Controller) Signup(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}

		form := struct {
			Username string `validate:"required,min=3"`
			Email    string `validate:"required,email"`
			Password string `validate:"required,min=6"`
		}{
			Username: strings.ToLower(strings.TrimSpace(r.FormValue("username"))),
			Email:    strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
			Password: r.FormValue("password"),
		}
		if err := validate.Struct(form); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Username, email and password are required"})
			return
		}

		exists, err := store.UserExists(r.Context(), form.Username, form.Email)
		if err != nil {
			logrus.Errorf("Error checking existing user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		if exists {
			utils.RespondWithError(w, http.StatusConflict, models.Error{Message: "User already exists"})
			return
		}

		profileImageURL := ""
		if file, header, err := r.FormFile("avatar"); err == nil {
			defer file.Close()
			fileName := uuid.NewString() + "_" + header.Filename
			profileImageURL, err = utils.StoreMultipartFile(file, fileName, "avatar")
			if err != nil {
				logrus.Errorf("Error storing avatar: %v", err)
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to upload avatar"})
				return
			}
		}

		hash, err := utils.HashPassword(form.Password)
		if err != nil {
			logrus.Errorf("Error hashing password: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		otp, err := utils.GenerateOTP()
		if err != nil {
			logrus.Errorf("Error generating OTP: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to generate OTP"})
			return
		}

		pending := models.PendingUser{
			Email:        form.Email,
			Username:     form.Username,
			Password:     hash,
			ProfileImage: profileImageURL,
			OTP:          otp,
			OTPExpiry:    time.Now().Add(otpExpiry),
		}
		if err := store.UpsertPendingUser(r.Context(), pending); err != nil {
			logrus.Errorf("Error saving pending user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		if err := utils.SendVerificationOTP(form.Email, otp); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to send OTP email"})
			return
		}

		utils.ResponseJSON(w, http.StatusOK, map[string]interface{}{}, "OTP sent to email")
	}
}

// VerifyOTP turns a pending signup into a real account. Expired or
// wrong codes reject; expired pending rows are removed on sight.
func (c Controller) VerifyOTP(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email" validate:"required,email"`
			OTP   string `json:"otp" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid request body"})
			return
		}
		defer r.Body.Close()
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		if err := validate.Struct(body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Email and OTP are required"})
			return
		}

		pending, err := store.GetPendingUser(r.Context(), body.Email)
		if err == storage.ErrPendingNotFound {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "No pending registration found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error loading pending user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		if time.Now().After(pending.OTPExpiry) {
			if err := store.DeletePendingUser(r.Context(), body.Email); err != nil {
				logrus.Errorf("Error deleting expired pending user: %v", err)
			}
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid or expired OTP"})
			return
		}
		if pending.OTP != body.OTP {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid or expired OTP"})
			return
		}

		user, err := store.CreateUser(r.Context(), models.User{
			Username:     pending.Username,
			Email:        pending.Email,
			Password:     pending.Password,
			ProfileImage: pending.ProfileImage,
		})
		if err == storage.ErrDuplicateUser {
			utils.RespondWithError(w, http.StatusConflict, models.Error{Message: "User already exists"})
			return
		}
		if err != nil {
			logrus.Errorf("Error creating user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		if err := store.DeletePendingUser(r.Context(), body.Email); err != nil {
			logrus.Errorf("Error deleting pending user: %v", err)
		}

		accessToken, refreshToken, err := issueTokens(store, r, user)
		if err != nil {
			logrus.Errorf("Error generating tokens: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		utils.ResponseJSON(w, http.StatusCreated, map[string]interface{}{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		}, "Account verified & registered")
	}
}

func (c Controller) Login(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid request body"})
			return
		}
		defer r.Body.Close()
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		if err := validate.Struct(body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Email and password are required"})
			return
		}

		user, err := store.GetUserByEmail(r.Context(), body.Email)
		if err == storage.ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "User does not exist"})
			return
		}
		if err != nil {
			logrus.Errorf("Error querying user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		if !utils.ComparePasswords(user.Password, []byte(body.Password)) {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Invalid credentials"})
			return
		}

		accessToken, refreshToken, err := issueTokens(store, r, user)
		if err != nil {
			logrus.Errorf("Error generating tokens: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		user.Password = ""
		utils.ResponseJSON(w, http.StatusOK, map[string]interface{}{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		}, "User logged in successfully")
	}
}

// RefreshToken rotates the refresh token. A token that does not match
// the one stored on the user row is treated as expired or already used.
func (c Controller) RefreshToken(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized request"})
			return
		}
		defer r.Body.Close()

		userID, err := utils.UserIDFromRefreshToken(body.RefreshToken)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Invalid refresh token"})
			return
		}

		stored, err := store.GetRefreshToken(r.Context(), userID)
		if err != nil || stored == "" || stored != body.RefreshToken {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Refresh token is expired or used"})
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Invalid refresh token"})
			return
		}

		accessToken, refreshToken, err := issueTokens(store, r, user)
		if err != nil {
			logrus.Errorf("Error generating tokens: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		utils.ResponseJSON(w, http.StatusOK, map[string]string{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		}, "Access token refreshed")
	}
}

func (c Controller) Logout(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}
		if err := store.UpdateRefreshToken(r.Context(), userID, ""); err != nil {
			logrus.Errorf("Error clearing refresh token: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, map[string]interface{}{}, "User logged out successfully")
	}
}

func (c Controller) CurrentUser(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}
		user, err := store.GetUserByID(r.Context(), userID)
		if err == storage.ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "User not found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error loading user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		user.Password = ""
		utils.ResponseJSON(w, http.StatusOK, user, "User fetched successfully")
	}
}

func (c Controller) ChangePassword(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		var body struct {
			OldPassword string `json:"old_password" validate:"required"`
			NewPassword string `json:"new_password" validate:"required,min=6"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid request body"})
			return
		}
		defer r.Body.Close()
		if err := validate.Struct(body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Old and new passwords are required"})
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "User not found"})
			return
		}
		if !utils.ComparePasswords(user.Password, []byte(body.OldPassword)) {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid current password"})
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			logrus.Errorf("Error hashing password: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		if err := store.UpdatePassword(r.Context(), userID, hash); err != nil {
			logrus.Errorf("Error updating password: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, map[string]interface{}{}, "Password changed successfully")
	}
}

func (c Controller) UpdateAccount(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		var body struct {
			Username string `json:"username" validate:"required,min=3"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid request body"})
			return
		}
		defer r.Body.Close()
		body.Username = strings.ToLower(strings.TrimSpace(body.Username))
		if err := validate.Struct(body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Username is required"})
			return
		}

		err = store.UpdateUsername(r.Context(), userID, body.Username)
		if err == storage.ErrDuplicateUser {
			utils.RespondWithError(w, http.StatusConflict, models.Error{Message: "Username is already taken"})
			return
		}
		if err == storage.ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "User not found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error updating username: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			logrus.Errorf("Error loading user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		user.Password = ""
		utils.ResponseJSON(w, http.StatusOK, user, "Username updated successfully")
	}
}

func (c Controller) UpdateAvatar(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Avatar file is missing"})
			return
		}
		defer file.Close()

		fileName := uuid.NewString() + "_" + header.Filename
		imageURL, err := utils.StoreMultipartFile(file, fileName, "avatar")
		if err != nil {
			logrus.Errorf("Error storing avatar: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to upload avatar"})
			return
		}

		if err := store.UpdateAvatar(r.Context(), userID, imageURL); err != nil {
			logrus.Errorf("Error updating avatar: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			logrus.Errorf("Error loading user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		user.Password = ""
		utils.ResponseJSON(w, http.StatusOK, user, "Avatar changed successfully")
	}
}

func issueTokens(store *storage.Store, r *http.Request, user models.User) (string, string, error) {
	accessToken, err := utils.GenerateAccessToken(user, utils.AccessTokenExpiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := utils.GenerateRefreshToken(user, utils.RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}
	if err := store.UpdateRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
