package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"eventify/models"
	"eventify/storage"
	"eventify/utils"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type EventsRegistrationController struct{}

// RegisterForEvent joins the authenticated user to an event. The body
// may carry student_id and department; they are only required on the
// user's first-ever registration and are ignored once the profile holds
// them.
func (ec *EventsRegistrationController) RegisterForEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		var body struct {
			StudentID  string `json:"student_id"`
			Department string `json:"department"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()

		registration, err := store.RegisterForEvent(r.Context(), userID, mux.Vars(r)["event"], body.StudentID, body.Department)
		switch err {
		case nil:
		case storage.ErrEventNotFound:
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
			return
		case storage.ErrAlreadyRegistered:
			utils.RespondWithError(w, http.StatusConflict, models.Error{Message: "You have already registered for this event"})
			return
		case storage.ErrRegistrationClosed:
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Registration has closed for this event"})
			return
		case storage.ErrMissingIdentity:
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Student ID and Department are required"})
			return
		case storage.ErrUserNotFound:
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "User not found"})
			return
		default:
			logrus.Errorf("Error registering user %s for event: %v", userID, err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to register for event"})
			return
		}

		utils.ResponseJSON(w, http.StatusCreated, registration, "Registered for the event successfully")
	}
}

func (ec *EventsRegistrationController) UnregisterFromEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		err = store.UnregisterFromEvent(r.Context(), userID, mux.Vars(r)["event"])
		switch err {
		case nil:
		case storage.ErrEventNotFound:
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
			return
		case storage.ErrNotRegistered:
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "You are not registered for this event"})
			return
		default:
			logrus.Errorf("Error unregistering user %s from event: %v", userID, err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to unregister from event"})
			return
		}

		utils.ResponseJSON(w, http.StatusOK, nil, "Successfully unregistered from the event")
	}
}

func (ec *EventsRegistrationController) RegisteredUsers(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := utils.VerifyToken(r); err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		eventID := mux.Vars(r)["event"]
		if _, err := store.GetEventByID(r.Context(), eventID); err != nil {
			if err == storage.ErrEventNotFound {
				utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
				return
			}
			logrus.Errorf("Error loading event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch event"})
			return
		}

		registrations, err := store.ListRegistrationsForEvent(r.Context(), eventID)
		if err != nil {
			logrus.Errorf("Error listing registrations: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch registrations"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, registrations, "Registered users fetched successfully")
	}
}

func (ec *EventsRegistrationController) RegisteredEvents(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		dashboard, err := store.ListRegistrationsForUser(r.Context(), userID)
		if err != nil {
			logrus.Errorf("Error listing registered events: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch registered events"})
			return
		}
		if len(dashboard) == 0 {
			utils.ResponseJSON(w, http.StatusOK, []models.DashboardEvent{}, "No registered events found for the user")
			return
		}
		utils.ResponseJSON(w, http.StatusOK, dashboard, "Registered events fetched successfully")
	}
}
