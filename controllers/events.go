package controllers

import (
	"net/http"
	"strings"
	"time"

	"eventify/models"
	"eventify/storage"
	"eventify/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type EventController struct{}

// CreateEvent handles the multipart event form. The image is required,
// event_time must be RFC3339, registration_deadline is optional and
// defaults to one hour before the event when absent.
func (ec *EventController) CreateEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Authentication required"})
			return
		}

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}

		event := models.Event{
			Title:          strings.TrimSpace(r.FormValue("title")),
			Description:    r.FormValue("description"),
			Location:       strings.TrimSpace(r.FormValue("location")),
			Category:       strings.TrimSpace(r.FormValue("category")),
			OrganizingClub: strings.TrimSpace(r.FormValue("organizing_club")),
			CreatedBy:      userID,
		}

		if event.Title == "" || event.Description == "" || event.Location == "" ||
			event.Category == "" || event.OrganizingClub == "" || r.FormValue("event_time") == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "All fields except image are required"})
			return
		}

		if !models.IsValidCategory(event.Category) {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{
				Message: "Invalid category. Allowed values are: " + strings.Join(models.EventCategories, ", "),
			})
			return
		}

		event.EventTime, err = time.Parse(time.RFC3339, r.FormValue("event_time"))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid event_time format, expected RFC3339"})
			return
		}
		if deadlineStr := r.FormValue("registration_deadline"); deadlineStr != "" {
			deadline, err := time.Parse(time.RFC3339, deadlineStr)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid registration_deadline format, expected RFC3339"})
				return
			}
			event.RegistrationDeadline = &deadline
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Event image is required"})
			return
		}
		defer file.Close()

		fileName := uuid.NewString() + "_" + header.Filename
		event.Image, err = utils.StoreMultipartFile(file, fileName, "eventimage")
		if err != nil {
			logrus.Errorf("Error storing event image: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to upload event image"})
			return
		}

		created, err := store.CreateEvent(r.Context(), event)
		if err != nil {
			logrus.Errorf("Error creating event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to create event"})
			return
		}
		utils.ResponseJSON(w, http.StatusCreated, created, "Event created successfully")
	}
}

func (ec *EventController) GetAllEvents(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")
		if category != "" && !models.IsValidCategory(category) {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid category"})
			return
		}

		events, err := store.ListEvents(r.Context(), category)
		if err != nil {
			logrus.Errorf("Error listing events: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch events"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, map[string]interface{}{"events": events}, "Events fetched successfully")
	}
}

func (ec *EventController) GetEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := store.GetEventByID(r.Context(), mux.Vars(r)["id"])
		if err == storage.ErrEventNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error loading event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch event"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, map[string]interface{}{"event": event}, "Event fetched successfully")
	}
}

// UpdateEvent applies a partial multipart update. Only the creator may
// edit their event.
func (ec *EventController) UpdateEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Authentication required"})
			return
		}

		eventID := mux.Vars(r)["id"]
		event, err := store.GetEventByID(r.Context(), eventID)
		if err == storage.ErrEventNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error loading event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch event"})
			return
		}
		if event.CreatedBy != userID {
			utils.RespondWithError(w, http.StatusForbidden, models.Error{Message: "You are not allowed to update this event"})
			return
		}

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}

		var update storage.EventUpdate
		if v := strings.TrimSpace(r.FormValue("title")); v != "" {
			update.Title = &v
		}
		if v := r.FormValue("description"); v != "" {
			update.Description = &v
		}
		if v := strings.TrimSpace(r.FormValue("location")); v != "" {
			update.Location = &v
		}
		if v := strings.TrimSpace(r.FormValue("organizing_club")); v != "" {
			update.OrganizingClub = &v
		}
		if v := strings.TrimSpace(r.FormValue("category")); v != "" {
			if !models.IsValidCategory(v) {
				utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid category"})
				return
			}
			update.Category = &v
		}
		if v := r.FormValue("event_time"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid event_time format, expected RFC3339"})
				return
			}
			update.EventTime = &t
		}
		if v := r.FormValue("registration_deadline"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid registration_deadline format, expected RFC3339"})
				return
			}
			update.RegistrationDeadline = &t
		}

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			fileName := uuid.NewString() + "_" + header.Filename
			imageURL, err := utils.StoreMultipartFile(file, fileName, "eventimage")
			if err != nil {
				logrus.Errorf("Error storing event image: %v", err)
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to upload event image"})
				return
			}
			if event.Image != "" {
				if err := utils.DeleteFile(event.Image); err != nil {
					logrus.Warnf("Could not delete old event image %s: %v", event.Image, err)
				}
			}
			update.Image = &imageURL
		}

		updated, err := store.UpdateEvent(r.Context(), eventID, update)
		if err != nil {
			logrus.Errorf("Error updating event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to update event"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, updated, "Event updated successfully")
	}
}

func (ec *EventController) DeleteEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Authentication required"})
			return
		}

		eventID := mux.Vars(r)["id"]
		event, err := store.GetEventByID(r.Context(), eventID)
		if err == storage.ErrEventNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error loading event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch event"})
			return
		}
		if event.CreatedBy != userID {
			utils.RespondWithError(w, http.StatusForbidden, models.Error{Message: "You are not allowed to delete this event"})
			return
		}

		if err := store.DeleteEvent(r.Context(), eventID); err != nil {
			logrus.Errorf("Error deleting event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to delete event"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, nil, "Event deleted successfully")
	}
}

// RecordView counts the viewer once per event for their lifetime;
// repeat calls are acknowledged but change nothing.
func (ec *EventController) RecordView(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Authentication required"})
			return
		}

		counted, err := store.RecordEventView(r.Context(), userID, mux.Vars(r)["id"])
		if err == storage.ErrEventNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error recording view: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to record view"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, map[string]bool{"counted": counted}, "View recorded")
	}
}
