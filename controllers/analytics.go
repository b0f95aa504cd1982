package controllers

import (
	"net/http"

	"eventify/models"
	"eventify/storage"
	"eventify/utils"

	"github.com/sirupsen/logrus"
)

type AnalyticsController struct{}

// TopAttendedEvent ranks by actual registration rows, not the cached
// participant counter.
func (ac *AnalyticsController) TopAttendedEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := utils.VerifyToken(r); err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		top, err := store.TopAttendedEvent(r.Context())
		if err == storage.ErrEventNotFound {
			utils.ResponseJSON(w, http.StatusOK, nil, "No events found")
			return
		}
		if err != nil {
			logrus.Errorf("Error fetching top attended event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch analytics"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, top, "Top attended event fetched successfully")
	}
}

func (ac *AnalyticsController) TopViewedEvent(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := utils.VerifyToken(r); err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		top, err := store.TopViewedEvent(r.Context())
		if err == storage.ErrEventNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "No events found"})
			return
		}
		if err != nil {
			logrus.Errorf("Error fetching top viewed event: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to fetch analytics"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, top, "Top viewed event fetched successfully")
	}
}
