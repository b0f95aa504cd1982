package controllers

import (
	"net/http"

	"eventify/models"
	"eventify/storage"
	"eventify/utils"

	"github.com/sirupsen/logrus"
)

type AdminController struct{}

// ReconcileParticipants recounts registration rows per event and
// overwrites the cached participant counters. Admin-only integrity
// repair, never part of the registration path.
func (ac *AdminController) ReconcileParticipants(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil || user.Role != "admin" {
			utils.RespondWithError(w, http.StatusForbidden, models.Error{Message: "Access denied"})
			return
		}

		updated, err := store.ReconcileParticipantCounts(r.Context())
		if err != nil {
			logrus.Errorf("Error reconciling participant counts: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to reconcile participant counts"})
			return
		}
		utils.ResponseJSON(w, http.StatusOK, map[string]int64{"events_updated": updated}, "Participant counts reconciled")
	}
}
