package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventify/models"
	"eventify/storage"
	"eventify/utils"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type CertificateController struct{}

// CreateCertificate issues (or re-serves) the participation certificate
// for the authenticated user. The PDF is rendered and durably stored
// BEFORE the certificate row is inserted, so a failed render or upload
// never leaves a row behind and the operation stays retryable. The
// unique (user, event) index makes issuance idempotent: a repeat call,
// or the loser of a concurrent race, streams the already-stored
// artifact.
func (cc *CertificateController) CreateCertificate(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}
		eventID := mux.Vars(r)["event"]

		event, err := store.CheckCertificateEligibility(r.Context(), userID, eventID)
		switch err {
		case nil:
		case storage.ErrEventNotFound:
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Event not found"})
			return
		case storage.ErrNotRegistered:
			utils.RespondWithError(w, http.StatusForbidden, models.Error{Message: "User not registered for this event"})
			return
		case storage.ErrCertificateTooEarly:
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Certificates can be generated only after one week of event completion"})
			return
		default:
			logrus.Errorf("Error checking certificate eligibility: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		if existing, err := store.GetCertificate(r.Context(), userID, eventID); err == nil {
			serveCertificate(w, existing, event)
			return
		} else if err != storage.ErrCertificateNotFound {
			logrus.Errorf("Error loading certificate: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			logrus.Errorf("Error loading user: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}

		pdfBytes, err := utils.GenerateCertificatePDF(utils.CertificateData{
			Username:       user.Username,
			StudentID:      user.StudentID,
			Department:     user.Department,
			EventTitle:     event.Title,
			OrganizingClub: event.OrganizingClub,
			IssuedAt:       time.Now(),
		})
		if err != nil {
			logrus.Errorf("Error rendering certificate: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to generate certificate"})
			return
		}

		fileName := fmt.Sprintf("%s_%s.pdf", user.Username, sanitizeFileName(event.Title))
		certificateURL, err := utils.StoreFile(pdfBytes, fileName, "certificate")
		if err != nil {
			logrus.Errorf("Error storing certificate: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to store certificate"})
			return
		}

		certificate, created, err := store.CreateCertificate(r.Context(), userID, eventID, certificateURL)
		if err != nil {
			logrus.Errorf("Error recording certificate: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error"})
			return
		}
		if !created {
			// Lost a race: someone else's artifact is the canonical one.
			serveCertificate(w, certificate, event)
			return
		}

		streamPDF(w, pdfBytes, fileName)
	}
}

func serveCertificate(w http.ResponseWriter, certificate models.Certificate, event models.Event) {
	data, err := utils.FetchFile(certificate.CertificateURL)
	if err != nil {
		logrus.Errorf("Error fetching stored certificate %s: %v", certificate.CertificateURL, err)
		utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Error sending certificate file"})
		return
	}
	name := certificate.CertificateURL
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	streamPDF(w, data, name)
}

func streamPDF(w http.ResponseWriter, data []byte, fileName string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logrus.Errorf("Error streaming certificate: %v", err)
	}
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, s)
}
