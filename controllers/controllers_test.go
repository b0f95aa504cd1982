package controllers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventify/models"
	"eventify/storage"
	"eventify/utils"

	"github.com/gorilla/mux"
	_ "modernc.org/sqlite"
)

// newTestServer wires the event, registration and certificate routes
// onto a throwaway SQLite store. The working directory is moved into a
// temp dir so locally stored uploads land there.
func newTestServer(t *testing.T) (*mux.Router, *storage.Store) {
	t.Helper()
	t.Setenv("SECRET", "test-secret")

	workDir := t.TempDir()
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to read working directory: %v", err)
	}
	if err := os.Chdir(workDir); err != nil {
		t.Fatalf("Failed to enter temp dir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldDir) })

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(workDir, "eventify_test.db")))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := storage.New(db)
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}

	registrationController := EventsRegistrationController{}
	certificateController := CertificateController{}

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/events/{event}/register", registrationController.RegisterForEvent(store)).Methods("POST")
	api.HandleFunc("/events/{event}/unregister", registrationController.UnregisterFromEvent(store)).Methods("DELETE")
	api.HandleFunc("/certificates/{event}/create-certificate", certificateController.CreateCertificate(store)).Methods("POST")
	return router, store
}

func seedUser(t *testing.T, store *storage.Store, username string) models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func seedEvent(t *testing.T, store *storage.Store, creatorID string, eventTime time.Time) models.Event {
	t.Helper()
	event, err := store.CreateEvent(context.Background(), models.Event{
		Title:          "Campus Hackathon",
		Description:    "24 hour hackathon",
		Location:       "Main Auditorium",
		Category:       "Tech",
		OrganizingClub: "Coding Club",
		CreatedBy:      creatorID,
		EventTime:      eventTime,
	})
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return event
}

func ageEvent(t *testing.T, store *storage.Store, eventID string, eventTime time.Time) {
	t.Helper()
	_, err := store.DB().Exec("UPDATE events SET event_time = ? WHERE id = ?",
		eventTime.UTC().Format(time.RFC3339), eventID)
	if err != nil {
		t.Fatalf("Failed to rewrite event time: %v", err)
	}
}

func bearerToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateAccessToken(user, utils.AccessTokenExpiry)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, router *mux.Router, method, path, auth string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	if auth != "" {
		r.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response %s: %v", w.Body.String(), err)
	}
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	router, store := newTestServer(t)
	alice := seedUser(t, store, "alice")
	event := seedEvent(t, store, alice.ID, time.Now().Add(48*time.Hour))
	auth := bearerToken(t, alice)
	body := []byte(`{"student_id": "S12345", "department": "CS"}`)

	w := doRequest(t, router, "POST", "/api/v1/events/"+event.ID+"/register", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w = doRequest(t, router, "POST", "/api/v1/events/no-such-event/register", auth, body)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown event, got %d", w.Code)
	}

	w = doRequest(t, router, "POST", "/api/v1/events/"+event.ID+"/register", auth, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if !resp.Success || resp.Message != "Registered for the event successfully" {
		t.Errorf("Unexpected envelope: %+v", resp)
	}

	// A second attempt conflicts.
	w = doRequest(t, router, "POST", "/api/v1/events/"+event.ID+"/register", auth, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 on duplicate registration, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Success {
		t.Errorf("Conflict response marked success: %+v", resp)
	}
}

func TestRegisterEndpointClosedEvent(t *testing.T) {
	router, store := newTestServer(t)
	alice := seedUser(t, store, "alice")
	// Default deadline is one hour before the event, which has passed.
	event := seedEvent(t, store, alice.ID, time.Now().Add(30*time.Minute))

	w := doRequest(t, router, "POST", "/api/v1/events/"+event.ID+"/register", bearerToken(t, alice),
		[]byte(`{"student_id": "S12345", "department": "CS"}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for closed registration, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Message != "Registration has closed for this event" {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
}

func TestRegisterEndpointMissingIdentity(t *testing.T) {
	router, store := newTestServer(t)
	alice := seedUser(t, store, "alice")
	event := seedEvent(t, store, alice.ID, time.Now().Add(48*time.Hour))

	w := doRequest(t, router, "POST", "/api/v1/events/"+event.ID+"/register", bearerToken(t, alice), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without identity, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Message != "Student ID and Department are required" {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
}

func TestUnregisterEndpoint(t *testing.T) {
	router, store := newTestServer(t)
	alice := seedUser(t, store, "alice")
	event := seedEvent(t, store, alice.ID, time.Now().Add(48*time.Hour))
	auth := bearerToken(t, alice)

	w := doRequest(t, router, "DELETE", "/api/v1/events/"+event.ID+"/unregister", auth, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when not registered, got %d", w.Code)
	}

	doRequest(t, router, "POST", "/api/v1/events/"+event.ID+"/register", auth,
		[]byte(`{"student_id": "S12345", "department": "CS"}`))
	w = doRequest(t, router, "DELETE", "/api/v1/events/"+event.ID+"/unregister", auth, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeEnvelope(t, w); resp.Message != "Successfully unregistered from the event" {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
}

func TestCertificateEndpoint(t *testing.T) {
	router, store := newTestServer(t)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	event := seedEvent(t, store, alice.ID, time.Now().Add(48*time.Hour))
	auth := bearerToken(t, alice)
	path := "/api/v1/certificates/" + event.ID + "/create-certificate"

	doRequest(t, router, "POST", "/api/v1/events/"+event.ID+"/register", auth,
		[]byte(`{"student_id": "S12345", "department": "CS"}`))

	// Event not over for a week yet.
	ageEvent(t, store, event.ID, time.Now().Add(-24*time.Hour))
	w := doRequest(t, router, "POST", path, auth, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 before the waiting period, got %d", w.Code)
	}

	ageEvent(t, store, event.ID, time.Now().Add(-8*24*time.Hour))

	// Bob never registered.
	w = doRequest(t, router, "POST", path, bearerToken(t, bob), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for unregistered user, got %d", w.Code)
	}

	w = doRequest(t, router, "POST", path, auth, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("Response body is not a PDF")
	}

	// Repeat call streams the stored artifact instead of issuing again.
	w = doRequest(t, router, "POST", path, auth, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on repeat, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("Repeat response body is not a PDF")
	}
	var count int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM certificates WHERE user_id = ? AND event_id = ?",
		alice.ID, event.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count certificates: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 certificate row, got %d", count)
	}
}
