package main

import (
	"context"
	"net/http"
	"os"

	"eventify/controllers"
	"eventify/driver"
	"eventify/storage"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment")
	}
	if os.Getenv("SECRET") == "" {
		logrus.Fatal("SECRET variable is not set")
	}

	db := driver.ConnectDB()
	defer db.Close()

	store := storage.New(db)
	if err := store.InitSchema(context.Background()); err != nil {
		logrus.Fatalf("Failed to initialize schema: %v", err)
	}

	authController := controllers.Controller{}
	eventController := controllers.EventController{}
	registrationController := controllers.EventsRegistrationController{}
	certificateController := controllers.CertificateController{}
	analyticsController := controllers.AnalyticsController{}
	adminController := controllers.AdminController{}

	router := mux.NewRouter()
	router.Use(controllers.RequestLogger)
	api := router.PathPrefix("/api/v1").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authController.Signup(store)).Methods("POST")
	auth.HandleFunc("/verify-otp", authController.VerifyOTP(store)).Methods("POST")
	auth.HandleFunc("/login", authController.Login(store)).Methods("POST")
	auth.HandleFunc("/logout", authController.Logout(store)).Methods("POST")
	auth.HandleFunc("/refresh-token", authController.RefreshToken(store)).Methods("POST")
	auth.HandleFunc("/current-user", authController.CurrentUser(store)).Methods("GET")
	auth.HandleFunc("/change-password", authController.ChangePassword(store)).Methods("POST")
	auth.HandleFunc("/update-account", authController.UpdateAccount(store)).Methods("PATCH")
	auth.HandleFunc("/avatar", authController.UpdateAvatar(store)).Methods("PATCH")

	events := api.PathPrefix("/events").Subrouter()
	events.HandleFunc("/create-event", eventController.CreateEvent(store)).Methods("POST")
	events.HandleFunc("/get-all-events", eventController.GetAllEvents(store)).Methods("GET")
	events.HandleFunc("/registered-events", registrationController.RegisteredEvents(store)).Methods("GET")
	events.HandleFunc("/{id}", eventController.GetEvent(store)).Methods("GET")
	events.HandleFunc("/{id}", eventController.UpdateEvent(store)).Methods("PATCH")
	events.HandleFunc("/{id}", eventController.DeleteEvent(store)).Methods("DELETE")
	events.HandleFunc("/{id}/view", eventController.RecordView(store)).Methods("POST")
	events.HandleFunc("/{event}/register", registrationController.RegisterForEvent(store)).Methods("POST")
	events.HandleFunc("/{event}/unregister", registrationController.UnregisterFromEvent(store)).Methods("DELETE")
	events.HandleFunc("/{event}/registered-users", registrationController.RegisteredUsers(store)).Methods("GET")

	certificates := api.PathPrefix("/certificates").Subrouter()
	certificates.HandleFunc("/{event}/create-certificate", certificateController.CreateCertificate(store)).Methods("POST")

	analytics := api.PathPrefix("/analytics").Subrouter()
	analytics.HandleFunc("/top-attended-event", analyticsController.TopAttendedEvent(store)).Methods("GET")
	analytics.HandleFunc("/top-viewed-event", analyticsController.TopViewedEvent(store)).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/reconcile-participants", adminController.ReconcileParticipants(store)).Methods("POST")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	logrus.Infof("Server started on port %s", port)
	logrus.Fatal(http.ListenAndServe(":"+port, router))
}
