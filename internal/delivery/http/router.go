package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	notificationController *controllers.NotificationController,
	authController *controllers.AuthController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireAdmin(h))
	}

	// Public event listing
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/status/{filter}", eventController.ListEventsByStatus)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)

	// Event administration
	mux.HandleFunc("POST /admin/events", admin(eventController.CreateEvent))
	mux.HandleFunc("PUT /admin/events/{eventID}", admin(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /admin/events/{eventID}", admin(eventController.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrationController.Register))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(registrationController.Cancel))
	mux.HandleFunc("GET /events/{eventID}/registrations/me", auth(registrationController.IsRegistered))
	mux.HandleFunc("POST /events/{eventID}/attendance-images", auth(registrationController.UploadAttendanceImage))
	mux.HandleFunc("GET /events/{eventID}/attendance-images/me", auth(registrationController.ListMyAttendanceImages))

	// Registration administration
	mux.HandleFunc("GET /admin/events/{eventID}/registrants", admin(registrationController.ListRegistrants))
	mux.HandleFunc("DELETE /admin/events/{eventID}/registrants/{userID}", admin(registrationController.RemoveRegistrant))
	mux.HandleFunc("GET /admin/events/{eventID}/registrants/{userID}/attendance-images", admin(registrationController.ListRegistrantAttendanceImages))
	mux.HandleFunc("PUT /admin/events/{eventID}/registrants/{userID}/status", admin(registrationController.UpdateRegistrantStatus))
	mux.HandleFunc("POST /admin/events/{eventID}/registrations/predict", admin(registrationController.PredictAttendance))

	// Current user
	mux.HandleFunc("GET /me/events/attended", auth(eventController.ListMyAttendedEvents))
	mux.HandleFunc("GET /me/notifications", auth(notificationController.ListMyNotifications))
	mux.HandleFunc("POST /me/notifications/{notificationID}/read", auth(notificationController.MarkNotificationRead))

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}
