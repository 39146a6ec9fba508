package http

import (
	"net/http"

	"healthcare-booking-api/internal/delivery/http/handler"
	"healthcare-booking-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	bookingHandler      *handler.BookingHandler
	availabilityHandler *handler.AvailabilityHandler
	doctorHandler       *handler.DoctorHandler
	clinicHandler       *handler.ClinicHandler
	prescriptionHandler *handler.PrescriptionHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	bookingHandler *handler.BookingHandler,
	availabilityHandler *handler.AvailabilityHandler,
	doctorHandler *handler.DoctorHandler,
	clinicHandler *handler.ClinicHandler,
	prescriptionHandler *handler.PrescriptionHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		bookingHandler:      bookingHandler,
		availabilityHandler: availabilityHandler,
		doctorHandler:       doctorHandler,
		clinicHandler:       clinicHandler,
		prescriptionHandler: prescriptionHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Public discovery routes
	api.HandleFunc("/doctors", r.doctorHandler.SearchDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/availability", r.availabilityHandler.GetDoctorAvailability).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/next-slots", r.availabilityHandler.GetNextAvailableSlots).Methods(http.MethodGet)
	api.HandleFunc("/clinics", r.clinicHandler.ListClinics).Methods(http.MethodGet)
	api.HandleFunc("/clinics/{id}", r.clinicHandler.GetClinic).Methods(http.MethodGet)

	// Appointment routes (protected, rate-limited)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Use(r.rateLimitMiddleware.Handle)
	appointments.HandleFunc("", r.bookingHandler.BookAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("", r.bookingHandler.GetMyAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/emergency", r.bookingHandler.BookEmergency).Methods(http.MethodPost)
	appointments.HandleFunc("/code/{code}", r.bookingHandler.GetByConfirmationCode).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.bookingHandler.GetAppointment).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/follow-up", r.bookingHandler.BookFollowUp).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/reschedule", r.bookingHandler.RescheduleAppointment).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}/cancel", r.bookingHandler.CancelAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/verify-payment", r.bookingHandler.VerifyPayment).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/queue-position", r.bookingHandler.QueueStatus).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/prescription", r.prescriptionHandler.GetForAppointment).Methods(http.MethodGet)

	// Consultation lifecycle (doctor or admin)
	consult := api.PathPrefix("/appointments").Subrouter()
	consult.Use(r.authMiddleware.Authenticate)
	consult.Use(middleware.RequireAdminOrDoctor)
	consult.HandleFunc("/{id}/confirm", r.bookingHandler.ConfirmAppointment).Methods(http.MethodPost)
	consult.HandleFunc("/{id}/start", r.bookingHandler.StartConsultation).Methods(http.MethodPost)
	consult.HandleFunc("/{id}/complete", r.bookingHandler.CompleteAppointment).Methods(http.MethodPost)
	consult.HandleFunc("/{id}/no-show", r.bookingHandler.MarkNoShow).Methods(http.MethodPost)

	// Doctor self-service (doctor or admin)
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.Use(middleware.RequireAdminOrDoctor)
	doctors.HandleFunc("/{id}/profile", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	doctors.HandleFunc("/{id}/schedule", r.bookingHandler.GetDoctorSchedule).Methods(http.MethodGet)

	// Prescriptions (protected)
	prescriptions := api.PathPrefix("/prescriptions").Subrouter()
	prescriptions.Use(r.authMiddleware.Authenticate)
	prescriptions.HandleFunc("", r.prescriptionHandler.GetMyPrescriptions).Methods(http.MethodGet)
	prescriptions.HandleFunc("/{id}", r.prescriptionHandler.GetPrescription).Methods(http.MethodGet)

	prescribe := api.PathPrefix("/prescriptions").Subrouter()
	prescribe.Use(r.authMiddleware.Authenticate)
	prescribe.Use(middleware.RequireAdminOrDoctor)
	prescribe.HandleFunc("", r.prescriptionHandler.IssuePrescription).Methods(http.MethodPost)

	// Clinic management (protected)
	clinics := api.PathPrefix("/clinics").Subrouter()
	clinics.Use(r.authMiddleware.Authenticate)
	clinics.HandleFunc("", r.clinicHandler.CreateClinic).Methods(http.MethodPost)
	clinics.HandleFunc("/{id}", r.clinicHandler.UpdateClinic).Methods(http.MethodPut)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors/{id}/verify", r.doctorHandler.VerifyDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/suspend", r.doctorHandler.SuspendDoctor).Methods(http.MethodPost)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
