package usecase

import "net/http"

// BookingError is the machine-readable outcome code of a booking operation.
// Handlers map it to an HTTP status; the empty value means success.
type BookingError string

const (
	BookingErrorNone BookingError = ""

	BookingErrorDoctorNotFound     BookingError = "DOCTOR_NOT_FOUND"
	BookingErrorDoctorNotVerified  BookingError = "DOCTOR_NOT_VERIFIED"
	BookingErrorDoctorNotAvailable BookingError = "DOCTOR_NOT_AVAILABLE"
	BookingErrorClinicNotFound     BookingError = "CLINIC_NOT_FOUND"
	BookingErrorClinicClosed       BookingError = "CLINIC_CLOSED"

	BookingErrorTimeSlotOccupied BookingError = "TIME_SLOT_OCCUPIED"
	BookingErrorInvalidTimeSlot  BookingError = "INVALID_TIME_SLOT"
	BookingErrorConflict         BookingError = "BOOKING_CONFLICT"

	BookingErrorPaymentFailed BookingError = "PAYMENT_FAILED"
	BookingErrorRefundFailed  BookingError = "REFUND_FAILED"

	BookingErrorAppointmentNotFound BookingError = "APPOINTMENT_NOT_FOUND"
	BookingErrorUnauthorizedAccess  BookingError = "UNAUTHORIZED_ACCESS"
	BookingErrorCannotCancel        BookingError = "CANNOT_CANCEL"
	BookingErrorCannotReschedule    BookingError = "CANNOT_RESCHEDULE"

	BookingErrorEmergencyFailed    BookingError = "EMERGENCY_BOOKING_FAILED"
	BookingErrorFollowUpNotAllowed BookingError = "FOLLOW_UP_NOT_ALLOWED"

	BookingErrorValidation BookingError = "VALIDATION_ERROR"
	BookingErrorDatabase   BookingError = "DATABASE_ERROR"
)

// HTTPStatus maps the outcome code onto the response status line.
func (e BookingError) HTTPStatus() int {
	switch e {
	case BookingErrorNone:
		return http.StatusOK
	case BookingErrorDoctorNotFound, BookingErrorClinicNotFound, BookingErrorAppointmentNotFound:
		return http.StatusNotFound
	case BookingErrorUnauthorizedAccess:
		return http.StatusForbidden
	case BookingErrorTimeSlotOccupied, BookingErrorConflict, BookingErrorEmergencyFailed:
		return http.StatusConflict
	case BookingErrorValidation:
		return http.StatusBadRequest
	case BookingErrorDoctorNotVerified, BookingErrorDoctorNotAvailable, BookingErrorClinicClosed,
		BookingErrorInvalidTimeSlot, BookingErrorCannotCancel, BookingErrorCannotReschedule,
		BookingErrorPaymentFailed, BookingErrorFollowUpNotAllowed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
