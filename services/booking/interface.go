package booking

import (
	"context"
	"time"

	catalogRepo "autoserve/database/repository/catalog"
	requestRepo "autoserve/database/repository/servicerequest"
	"autoserve/models"
	"autoserve/services/notification"

	"go.uber.org/zap"
)

// PairEstimator computes one (dealership, problem) estimate. Satisfied by the
// estimate aggregator.
type PairEstimator interface {
	EstimatePair(ctx context.Context, dealershipID, problemID string, vehicleAgeMonths int) (*models.Estimate, error)
}

// ReminderScheduler queues a follow-up check for requests that stay
// unconfirmed. Satisfied by the tasks package.
type ReminderScheduler interface {
	SchedulePendingReminder(ctx context.Context, requestID, customerID string, fireAt time.Time) error
}

// Service is the booking coordinator: it turns a customer's commitment into
// exactly one durable ServiceRequest and owns the dealership-side update path.
type Service interface {
	// CreateBooking creates a service request, or returns the original one
	// when the idempotency key was already used. The boolean reports whether
	// a new request was created.
	CreateBooking(ctx context.Context, input models.BookingInput) (*models.ServiceRequest, bool, error)
	UpdateServiceRequest(ctx context.Context, requestID string, update models.ServiceRequestUpdate) (*models.ServiceRequest, error)
	GetServiceRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error)
	CustomerRequests(ctx context.Context, customerID string) ([]models.ServiceRequest, error)
	DealershipRequests(ctx context.Context, dealershipID string) ([]models.ServiceRequest, error)
}

// DefaultBookingCoordinator implements Service.
//
// Availability flags are advisory: booking never decrements bay or technician
// capacity. Estimates describe the state of the world at estimation time and
// the dealership confirms real allocation through the update path. This keeps
// the only durable write in the system the idempotency-guarded insert.
type DefaultBookingCoordinator struct {
	Repo          requestRepo.Repository
	Estimator     PairEstimator
	Vehicles      catalogRepo.VehicleSource
	Notifier      notification.Service
	Reminders     ReminderScheduler
	ReminderAfter time.Duration
	Logger        *zap.Logger
}
