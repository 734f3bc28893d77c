package requestRepo

import (
	"context"
	"errors"

	"autoserve/models"
)

// ErrDuplicateKey is returned by Create when the idempotency key has already
// been used. The caller resolves it to the original request.
var ErrDuplicateKey = errors.New("service request with this idempotency key already exists")

// ErrNotFound is returned when no service request matches the given id.
var ErrNotFound = errors.New("service request not found")

// Repository persists ServiceRequest documents. Create must be atomic with
// respect to the idempotency key; ApplyUpdate must be atomic with respect to
// the expected current status.
type Repository interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, requestID string) (*models.ServiceRequest, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error)
	ListByDealership(ctx context.Context, dealershipID string) ([]models.ServiceRequest, error)
	// ApplyUpdate sets the non-nil fields of update on the request, but only
	// if its status still equals expected. It reports whether a document was
	// matched; false means the request changed underneath the caller (or does
	// not exist) and nothing was written.
	ApplyUpdate(ctx context.Context, requestID string, expected models.RequestStatus, update models.ServiceRequestUpdate) (bool, error)
}
