package booking

import (
	"context"
	"time"

	requestRepo "autoserve/database/repository/servicerequest"
	"autoserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking snapshots per-problem estimates at the chosen dealership and
// inserts one ServiceRequest in state Requested. The unique index on the
// idempotency key makes the check-then-create atomic: a concurrent or retried
// call with the same key resolves to the original request instead of a
// duplicate.
func (c *DefaultBookingCoordinator) CreateBooking(ctx context.Context, input models.BookingInput) (*models.ServiceRequest, bool, error) {
	if input.IdempotencyKey == "" {
		return nil, false, NewInvalidBooking("idempotency key is required")
	}
	if len(input.TopProblems) == 0 {
		return nil, false, NewInvalidBooking("a booking must reference at least one candidate problem")
	}
	if input.DealershipID == "" {
		return nil, false, NewInvalidBooking("dealership id is required")
	}

	vehicle, err := c.Vehicles.VehicleByID(ctx, input.VehicleID)
	if err != nil {
		return nil, false, err
	}

	candidates := make([]models.BookedProblem, 0, len(input.TopProblems))
	for _, p := range input.TopProblems {
		booked := models.BookedProblem{ProblemID: p.ProblemID, Name: p.Name}
		est, err := c.Estimator.EstimatePair(ctx, input.DealershipID, p.ProblemID, vehicle.AgeMonths)
		if err != nil {
			// The candidate stays on the request without a price; the
			// dealership quotes it during disambiguation.
			c.Logger.Warn("no estimate for booked candidate",
				zap.String("dealership", input.DealershipID),
				zap.String("problem", p.ProblemID),
				zap.Error(err))
		} else {
			booked.EstimatedCost = est.FinalCost
			booked.EstimatedMinutes = est.EstimatedMinutes
			booked.Discount = est.DiscountAmount
		}
		candidates = append(candidates, booked)
	}

	now := time.Now()
	req := &models.ServiceRequest{
		RequestID:         uuid.New().String(),
		IdempotencyKey:    input.IdempotencyKey,
		CustomerID:        input.CustomerID,
		VehicleID:         input.VehicleID,
		DealershipID:      input.DealershipID,
		SessionID:         input.SessionID,
		CandidateProblems: candidates,
		Status:            models.StatusRequested,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := c.Repo.Create(ctx, req); err != nil {
		if err == requestRepo.ErrDuplicateKey {
			original, getErr := c.Repo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
			if getErr != nil {
				return nil, false, getErr
			}
			c.Logger.Info("duplicate booking collapsed into original request",
				zap.String("requestId", original.RequestID),
				zap.String("idempotencyKey", input.IdempotencyKey))
			return original, false, nil
		}
		return nil, false, err
	}

	c.notify(ctx, req)
	c.scheduleReminder(ctx, req)
	return req, true, nil
}

// scheduleReminder queues a follow-up nudge in case the dealership never
// confirms. Failures are logged, not surfaced: the booking already exists.
func (c *DefaultBookingCoordinator) scheduleReminder(ctx context.Context, req *models.ServiceRequest) {
	if c.Reminders == nil || c.ReminderAfter <= 0 {
		return
	}
	fireAt := req.CreatedAt.Add(c.ReminderAfter)
	if err := c.Reminders.SchedulePendingReminder(ctx, req.RequestID, req.CustomerID, fireAt); err != nil {
		c.Logger.Warn("failed to schedule pending reminder",
			zap.String("requestId", req.RequestID), zap.Error(err))
	}
}

// GetServiceRequest returns one request by id.
func (c *DefaultBookingCoordinator) GetServiceRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	return c.Repo.GetByID(ctx, requestID)
}

// CustomerRequests lists a customer's requests, newest first.
func (c *DefaultBookingCoordinator) CustomerRequests(ctx context.Context, customerID string) ([]models.ServiceRequest, error) {
	return c.Repo.ListByCustomer(ctx, customerID)
}

// DealershipRequests lists a dealership's requests, newest first.
func (c *DefaultBookingCoordinator) DealershipRequests(ctx context.Context, dealershipID string) ([]models.ServiceRequest, error) {
	return c.Repo.ListByDealership(ctx, dealershipID)
}

func (c *DefaultBookingCoordinator) notify(ctx context.Context, req *models.ServiceRequest) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.NotifyBookingStatus(ctx, req); err != nil {
		c.Logger.Warn("booking status notification failed",
			zap.String("requestId", req.RequestID), zap.Error(err))
	}
}
