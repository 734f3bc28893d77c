package booking

import (
	"context"

	"autoserve/models"
)

// UpdateServiceRequest is the dealership-side mutation path. Status changes
// must follow the linear lifecycle one step at a time; the selected problem
// must belong to the candidate set fixed at booking time. The write itself is
// guarded on the status the caller saw, so a concurrent transition rejects
// rather than silently overwriting.
func (c *DefaultBookingCoordinator) UpdateServiceRequest(ctx context.Context, requestID string, update models.ServiceRequestUpdate) (*models.ServiceRequest, error) {
	current, err := c.Repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		next := *update.Status
		if next.Rank() < 0 {
			return nil, NewInvalidTransition("unknown status %q", next)
		}
		if !current.Status.CanAdvanceTo(next) {
			return nil, NewInvalidTransition("cannot move service request from %q to %q", current.Status, next)
		}
	}

	if update.SelectedProblemID != nil {
		if !current.HasCandidate(*update.SelectedProblemID) {
			return nil, NewInvalidTransition("problem %q is not among the request's candidate problems", *update.SelectedProblemID)
		}
		// Selecting a problem fixes the final figures; fill in the current
		// estimate for anything the dealership did not quote explicitly.
		if update.FinalCost == nil || update.FinalTimeMinutes == nil {
			c.fillFinalFigures(ctx, current, &update)
		}
	}

	matched, err := c.Repo.ApplyUpdate(ctx, requestID, current.Status, update)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, NewInvalidTransition("service request %q changed concurrently; reload and retry", requestID)
	}

	updated, err := c.Repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if update.Status != nil {
		c.notify(ctx, updated)
	}
	return updated, nil
}

func (c *DefaultBookingCoordinator) fillFinalFigures(ctx context.Context, current *models.ServiceRequest, update *models.ServiceRequestUpdate) {
	vehicle, err := c.Vehicles.VehicleByID(ctx, current.VehicleID)
	if err != nil {
		return
	}
	est, err := c.Estimator.EstimatePair(ctx, current.DealershipID, *update.SelectedProblemID, vehicle.AgeMonths)
	if err != nil {
		return
	}
	if update.FinalCost == nil {
		cost := est.FinalCost
		update.FinalCost = &cost
	}
	if update.FinalTimeMinutes == nil {
		minutes := est.EstimatedMinutes
		update.FinalTimeMinutes = &minutes
	}
}
