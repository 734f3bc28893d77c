package catalogRepo

import (
	"context"
	"errors"
	"fmt"

	"autoserve/models"
)

// Repository loads the reference collections into a validated snapshot.
type Repository interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// VehicleSource resolves vehicle documents point-wise. Vehicles are customer
// data rather than catalog reference data, so they are never snapshotted.
type VehicleSource interface {
	VehicleByID(ctx context.Context, vehicleID string) (*models.Vehicle, error)
}

// Provider hands out the current snapshot to estimators and matchers.
// Implementations must return a fully built, immutable snapshot.
type Provider interface {
	Snapshot() *Snapshot
}

// LookupMissError reports a referenced id that is absent from the catalog. It
// is fatal for the single computation that hit it and nothing else.
type LookupMissError struct {
	Collection string
	ID         string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("catalog lookup miss: %s has no entry %q", e.Collection, e.ID)
}

// IsLookupMiss reports whether err is (or wraps) a catalog lookup miss.
func IsLookupMiss(err error) bool {
	var miss *LookupMissError
	return errors.As(err, &miss)
}
