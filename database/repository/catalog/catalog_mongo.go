package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"autoserve/config"
	"autoserve/database"
	"autoserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCatalogRepo implements Repository and VehicleSource against the
// reference collections.
type MongoCatalogRepo struct {
	problemsColl    *mongo.Collection
	partsColl       *mongo.Collection
	labourColl      *mongo.Collection
	bayColl         *mongo.Collection
	rulesColl       *mongo.Collection
	dealershipsColl *mongo.Collection
	vehiclesColl    *mongo.Collection
}

// NewMongoCatalogRepo constructs a new instance of MongoCatalogRepo.
func NewMongoCatalogRepo() *MongoCatalogRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoCatalogRepo{
		problemsColl:    db.Collection("service_problems"),
		partsColl:       db.Collection("parts_model"),
		labourColl:      db.Collection("labour"),
		bayColl:         db.Collection("bay_area"),
		rulesColl:       db.Collection("insurance_warranty_rules"),
		dealershipsColl: db.Collection("dealerships"),
		vehiclesColl:    db.Collection("vehicles"),
	}
}

// LoadSnapshot reads all six reference collections and builds a validated
// snapshot. Any malformed record fails the whole load.
func (r *MongoCatalogRepo) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var data SnapshotData
	if err := loadAll(ctx, r.problemsColl, &data.Problems); err != nil {
		return nil, fmt.Errorf("loading service_problems: %w", err)
	}
	if err := loadAll(ctx, r.partsColl, &data.Parts); err != nil {
		return nil, fmt.Errorf("loading parts_model: %w", err)
	}
	if err := loadAll(ctx, r.labourColl, &data.Labour); err != nil {
		return nil, fmt.Errorf("loading labour: %w", err)
	}
	if err := loadAll(ctx, r.bayColl, &data.Bays); err != nil {
		return nil, fmt.Errorf("loading bay_area: %w", err)
	}
	if err := loadAll(ctx, r.rulesColl, &data.Rules); err != nil {
		return nil, fmt.Errorf("loading insurance_warranty_rules: %w", err)
	}
	if err := loadAll(ctx, r.dealershipsColl, &data.Dealerships); err != nil {
		return nil, fmt.Errorf("loading dealerships: %w", err)
	}

	snap, err := BuildSnapshot(time.Now().UnixNano(), data)
	if err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}
	return snap, nil
}

func loadAll[T any](ctx context.Context, coll *mongo.Collection, out *[]T) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// VehicleByID fetches a vehicle document by id.
func (r *MongoCatalogRepo) VehicleByID(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var vehicle models.Vehicle
	if err := r.vehiclesColl.FindOne(ctx, bson.M{"vehicle_id": vehicleID}).Decode(&vehicle); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &LookupMissError{Collection: "vehicles", ID: vehicleID}
		}
		return nil, fmt.Errorf("error fetching vehicle %s: %w", vehicleID, err)
	}
	return &vehicle, nil
}
