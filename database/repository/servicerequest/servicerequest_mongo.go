package requestRepo

import (
	"context"
	"fmt"
	"time"

	"autoserve/config"
	"autoserve/database"
	"autoserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRequestRepo implements Repository using MongoDB.
type MongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestRepo constructs a new instance of MongoRequestRepo.
func NewMongoRequestRepo() *MongoRequestRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoRequestRepo{coll: db.Collection("service_requests")}
}

// Create inserts a new service request. The unique index on idempotency_key
// makes the check-then-create a single atomic operation: a retried booking
// surfaces as ErrDuplicateKey instead of a second document.
func (r *MongoRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("error creating service request: %w", err)
	}
	return nil
}

// GetByID returns a service request by its id.
func (r *MongoRequestRepo) GetByID(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching service request %s: %w", requestID, err)
	}
	return &req, nil
}

// GetByIdempotencyKey returns the request created under the given key.
func (r *MongoRequestRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching service request by idempotency key: %w", err)
	}
	return &req, nil
}

// ListByCustomer returns a customer's service requests, newest first.
func (r *MongoRequestRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

// ListByDealership returns a dealership's service requests, newest first.
func (r *MongoRequestRepo) ListByDealership(ctx context.Context, dealershipID string) ([]models.ServiceRequest, error) {
	return r.list(ctx, bson.M{"dealership_id": dealershipID})
}

func (r *MongoRequestRepo) list(ctx context.Context, filter bson.M) ([]models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing service requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ServiceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("error decoding service requests: %w", err)
	}
	return requests, nil
}

// ApplyUpdate performs a status-guarded conditional update. The filter pins
// the current status, so a concurrent transition makes this a no-op rather
// than a lost update.
func (r *MongoRequestRepo) ApplyUpdate(ctx context.Context, requestID string, expected models.RequestStatus, update models.ServiceRequestUpdate) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.SelectedProblemID != nil {
		set["selected_problem_id"] = *update.SelectedProblemID
	}
	if update.FinalCost != nil {
		set["final_cost"] = *update.FinalCost
	}
	if update.FinalTimeMinutes != nil {
		set["final_time_minutes"] = *update.FinalTimeMinutes
	}

	filter := bson.M{"request_id": requestID, "status": expected}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("error updating service request %s: %w", requestID, err)
	}
	return res.MatchedCount > 0, nil
}
