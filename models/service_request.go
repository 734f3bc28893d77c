package models

import "time"

// RequestStatus is the booking lifecycle state. Transitions are strictly
// linear: Requested -> Approved -> In Progress -> Completed.
type RequestStatus string

const (
	StatusRequested  RequestStatus = "Requested"
	StatusApproved   RequestStatus = "Approved"
	StatusInProgress RequestStatus = "In Progress"
	StatusCompleted  RequestStatus = "Completed"
)

var statusRank = map[RequestStatus]int{
	StatusRequested:  0,
	StatusApproved:   1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// Rank returns the position of s in the lifecycle, or -1 for unknown values.
func (s RequestStatus) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// CanAdvanceTo reports whether moving from s to next is a legal single step.
func (s RequestStatus) CanAdvanceTo(next RequestStatus) bool {
	from, to := s.Rank(), next.Rank()
	return from >= 0 && to >= 0 && to == from+1
}

// BookedProblem is a candidate problem snapshotted into a service request at
// booking time, with the estimate the customer saw.
type BookedProblem struct {
	ProblemID        string  `bson:"problem_id" json:"problem_id"`
	Name             string  `bson:"problem_name" json:"problem_name"`
	EstimatedCost    float64 `bson:"estimated_cost" json:"estimated_cost"`
	EstimatedMinutes int     `bson:"estimated_time_minutes" json:"estimated_time_minutes"`
	Discount         float64 `bson:"discount" json:"discount"`
}

// ServiceRequest is the durable booking record. Created once by the booking
// coordinator; mutated thereafter only through the dealership update path.
type ServiceRequest struct {
	RequestID         string          `bson:"request_id" json:"request_id"`
	IdempotencyKey    string          `bson:"idempotency_key" json:"-"`
	CustomerID        string          `bson:"customer_id" json:"customer_id"`
	VehicleID         string          `bson:"vehicle_id" json:"vehicle_id"`
	DealershipID      string          `bson:"dealership_id" json:"dealership_id"`
	SessionID         string          `bson:"session_id,omitempty" json:"session_id,omitempty"`
	CandidateProblems []BookedProblem `bson:"candidate_problems" json:"candidate_problems"`
	SelectedProblemID string          `bson:"selected_problem_id,omitempty" json:"selected_problem_id,omitempty"`
	Status            RequestStatus   `bson:"status" json:"status"`
	FinalCost         *float64        `bson:"final_cost,omitempty" json:"final_cost,omitempty"`
	FinalTimeMinutes  *int            `bson:"final_time_minutes,omitempty" json:"final_time_minutes,omitempty"`
	CreatedAt         time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `bson:"updated_at" json:"updated_at"`
}

// HasCandidate reports whether problemID belongs to the candidate set fixed at
// booking time.
func (r *ServiceRequest) HasCandidate(problemID string) bool {
	for _, p := range r.CandidateProblems {
		if p.ProblemID == problemID {
			return true
		}
	}
	return false
}

// ServiceRequestUpdate carries the dealership-side mutation. Nil fields are
// left untouched.
type ServiceRequestUpdate struct {
	Status            *RequestStatus `json:"status,omitempty"`
	SelectedProblemID *string        `json:"selected_problem_id,omitempty"`
	FinalCost         *float64       `json:"final_cost,omitempty"`
	FinalTimeMinutes  *int           `json:"final_time_minutes,omitempty"`
}

// BookingInput is everything the booking coordinator needs to create a
// service request.
type BookingInput struct {
	CustomerID     string          `json:"customer_id"`
	VehicleID      string          `json:"vehicle_id"`
	DealershipID   string          `json:"dealership_id"`
	SessionID      string          `json:"session_id,omitempty"`
	TopProblems    []RankedProblem `json:"top_problems"`
	IdempotencyKey string          `json:"idempotency_key"`
}
