package models

// AppliedRule records which discount rule won for one required part, so every
// discount in an estimate is traceable to a rule id.
type AppliedRule struct {
	PartID string  `json:"part_id"`
	RuleID string  `json:"rule_id"`
	Amount float64 `json:"amount"`
}

// Estimate is the computed cost/time figure for one (dealership, problem) pair.
type Estimate struct {
	DealershipID     string        `json:"dealership_id"`
	DealershipName   string        `json:"dealership_name,omitempty"`
	ProblemID        string        `json:"problem_id"`
	PartsCost        float64       `json:"parts_cost"`
	LabourCost       float64       `json:"labour_cost"`
	DiscountAmount   float64       `json:"discount"`
	FinalCost        float64       `json:"final_cost"`
	EstimatedMinutes int           `json:"estimated_time_minutes"`
	PartsAvailable   bool          `json:"parts_available"`
	// PartsETADays is the worst-case restock delay across missing parts. It is
	// a scheduling delay, not service duration, so it is reported separately
	// from EstimatedMinutes.
	PartsETADays int           `json:"parts_eta_days,omitempty"`
	EarliestBay  string        `json:"earliest_bay,omitempty"`
	AppliedRules []AppliedRule `json:"applied_rules,omitempty"`
}

// EstimateFailure marks one (dealership, problem) pair that timed out or
// errored during aggregation.
type EstimateFailure struct {
	DealershipID string `json:"dealership_id"`
	ProblemID    string `json:"problem_id"`
	Reason       string `json:"reason"`
}

// ProblemEstimates groups per-dealership estimates for one problem, sorted
// ascending by final cost.
type ProblemEstimates struct {
	ProblemID   string            `json:"problem_id"`
	ProblemName string            `json:"problem_name"`
	Dealerships []Estimate        `json:"dealerships"`
	Failures    []EstimateFailure `json:"failures,omitempty"`
}

// EstimateComparison is the full fan-out result for a finalized top-N set.
type EstimateComparison struct {
	Problems []ProblemEstimates `json:"estimates"`
}
