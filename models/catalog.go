package models

// CoverageType distinguishes the two discount rule families.
type CoverageType string

const (
	CoverageWarranty  CoverageType = "WARRANTY"
	CoverageInsurance CoverageType = "INSURANCE"
)

// ServiceProblem is a canonical catalog problem. Immutable once published.
type ServiceProblem struct {
	ProblemID            string   `bson:"problem_id" json:"problem_id"`
	Name                 string   `bson:"problem_name" json:"problem_name"`
	Description          []string `bson:"detailed_description" json:"detailed_description"`
	PartsNeeded          []string `bson:"parts_needed" json:"parts_needed"`
	LabourCategory       string   `bson:"labour_category" json:"labour_category"`
	EstimatedLabourHours float64  `bson:"estimated_labour_hours" json:"estimated_labour_hours"`
	EstimatedMinutes     int      `bson:"estimated_service_time_minutes" json:"estimated_service_time_minutes"`
	BayType              string   `bson:"bay_type" json:"bay_type"`
}

// Part is one row of a dealership's parts inventory. The catalog price for a
// part id is taken from the first row seen for that id.
type Part struct {
	PartID              string   `bson:"part_id" json:"part_id"`
	DealershipID        string   `bson:"dealership_id" json:"dealership_id"`
	Name                string   `bson:"part_name" json:"part_name"`
	CompatibleModels    []string `bson:"compatible_models" json:"compatible_models"`
	Cost                float64  `bson:"cost" json:"cost"`
	InStock             bool     `bson:"in_stock" json:"in_stock"`
	ETADays             int      `bson:"eta_if_not_available_days" json:"eta_if_not_available_days"`
	WarrantyApplicable  bool     `bson:"warranty_applicable" json:"warranty_applicable"`
	InsuranceApplicable bool     `bson:"insurance_applicable" json:"insurance_applicable"`
}

// LabourRecord describes one technician at a dealership. The estimator selects
// by category, never by technician identity.
type LabourRecord struct {
	DealershipID   string  `bson:"dealership_id" json:"dealership_id"`
	LabourCategory string  `bson:"labour_category" json:"labour_category"`
	TechnicianID   string  `bson:"technician_id" json:"technician_id"`
	SkillLevel     string  `bson:"skill_level" json:"skill_level"`
	HourlyRate     float64 `bson:"hourly_rate" json:"hourly_rate"`
	Available      bool    `bson:"availability" json:"availability"`
	ETAHours       int     `bson:"eta_if_unavailable_hours" json:"eta_if_unavailable_hours"`
}

// BayResource is a service bay owned by a dealership.
type BayResource struct {
	BayID        string `bson:"bay_id" json:"bay_id"`
	DealershipID string `bson:"dealership_id" json:"dealership_id"`
	BayType      string `bson:"bay_type" json:"bay_type"`
	Available    bool   `bson:"availability" json:"availability"`
	ETAMinutes   int    `bson:"eta_if_unavailable_minutes" json:"eta_if_unavailable_minutes"`
}

// DiscountRule is a deterministic warranty/insurance discount rule.
type DiscountRule struct {
	RuleID              string       `bson:"rule_id" json:"rule_id"`
	CoverageType        CoverageType `bson:"coverage_type" json:"coverage_type"`
	PartID              string       `bson:"part_id" json:"part_id"`
	MaxVehicleAgeMonths int          `bson:"max_vehicle_age_months" json:"max_vehicle_age_months"`
	DiscountPercentage  float64      `bson:"discount_percentage" json:"discount_percentage"`
}

// Dealership is reference data about one service location.
type Dealership struct {
	DealershipID string   `bson:"dealership_id" json:"dealership_id"`
	Name         string   `bson:"name" json:"name"`
	Location     GeoPoint `bson:"location" json:"location"`
	Rating       float64  `bson:"rating" json:"rating"`
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Vehicle belongs to a customer; AgeMonths drives discount rule evaluation.
type Vehicle struct {
	VehicleID          string `bson:"vehicle_id" json:"vehicle_id"`
	CustomerID         string `bson:"customer_id" json:"customer_id"`
	Model              string `bson:"model" json:"model"`
	RegistrationNumber string `bson:"registration_number" json:"registration_number"`
	Year               int    `bson:"year" json:"year"`
	AgeMonths          int    `bson:"vehicle_age_months" json:"vehicle_age_months"`
}
