package estimate

import "autoserve/models"

// EvaluateDiscount is the deterministic warranty/insurance rule evaluation.
// Among the rules referencing the part whose age ceiling covers the vehicle,
// the highest discount percentage wins; a percentage tie goes to the lowest
// rule id. A rule only applies when the part carries the matching coverage
// flag. The returned rule id makes every discount auditable; it is empty when
// no rule applied.
//
// This is a pure function: identical inputs always produce the identical
// discount and winning rule id.
func EvaluateDiscount(rules []models.DiscountRule, part models.Part, vehicleAgeMonths int) (float64, string) {
	var winner *models.DiscountRule
	for _, r := range rules {
		if r.PartID != part.PartID {
			continue
		}
		if r.MaxVehicleAgeMonths < vehicleAgeMonths {
			continue
		}
		switch r.CoverageType {
		case models.CoverageWarranty:
			if !part.WarrantyApplicable {
				continue
			}
		case models.CoverageInsurance:
			if !part.InsuranceApplicable {
				continue
			}
		default:
			continue
		}
		if winner == nil ||
			r.DiscountPercentage > winner.DiscountPercentage ||
			(r.DiscountPercentage == winner.DiscountPercentage && r.RuleID < winner.RuleID) {
			rule := r
			winner = &rule
		}
	}
	if winner == nil {
		return 0, ""
	}

	amount := part.Cost * winner.DiscountPercentage / 100
	// A discount can never exceed the cost of the part it targets.
	if amount > part.Cost {
		amount = part.Cost
	}
	return amount, winner.RuleID
}
