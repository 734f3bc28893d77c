package estimate

import (
	"math"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"
)

// ComputeEstimate produces the cost/time figure for one (dealership, problem)
// pair against an immutable catalog snapshot. It is a pure read/compute step
// with no side effects, safe to invoke concurrently for any number of
// dealerships.
func ComputeEstimate(snap *catalogRepo.Snapshot, dealershipID string, problem models.ServiceProblem, vehicleAgeMonths int) (*models.Estimate, error) {
	dealer, err := snap.DealershipByID(dealershipID)
	if err != nil {
		return nil, newPairError(ReasonUnknownDlr, "dealership %q not in catalog", dealershipID)
	}

	est := &models.Estimate{
		DealershipID:   dealershipID,
		DealershipName: dealer.Name,
		ProblemID:      problem.ProblemID,
		PartsAvailable: true,
	}

	// Parts: dealership inventory price when stocked, projected catalog price
	// otherwise. Restock ETA is a scheduling delay, not service duration, so
	// it is tracked separately from the minute estimate.
	for _, partID := range problem.PartsNeeded {
		part, inInventory := snap.DealerPart(dealershipID, partID)
		if !inInventory {
			catalogPart, err := snap.CatalogPart(partID)
			if err != nil {
				return nil, newPairError(ReasonCatalogMiss, "part %q referenced by problem %q is not in the catalog", partID, problem.ProblemID)
			}
			part = catalogPart
			part.InStock = false
		}

		est.PartsCost += part.Cost
		if !part.InStock {
			est.PartsAvailable = false
			if part.ETADays > est.PartsETADays {
				est.PartsETADays = part.ETADays
			}
		}

		amount, ruleID := EvaluateDiscount(snap.RulesForPart(partID), part, vehicleAgeMonths)
		if ruleID != "" {
			est.DiscountAmount += amount
			est.AppliedRules = append(est.AppliedRules, models.AppliedRule{
				PartID: partID,
				RuleID: ruleID,
				Amount: amount,
			})
		}
	}

	// Labour: select by category, preferring an available technician. An
	// unavailable category inflates the time estimate instead of failing.
	labour := snap.LabourByCategory(dealershipID, problem.LabourCategory)
	if len(labour) == 0 {
		return nil, newPairError(ReasonNoLabour, "dealership %q has no labour for category %q", dealershipID, problem.LabourCategory)
	}
	selected := selectLabour(labour)
	est.LabourCost = problem.EstimatedLabourHours * selected.HourlyRate
	est.EstimatedMinutes = problem.EstimatedMinutes
	if !selected.Available {
		est.EstimatedMinutes += selected.ETAHours * 60
	}

	// Bay: match by type; an unavailable bay folds its ETA into the total.
	bay, ok := selectBay(snap.Bays(dealershipID), problem.BayType)
	if !ok {
		return nil, newPairError(ReasonNoBay, "dealership %q has no bay of type %q", dealershipID, problem.BayType)
	}
	est.EarliestBay = bay.BayID
	if !bay.Available {
		est.EstimatedMinutes += bay.ETAMinutes
	}

	est.FinalCost = math.Max(0, est.PartsCost+est.LabourCost-est.DiscountAmount)
	return est, nil
}

// selectLabour prefers available technicians; within a tier it picks the
// lowest hourly rate, then the lowest technician id, so that repeated
// estimations over the same snapshot always pick the same record.
func selectLabour(records []models.LabourRecord) models.LabourRecord {
	best := records[0]
	for _, r := range records[1:] {
		if labourBetter(r, best) {
			best = r
		}
	}
	return best
}

func labourBetter(a, b models.LabourRecord) bool {
	if a.Available != b.Available {
		return a.Available
	}
	if a.Available {
		if a.HourlyRate != b.HourlyRate {
			return a.HourlyRate < b.HourlyRate
		}
	} else if a.ETAHours != b.ETAHours {
		return a.ETAHours < b.ETAHours
	}
	return a.TechnicianID < b.TechnicianID
}

// selectBay returns the best bay of the required type: available first, then
// shortest wait, then lowest bay id. An empty required type matches any bay.
func selectBay(bays []models.BayResource, bayType string) (models.BayResource, bool) {
	var best models.BayResource
	found := false
	for _, b := range bays {
		if bayType != "" && b.BayType != bayType {
			continue
		}
		if !found || bayBetter(b, best) {
			best = b
			found = true
		}
	}
	return best, found
}

func bayBetter(a, b models.BayResource) bool {
	if a.Available != b.Available {
		return a.Available
	}
	if !a.Available && a.ETAMinutes != b.ETAMinutes {
		return a.ETAMinutes < b.ETAMinutes
	}
	return a.BayID < b.BayID
}
