package estimate

import (
	"testing"

	"autoserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brakePart(cost float64, warranty, insurance bool) models.Part {
	return models.Part{
		PartID:              "P-BRAKE",
		Cost:                cost,
		InStock:             true,
		WarrantyApplicable:  warranty,
		InsuranceApplicable: insurance,
	}
}

func TestEvaluateDiscountAppliesWithinAgeCeiling(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "R1", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 24, DiscountPercentage: 100},
	}
	part := brakePart(450, true, false)

	amount, ruleID := EvaluateDiscount(rules, part, 12)
	assert.Equal(t, 450.0, amount)
	assert.Equal(t, "R1", ruleID)
}

func TestEvaluateDiscountRejectsVehiclePastCeiling(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "R1", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 24, DiscountPercentage: 100},
	}
	part := brakePart(450, true, false)

	amount, ruleID := EvaluateDiscount(rules, part, 30)
	assert.Zero(t, amount)
	assert.Empty(t, ruleID)
}

func TestEvaluateDiscountRequiresCoverageFlag(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "RW", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 60, DiscountPercentage: 50},
		{RuleID: "RI", CoverageType: models.CoverageInsurance, PartID: "P-BRAKE", MaxVehicleAgeMonths: 60, DiscountPercentage: 40},
	}

	// Part carries only insurance coverage: the bigger warranty rule must
	// not fire.
	part := brakePart(200, false, true)
	amount, ruleID := EvaluateDiscount(rules, part, 12)
	assert.Equal(t, 80.0, amount)
	assert.Equal(t, "RI", ruleID)
}

func TestEvaluateDiscountIgnoresOtherParts(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "R1", CoverageType: models.CoverageWarranty, PartID: "P-OTHER", MaxVehicleAgeMonths: 60, DiscountPercentage: 100},
	}
	part := brakePart(450, true, true)

	amount, ruleID := EvaluateDiscount(rules, part, 12)
	assert.Zero(t, amount)
	assert.Empty(t, ruleID)
}

func TestEvaluateDiscountHighestPercentageWins(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "R-LOW", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 60, DiscountPercentage: 20},
		{RuleID: "R-HIGH", CoverageType: models.CoverageInsurance, PartID: "P-BRAKE", MaxVehicleAgeMonths: 60, DiscountPercentage: 75},
	}
	part := brakePart(100, true, true)

	amount, ruleID := EvaluateDiscount(rules, part, 6)
	assert.Equal(t, 75.0, amount)
	assert.Equal(t, "R-HIGH", ruleID)
}

func TestEvaluateDiscountPercentageTieGoesToLowestRuleID(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "R2", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 60, DiscountPercentage: 50},
		{RuleID: "R1", CoverageType: models.CoverageInsurance, PartID: "P-BRAKE", MaxVehicleAgeMonths: 60, DiscountPercentage: 50},
	}
	part := brakePart(100, true, true)

	_, ruleID := EvaluateDiscount(rules, part, 6)
	assert.Equal(t, "R1", ruleID)
}

func TestEvaluateDiscountNeverExceedsPartCost(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "R1", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 60, DiscountPercentage: 100},
	}
	part := brakePart(450, true, false)

	amount, _ := EvaluateDiscount(rules, part, 6)
	assert.LessOrEqual(t, amount, part.Cost)
}

func TestEvaluateDiscountIsReproducible(t *testing.T) {
	rules := []models.DiscountRule{
		{RuleID: "R3", CoverageType: models.CoverageInsurance, PartID: "P-BRAKE", MaxVehicleAgeMonths: 48, DiscountPercentage: 30},
		{RuleID: "R1", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 24, DiscountPercentage: 30},
		{RuleID: "R2", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 36, DiscountPercentage: 15},
	}
	part := brakePart(300, true, true)

	firstAmount, firstRule := EvaluateDiscount(rules, part, 20)
	require.Equal(t, "R1", firstRule)
	for i := 0; i < 50; i++ {
		amount, ruleID := EvaluateDiscount(rules, part, 20)
		require.Equal(t, firstAmount, amount)
		require.Equal(t, firstRule, ruleID)
	}
}
