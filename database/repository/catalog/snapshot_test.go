package catalogRepo

import (
	"testing"

	"autoserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validData() SnapshotData {
	return SnapshotData{
		Problems: []models.ServiceProblem{
			{ProblemID: "SP001", Name: "Brake pad replacement", Description: []string{"Grinding noise when braking"}},
			{ProblemID: "SP002", Name: "Battery replacement", Description: []string{"Car will not start"}},
		},
		Parts: []models.Part{
			{PartID: "P-BRAKE", DealershipID: "D1", Cost: 450, InStock: true},
			{PartID: "P-BRAKE", DealershipID: "D2", Cost: 500, InStock: true},
		},
		Labour: []models.LabourRecord{
			{DealershipID: "D1", LabourCategory: "brakes", TechnicianID: "T1", HourlyRate: 750, Available: true},
		},
		Bays: []models.BayResource{
			{BayID: "B1", DealershipID: "D1", BayType: "general", Available: true},
		},
		Rules: []models.DiscountRule{
			{RuleID: "R1", CoverageType: models.CoverageWarranty, PartID: "P-BRAKE", MaxVehicleAgeMonths: 24, DiscountPercentage: 100},
		},
		Dealerships: []models.Dealership{
			{DealershipID: "D1", Name: "Northside Motors"},
			{DealershipID: "D2", Name: "Harbour Auto"},
		},
	}
}

func TestBuildSnapshotAcceptsValidCatalog(t *testing.T) {
	snap, err := BuildSnapshot(7, validData())
	require.NoError(t, err)
	assert.Equal(t, int64(7), snap.Version)

	p, err := snap.ProblemByID("SP001")
	require.NoError(t, err)
	assert.Equal(t, "Brake pad replacement", p.Name)

	part, ok := snap.DealerPart("D1", "P-BRAKE")
	require.True(t, ok)
	assert.Equal(t, 450.0, part.Cost)

	// The canonical price comes from the first row seen for the part id.
	canonical, err := snap.CatalogPart("P-BRAKE")
	require.NoError(t, err)
	assert.Equal(t, 450.0, canonical.Cost)
}

func TestBuildSnapshotRejectsMalformedRecords(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SnapshotData)
	}{
		{"missing problem id", func(d *SnapshotData) { d.Problems[0].ProblemID = "" }},
		{"duplicate problem id", func(d *SnapshotData) { d.Problems[1].ProblemID = "SP001" }},
		{"negative labour hours", func(d *SnapshotData) { d.Problems[0].EstimatedLabourHours = -1 }},
		{"negative part cost", func(d *SnapshotData) { d.Parts[0].Cost = -5 }},
		{"duplicate dealer part", func(d *SnapshotData) { d.Parts[1].DealershipID = "D1" }},
		{"labour without category", func(d *SnapshotData) { d.Labour[0].LabourCategory = "" }},
		{"negative hourly rate", func(d *SnapshotData) { d.Labour[0].HourlyRate = -10 }},
		{"bay without id", func(d *SnapshotData) { d.Bays[0].BayID = "" }},
		{"unknown coverage type", func(d *SnapshotData) { d.Rules[0].CoverageType = "EXTENDED" }},
		{"discount above 100", func(d *SnapshotData) { d.Rules[0].DiscountPercentage = 120 }},
		{"negative discount", func(d *SnapshotData) { d.Rules[0].DiscountPercentage = -1 }},
		{"duplicate dealership", func(d *SnapshotData) { d.Dealerships[1].DealershipID = "D1" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := validData()
			tc.mutate(&data)
			_, err := BuildSnapshot(1, data)
			assert.Error(t, err)
		})
	}
}

func TestLookupMissesCarryCollectionAndID(t *testing.T) {
	snap, err := BuildSnapshot(1, validData())
	require.NoError(t, err)

	_, err = snap.ProblemByID("SP404")
	require.Error(t, err)
	assert.True(t, IsLookupMiss(err))

	_, err = snap.DealershipByID("D404")
	require.Error(t, err)
	assert.True(t, IsLookupMiss(err))
}

func TestSearchProblemsExactIDFirst(t *testing.T) {
	snap, err := BuildSnapshot(1, validData())
	require.NoError(t, err)

	results := snap.SearchProblems("SP002", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "SP002", results[0].ProblemID)
	assert.Len(t, results, 1)
}

func TestSearchProblemsSubstringMatchesNameAndDescription(t *testing.T) {
	snap, err := BuildSnapshot(1, validData())
	require.NoError(t, err)

	byName := snap.SearchProblems("brake", 10)
	require.Len(t, byName, 1)
	assert.Equal(t, "SP001", byName[0].ProblemID)

	byDescription := snap.SearchProblems("will not start", 10)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "SP002", byDescription[0].ProblemID)

	assert.Empty(t, snap.SearchProblems("suspension", 10))
}

func TestSearchProblemsRespectsLimit(t *testing.T) {
	data := validData()
	data.Problems = append(data.Problems, models.ServiceProblem{
		ProblemID: "SP003", Name: "Brake fluid flush",
	})
	snap, err := BuildSnapshot(1, data)
	require.NoError(t, err)

	assert.Len(t, snap.SearchProblems("brake", 1), 1)
	assert.Len(t, snap.SearchProblems("brake", 10), 2)
}

func TestDealershipsKeepCatalogOrder(t *testing.T) {
	snap, err := BuildSnapshot(1, validData())
	require.NoError(t, err)

	dealers := snap.Dealerships()
	require.Len(t, dealers, 2)
	assert.Equal(t, "D1", dealers[0].DealershipID)
	assert.Equal(t, "D2", dealers[1].DealershipID)
}
