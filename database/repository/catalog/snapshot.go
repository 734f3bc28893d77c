package catalogRepo

import (
	"fmt"
	"sort"
	"strings"

	"autoserve/models"
)

// SnapshotData is the raw catalog content as loaded from the reference
// collections, before validation.
type SnapshotData struct {
	Problems    []models.ServiceProblem
	Parts       []models.Part
	Labour      []models.LabourRecord
	Bays        []models.BayResource
	Rules       []models.DiscountRule
	Dealerships []models.Dealership
}

// Snapshot is an immutable view of the whole catalog. Estimators read it
// lock-free; a refresher swaps the active snapshot wholesale.
type Snapshot struct {
	Version int64

	problems     map[string]models.ServiceProblem
	problemOrder []string

	// catalogParts holds the canonical part record per part id (first row
	// seen); dealerParts is the per-dealership inventory view.
	catalogParts map[string]models.Part
	dealerParts  map[string]map[string]models.Part

	labour map[string][]models.LabourRecord // dealership id -> records
	bays   map[string][]models.BayResource  // dealership id -> bays

	rulesByPart map[string][]models.DiscountRule
	ruleIDs     map[string]struct{}

	dealerships     map[string]models.Dealership
	dealershipOrder []string
}

// BuildSnapshot validates every catalog record and assembles the lookup
// indexes. Malformed entries are rejected here, at ingestion, never at
// estimation time.
func BuildSnapshot(version int64, data SnapshotData) (*Snapshot, error) {
	snap := &Snapshot{
		Version:      version,
		problems:     make(map[string]models.ServiceProblem, len(data.Problems)),
		catalogParts: make(map[string]models.Part),
		dealerParts:  make(map[string]map[string]models.Part),
		labour:       make(map[string][]models.LabourRecord),
		bays:         make(map[string][]models.BayResource),
		rulesByPart:  make(map[string][]models.DiscountRule),
		ruleIDs:      make(map[string]struct{}, len(data.Rules)),
		dealerships:  make(map[string]models.Dealership, len(data.Dealerships)),
	}

	for _, p := range data.Problems {
		if p.ProblemID == "" || p.Name == "" {
			return nil, fmt.Errorf("service problem %q: missing problem_id or problem_name", p.ProblemID)
		}
		if _, dup := snap.problems[p.ProblemID]; dup {
			return nil, fmt.Errorf("service problem %q: duplicate problem_id", p.ProblemID)
		}
		if p.EstimatedLabourHours < 0 {
			return nil, fmt.Errorf("service problem %q: negative estimated_labour_hours", p.ProblemID)
		}
		if p.EstimatedMinutes < 0 {
			return nil, fmt.Errorf("service problem %q: negative estimated_service_time_minutes", p.ProblemID)
		}
		snap.problems[p.ProblemID] = p
		snap.problemOrder = append(snap.problemOrder, p.ProblemID)
	}

	for _, part := range data.Parts {
		if part.PartID == "" {
			return nil, fmt.Errorf("part for dealership %q: missing part_id", part.DealershipID)
		}
		if part.Cost < 0 {
			return nil, fmt.Errorf("part %q: negative cost", part.PartID)
		}
		if _, seen := snap.catalogParts[part.PartID]; !seen {
			snap.catalogParts[part.PartID] = part
		}
		if part.DealershipID != "" {
			inv := snap.dealerParts[part.DealershipID]
			if inv == nil {
				inv = make(map[string]models.Part)
				snap.dealerParts[part.DealershipID] = inv
			}
			if _, dup := inv[part.PartID]; dup {
				return nil, fmt.Errorf("part %q: duplicate for dealership %q", part.PartID, part.DealershipID)
			}
			inv[part.PartID] = part
		}
	}

	for _, l := range data.Labour {
		if l.DealershipID == "" || l.LabourCategory == "" {
			return nil, fmt.Errorf("labour record %q: missing dealership_id or labour_category", l.TechnicianID)
		}
		if l.HourlyRate < 0 {
			return nil, fmt.Errorf("labour record %q: negative hourly_rate", l.TechnicianID)
		}
		snap.labour[l.DealershipID] = append(snap.labour[l.DealershipID], l)
	}

	bayIDs := make(map[string]struct{}, len(data.Bays))
	for _, b := range data.Bays {
		if b.BayID == "" || b.DealershipID == "" {
			return nil, fmt.Errorf("bay %q: missing bay_id or dealership_id", b.BayID)
		}
		if _, dup := bayIDs[b.BayID]; dup {
			return nil, fmt.Errorf("bay %q: duplicate bay_id", b.BayID)
		}
		bayIDs[b.BayID] = struct{}{}
		snap.bays[b.DealershipID] = append(snap.bays[b.DealershipID], b)
	}

	for _, r := range data.Rules {
		if r.RuleID == "" || r.PartID == "" {
			return nil, fmt.Errorf("discount rule %q: missing rule_id or part_id", r.RuleID)
		}
		if _, dup := snap.ruleIDs[r.RuleID]; dup {
			return nil, fmt.Errorf("discount rule %q: duplicate rule_id", r.RuleID)
		}
		if r.CoverageType != models.CoverageWarranty && r.CoverageType != models.CoverageInsurance {
			return nil, fmt.Errorf("discount rule %q: unknown coverage_type %q", r.RuleID, r.CoverageType)
		}
		if r.DiscountPercentage < 0 || r.DiscountPercentage > 100 {
			return nil, fmt.Errorf("discount rule %q: discount_percentage %.2f out of range", r.RuleID, r.DiscountPercentage)
		}
		snap.ruleIDs[r.RuleID] = struct{}{}
		snap.rulesByPart[r.PartID] = append(snap.rulesByPart[r.PartID], r)
	}

	for _, d := range data.Dealerships {
		if d.DealershipID == "" {
			return nil, fmt.Errorf("dealership %q: missing dealership_id", d.Name)
		}
		if _, dup := snap.dealerships[d.DealershipID]; dup {
			return nil, fmt.Errorf("dealership %q: duplicate dealership_id", d.DealershipID)
		}
		snap.dealerships[d.DealershipID] = d
		snap.dealershipOrder = append(snap.dealershipOrder, d.DealershipID)
	}

	return snap, nil
}

// ProblemByID returns the problem or a lookup miss error.
func (s *Snapshot) ProblemByID(id string) (models.ServiceProblem, error) {
	p, ok := s.problems[id]
	if !ok {
		return models.ServiceProblem{}, &LookupMissError{Collection: "service_problems", ID: id}
	}
	return p, nil
}

// ProblemsInOrder returns all problems in catalog insertion order.
func (s *Snapshot) ProblemsInOrder() []models.ServiceProblem {
	out := make([]models.ServiceProblem, 0, len(s.problemOrder))
	for _, id := range s.problemOrder {
		out = append(out, s.problems[id])
	}
	return out
}

// CatalogPart returns the canonical part record, used for projected pricing
// when a dealership does not stock the part.
func (s *Snapshot) CatalogPart(partID string) (models.Part, error) {
	p, ok := s.catalogParts[partID]
	if !ok {
		return models.Part{}, &LookupMissError{Collection: "parts_model", ID: partID}
	}
	return p, nil
}

// DealerPart returns the part as seen in one dealership's inventory.
func (s *Snapshot) DealerPart(dealershipID, partID string) (models.Part, bool) {
	inv, ok := s.dealerParts[dealershipID]
	if !ok {
		return models.Part{}, false
	}
	p, ok := inv[partID]
	return p, ok
}

// DealerParts returns a dealership's full inventory view.
func (s *Snapshot) DealerParts(dealershipID string) []models.Part {
	inv := s.dealerParts[dealershipID]
	out := make([]models.Part, 0, len(inv))
	for _, id := range sortedKeys(inv) {
		out = append(out, inv[id])
	}
	return out
}

// LabourByCategory returns a dealership's labour records matching category.
func (s *Snapshot) LabourByCategory(dealershipID, category string) []models.LabourRecord {
	var out []models.LabourRecord
	for _, l := range s.labour[dealershipID] {
		if l.LabourCategory == category {
			out = append(out, l)
		}
	}
	return out
}

// Labour returns all labour records for a dealership.
func (s *Snapshot) Labour(dealershipID string) []models.LabourRecord {
	return s.labour[dealershipID]
}

// Bays returns all bays owned by a dealership.
func (s *Snapshot) Bays(dealershipID string) []models.BayResource {
	return s.bays[dealershipID]
}

// RulesForPart returns every discount rule referencing the part, in catalog
// order.
func (s *Snapshot) RulesForPart(partID string) []models.DiscountRule {
	return s.rulesByPart[partID]
}

// DealershipByID returns the dealership or a lookup miss error.
func (s *Snapshot) DealershipByID(id string) (models.Dealership, error) {
	d, ok := s.dealerships[id]
	if !ok {
		return models.Dealership{}, &LookupMissError{Collection: "dealerships", ID: id}
	}
	return d, nil
}

// Dealerships returns all dealerships in catalog insertion order.
func (s *Snapshot) Dealerships() []models.Dealership {
	out := make([]models.Dealership, 0, len(s.dealershipOrder))
	for _, id := range s.dealershipOrder {
		out = append(out, s.dealerships[id])
	}
	return out
}

// SearchProblems performs a case-insensitive substring search over problem id,
// name and description fragments. An exact id hit is returned first; the rest
// follow in catalog insertion order.
func (s *Snapshot) SearchProblems(query string, limit int) []models.ServiceProblem {
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []models.ServiceProblem
	if p, ok := s.problems[query]; ok {
		out = append(out, p)
	}

	for _, id := range s.problemOrder {
		if len(out) >= limit {
			break
		}
		p := s.problems[id]
		if id == query {
			continue // already placed first
		}
		if strings.Contains(strings.ToLower(p.ProblemID), q) ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			descriptionContains(p.Description, q) {
			out = append(out, p)
		}
	}
	return out
}

func descriptionContains(fragments []string, q string) bool {
	for _, f := range fragments {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]models.Part) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion order is not tracked for inventory; sort for stable output.
	sort.Strings(keys)
	return keys
}
