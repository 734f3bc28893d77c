package estimate

import (
	"context"
	"fmt"
	"sort"
	"time"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// pairFunc computes one (dealership, problem) estimate. Swappable in tests to
// simulate slow or failing dealerships.
type pairFunc func(ctx context.Context, snap *catalogRepo.Snapshot, dealershipID string, problem models.ServiceProblem, vehicleAgeMonths int) (*models.Estimate, error)

const memoSize = 4096

// Aggregator fans one estimation out per (dealership, problem) pair, joins
// the results, and groups them per problem with dealerships ranked by cost.
// One slow or failing dealership never blocks the rest: its pair is recorded
// as a failure and omitted from the ranking.
type Aggregator struct {
	Catalog        catalogRepo.Provider
	Logger         *zap.Logger
	PairTimeout    time.Duration
	OverallTimeout time.Duration
	MaxConcurrent  int

	pairFn pairFunc
	memo   *lru.Cache[string, models.Estimate]
}

// NewAggregator builds an Aggregator with the default pure estimator.
func NewAggregator(catalog catalogRepo.Provider, logger *zap.Logger, pairTimeout, overallTimeout time.Duration, maxConcurrent int) *Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	memo, _ := lru.New[string, models.Estimate](memoSize)
	return &Aggregator{
		Catalog:        catalog,
		Logger:         logger,
		PairTimeout:    pairTimeout,
		OverallTimeout: overallTimeout,
		MaxConcurrent:  maxConcurrent,
		pairFn: func(_ context.Context, snap *catalogRepo.Snapshot, dealershipID string, problem models.ServiceProblem, age int) (*models.Estimate, error) {
			return ComputeEstimate(snap, dealershipID, problem, age)
		},
		memo: memo,
	}
}

// EstimatePair computes a single pair against the current snapshot, with
// memoization keyed by snapshot version.
func (a *Aggregator) EstimatePair(ctx context.Context, dealershipID, problemID string, vehicleAgeMonths int) (*models.Estimate, error) {
	snap := a.Catalog.Snapshot()
	problem, err := snap.ProblemByID(problemID)
	if err != nil {
		return nil, err
	}
	return a.cachedPair(ctx, snap, dealershipID, problem, vehicleAgeMonths)
}

func (a *Aggregator) cachedPair(ctx context.Context, snap *catalogRepo.Snapshot, dealershipID string, problem models.ServiceProblem, age int) (*models.Estimate, error) {
	key := fmt.Sprintf("%d|%s|%s|%d", snap.Version, dealershipID, problem.ProblemID, age)
	if cached, ok := a.memo.Get(key); ok {
		est := cached
		return &est, nil
	}
	est, err := a.pairFn(ctx, snap, dealershipID, problem, age)
	if err != nil {
		return nil, err
	}
	a.memo.Add(key, *est)
	return est, nil
}

type pairResult struct {
	problemIdx   int
	dealershipID string
	estimate     *models.Estimate
	failReason   string
}

// Compare runs the full fan-out for the finalized top-N problems across the
// candidate dealerships. Per-pair failures and timeouts surface as
// EstimateFailure entries; the batch itself only fails when the caller's
// context is cancelled.
func (a *Aggregator) Compare(ctx context.Context, dealershipIDs []string, problemIDs []string, vehicleAgeMonths int) (*models.EstimateComparison, error) {
	snap := a.Catalog.Snapshot()

	overallCtx, cancel := context.WithTimeout(ctx, a.OverallTimeout)
	defer cancel()

	groups := make([]models.ProblemEstimates, len(problemIDs))
	total := 0
	type launch struct {
		problemIdx   int
		dealershipID string
		problem      models.ServiceProblem
	}
	var launches []launch

	for i, pid := range problemIDs {
		problem, err := snap.ProblemByID(pid)
		if err != nil {
			// An unknown problem id fails all of its pairs, nothing else.
			groups[i] = models.ProblemEstimates{ProblemID: pid}
			for _, d := range dealershipIDs {
				groups[i].Failures = append(groups[i].Failures, models.EstimateFailure{
					DealershipID: d, ProblemID: pid, Reason: ReasonCatalogMiss,
				})
			}
			continue
		}
		groups[i] = models.ProblemEstimates{ProblemID: pid, ProblemName: problem.Name}
		for _, d := range dealershipIDs {
			launches = append(launches, launch{problemIdx: i, dealershipID: d, problem: problem})
			total++
		}
	}

	results := make(chan pairResult, total)
	sem := make(chan struct{}, a.MaxConcurrent)

	for _, l := range launches {
		go func(l launch) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-overallCtx.Done():
				results <- pairResult{problemIdx: l.problemIdx, dealershipID: l.dealershipID, failReason: ReasonDeadline}
				return
			}

			pairCtx, pairCancel := context.WithTimeout(overallCtx, a.PairTimeout)
			defer pairCancel()

			done := make(chan pairResult, 1)
			go func() {
				est, err := a.cachedPair(pairCtx, snap, l.dealershipID, l.problem, vehicleAgeMonths)
				if err != nil {
					reason := ReasonCatalogMiss
					if pe, ok := err.(*PairError); ok {
						reason = pe.Code
					}
					a.Logger.Debug("estimate pair failed",
						zap.String("dealership", l.dealershipID),
						zap.String("problem", l.problem.ProblemID),
						zap.Error(err))
					done <- pairResult{problemIdx: l.problemIdx, dealershipID: l.dealershipID, failReason: reason}
					return
				}
				done <- pairResult{problemIdx: l.problemIdx, dealershipID: l.dealershipID, estimate: est}
			}()

			select {
			case r := <-done:
				results <- r
			case <-pairCtx.Done():
				results <- pairResult{problemIdx: l.problemIdx, dealershipID: l.dealershipID, failReason: ReasonTimeout}
			}
		}(l)
	}

	received := 0
	resolved := make(map[string]bool, total)
	for received < total {
		select {
		case r := <-results:
			received++
			resolved[fmt.Sprintf("%d|%s", r.problemIdx, r.dealershipID)] = true
			if r.estimate != nil {
				groups[r.problemIdx].Dealerships = append(groups[r.problemIdx].Dealerships, *r.estimate)
			} else {
				groups[r.problemIdx].Failures = append(groups[r.problemIdx].Failures, models.EstimateFailure{
					DealershipID: r.dealershipID,
					ProblemID:    groups[r.problemIdx].ProblemID,
					Reason:       r.failReason,
				})
			}
		case <-overallCtx.Done():
			if ctx.Err() != nil {
				// Caller cancelled: stop waiting entirely.
				return nil, ctx.Err()
			}
			// Overall ceiling hit: mark the unresolved pairs and return what
			// we have.
			for _, l := range launches {
				if !resolved[fmt.Sprintf("%d|%s", l.problemIdx, l.dealershipID)] {
					groups[l.problemIdx].Failures = append(groups[l.problemIdx].Failures, models.EstimateFailure{
						DealershipID: l.dealershipID,
						ProblemID:    l.problem.ProblemID,
						Reason:       ReasonDeadline,
					})
				}
			}
			received = total
		}
	}

	for i := range groups {
		sortGroup(&groups[i])
	}
	return &models.EstimateComparison{Problems: groups}, nil
}

// sortGroup ranks dealerships ascending by final cost, breaking ties by
// estimated minutes and then dealership id for a fully deterministic order.
func sortGroup(g *models.ProblemEstimates) {
	sort.Slice(g.Dealerships, func(i, j int) bool {
		a, b := g.Dealerships[i], g.Dealerships[j]
		if a.FinalCost != b.FinalCost {
			return a.FinalCost < b.FinalCost
		}
		if a.EstimatedMinutes != b.EstimatedMinutes {
			return a.EstimatedMinutes < b.EstimatedMinutes
		}
		return a.DealershipID < b.DealershipID
	})
	sort.Slice(g.Failures, func(i, j int) bool {
		return g.Failures[i].DealershipID < g.Failures[j].DealershipID
	})
}
