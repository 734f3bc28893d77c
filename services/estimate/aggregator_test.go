package estimate

import (
	"context"
	"testing"
	"time"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticProvider struct {
	snap *catalogRepo.Snapshot
}

func (p staticProvider) Snapshot() *catalogRepo.Snapshot { return p.snap }

func newTestAggregator(t *testing.T, snap *catalogRepo.Snapshot) *Aggregator {
	t.Helper()
	return NewAggregator(staticProvider{snap: snap}, zap.NewNop(), 200*time.Millisecond, time.Second, 8)
}

func TestCompareRanksDealershipsByCost(t *testing.T) {
	snap := testSnapshot(t)
	agg := newTestAggregator(t, snap)

	// Age 30: no discounts. D1 = 450 + 600 = 1050, D2 = 500 + 640 = 1140.
	cmp, err := agg.Compare(context.Background(), []string{"D2", "D1"}, []string{"SP001"}, 30)
	require.NoError(t, err)
	require.Len(t, cmp.Problems, 1)

	group := cmp.Problems[0]
	assert.Equal(t, "SP001", group.ProblemID)
	assert.Equal(t, "Brake pad replacement", group.ProblemName)
	require.Len(t, group.Dealerships, 2)
	assert.Equal(t, "D1", group.Dealerships[0].DealershipID)
	assert.Equal(t, "D2", group.Dealerships[1].DealershipID)
	assert.LessOrEqual(t, group.Dealerships[0].FinalCost, group.Dealerships[1].FinalCost)
}

func TestComparePartialFailureKeepsOtherDealerships(t *testing.T) {
	snap := testSnapshot(t)
	agg := newTestAggregator(t, snap)

	// D2 has no electrical labour for SP002; D1 still returns an estimate.
	cmp, err := agg.Compare(context.Background(), []string{"D1", "D2"}, []string{"SP002"}, 24)
	require.NoError(t, err)

	group := cmp.Problems[0]
	require.Len(t, group.Dealerships, 1)
	assert.Equal(t, "D1", group.Dealerships[0].DealershipID)
	require.Len(t, group.Failures, 1)
	assert.Equal(t, "D2", group.Failures[0].DealershipID)
	assert.Equal(t, ReasonNoLabour, group.Failures[0].Reason)
}

func TestCompareHangingDealershipIsFlaggedNotBlocking(t *testing.T) {
	snap := testSnapshot(t)
	agg := newTestAggregator(t, snap)

	realFn := agg.pairFn
	agg.pairFn = func(ctx context.Context, s *catalogRepo.Snapshot, dealershipID string, p models.ServiceProblem, age int) (*models.Estimate, error) {
		if dealershipID == "D2" {
			<-ctx.Done() // simulate a dealership that never answers
			return nil, ctx.Err()
		}
		return realFn(ctx, s, dealershipID, p, age)
	}

	start := time.Now()
	cmp, err := agg.Compare(context.Background(), []string{"D1", "D2"}, []string{"SP001"}, 30)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), agg.OverallTimeout)

	group := cmp.Problems[0]
	require.Len(t, group.Dealerships, 1)
	assert.Equal(t, "D1", group.Dealerships[0].DealershipID)
	require.Len(t, group.Failures, 1)
	assert.Equal(t, "D2", group.Failures[0].DealershipID)
	assert.Equal(t, ReasonTimeout, group.Failures[0].Reason)
}

func TestCompareUnknownProblemFailsOnlyItsPairs(t *testing.T) {
	snap := testSnapshot(t)
	agg := newTestAggregator(t, snap)

	cmp, err := agg.Compare(context.Background(), []string{"D1"}, []string{"SP404", "SP001"}, 30)
	require.NoError(t, err)
	require.Len(t, cmp.Problems, 2)

	assert.Empty(t, cmp.Problems[0].Dealerships)
	require.Len(t, cmp.Problems[0].Failures, 1)
	assert.Equal(t, ReasonCatalogMiss, cmp.Problems[0].Failures[0].Reason)

	assert.Len(t, cmp.Problems[1].Dealerships, 1)
}

func TestCompareCallerCancellationAborts(t *testing.T) {
	snap := testSnapshot(t)
	agg := newTestAggregator(t, snap)
	agg.pairFn = func(ctx context.Context, _ *catalogRepo.Snapshot, _ string, _ models.ServiceProblem, _ int) (*models.Estimate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := agg.Compare(ctx, []string{"D1", "D2"}, []string{"SP001"}, 30)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimatePairMemoizesPerSnapshotVersion(t *testing.T) {
	snap := testSnapshot(t)
	agg := newTestAggregator(t, snap)

	calls := 0
	realFn := agg.pairFn
	agg.pairFn = func(ctx context.Context, s *catalogRepo.Snapshot, d string, p models.ServiceProblem, age int) (*models.Estimate, error) {
		calls++
		return realFn(ctx, s, d, p, age)
	}

	first, err := agg.EstimatePair(context.Background(), "D1", "SP001", 12)
	require.NoError(t, err)
	second, err := agg.EstimatePair(context.Background(), "D1", "SP001", 12)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// A different vehicle age is a different memo entry.
	_, err = agg.EstimatePair(context.Background(), "D1", "SP001", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCompareIdenticalInputsProduceIdenticalOrdering(t *testing.T) {
	snap := testSnapshot(t)
	agg := newTestAggregator(t, snap)

	first, err := agg.Compare(context.Background(), []string{"D2", "D1"}, []string{"SP001", "SP002"}, 12)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := agg.Compare(context.Background(), []string{"D2", "D1"}, []string{"SP001", "SP002"}, 12)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
