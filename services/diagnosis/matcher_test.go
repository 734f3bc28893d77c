package diagnosis

import (
	"testing"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matcherSnapshot(t *testing.T) *catalogRepo.Snapshot {
	t.Helper()
	snap, err := catalogRepo.BuildSnapshot(1, catalogRepo.SnapshotData{
		Problems: []models.ServiceProblem{
			{
				ProblemID:   "SP001",
				Name:        "Brake pad replacement",
				Description: []string{"Grinding noise when braking", "Vibration felt in the brake pedal"},
			},
			{
				ProblemID:   "SP002",
				Name:        "Battery replacement",
				Description: []string{"Engine will not start", "Clicking sound on ignition"},
			},
			{
				ProblemID:   "SP003",
				Name:        "Brake fluid flush",
				Description: []string{"Soft or spongy brake pedal"},
			},
		},
	})
	require.NoError(t, err)
	return snap
}

func TestMatchRanksNameHitsAboveDescriptionHits(t *testing.T) {
	snap := matcherSnapshot(t)
	m := &LexicalMatcher{MinScore: 0.05}

	ranked, err := m.Match(snap, "I hear a grinding noise from the brake pads")
	require.NoError(t, err)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "SP001", ranked[0].ProblemID)
}

func TestMatchDropsCandidatesBelowThreshold(t *testing.T) {
	snap := matcherSnapshot(t)
	m := &LexicalMatcher{MinScore: 0.05}

	ranked, err := m.Match(snap, "battery clicking when starting")
	require.NoError(t, err)
	for _, r := range ranked {
		assert.GreaterOrEqual(t, r.Score, m.MinScore)
	}
	assert.Equal(t, "SP002", ranked[0].ProblemID)
}

func TestMatchNoCandidates(t *testing.T) {
	snap := matcherSnapshot(t)
	m := &LexicalMatcher{MinScore: 0.05}

	_, err := m.Match(snap, "paint looks dull")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestMatchEmptyInputYieldsNoCandidates(t *testing.T) {
	snap := matcherSnapshot(t)
	m := &LexicalMatcher{MinScore: 0.05}

	_, err := m.Match(snap, "   ")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestMatchCapsCandidateSet(t *testing.T) {
	snap := matcherSnapshot(t)
	m := &LexicalMatcher{MinScore: 0.01, MaxCandidates: 1}

	ranked, err := m.Match(snap, "brake pedal problem")
	require.NoError(t, err)
	assert.Len(t, ranked, 1)
}

func TestRankIsDeterministicAcrossRuns(t *testing.T) {
	snap := matcherSnapshot(t)
	m := &LexicalMatcher{}
	problems := snap.ProblemsInOrder()

	first := m.Rank(problems, "brake pedal vibration and grinding")
	for i := 0; i < 25; i++ {
		assert.Equal(t, first, m.Rank(problems, "brake pedal vibration and grinding"))
	}
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	m := &LexicalMatcher{}
	problems := []models.ServiceProblem{
		{ProblemID: "A", Name: "Wiper motor"},
		{ProblemID: "B", Name: "Wiper blades"},
	}

	ranked := m.Rank(problems, "wiper broken")
	require.Len(t, ranked, 2)
	assert.Equal(t, "A", ranked[0].ProblemID)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
}

func TestTokenizeNormalization(t *testing.T) {
	tokens := tokenize("The brake, BRAKE!! is squeaking... at 60km/h")
	assert.Equal(t, []string{"brake", "squeaking", "60km"}, tokens)
}
