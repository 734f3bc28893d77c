package diagnosis

import (
	"context"
	"testing"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memorySessionStore struct {
	sessions map[string]*models.DiagnosisSession
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*models.DiagnosisSession)}
}

func (s *memorySessionStore) Get(_ context.Context, sessionID string) (*models.DiagnosisSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *memorySessionStore) Save(_ context.Context, session *models.DiagnosisSession) error {
	copied := *session
	s.sessions[session.SessionID] = &copied
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

type staticCatalog struct {
	snap *catalogRepo.Snapshot
}

func (c staticCatalog) Snapshot() *catalogRepo.Snapshot { return c.snap }

func sessionSnapshot(t *testing.T) *catalogRepo.Snapshot {
	t.Helper()
	snap, err := catalogRepo.BuildSnapshot(1, catalogRepo.SnapshotData{
		Problems: []models.ServiceProblem{
			{ProblemID: "SP001", Name: "Brake noise repair", Description: []string{"grinding noise"}},
			{ProblemID: "SP002", Name: "Brake pad replacement", Description: []string{"worn pads"}},
			{ProblemID: "SP003", Name: "Brake fluid flush", Description: []string{"spongy pedal"}},
			{ProblemID: "SP004", Name: "Brake caliper service", Description: []string{"sticking caliper"}},
		},
	})
	require.NoError(t, err)
	return snap
}

func newTestService(t *testing.T, cfg Config) (*DefaultDiagnosisService, *memorySessionStore) {
	t.Helper()
	store := newMemorySessionStore()
	svc := &DefaultDiagnosisService{
		Catalog:   staticCatalog{snap: sessionSnapshot(t)},
		Store:     store,
		Matcher:   &LexicalMatcher{MinScore: 0.08},
		Questions: StaticQuestionGenerator{},
		Logger:    zap.NewNop(),
		Cfg:       cfg,
	}
	return svc, store
}

func TestStartSessionEntersClarificationWhenAmbiguous(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxQuestions: 3, TopN: 3, StableTurns: 1})

	update, err := svc.StartSession(context.Background(), "C1", "V1", "brake problem")
	require.NoError(t, err)

	assert.Equal(t, models.StageClarification, update.Stage)
	assert.NotEmpty(t, update.Question)
	assert.Equal(t, 1, update.QuestionNumber)
	assert.Equal(t, 3, update.TotalQuestions)
}

func TestStartSessionFinalizesWhenCandidatesFitTopN(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxQuestions: 3, TopN: 3, StableTurns: 1})

	// Only one problem mentions grinding; no disambiguation needed.
	update, err := svc.StartSession(context.Background(), "C1", "V1", "grinding noise")
	require.NoError(t, err)

	assert.Equal(t, models.StageEstimation, update.Stage)
	require.Len(t, update.TopProblems, 1)
	assert.Equal(t, "SP001", update.TopProblems[0].ProblemID)
}

func TestStartSessionNoMatchLandsInErrorStage(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxQuestions: 3, TopN: 3, StableTurns: 1})

	update, err := svc.StartSession(context.Background(), "C1", "V1", "transmission slipping")
	require.NoError(t, err)

	assert.Equal(t, models.StageError, update.Stage)
	assert.NotEmpty(t, update.Message)

	// A terminal session rejects further answers.
	_, err = svc.AdvanceSession(context.Background(), update.SessionID, "more detail")
	assert.ErrorIs(t, err, ErrSessionTerminal)
}

func TestClarificationConvergesOnStableTopN(t *testing.T) {
	svc, store := newTestService(t, Config{MaxQuestions: 3, TopN: 3, StableTurns: 1})

	start, err := svc.StartSession(context.Background(), "C1", "V1", "brake problem")
	require.NoError(t, err)
	require.Equal(t, models.StageClarification, start.Stage)

	// The first answer re-orders the leaderboard, so the loop continues.
	second, err := svc.AdvanceSession(context.Background(), start.SessionID, "the pedal feels spongy")
	require.NoError(t, err)
	require.Equal(t, models.StageClarification, second.Stage)
	assert.Equal(t, 2, second.QuestionNumber)

	// The second answer confirms the ordering: two identical consecutive
	// top-3 lists converge the session.
	final, err := svc.AdvanceSession(context.Background(), start.SessionID, "yes spongy")
	require.NoError(t, err)

	assert.Equal(t, models.StageEstimation, final.Stage)
	require.Len(t, final.TopProblems, 3)
	assert.Equal(t, "SP003", final.TopProblems[0].ProblemID)

	saved, err := store.Get(context.Background(), start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageEstimation, saved.Stage)
	assert.Len(t, saved.TopN, 3)
}

func TestClarificationStopsAtQuestionBudget(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxQuestions: 1, TopN: 3, StableTurns: 1})

	start, err := svc.StartSession(context.Background(), "C1", "V1", "brake problem")
	require.NoError(t, err)
	require.Equal(t, models.StageClarification, start.Stage)

	// The answer shifts the ordering, but the single-question budget is
	// spent: the session finalizes with its best current top-N.
	final, err := svc.AdvanceSession(context.Background(), start.SessionID, "the pedal feels spongy")
	require.NoError(t, err)

	assert.Equal(t, models.StageEstimation, final.Stage)
	assert.Len(t, final.TopProblems, 3)
}

func TestAdvanceUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxQuestions: 3, TopN: 3, StableTurns: 1})

	_, err := svc.AdvanceSession(context.Background(), "missing", "answer")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCancelSessionRemovesState(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxQuestions: 3, TopN: 3, StableTurns: 1})

	start, err := svc.StartSession(context.Background(), "C1", "V1", "brake problem")
	require.NoError(t, err)

	require.NoError(t, svc.CancelSession(context.Background(), start.SessionID))
	_, err = svc.GetSession(context.Background(), start.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUninformativeAnswerKeepsPreviousOrdering(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxQuestions: 3, TopN: 3, StableTurns: 1})

	start, err := svc.StartSession(context.Background(), "C1", "V1", "brake problem")
	require.NoError(t, err)

	// "ok" tokenizes to nothing new; the ordering holds, which itself counts
	// as a stable turn and converges the session.
	final, err := svc.AdvanceSession(context.Background(), start.SessionID, "ok")
	require.NoError(t, err)
	assert.Equal(t, models.StageEstimation, final.Stage)
	require.Len(t, final.TopProblems, 3)
	assert.Equal(t, "SP001", final.TopProblems[0].ProblemID)
}
