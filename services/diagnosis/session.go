package diagnosis

import (
	"context"
	"time"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service drives the multi-turn diagnosis conversation: intake, the
// clarification loop, and the finalized top-N hand-off to estimation.
type Service interface {
	StartSession(ctx context.Context, customerID, vehicleID, text string) (*models.SessionUpdate, error)
	AdvanceSession(ctx context.Context, sessionID, answer string) (*models.SessionUpdate, error)
	GetSession(ctx context.Context, sessionID string) (*models.DiagnosisSession, error)
	CancelSession(ctx context.Context, sessionID string) error
	MatchProblems(ctx context.Context, text string) ([]models.RankedProblem, error)
}

// Config are the clarification loop tuning knobs. The convergence criterion
// is deliberately explicit: the loop ends when the top-N ordering repeats for
// StableTurns consecutive turns, or when the question budget runs out.
type Config struct {
	MaxQuestions int
	TopN         int
	StableTurns  int
}

// DefaultDiagnosisService implements Service. Each session is owned by one
// conversation and its messages are processed strictly in arrival order; the
// service itself keeps no cross-session mutable state.
type DefaultDiagnosisService struct {
	Catalog   catalogRepo.Provider
	Store     SessionStore
	Matcher   *LexicalMatcher
	Questions QuestionGenerator
	Logger    *zap.Logger
	Cfg       Config
}

// StartSession runs intake: the first normalized input is matched against the
// catalog. Depending on what comes back the session either needs
// clarification, finalizes immediately, or lands in the error stage with a
// prompt to retry.
func (s *DefaultDiagnosisService) StartSession(ctx context.Context, customerID, vehicleID, text string) (*models.SessionUpdate, error) {
	session := &models.DiagnosisSession{
		SessionID:  uuid.New().String(),
		CustomerID: customerID,
		VehicleID:  vehicleID,
		Stage:      models.StageIntake,
		Transcript: []models.SessionMessage{{Role: "customer", Text: text, At: time.Now()}},
		CreatedAt:  time.Now(),
	}

	snap := s.Catalog.Snapshot()
	candidates, err := s.Matcher.Match(snap, text)
	if err == ErrNoCandidates {
		session.Stage = models.StageError
		if saveErr := s.Store.Save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		return &models.SessionUpdate{
			SessionID: session.SessionID,
			Stage:     models.StageError,
			Message:   "Could not identify any potential problems. Please provide more details.",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	session.Candidates = candidates
	session.PrevTopIDs = topIDs(candidates, s.Cfg.TopN)

	// A candidate set that already fits within top-N needs no disambiguation.
	if len(candidates) <= s.Cfg.TopN {
		return s.finalize(ctx, session)
	}

	session.Stage = models.StageClarification
	return s.askNext(ctx, session)
}

// AdvanceSession consumes one clarification answer: the transcript grows, the
// candidate set is re-ranked against the whole conversation, and the loop
// either converges, continues, or exhausts its question budget.
func (s *DefaultDiagnosisService) AdvanceSession(ctx context.Context, sessionID, answer string) (*models.SessionUpdate, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageClarification {
		return nil, ErrSessionTerminal
	}

	session.Transcript = append(session.Transcript, models.SessionMessage{
		Role: "customer", Text: answer, At: time.Now(),
	})

	s.rerank(session)

	current := topIDs(session.Candidates, s.Cfg.TopN)
	if equalIDs(current, session.PrevTopIDs) {
		session.StableTurns++
	} else {
		session.StableTurns = 0
	}
	session.PrevTopIDs = current

	converged := session.StableTurns >= s.Cfg.StableTurns
	budgetSpent := len(session.QuestionsAsked) >= s.Cfg.MaxQuestions
	if converged || budgetSpent {
		return s.finalize(ctx, session)
	}
	return s.askNext(ctx, session)
}

// rerank re-scores the fixed candidate set against the full transcript.
// Clarification answers re-order candidates but never widen the set. A
// transcript that scores nothing (for example a bare "yes") keeps the
// previous ordering.
func (s *DefaultDiagnosisService) rerank(session *models.DiagnosisSession) {
	snap := s.Catalog.Snapshot()
	problems := make([]models.ServiceProblem, 0, len(session.Candidates))
	for _, c := range session.Candidates {
		p, err := snap.ProblemByID(c.ProblemID)
		if err != nil {
			// A candidate that vanished from the catalog between turns is
			// silently dropped from the running.
			continue
		}
		problems = append(problems, p)
	}

	ranked := s.Matcher.Rank(problems, session.SymptomText())
	if len(ranked) > 0 {
		session.Candidates = ranked
	}
}

func (s *DefaultDiagnosisService) askNext(ctx context.Context, session *models.DiagnosisSession) (*models.SessionUpdate, error) {
	question, err := s.Questions.GenerateClarifyingQuestion(ctx, topCandidates(session.Candidates, 5), session.Transcript)
	if err != nil {
		s.Logger.Warn("question generation failed, using fallback",
			zap.String("sessionId", session.SessionID), zap.Error(err))
		question = fallbackQuestion(len(session.QuestionsAsked))
	}

	session.Stage = models.StageClarification
	session.QuestionsAsked = append(session.QuestionsAsked, question)
	session.Transcript = append(session.Transcript, models.SessionMessage{
		Role: "assistant", Text: question, At: time.Now(),
	})

	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &models.SessionUpdate{
		SessionID:      session.SessionID,
		Stage:          models.StageClarification,
		Question:       question,
		QuestionNumber: len(session.QuestionsAsked),
		TotalQuestions: s.Cfg.MaxQuestions,
	}, nil
}

func (s *DefaultDiagnosisService) finalize(ctx context.Context, session *models.DiagnosisSession) (*models.SessionUpdate, error) {
	session.Stage = models.StageEstimation
	session.TopN = topCandidates(session.Candidates, s.Cfg.TopN)

	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &models.SessionUpdate{
		SessionID:   session.SessionID,
		Stage:       models.StageEstimation,
		TopProblems: session.TopN,
	}, nil
}

// GetSession returns the current session state.
func (s *DefaultDiagnosisService) GetSession(ctx context.Context, sessionID string) (*models.DiagnosisSession, error) {
	return s.Store.Get(ctx, sessionID)
}

// CancelSession drops an abandoned session. Nothing was reserved on its
// behalf, so cancellation is free.
func (s *DefaultDiagnosisService) CancelSession(ctx context.Context, sessionID string) error {
	return s.Store.Delete(ctx, sessionID)
}

// MatchProblems runs a one-shot match without session state.
func (s *DefaultDiagnosisService) MatchProblems(_ context.Context, text string) ([]models.RankedProblem, error) {
	return s.Matcher.Match(s.Catalog.Snapshot(), text)
}

func topIDs(candidates []models.RankedProblem, n int) []string {
	ids := make([]string, 0, n)
	for i, c := range candidates {
		if i >= n {
			break
		}
		ids = append(ids, c.ProblemID)
	}
	return ids
}

func topCandidates(candidates []models.RankedProblem, n int) []models.RankedProblem {
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]models.RankedProblem, len(candidates))
	copy(out, candidates)
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
