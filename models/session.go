package models

import "time"

// SessionStage is the diagnosis state machine stage.
type SessionStage string

const (
	StageIntake        SessionStage = "intake"
	StageClarification SessionStage = "clarification"
	StageEstimation    SessionStage = "estimation"
	StageError         SessionStage = "error"
)

// RankedProblem is a candidate problem with its match score.
type RankedProblem struct {
	ProblemID   string  `json:"problem_id"`
	Name        string  `json:"problem_name"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"match_score"`
}

// SessionMessage is one entry of the session transcript.
type SessionMessage struct {
	Role string    `json:"role"` // "customer" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// DiagnosisSession holds the full clarification-loop state for one
// conversation. It lives in the session cache and is never shared between
// concurrent conversations.
type DiagnosisSession struct {
	SessionID  string           `json:"sessionId"`
	CustomerID string           `json:"customerId"`
	VehicleID  string           `json:"vehicleId"`
	Stage      SessionStage     `json:"stage"`
	Transcript []SessionMessage `json:"transcript"`
	// Candidates is the full candidate set fixed at intake; clarification
	// answers re-rank it but never widen it.
	Candidates     []RankedProblem `json:"candidates"`
	TopN           []RankedProblem `json:"topN,omitempty"`
	QuestionsAsked []string        `json:"questionsAsked"`
	// PrevTopIDs is the top-N ordering after the previous turn, used for the
	// convergence check.
	PrevTopIDs  []string  `json:"prevTopIds,omitempty"`
	StableTurns int       `json:"stableTurns"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SymptomText concatenates everything the customer has said so far, in order.
func (s *DiagnosisSession) SymptomText() string {
	var text string
	for _, m := range s.Transcript {
		if m.Role != "customer" {
			continue
		}
		if text != "" {
			text += " "
		}
		text += m.Text
	}
	return text
}

// SessionUpdate is what the diagnosis service returns after each turn.
type SessionUpdate struct {
	SessionID      string          `json:"sessionId"`
	Stage          SessionStage    `json:"stage"`
	Question       string          `json:"question,omitempty"`
	QuestionNumber int             `json:"questionNumber,omitempty"`
	TotalQuestions int             `json:"totalQuestions,omitempty"`
	TopProblems    []RankedProblem `json:"topProblems,omitempty"`
	Message        string          `json:"message,omitempty"`
}
