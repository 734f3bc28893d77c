package diagnosis

import (
	"sort"
	"strings"
	"unicode"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"
)

// ProblemScorer ranks catalog problems against free-form symptom text. Any
// implementation must be deterministic for identical input and catalog
// snapshot: no session-dependent randomness is permitted here.
type ProblemScorer interface {
	Rank(problems []models.ServiceProblem, text string) []models.RankedProblem
}

// LexicalMatcher is the default scorer: weighted token overlap between the
// symptom text and a problem's name and description fragments. Name hits
// weigh three times a description hit. Ties keep catalog insertion order.
type LexicalMatcher struct {
	// MinScore is the relevance threshold; candidates below it are dropped
	// by Match (Rank itself applies no threshold).
	MinScore float64
	// MaxCandidates caps the candidate set handed to the clarification loop.
	MaxCandidates int
}

const nameTokenWeight = 3.0

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "it": {}, "its": {}, "my": {},
	"i": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {}, "on": {},
	"at": {}, "when": {}, "has": {}, "have": {}, "with": {}, "there": {},
	"this": {}, "that": {}, "was": {}, "are": {}, "be": {}, "from": {},
}

// Match ranks the snapshot's problems and applies the relevance threshold.
// Returns ErrNoCandidates when nothing clears it.
func (m *LexicalMatcher) Match(snap *catalogRepo.Snapshot, text string) ([]models.RankedProblem, error) {
	ranked := m.Rank(snap.ProblemsInOrder(), text)

	var candidates []models.RankedProblem
	for _, r := range ranked {
		if r.Score >= m.MinScore {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if m.MaxCandidates > 0 && len(candidates) > m.MaxCandidates {
		candidates = candidates[:m.MaxCandidates]
	}
	return candidates, nil
}

// Rank scores every problem in the given order and sorts descending by
// score. The sort is stable, so equal scores resolve to whichever problem
// was inserted into the catalog first.
func (m *LexicalMatcher) Rank(problems []models.ServiceProblem, text string) []models.RankedProblem {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	ranked := make([]models.RankedProblem, 0, len(problems))
	for _, p := range problems {
		ranked = append(ranked, models.RankedProblem{
			ProblemID:   p.ProblemID,
			Name:        p.Name,
			Description: firstFragment(p.Description),
			Score:       scoreProblem(p, tokens),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// scoreProblem returns the weighted fraction of query tokens found in the
// problem, normalized to [0,1].
func scoreProblem(p models.ServiceProblem, queryTokens []string) float64 {
	nameTokens := tokenSet(tokenize(p.Name))
	descTokens := make(map[string]struct{})
	for _, fragment := range p.Description {
		for _, t := range tokenize(fragment) {
			descTokens[t] = struct{}{}
		}
	}

	var matched float64
	for _, t := range queryTokens {
		if _, ok := nameTokens[t]; ok {
			matched += nameTokenWeight
			continue
		}
		if _, ok := descTokens[t]; ok {
			matched += 1
		}
	}
	return matched / (nameTokenWeight * float64(len(queryTokens)))
}

// tokenize lowercases, splits on non-alphanumeric runes, and drops stopwords
// and single characters. Duplicate tokens are collapsed so repeated words do
// not inflate scores.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	var tokens []string
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func firstFragment(description []string) string {
	if len(description) == 0 {
		return ""
	}
	return description[0]
}
