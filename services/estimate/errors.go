package estimate

import "fmt"

// Reason codes recorded on EstimateFailure entries.
const (
	ReasonNoLabour    = "noLabourForCategory"
	ReasonNoBay       = "noMatchingBay"
	ReasonCatalogMiss = "catalogMiss"
	ReasonTimeout     = "pairTimeout"
	ReasonDeadline    = "aggregationDeadline"
	ReasonUnknownDlr  = "unknownDealership"
)

// PairError marks a single (dealership, problem) estimation that could not be
// computed. The aggregator absorbs it into an EstimateFailure entry; it never
// fails the batch.
type PairError struct {
	Code    string
	Message string
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newPairError(code, format string, args ...any) error {
	return &PairError{Code: code, Message: fmt.Sprintf(format, args...)}
}
