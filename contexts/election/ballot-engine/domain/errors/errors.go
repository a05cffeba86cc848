package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidVoteInput  = errors.New("invalid vote input")
	ErrRoundNotOpen      = errors.New("round is not open for voting")
	ErrAlreadyVoted      = errors.New("voter already voted in this round")
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrInvalidRound      = errors.New("round must be 1 or 2")
	ErrStateNotFound     = errors.New("election state not found")
	ErrCandidateUnknown  = errors.New("ballot references unknown candidate")
)

// QuotaExceededError reports a batch whose approve count for one category is
// over the configured maximum. The whole submission is rejected.
type QuotaExceededError struct {
	Category string
	Max      int
	Actual   int
}

func (e QuotaExceededError) Error() string {
	return fmt.Sprintf("approve quota exceeded for category %s: max %d, got %d", e.Category, e.Max, e.Actual)
}

// IsQuotaExceeded reports whether err is a quota rejection.
func IsQuotaExceeded(err error) bool {
	var quotaErr QuotaExceededError
	return errors.As(err, &quotaErr)
}
