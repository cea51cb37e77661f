package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNoTierFound  = errors.New("no pricing tier covers this question count")
	ErrTierNotFound = errors.New("pricing tier not found")
	ErrTierOverlap  = errors.New("pricing tier range overlaps an existing tier")
	ErrInvalidRange = errors.New("min_questions must be positive and not exceed max_questions")
	ErrForbidden    = errors.New("only moderators can manage pricing tiers")
)

// Tier maps an inclusive range of question counts to a price per survey
// response. MaxQuestions nil means "and above". Configured tiers never
// overlap, so any question count matches at most one tier.
type Tier struct {
	ID             int64           `json:"id"`
	MinQuestions   int             `json:"min_questions"`
	MaxQuestions   *int            `json:"max_questions,omitempty"`
	PricePerSurvey decimal.Decimal `json:"price_per_survey"`
}

// Contains reports whether the tier's range covers the question count
func (t *Tier) Contains(questionCount int) bool {
	if questionCount < t.MinQuestions {
		return false
	}
	if t.MaxQuestions != nil && questionCount > *t.MaxQuestions {
		return false
	}
	return true
}

// Overlaps reports whether two tiers' inclusive ranges intersect, treating
// an absent max as +infinity
func (t *Tier) Overlaps(other *Tier) bool {
	if other.MaxQuestions != nil && t.MinQuestions > *other.MaxQuestions {
		return false
	}
	if t.MaxQuestions != nil && other.MinQuestions > *t.MaxQuestions {
		return false
	}
	return true
}

// validate checks the tier's own range
func (t *Tier) validate() error {
	if t.MinQuestions < 1 {
		return ErrInvalidRange
	}
	if t.MaxQuestions != nil && t.MinQuestions > *t.MaxQuestions {
		return ErrInvalidRange
	}
	if t.PricePerSurvey.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRange
	}
	return nil
}
