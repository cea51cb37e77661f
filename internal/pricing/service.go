package pricing

import (
	"context"

	"github.com/sociowork/surveypay/internal/identity"
)

// Service handles pricing tier business logic
type Service struct {
	repo *Repository
}

// NewService creates a new pricing service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the tier covering the given question count. Tiers are
// scanned in ascending min_questions order; since ranges never overlap at
// write time, at most one can match. A miss is a configuration gap, not a
// user error.
func (s *Service) Resolve(ctx context.Context, questionCount int) (*Tier, error) {
	tiers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return resolve(tiers, questionCount)
}

// resolve is the pure matching step over an ordered tier list
func resolve(tiers []*Tier, questionCount int) (*Tier, error) {
	for _, t := range tiers {
		if t.Contains(questionCount) {
			return t, nil
		}
	}
	return nil, ErrNoTierFound
}

// List returns all configured tiers
func (s *Service) List(ctx context.Context) ([]*Tier, error) {
	return s.repo.List(ctx)
}

// Create adds a tier after validating its range against every existing tier
func (s *Service) Create(ctx context.Context, principal identity.Principal, req *CreateTierRequest) (*Tier, error) {
	if principal.Role != identity.RoleModerator {
		return nil, ErrForbidden
	}

	tier := &Tier{
		MinQuestions:   req.MinQuestions,
		MaxQuestions:   req.MaxQuestions,
		PricePerSurvey: req.PricePerSurvey,
	}
	if err := tier.validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOverlap(tier, existing, 0); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, tier)
}

// Update rewrites a tier, re-running range validation against all other
// tiers
func (s *Service) Update(ctx context.Context, principal identity.Principal, id int64, req *CreateTierRequest) (*Tier, error) {
	if principal.Role != identity.RoleModerator {
		return nil, ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTierNotFound
	}

	tier := &Tier{
		ID:             id,
		MinQuestions:   req.MinQuestions,
		MaxQuestions:   req.MaxQuestions,
		PricePerSurvey: req.PricePerSurvey,
	}
	if err := tier.validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOverlap(tier, existing, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tier); err != nil {
		return nil, err
	}
	return tier, nil
}

// checkOverlap scans every existing tier for an inclusive-range collision.
// Tier counts are small and changes are rare administrative operations, so
// a full scan is fine.
func checkOverlap(candidate *Tier, existing []*Tier, excludeID int64) error {
	for _, t := range existing {
		if excludeID != 0 && t.ID == excludeID {
			continue
		}
		if candidate.Overlaps(t) {
			return ErrTierOverlap
		}
	}
	return nil
}
