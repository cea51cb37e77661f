package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func intPtr(i int) *int {
	return &i
}

func tier(id int64, min int, max *int, price string) *Tier {
	return &Tier{
		ID:             id,
		MinQuestions:   min,
		MaxQuestions:   max,
		PricePerSurvey: decimal.RequireFromString(price),
	}
}

func TestResolve(t *testing.T) {
	tiers := []*Tier{
		tier(1, 1, intPtr(20), "30.00"),
		tier(2, 21, intPtr(100), "50.00"),
		tier(3, 101, nil, "80.00"),
	}

	tests := []struct {
		name          string
		questionCount int
		wantTierID    int64
		wantErr       error
	}{
		{name: "lower bound of first tier", questionCount: 1, wantTierID: 1},
		{name: "inside first tier", questionCount: 15, wantTierID: 1},
		{name: "upper bound of first tier", questionCount: 20, wantTierID: 1},
		{name: "lower bound of second tier", questionCount: 21, wantTierID: 2},
		{name: "open-ended tier", questionCount: 5000, wantTierID: 3},
		{name: "below all tiers", questionCount: 0, wantErr: ErrNoTierFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve(tiers, tt.questionCount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolve(%d) error = %v, want %v", tt.questionCount, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve(%d) unexpected error: %v", tt.questionCount, err)
			}
			if got.ID != tt.wantTierID {
				t.Fatalf("resolve(%d) = tier %d, want tier %d", tt.questionCount, got.ID, tt.wantTierID)
			}
		})
	}
}

func TestResolveGapBetweenTiers(t *testing.T) {
	tiers := []*Tier{
		tier(1, 1, intPtr(10), "30.00"),
		tier(2, 20, nil, "50.00"),
	}

	if _, err := resolve(tiers, 15); !errors.Is(err, ErrNoTierFound) {
		t.Fatalf("resolve in configuration gap: error = %v, want %v", err, ErrNoTierFound)
	}
}

func TestCheckOverlap(t *testing.T) {
	existing := []*Tier{
		tier(1, 1, intPtr(20), "30.00"),
		tier(2, 21, intPtr(100), "50.00"),
	}

	tests := []struct {
		name      string
		candidate *Tier
		excludeID int64
		wantErr   error
	}{
		{name: "adjacent above", candidate: tier(0, 101, nil, "80.00")},
		{name: "fits the gap exactly", candidate: tier(0, 101, intPtr(200), "80.00")},
		{name: "touches existing upper bound", candidate: tier(0, 20, intPtr(30), "40.00"), wantErr: ErrTierOverlap},
		{name: "contained in existing", candidate: tier(0, 5, intPtr(10), "40.00"), wantErr: ErrTierOverlap},
		{name: "contains existing", candidate: tier(0, 1, nil, "40.00"), wantErr: ErrTierOverlap},
		{name: "open-ended overlapping tail", candidate: tier(0, 50, nil, "40.00"), wantErr: ErrTierOverlap},
		{name: "rewrite of same tier excluded", candidate: tier(2, 21, intPtr(150), "55.00"), excludeID: 2},
		{name: "rewrite colliding with other tier", candidate: tier(2, 10, intPtr(150), "55.00"), excludeID: 2, wantErr: ErrTierOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOverlap(tt.candidate, existing, tt.excludeID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("checkOverlap() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTierValidate(t *testing.T) {
	tests := []struct {
		name    string
		tier    *Tier
		wantErr error
	}{
		{name: "valid bounded", tier: tier(0, 1, intPtr(20), "30.00")},
		{name: "valid open-ended", tier: tier(0, 101, nil, "80.00")},
		{name: "min below one", tier: tier(0, 0, intPtr(10), "30.00"), wantErr: ErrInvalidRange},
		{name: "inverted range", tier: tier(0, 10, intPtr(5), "30.00"), wantErr: ErrInvalidRange},
		{name: "zero price", tier: tier(0, 1, intPtr(10), "0"), wantErr: ErrInvalidRange},
		{name: "negative price", tier: tier(0, 1, intPtr(10), "-5.00"), wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tier.validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
