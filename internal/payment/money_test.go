package payment

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sociowork/surveypay/internal/identity"
	"github.com/sociowork/surveypay/internal/survey"
	"github.com/sociowork/surveypay/internal/wallet"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestTotalBudget(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		participants int
		want         string
	}{
		{name: "round numbers", price: "30.00", participants: 10, want: "330.00"},
		{name: "single participant", price: "50.00", participants: 1, want: "55.00"},
		{name: "fractional price rounds half-up", price: "33.33", participants: 3, want: "109.99"},
		{name: "small price", price: "0.10", participants: 7, want: "0.77"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := totalBudget(dec(tt.price), tt.participants)
			if got.StringFixed(2) != tt.want {
				t.Fatalf("totalBudget(%s, %d) = %s, want %s", tt.price, tt.participants, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestSplitGross(t *testing.T) {
	tests := []struct {
		name           string
		gross          string
		wantNet        string
		wantCommission string
	}{
		{name: "clean split", gross: "110.00", wantNet: "100.00", wantCommission: "10.00"},
		{name: "uneven gross", gross: "33.33", wantNet: "30.30", wantCommission: "3.03"},
		{name: "one ruble", gross: "1.00", wantNet: "0.91", wantCommission: "0.09"},
		{name: "smallest unit", gross: "0.01", wantNet: "0.01", wantCommission: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, commission := splitGross(dec(tt.gross))
			if net.StringFixed(2) != tt.wantNet {
				t.Fatalf("splitGross(%s) net = %s, want %s", tt.gross, net.StringFixed(2), tt.wantNet)
			}
			if commission.StringFixed(2) != tt.wantCommission {
				t.Fatalf("splitGross(%s) commission = %s, want %s", tt.gross, commission.StringFixed(2), tt.wantCommission)
			}
			if !net.Add(commission).Equal(dec(tt.gross)) {
				t.Fatalf("splitGross(%s): net %s + commission %s does not sum to gross", tt.gross, net, commission)
			}
		})
	}
}

func TestFundingEntries(t *testing.T) {
	tests := []struct {
		name        string
		net         string
		commission  string
		wantEntries int
	}{
		{name: "net and commission", net: "100.00", commission: "10.00", wantEntries: 2},
		{name: "zero commission is not written", net: "0.05", commission: "0.00", wantEntries: 1},
		{name: "smallest gross", net: "0.01", commission: "0.00", wantEntries: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := fundingEntries(1, 2, dec(tt.net), dec(tt.commission))
			if len(entries) != tt.wantEntries {
				t.Fatalf("fundingEntries(net=%s, commission=%s) produced %d entries, want %d",
					tt.net, tt.commission, len(entries), tt.wantEntries)
			}

			if entries[0].Type != TransactionTopUp || !entries[0].Amount.Equal(dec(tt.net)) {
				t.Fatalf("escrow entry = %+v, want topup of %s", entries[0], tt.net)
			}
			for _, e := range entries {
				if err := e.validate(); err != nil {
					t.Fatalf("funding entry %s failed validation: %v", e.Type, err)
				}
			}
			if tt.wantEntries == 2 {
				if entries[1].Type != TransactionCommission || !entries[1].Amount.Equal(dec(tt.commission)) {
					t.Fatalf("commission entry = %+v, want commission of %s", entries[1], tt.commission)
				}
			}
		})
	}
}

func TestCheckPayoutPreconditions(t *testing.T) {
	completed := &survey.Completion{Status: survey.CompletionCompleted}
	inProgress := &survey.Completion{Status: survey.CompletionInProgress}

	tests := []struct {
		name    string
		facts   payoutFacts
		want    string
		wantErr error
	}{
		{
			name: "all preconditions met",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    completed,
				cost:          decPtr("30.00"),
				escrowBalance: dec("300.00"),
			},
			want: "30.00",
		},
		{
			name: "customer cannot claim",
			facts: payoutFacts{
				role:          identity.RoleCustomer,
				completion:    completed,
				cost:          decPtr("30.00"),
				escrowBalance: dec("300.00"),
			},
			wantErr: ErrForbidden,
		},
		{
			name: "never joined the survey",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				cost:          decPtr("30.00"),
				escrowBalance: dec("300.00"),
			},
			wantErr: ErrNotParticipant,
		},
		{
			name: "still in progress",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    inProgress,
				cost:          decPtr("30.00"),
				escrowBalance: dec("300.00"),
			},
			wantErr: ErrSurveyNotCompleted,
		},
		{
			name: "cost never calculated",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    completed,
				escrowBalance: dec("300.00"),
			},
			wantErr: ErrMissingCost,
		},
		{
			name: "zero cost",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    completed,
				cost:          decPtr("0"),
				escrowBalance: dec("300.00"),
			},
			wantErr: ErrMissingCost,
		},
		{
			name: "already paid",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    completed,
				cost:          decPtr("30.00"),
				alreadyPaid:   true,
				escrowBalance: dec("300.00"),
			},
			wantErr: ErrAlreadyPaid,
		},
		{
			name: "escrow exhausted",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    completed,
				cost:          decPtr("30.00"),
				escrowBalance: dec("29.99"),
			},
			wantErr: wallet.ErrEscrowInsufficient,
		},
		{
			name: "escrow exactly covers the payout",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    completed,
				cost:          decPtr("30.00"),
				escrowBalance: dec("30.00"),
			},
			want: "30.00",
		},
		{
			name: "role check precedes participation check",
			facts: payoutFacts{
				role: identity.RoleModerator,
			},
			wantErr: ErrForbidden,
		},
		{
			name: "already-paid check precedes balance check",
			facts: payoutFacts{
				role:          identity.RoleRespondent,
				completion:    completed,
				cost:          decPtr("30.00"),
				alreadyPaid:   true,
				escrowBalance: dec("0"),
			},
			wantErr: ErrAlreadyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := checkPayoutPreconditions(tt.facts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("checkPayoutPreconditions() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("checkPayoutPreconditions() unexpected error: %v", err)
			}
			if amount.StringFixed(2) != tt.want {
				t.Fatalf("checkPayoutPreconditions() amount = %s, want %s", amount.StringFixed(2), tt.want)
			}
		})
	}
}
