package payment

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "positive amount", amount: "10.00"},
		{name: "smallest unit", amount: "0.01"},
		{name: "zero amount", amount: "0", wantErr: true},
		{name: "negative amount", amount: "-5.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{
				UserID: 1,
				Type:   TransactionTopUp,
				Amount: decimal.RequireFromString(tt.amount),
			}
			err := tx.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGatewayDataRoundTrip(t *testing.T) {
	g := GatewayData{"gateway_ref": "abc-123", "destination": "card"}

	v, err := g.Value()
	if err != nil {
		t.Fatalf("Value() unexpected error: %v", err)
	}

	var got GatewayData
	if err := got.Scan(v.([]byte)); err != nil {
		t.Fatalf("Scan() unexpected error: %v", err)
	}
	if got["gateway_ref"] != "abc-123" || got["destination"] != "card" {
		t.Fatalf("Scan() = %v, want original fields back", got)
	}
}

func TestGatewayDataNil(t *testing.T) {
	var g GatewayData

	v, err := g.Value()
	if err != nil {
		t.Fatalf("Value() unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("Value() on nil map = %v, want nil", v)
	}

	var got GatewayData
	if err := got.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("Scan(nil) = %v, want nil", got)
	}
}
