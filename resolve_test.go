package perfledger

import "testing"

func TestResolveAmount(t *testing.T) {
	tests := []struct {
		name     string
		record   ActivityRecord
		want     ResolvedAmount
		resolved bool
	}{
		{
			name:     "net amount wins",
			record:   ActivityRecord{NetAmount: dec("-1500.25"), GrossAmount: dec("-1490"), Currency: "CAD"},
			want:     ResolvedAmount{Amount: dec("-1500.25"), Currency: "CAD"},
			resolved: true,
		},
		{
			name:     "gross amount when net is zero",
			record:   ActivityRecord{GrossAmount: dec("12.34"), Currency: "USD"},
			want:     ResolvedAmount{Amount: dec("12.34"), Currency: "USD"},
			resolved: true,
		},
		{
			name: "book value transfer keeps declared currency",
			record: ActivityRecord{
				Currency:    "CAD",
				Description: "XEQT ISHARES CORE EQUITY ETF PORTFOLIO TRANSFER BOOK VALUE 37537.50",
			},
			want:     ResolvedAmount{Amount: dec("37537.50"), Currency: "CAD", FromDescription: true},
			resolved: true,
		},
		{
			name: "book value transfer with trailing currency",
			record: ActivityRecord{
				Currency:    "CAD",
				Description: "XEQT ISHARES CORE EQUITY ETF PORTFOLIO TRANSFER BOOK VALUE 37537.50 USD",
			},
			want:     ResolvedAmount{Amount: dec("37537.50"), Currency: "USD", FromDescription: true},
			resolved: true,
		},
		{
			name:     "no number in description",
			record:   ActivityRecord{Currency: "CAD", Description: "ACCOUNT TRANSFER"},
			resolved: false,
		},
		{
			name:     "empty record",
			record:   ActivityRecord{},
			resolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveAmount(tt.record)
			if ok != tt.resolved {
				t.Fatalf("ResolveAmount() resolved = %v, want %v", ok, tt.resolved)
			}
			if !ok {
				return
			}
			if !got.Amount.Equal(tt.want.Amount) || got.Currency != tt.want.Currency || got.FromDescription != tt.want.FromDescription {
				t.Errorf("ResolveAmount() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDescriptionAmount(t *testing.T) {
	tests := []struct {
		desc     string
		amount   string
		currency string
		ok       bool
	}{
		{"TRANSFER BOOK VALUE 37537.50", "37537.50", "", true},
		{"TRANSFER BOOK VALUE 37537.50 USD", "37537.50", "USD", true},
		{"TRANSFER BOOK VALUE 37537.50USD", "37537.50", "USD", true},
		{"BOOK VALUE USD 1200", "1200", "USD", true},
		{"BOOK VALUE $1,234.56.", "1234.56", "", true},
		{"BOOK VALUE (1,234.56)", "1234.56", "", true},
		{"BOOK VALUE -250.10 CAD", "250.10", "CAD", true},
		{"10 SHS TRANSFERRED BOOK VALUE 990.00", "990.00", "", true},
		{"BOOK VALUE 990.00 ON 2024-03-01", "990.00", "", true},
		{"BOOK VALUE 990.00 REC 03/15/24", "990.00", "", true},
		{"BOOK VALUE 1,23.4", "", "", false},
		{"BOOK VALUE 12.34.56", "", "", false},
		{"IN KIND TRANSFER XYZ", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			amount, currency, ok := parseDescriptionAmount(tt.desc)
			if ok != tt.ok {
				t.Fatalf("parseDescriptionAmount(%q) ok = %v, want %v", tt.desc, ok, tt.ok)
			}
			if !ok {
				return
			}
			if !amount.Equal(dec(tt.amount)) {
				t.Errorf("parseDescriptionAmount(%q) amount = %v, want %v", tt.desc, amount, tt.amount)
			}
			if currency != tt.currency {
				t.Errorf("parseDescriptionAmount(%q) currency = %q, want %q", tt.desc, currency, tt.currency)
			}
		})
	}
}
