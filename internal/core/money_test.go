package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "integer", input: "7", want: 700},
		{name: "single decimal", input: "4.5", want: 450},
		{name: "third decimal rounds down", input: "12.344", want: 1234},
		{name: "third decimal rounds up", input: "12.345", want: 1235},
		{name: "leading dot", input: ".99", want: 99},
		{name: "whitespace trimmed", input: " 3.00 ", want: 300},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-1.00", wantErr: true},
		{name: "explicit plus", input: "+1.00", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero decimal", input: "0.00", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "two dots", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{cents: 1234, want: "12.34"},
		{cents: 5, want: "0.05"},
		{cents: 100, want: "1.00"},
		{cents: 0, want: "0.00"},
		{cents: -250, want: "-2.50"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(Money{Cents: 450})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "4.50" {
		t.Fatalf("marshal = %s, want 4.50", out)
	}

	var m Money
	if err := json.Unmarshal([]byte("4.5"), &m); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 450 {
		t.Errorf("unmarshal 4.5 = %d cents, want 450", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"3,99"`), &m); err != nil {
		t.Fatalf("unmarshal quoted comma: %v", err)
	}
	if m.Cents != 399 {
		t.Errorf("unmarshal \"3,99\" = %d cents, want 399", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"oops"`), &m); err == nil {
		t.Error("unmarshal of non-numeric string should fail")
	}
}
