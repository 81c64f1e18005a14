package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name    string
		current string
		minimum string
		want    Status
	}{
		{"well above minimum", "100", "20", StatusInStock},
		{"just above minimum", "20.001", "20", StatusInStock},
		{"exactly at minimum", "20", "20", StatusLowStock},
		{"below minimum", "5", "20", StatusLowStock},
		{"zero stock", "0", "20", StatusOutOfStock},
		{"zero stock zero minimum", "0", "0", StatusOutOfStock},
		{"positive stock zero minimum", "1", "0", StatusInStock},
		{"negative stock", "-3", "20", StatusOutOfStock},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current := decimal.RequireFromString(tc.current)
			minimum := decimal.RequireFromString(tc.minimum)
			if got := DeriveStatus(current, minimum); got != tc.want {
				t.Errorf("DeriveStatus(%s, %s) = %s, want %s", tc.current, tc.minimum, got, tc.want)
			}
		})
	}
}
