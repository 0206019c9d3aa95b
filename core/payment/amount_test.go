package payment

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"10", 1000},
		{"12.99", 1299},
		{"19.995", 2000},
		{"19.994", 1999},
		{"0.005", 1},
		{"0.004", 0},
		{"-1.005", -101},
		{"1234567.89", 123456789},
	}

	for _, tc := range tests {
		if got := MinorUnits(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("MinorUnits(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAppendQuery(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		params []Param
		want   string
	}{
		{
			name: "blank base",
			base: "  ",
			params: []Param{{"orderId", "o1"}},
			want: "  ",
		},
		{
			name: "no params",
			base: "https://shop.test/success",
			want: "https://shop.test/success",
		},
		{
			name:   "blank values are skipped",
			base:   "https://shop.test/success",
			params: []Param{{"session_id", ""}, {"orderId", " "}},
			want:   "https://shop.test/success",
		},
		{
			name:   "session placeholder stays literal",
			base:   "https://shop.test/success",
			params: []Param{{"session_id", sessionPlaceholder}, {"orderId", "o1"}},
			want:   "https://shop.test/success?session_id={CHECKOUT_SESSION_ID}&orderId=o1",
		},
		{
			name:   "existing query",
			base:   "https://shop.test/cancel?from=cart",
			params: []Param{{"orderId", "o1"}},
			want:   "https://shop.test/cancel?from=cart&orderId=o1",
		},
		{
			name:   "values are escaped",
			base:   "https://shop.test/cancel?",
			params: []Param{{"note", "a b&c"}},
			want:   "https://shop.test/cancel?note=a+b%26c",
		},
		{
			name:   "fragment kept last",
			base:   "https://shop.test/#/done",
			params: []Param{{"orderId", "o1"}},
			want:   "https://shop.test/?orderId=o1#/done",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AppendQuery(tc.base, tc.params...); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
