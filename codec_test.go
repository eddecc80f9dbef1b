package fxswap

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseAtomic(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			s        string
			decimals int
			want     string
		}{
			{"1.5", 8, "150000000"},
			{"1.123456789", 8, "112345678"},
			{"-0.5", 2, "-50"},
			{"+0.5", 2, "50"},
			{".5", 2, "50"},
			{"1.", 2, "100"},
			{"7", 0, "7"},
			{"7.9", 0, "7"},
			{"0", 18, "0"},
			{"-0.001", 2, "0"},
			{"1", 18, "1000000000000000000"},
			{"123456789012345678901234567890", 6, "123456789012345678901234567890000000"},
			{"000.010", 3, "10"},
		}
		for _, tt := range tests {
			got, err := ParseAtomic(tt.s, tt.decimals)
			if err != nil {
				t.Errorf("ParseAtomic(%q, %v) failed: %v", tt.s, tt.decimals, err)
				continue
			}
			if got.String() != tt.want {
				t.Errorf("ParseAtomic(%q, %v) = %v, want %v", tt.s, tt.decimals, got, tt.want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]string{
			"empty":      "",
			"point only": ".",
			"sign only":  "+",
			"letters":    "1a",
			"exponent":   "1e5",
			"two points": "1.2.3",
			"comma":      "1,5",
			"space":      " 1",
			"underscore": "1_000",
		}
		for name, s := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := ParseAtomic(s, 2)
				if err == nil {
					t.Errorf("ParseAtomic(%q, 2) did not fail", s)
					return
				}
				if !errors.Is(err, ErrParse) {
					t.Errorf("ParseAtomic(%q, 2) failed with %v, want %v", s, err, ErrParse)
				}
			})
		}
	})

	t.Run("panic", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("ParseAtomic(\"1\", -1) did not panic")
			}
		}()
		_, _ = ParseAtomic("1", -1)
	})
}

func TestMustParseAtomic(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("MustParseAtomic(\"x\", 2) did not panic")
			}
		}()
		MustParseAtomic("x", 2)
	})
}

func TestFormatAtomic(t *testing.T) {
	tests := []struct {
		amount   *big.Int
		decimals int
		want     string
	}{
		{big.NewInt(150000000), 8, "1.50000000"},
		{big.NewInt(5), 2, "0.05"},
		{big.NewInt(-5), 2, "-0.05"},
		{big.NewInt(7), 0, "7"},
		{big.NewInt(-7), 0, "-7"},
		{big.NewInt(0), 2, "0.00"},
		{nil, 2, "0.00"},
		{big.NewInt(1), 18, "0.000000000000000001"},
		{mustBigInt("123456789012345678901234567890"), 18, "123456789012.345678901234567890"},
	}
	for _, tt := range tests {
		got := FormatAtomic(tt.amount, tt.decimals)
		if got != tt.want {
			t.Errorf("FormatAtomic(%v, %v) = %q, want %q", tt.amount, tt.decimals, got, tt.want)
		}
	}
}

func TestFormatAtomicFixed(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			amount           *big.Int
			decimals, digits int
			want             string
		}{
			{big.NewInt(112345678), 8, 2, "1.12"},
			{big.NewInt(-1), 8, 2, "0.00"},
			{big.NewInt(-1), 8, 8, "-0.00000001"},
			{big.NewInt(150000000), 8, TrimZeros, "1.5"},
			{big.NewInt(100), 2, TrimZeros, "1"},
			{big.NewInt(0), 6, TrimZeros, "0"},
			{big.NewInt(5), 2, 4, "0.0500"},
			{big.NewInt(123), 2, 0, "1"},
			{big.NewInt(123), 0, 2, "123.00"},
			{big.NewInt(-99), 2, 0, "0"},
			{big.NewInt(-199), 2, 0, "-1"},
		}
		for _, tt := range tests {
			got := FormatAtomicFixed(tt.amount, tt.decimals, tt.digits)
			if got != tt.want {
				t.Errorf("FormatAtomicFixed(%v, %v, %v) = %q, want %q", tt.amount, tt.decimals, tt.digits, got, tt.want)
			}
		}
	})

	t.Run("panic", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("FormatAtomicFixed(1, -1, 2) did not panic")
			}
		}()
		FormatAtomicFixed(big.NewInt(1), -1, 2)
	})
}

func TestFormatAtomic_roundTrip(t *testing.T) {
	amounts := []string{
		"0",
		"1",
		"-1",
		"7",
		"10",
		"999",
		"1000000",
		"-123456789",
		"100000000000000000000",
		"123456789012345678901234567890",
	}
	for decimals := 0; decimals <= 18; decimals++ {
		for _, s := range amounts {
			want := mustBigInt(s)
			text := FormatAtomic(want, decimals)
			got, err := ParseAtomic(text, decimals)
			if err != nil {
				t.Errorf("ParseAtomic(%q, %v) failed: %v", text, decimals, err)
				continue
			}
			if got.Cmp(want) != 0 {
				t.Errorf("ParseAtomic(FormatAtomic(%v, %v), %v) = %v, want %v", want, decimals, decimals, got, want)
			}
		}
	}
}
