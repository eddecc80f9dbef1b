package fxswap

import (
	"errors"
	"math/big"
	"testing"
)

func TestDirection_String(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{Forward, "forward"},
		{Backward, "backward"},
		{Direction(7), "Direction(7)"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestBreakdown_Clone(t *testing.T) {
	b := Breakdown{FeeBps: 50, Fee: big.NewInt(15000), PreFee: big.NewInt(3000000)}
	c := b.Clone()
	c.Fee.SetInt64(1)
	c.PreFee.SetInt64(1)
	if b.Fee.Int64() != 15000 || b.PreFee.Int64() != 3000000 {
		t.Errorf("Clone() shares state with the original: %v", b)
	}
	if z := (Breakdown{}).Clone(); z.Fee != nil || z.PreFee != nil {
		t.Errorf("Breakdown{}.Clone() = %v, want nil amounts", z)
	}
}

func TestNewCalculator(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []int64{0, 1, 50, 9999, MaxFeeBps}
		for _, bps := range tests {
			c, err := NewCalculator(bps)
			if err != nil {
				t.Errorf("NewCalculator(%v) failed: %v", bps, err)
				continue
			}
			if c.FeeBps() != bps {
				t.Errorf("NewCalculator(%v).FeeBps() = %v", bps, c.FeeBps())
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := []int64{-1, MaxFeeBps + 1, 1 << 40}
		for _, bps := range tests {
			_, err := NewCalculator(bps)
			if err == nil {
				t.Errorf("NewCalculator(%v) did not fail", bps)
			}
		}
	})

	t.Run("panic", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("MustNewCalculator(-1) did not panic")
			}
		}()
		MustNewCalculator(-1)
	})
}

func TestCalculator_Forward(t *testing.T) {
	btcUSD := pool("BTC", "100000000", "USD", "3000000")
	ethUSD := pool("ETH", "1000000000000000000", "USD", "200000")
	audEUR := MustParseScalarQuote("AUD", "EUR", "0.6")

	t.Run("success", func(t *testing.T) {
		tests := []struct {
			bps                      int64
			a, b                     Asset
			q                        Quote
			input                    string
			wantOut, wantFee, wantPF string
		}{
			{50, btc, usd, btcUSD, "100000000", "3015000", "15000", "3000000"},
			{50, usd, btc, btcUSD, "3000000", "100499999", "499999", "99999999"},
			{50, eth, usd, ethUSD, "1000000000000000000", "201000", "1000", "200000"},
			{50, aud, eur, audEUR, "10000", "6030", "30", "6000"},
			{50, btc, usd, btcUSD, "0", "0", "0", "0"},
			{0, btc, usd, btcUSD, "100000000", "3000000", "0", "3000000"},
			{10000, btc, usd, btcUSD, "100000000", "6000000", "3000000", "3000000"},
		}
		for _, tt := range tests {
			c := MustNewCalculator(tt.bps)
			got, bd, err := c.Forward(tt.a, tt.b, tt.q, mustBigInt(tt.input))
			if err != nil {
				t.Errorf("Forward(%v, %v, %v) failed: %v", tt.a, tt.b, tt.input, err)
				continue
			}
			if got.String() != tt.wantOut {
				t.Errorf("Forward(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.input, got, tt.wantOut)
			}
			if bd.Fee.String() != tt.wantFee || bd.PreFee.String() != tt.wantPF || bd.FeeBps != tt.bps {
				t.Errorf("Forward(%v, %v, %v) breakdown = %v/%v/%v, want %v/%v/%v",
					tt.a, tt.b, tt.input, bd.FeeBps, bd.Fee, bd.PreFee, tt.bps, tt.wantFee, tt.wantPF)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := []struct {
			a, b    Asset
			q       Quote
			wantErr error
		}{
			{btc, eth, btcUSD, ErrUnknownAsset},
			{eur, usd, audEUR, ErrUnknownAsset},
			{btc, usd, pool("BTC", "100000000", "USD", "0"), ErrDivideByZero},
			{btc, usd, pool("BTC", "0", "USD", "3000000"), ErrDivideByZero},
			{aud, eur, MustParseScalarQuote("AUD", "EUR", "0"), ErrDivideByZero},
		}
		c := MustNewCalculator(50)
		for _, tt := range tests {
			_, _, err := c.Forward(tt.a, tt.b, tt.q, big.NewInt(100))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Forward(%v, %v) failed with %v, want %v", tt.a, tt.b, err, tt.wantErr)
			}
		}
	})
}

func TestCalculator_Backward(t *testing.T) {
	btcUSD := pool("BTC", "100000000", "USD", "3000000")
	audEUR := MustParseScalarQuote("AUD", "EUR", "0.6")

	t.Run("success", func(t *testing.T) {
		tests := []struct {
			bps                      int64
			a, b                     Asset
			q                        Quote
			output                   string
			wantIn, wantFee, wantPF  string
		}{
			{50, btc, usd, btcUSD, "3015000", "100000000", "15000", "3000000"},
			{50, usd, btc, btcUSD, "100499999", "2999999", "499999", "99999999"},
			{50, aud, eur, audEUR, "6030", "10000", "30", "6000"},
			{50, btc, usd, btcUSD, "0", "0", "0", "0"},
			{10000, btc, usd, btcUSD, "6000000", "100000000", "3000000", "3000000"},
		}
		for _, tt := range tests {
			c := MustNewCalculator(tt.bps)
			got, bd, err := c.Backward(tt.a, tt.b, tt.q, mustBigInt(tt.output))
			if err != nil {
				t.Errorf("Backward(%v, %v, %v) failed: %v", tt.a, tt.b, tt.output, err)
				continue
			}
			if got.String() != tt.wantIn {
				t.Errorf("Backward(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.output, got, tt.wantIn)
			}
			if bd.Fee.String() != tt.wantFee || bd.PreFee.String() != tt.wantPF {
				t.Errorf("Backward(%v, %v, %v) breakdown = %v/%v, want %v/%v",
					tt.a, tt.b, tt.output, bd.Fee, bd.PreFee, tt.wantFee, tt.wantPF)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := []struct {
			a, b    Asset
			q       Quote
			wantErr error
		}{
			{btc, eth, btcUSD, ErrUnknownAsset},
			{btc, usd, pool("BTC", "100000000", "USD", "0"), ErrDivideByZero},
			{btc, usd, pool("BTC", "0", "USD", "3000000"), ErrDivideByZero},
		}
		c := MustNewCalculator(50)
		for _, tt := range tests {
			_, _, err := c.Backward(tt.a, tt.b, tt.q, big.NewInt(100))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Backward(%v, %v) failed with %v, want %v", tt.a, tt.b, err, tt.wantErr)
			}
		}
	})
}

// Backward(Forward(x)) recovers x to within one atomic unit whenever an atomic
// unit of the output asset is worth no more than an atomic unit of the input.
func TestCalculator_inverse(t *testing.T) {
	tests := []struct {
		a, b   Asset
		q      Quote
		inputs []string
	}{
		{usd, btc, pool("BTC", "100000000", "USD", "3000000"), []string{"1", "7", "99", "12345", "3000000", "987654321", "1000000000000003"}},
		{usd, eth, pool("ETH", "1000000000000000000", "USD", "200000"), []string{"1", "99", "200000", "123456789"}},
		{btc, eth, pool("BTC", "100000000", "ETH", "15000000000000000000"), []string{"1", "12345", "100000000"}},
	}
	c := MustNewCalculator(50)
	for _, tt := range tests {
		for _, s := range tt.inputs {
			x := mustBigInt(s)
			out, _, err := c.Forward(tt.a, tt.b, tt.q, x)
			if err != nil {
				t.Errorf("Forward(%v, %v, %v) failed: %v", tt.a, tt.b, x, err)
				continue
			}
			back, _, err := c.Backward(tt.a, tt.b, tt.q, out)
			if err != nil {
				t.Errorf("Backward(%v, %v, %v) failed: %v", tt.a, tt.b, out, err)
				continue
			}
			diff := new(big.Int).Sub(x, back)
			if diff.Sign() < 0 || diff.Cmp(big.NewInt(1)) > 0 {
				t.Errorf("Backward(Forward(%v %v)) = %v, want within 1 atomic unit", x, tt.a, back)
			}
		}
	}
}

func TestCalculator_Convert(t *testing.T) {
	btcUSD := pool("BTC", "100000000", "USD", "3000000")
	c := MustNewCalculator(50)

	t.Run("success", func(t *testing.T) {
		tests := []struct {
			dir    Direction
			amount string
			want   string
		}{
			{Forward, "100000000", "3015000"},
			{Backward, "3015000", "100000000"},
		}
		for _, tt := range tests {
			got, bd, err := c.Convert(tt.dir, btc, usd, btcUSD, mustBigInt(tt.amount))
			if err != nil {
				t.Errorf("Convert(%v, %v) failed: %v", tt.dir, tt.amount, err)
				continue
			}
			if got.String() != tt.want {
				t.Errorf("Convert(%v, %v) = %v, want %v", tt.dir, tt.amount, got, tt.want)
			}
			if bd.Fee.Int64() != 15000 {
				t.Errorf("Convert(%v, %v) fee = %v, want %v", tt.dir, tt.amount, bd.Fee, 15000)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		_, _, err := c.Convert(Direction(7), btc, usd, btcUSD, big.NewInt(1))
		if err == nil {
			t.Errorf("Convert(Direction(7)) did not fail")
		}
	})
}
