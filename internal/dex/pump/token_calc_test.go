package pump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBuyTokenAmount(t *testing.T) {
	// Typical fresh-curve reserves.
	virtualToken := uint64(1_073_000_000_000_000)
	virtualSol := uint64(30_000_000_000)

	t.Run("zero inputs give zero", func(t *testing.T) {
		assert.Zero(t, CalculateBuyTokenAmount(virtualToken, virtualSol, 0, 100))
		assert.Zero(t, CalculateBuyTokenAmount(0, virtualSol, 1_000_000_000, 100))
		assert.Zero(t, CalculateBuyTokenAmount(virtualToken, 0, 1_000_000_000, 100))
	})

	t.Run("constant product without fee", func(t *testing.T) {
		// Spending the full virtual SOL reserve should buy half the tokens.
		got := CalculateBuyTokenAmount(virtualToken, virtualSol, virtualSol, 0)
		assert.Equal(t, virtualToken/2, got)
	})

	t.Run("fee reduces output", func(t *testing.T) {
		noFee := CalculateBuyTokenAmount(virtualToken, virtualSol, 1_000_000_000, 0)
		withFee := CalculateBuyTokenAmount(virtualToken, virtualSol, 1_000_000_000, 100)
		assert.Less(t, withFee, noFee)
	})

	t.Run("larger spend buys more", func(t *testing.T) {
		small := CalculateBuyTokenAmount(virtualToken, virtualSol, 100_000_000, 100)
		large := CalculateBuyTokenAmount(virtualToken, virtualSol, 1_000_000_000, 100)
		assert.Greater(t, large, small)
	})
}

func TestCurveProgressPercent(t *testing.T) {
	initial := uint64(793_100_000_000_000)

	tests := []struct {
		name    string
		current uint64
		want    float64
	}{
		{"untouched curve", initial, 0},
		{"half sold", initial / 2, 50},
		{"sold out", 0, 100},
		{"reserves above initial clamp to zero", initial + 1_000_000, 0},
		{"zero initial", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			init := initial
			if tt.name == "zero initial" {
				init = 0
			}
			got := CurveProgressPercent(tt.current, init)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestCurvePriceSOL(t *testing.T) {
	// 30 SOL against 1.073B tokens.
	price := CurvePriceSOL(1_073_000_000_000_000, 30_000_000_000)
	assert.InDelta(t, 30.0/1_073_000_000, price, 1e-15)

	assert.Zero(t, CurvePriceSOL(0, 30_000_000_000))
}

func TestMarketCapSOL(t *testing.T) {
	assert.InDelta(t, 50.0, MarketCapSOL(5e-8), 1e-9)
	assert.Zero(t, MarketCapSOL(0))
}
