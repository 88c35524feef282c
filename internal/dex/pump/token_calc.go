package pump

import (
	"math/big"
)

// CalculateBuyTokenAmount returns how many raw token units a buy of
// solLamports receives from a curve with the given virtual reserves, after
// the protocol fee. Constant-product math on virtual reserves, done in
// big.Int to avoid overflow near the curve edges.
func CalculateBuyTokenAmount(virtualTokenReserves, virtualSolReserves, solLamports, feeBasisPoints uint64) uint64 {
	if solLamports == 0 || virtualSolReserves == 0 || virtualTokenReserves == 0 {
		return 0
	}

	solAfterFee := new(big.Int).SetUint64(solLamports)
	if feeBasisPoints > 0 {
		fee := new(big.Int).Mul(solAfterFee, new(big.Int).SetUint64(feeBasisPoints))
		fee.Div(fee, big.NewInt(10_000))
		solAfterFee.Sub(solAfterFee, fee)
	}

	vSol := new(big.Int).SetUint64(virtualSolReserves)
	vTok := new(big.Int).SetUint64(virtualTokenReserves)

	// tokensOut = vTok - (vTok * vSol) / (vSol + solAfterFee)
	k := new(big.Int).Mul(vTok, vSol)
	newSol := new(big.Int).Add(vSol, solAfterFee)
	newTok := new(big.Int).Div(k, newSol)
	out := new(big.Int).Sub(vTok, newTok)

	if out.Sign() <= 0 {
		return 0
	}
	return out.Uint64()
}

// CurvePriceSOL returns the spot price in SOL per whole token implied by the
// curve's virtual reserves.
func CurvePriceSOL(virtualTokenReserves, virtualSolReserves uint64) float64 {
	if virtualTokenReserves == 0 {
		return 0
	}
	solReserves := float64(virtualSolReserves) / float64(LamportsPerSOL)
	tokenReserves := float64(virtualTokenReserves) / 1e6
	return solReserves / tokenReserves
}

// CurveProgressPercent returns the bonding curve's completion percentage,
// clamped to [0, 100]. Reserves occasionally report slightly outside the
// expected bounds; the clamp keeps the figure sane.
func CurveProgressPercent(currentRealTokenReserves, initialRealTokenReserves uint64) float64 {
	if initialRealTokenReserves == 0 {
		return 0
	}
	progress := (1 - float64(currentRealTokenReserves)/float64(initialRealTokenReserves)) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// MarketCapSOL estimates market cap as spot price times the fixed total
// supply.
func MarketCapSOL(priceSOL float64) float64 {
	return priceSOL * float64(TotalSupply)
}
