// Package pumpswap reads the PumpSwap AMM pools that graduated tokens trade
// on. The pipeline only ever reads pool state; swaps are out of scope.
package pumpswap

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the PumpSwap AMM program.
	ProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

	// WSOLMint is the wrapped SOL mint every canonical pool quotes against.
	WSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	// PoolDiscriminator is the discriminator for Pool accounts.
	PoolDiscriminator = []byte{241, 154, 109, 4, 17, 177, 109, 188}
)

const (
	// CanonicalPoolIndex is the index the migration uses for the pool it
	// creates at graduation.
	CanonicalPoolIndex uint16 = 0

	// Token account layout: the amount field sits at this offset.
	TokenAccountAmountOffset = 64
	TokenAccountAmountSize   = 8
)

// DeriveCanonicalPool returns the canonical pool address for a graduated
// mint. The pool's creator seed is the Pump.fun migration authority PDA
// derived from the mint, so the address is a pure function of the mint.
func DeriveCanonicalPool(mint, migrationAuthority solana.PublicKey) (solana.PublicKey, error) {
	indexBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(indexBytes, CanonicalPoolIndex)

	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("pool"),
			indexBytes,
			migrationAuthority.Bytes(),
			mint.Bytes(),
			WSOLMint.Bytes(),
		},
		ProgramID,
	)
	return addr, err
}
