// Package pump implements the Pump.fun program interface the launch
// pipeline needs: token creation, the optional initial buy, the creator
// fee-sharing configuration and fee distribution, and read-only bonding
// curve queries.
package pump

import (
	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the Pump.fun bonding curve program.
	ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// MetaplexMetadataProgramID hosts the token metadata account the create
	// instruction initializes.
	MetaplexMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// Anchor instruction discriminators.
var (
	CreateDiscriminator           = []byte{24, 30, 200, 40, 5, 28, 7, 119}
	BuyDiscriminator              = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	CreateFeeConfigDiscriminator  = []byte{9, 143, 88, 162, 50, 11, 227, 180}
	UpdateFeeSharesDiscriminator  = []byte{191, 34, 77, 8, 216, 150, 64, 29}
	DistributeFeesDiscriminator   = []byte{120, 56, 27, 7, 53, 176, 113, 186}
	BondingCurveDiscriminator     = []byte{23, 183, 248, 55, 96, 216, 172, 96}
	FeeSharingConfigDiscriminator = []byte{77, 2, 180, 112, 41, 9, 230, 58}
)

// TokenDecimals is the decimal count every Pump.fun mint uses.
const TokenDecimals = 6

// TotalSupply is the fixed total supply of every Pump.fun token, in whole
// tokens. Used for market-cap estimates.
const TotalSupply = 1_000_000_000

// LamportsPerSOL converts between SOL and the chain's smallest unit.
const LamportsPerSOL = 1_000_000_000

// DeriveGlobal returns the program's global state PDA.
func DeriveGlobal() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("global")}, ProgramID)
	return addr, err
}

// DeriveMintAuthority returns the PDA that signs mint operations.
func DeriveMintAuthority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("mint-authority")}, ProgramID)
	return addr, err
}

// DeriveBondingCurve returns the bonding curve PDA for mint.
func DeriveBondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		ProgramID,
	)
	return addr, err
}

// DeriveEventAuthority returns the program's event authority PDA.
func DeriveEventAuthority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("__event_authority")}, ProgramID)
	return addr, err
}

// DeriveCreatorVault returns the vault PDA where a creator's unclaimed fees
// accrue.
func DeriveCreatorVault(creator solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("creator-vault"), creator.Bytes()},
		ProgramID,
	)
	return addr, err
}

// DeriveMigrationAuthority returns the PDA that creates the canonical
// PumpSwap pool when a curve graduates. It is the pool's creator seed.
func DeriveMigrationAuthority(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("pool-authority"), mint.Bytes()},
		ProgramID,
	)
	return addr, err
}

// DeriveFeeSharingConfig returns the fee-sharing config PDA for mint.
func DeriveFeeSharingConfig(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("fee-sharing"), mint.Bytes()},
		ProgramID,
	)
	return addr, err
}

// DeriveShareRecord returns the per-shareholder record PDA the program uses
// to track one address's slice of a mint's fees.
func DeriveShareRecord(mint, shareholder solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("fee-share"), mint.Bytes(), shareholder.Bytes()},
		ProgramID,
	)
	return addr, err
}

// DeriveMetadata returns the Metaplex metadata PDA for mint.
func DeriveMetadata(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("metadata"), MetaplexMetadataProgramID.Bytes(), mint.Bytes()},
		MetaplexMetadataProgramID,
	)
	return addr, err
}
