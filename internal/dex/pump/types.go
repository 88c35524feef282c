package pump

import (
	"github.com/gagliardetto/solana-go"
)

// GlobalAccount is the program's global state.
type GlobalAccount struct {
	Discriminator               [8]byte
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// BondingCurve is the per-mint curve state.
type BondingCurve struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

// FeeSharingConfig is the on-chain fee split for one mint.
type FeeSharingConfig struct {
	Mint                     solana.PublicKey
	Authority                solana.PublicKey
	MinDistributableLamports uint64
	Shareholders             []ShareEntry
}

// ShareEntry is one (address, basis points) pair of an on-chain fee split.
type ShareEntry struct {
	Address  solana.PublicKey
	ShareBps uint16
}
