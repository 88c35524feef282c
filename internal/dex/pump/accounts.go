package pump

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ChainReader is the read-only RPC surface the account fetchers need.
type ChainReader interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
}

// ParseGlobalAccount deserializes the program's global state.
func ParseGlobalAccount(data []byte) (*GlobalAccount, error) {
	// discriminator + initialized flag + two pubkeys + five u64 fields
	if len(data) < 8+1+64+40 {
		return nil, fmt.Errorf("global account data too short: %d bytes", len(data))
	}

	account := &GlobalAccount{}
	copy(account.Discriminator[:], data[0:8])
	account.Initialized = data[8] != 0
	account.Authority = solana.PublicKeyFromBytes(data[9:41])
	account.FeeRecipient = solana.PublicKeyFromBytes(data[41:73])
	account.InitialVirtualTokenReserves = binary.LittleEndian.Uint64(data[73:81])
	account.InitialVirtualSolReserves = binary.LittleEndian.Uint64(data[81:89])
	account.InitialRealTokenReserves = binary.LittleEndian.Uint64(data[89:97])
	account.TokenTotalSupply = binary.LittleEndian.Uint64(data[97:105])
	account.FeeBasisPoints = binary.LittleEndian.Uint64(data[105:113])
	return account, nil
}

// ParseBondingCurve deserializes a bonding curve account.
func ParseBondingCurve(data []byte) (*BondingCurve, error) {
	if len(data) < 8+40+1 {
		return nil, fmt.Errorf("bonding curve data too short: %d bytes", len(data))
	}
	for i := 0; i < 8; i++ {
		if data[i] != BondingCurveDiscriminator[i] {
			return nil, fmt.Errorf("invalid discriminator for bonding curve")
		}
	}

	curve := &BondingCurve{}
	pos := 8
	curve.VirtualTokenReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	curve.VirtualSolReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	curve.RealTokenReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	curve.RealSolReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	curve.TokenTotalSupply = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	curve.Complete = data[pos] != 0
	pos++

	if len(data) >= pos+32 {
		curve.Creator = solana.PublicKeyFromBytes(data[pos : pos+32])
	}
	return curve, nil
}

// ParseFeeSharingConfig deserializes a fee-sharing config account.
func ParseFeeSharingConfig(data []byte) (*FeeSharingConfig, error) {
	if len(data) < 8+64+8+1 {
		return nil, fmt.Errorf("fee sharing config data too short: %d bytes", len(data))
	}
	for i := 0; i < 8; i++ {
		if data[i] != FeeSharingConfigDiscriminator[i] {
			return nil, fmt.Errorf("invalid discriminator for fee sharing config")
		}
	}

	cfg := &FeeSharingConfig{}
	pos := 8
	cfg.Mint = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	cfg.Authority = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	cfg.MinDistributableLamports = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8

	count := int(data[pos])
	pos++
	if len(data) < pos+count*34 {
		return nil, fmt.Errorf("fee sharing config truncated: %d shareholders declared", count)
	}
	for i := 0; i < count; i++ {
		entry := ShareEntry{
			Address:  solana.PublicKeyFromBytes(data[pos : pos+32]),
			ShareBps: binary.LittleEndian.Uint16(data[pos+32 : pos+34]),
		}
		cfg.Shareholders = append(cfg.Shareholders, entry)
		pos += 34
	}
	return cfg, nil
}

// FetchGlobalAccount reads and parses the program's global state.
func FetchGlobalAccount(ctx context.Context, reader ChainReader) (*GlobalAccount, error) {
	globalAddr, err := DeriveGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to derive global address: %w", err)
	}

	accountInfo, err := reader.GetAccountInfo(ctx, globalAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get global account: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, fmt.Errorf("global account not found: %s", globalAddr.String())
	}
	if !accountInfo.Value.Owner.Equals(ProgramID) {
		return nil, fmt.Errorf("global account has incorrect owner: expected %s, got %s",
			ProgramID.String(), accountInfo.Value.Owner.String())
	}

	return ParseGlobalAccount(accountInfo.Value.Data.GetBinary())
}

// FetchBondingCurve reads and parses the bonding curve for mint.
func FetchBondingCurve(ctx context.Context, reader ChainReader, mint solana.PublicKey) (*BondingCurve, error) {
	curveAddr, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bonding curve: %w", err)
	}

	accountInfo, err := reader.GetAccountInfo(ctx, curveAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonding curve account: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, fmt.Errorf("bonding curve account not found at %s", curveAddr.String())
	}

	return ParseBondingCurve(accountInfo.Value.Data.GetBinary())
}

// FetchFeeSharingConfig reads and parses the fee-sharing config for mint.
func FetchFeeSharingConfig(ctx context.Context, reader ChainReader, mint solana.PublicKey) (*FeeSharingConfig, error) {
	cfgAddr, err := DeriveFeeSharingConfig(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive fee sharing config: %w", err)
	}

	accountInfo, err := reader.GetAccountInfo(ctx, cfgAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get fee sharing config: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, fmt.Errorf("fee sharing config not found at %s", cfgAddr.String())
	}

	return ParseFeeSharingConfig(accountInfo.Value.Data.GetBinary())
}

// FetchUnclaimedFees returns the lamports accrued in a creator's fee vault.
func FetchUnclaimedFees(ctx context.Context, reader ChainReader, creator solana.PublicKey) (uint64, error) {
	vault, err := DeriveCreatorVault(creator)
	if err != nil {
		return 0, fmt.Errorf("failed to derive creator vault: %w", err)
	}
	balance, err := reader.GetBalance(ctx, vault)
	if err != nil {
		return 0, fmt.Errorf("failed to get creator vault balance: %w", err)
	}
	return balance, nil
}
