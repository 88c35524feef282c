package pump

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBondingCurve(t *testing.T) {
	creator := solana.MustPublicKeyFromBase58("7Z9vCDFzwe2DsTq4zvmrurScehUYAgUifiycgD6ZYa6T")

	data := make([]byte, 0, 8+40+1+32)
	data = append(data, BondingCurveDiscriminator...)
	for _, v := range []uint64{1_073_000_000_000_000, 30_000_000_000, 793_100_000_000_000, 0, 1_000_000_000_000_000} {
		data = binary.LittleEndian.AppendUint64(data, v)
	}
	data = append(data, 1)
	data = append(data, creator.Bytes()...)

	curve, err := ParseBondingCurve(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_073_000_000_000_000), curve.VirtualTokenReserves)
	assert.Equal(t, uint64(30_000_000_000), curve.VirtualSolReserves)
	assert.Equal(t, uint64(793_100_000_000_000), curve.RealTokenReserves)
	assert.True(t, curve.Complete)
	assert.Equal(t, creator, curve.Creator)
}

func TestParseBondingCurveRejectsBadInput(t *testing.T) {
	_, err := ParseBondingCurve(nil)
	assert.ErrorContains(t, err, "too short")

	data := make([]byte, 8+40+1)
	data[0] = 0xFF
	_, err = ParseBondingCurve(data)
	assert.ErrorContains(t, err, "discriminator")
}

func TestParseFeeSharingConfig(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	authority := solana.MustPublicKeyFromBase58("7Z9vCDFzwe2DsTq4zvmrurScehUYAgUifiycgD6ZYa6T")

	data := make([]byte, 0, 8+64+8+1+2*34)
	data = append(data, FeeSharingConfigDiscriminator...)
	data = append(data, mint.Bytes()...)
	data = append(data, authority.Bytes()...)
	data = binary.LittleEndian.AppendUint64(data, 5_000_000)
	data = append(data, 2)
	for _, share := range []struct {
		addr solana.PublicKey
		bps  uint16
	}{
		{authority, 9000},
		{mint, 1000},
	} {
		data = append(data, share.addr.Bytes()...)
		data = binary.LittleEndian.AppendUint16(data, share.bps)
	}

	cfg, err := ParseFeeSharingConfig(data)
	require.NoError(t, err)
	assert.Equal(t, mint, cfg.Mint)
	assert.Equal(t, authority, cfg.Authority)
	assert.Equal(t, uint64(5_000_000), cfg.MinDistributableLamports)
	require.Len(t, cfg.Shareholders, 2)
	assert.Equal(t, uint16(9000), cfg.Shareholders[0].ShareBps)
	assert.Equal(t, uint16(1000), cfg.Shareholders[1].ShareBps)
}

func TestParseFeeSharingConfigTruncatedShareholders(t *testing.T) {
	data := make([]byte, 0, 8+64+8+1)
	data = append(data, FeeSharingConfigDiscriminator...)
	data = append(data, make([]byte, 64)...)
	data = binary.LittleEndian.AppendUint64(data, 0)
	data = append(data, 3) // declares three entries, carries none

	_, err := ParseFeeSharingConfig(data)
	assert.ErrorContains(t, err, "truncated")
}

func TestParseGlobalAccount(t *testing.T) {
	data := make([]byte, 113)
	data[8] = 1
	binary.LittleEndian.PutUint64(data[73:81], 1_073_000_000_000_000)
	binary.LittleEndian.PutUint64(data[81:89], 30_000_000_000)
	binary.LittleEndian.PutUint64(data[89:97], 793_100_000_000_000)
	binary.LittleEndian.PutUint64(data[97:105], 1_000_000_000_000_000)
	binary.LittleEndian.PutUint64(data[105:113], 100)

	account, err := ParseGlobalAccount(data)
	require.NoError(t, err)
	assert.True(t, account.Initialized)
	assert.Equal(t, uint64(1_073_000_000_000_000), account.InitialVirtualTokenReserves)
	assert.Equal(t, uint64(793_100_000_000_000), account.InitialRealTokenReserves)
	assert.Equal(t, uint64(100), account.FeeBasisPoints)

	_, err = ParseGlobalAccount(data[:50])
	assert.ErrorContains(t, err, "too short")
}

func TestDerivationsAreDeterministic(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	a, err := DeriveBondingCurve(mint)
	require.NoError(t, err)
	b, err := DeriveBondingCurve(mint)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	global, err := DeriveGlobal()
	require.NoError(t, err)
	assert.NotEqual(t, a, global)

	cfg, err := DeriveFeeSharingConfig(mint)
	require.NoError(t, err)
	record, err := DeriveShareRecord(mint, mint)
	require.NoError(t, err)
	assert.NotEqual(t, cfg, record)
}
