package pump

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func TestBuildCreateInstruction(t *testing.T) {
	mint := testKey(t)
	creator := testKey(t)

	ix, err := BuildCreateInstruction(CreateParams{
		Mint:    mint,
		Name:    "Moonshot",
		Symbol:  "MOON",
		URI:     "https://ipfs.io/ipfs/QmTest",
		Creator: creator,
		User:    creator,
	})
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 14)
	assert.Equal(t, mint, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[7].IsSigner, "user pays and signs")
	assert.Equal(t, MetaplexMetadataProgramID, accounts[5].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, CreateDiscriminator, data[:8])
	// Borsh string: u32 length then bytes.
	assert.Equal(t, uint32(len("Moonshot")), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, "Moonshot", string(data[12:12+8]))
	assert.Equal(t, creator.Bytes(), data[len(data)-32:])
}

func TestBuildBuyInstructionData(t *testing.T) {
	mint := testKey(t)
	user := testKey(t)

	ix, err := BuildBuyInstruction(BuyParams{
		Mint:         mint,
		User:         user,
		UserATA:      testKey(t),
		FeeRecipient: testKey(t),
		Amount:       123_456_789,
		MaxSolCost:   1_010_000_000,
	})
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, BuyDiscriminator, data[:8])
	assert.Equal(t, uint64(123_456_789), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1_010_000_000), binary.LittleEndian.Uint64(data[16:24]))

	assert.Len(t, ix.Accounts(), 12)
}

func TestBuildUpdateFeeSharesInstruction(t *testing.T) {
	mint := testKey(t)
	authority := testKey(t)
	partner := testKey(t)
	platform := testKey(t)

	ix, err := BuildUpdateFeeSharesInstruction(
		authority, mint,
		[]solana.PublicKey{authority},
		[]ShareEntry{
			{Address: authority, ShareBps: 8000},
			{Address: partner, ShareBps: 1000},
			{Address: platform, ShareBps: 1000},
		},
	)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, UpdateFeeSharesDiscriminator, data[:8])
	assert.Equal(t, byte(1), data[8], "current shareholder count")
	assert.Equal(t, authority.Bytes(), data[9:41])
	assert.Equal(t, byte(3), data[41], "new shareholder count")
	assert.Equal(t, uint16(8000), binary.LittleEndian.Uint16(data[74:76]))

	// Fixed accounts plus one prior record, three new records, tail of three.
	assert.Len(t, ix.Accounts(), 3+1+3+3)
}

func TestBuildDistributeFeesInstructionAccounts(t *testing.T) {
	mint := testKey(t)
	creator := testKey(t)
	shareholders := []solana.PublicKey{creator, testKey(t)}

	ix, err := BuildDistributeFeesInstruction(creator, mint, creator, shareholders)
	require.NoError(t, err)

	// Record plus destination per shareholder.
	assert.Len(t, ix.Accounts(), 4+2*len(shareholders)+3)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, DistributeFeesDiscriminator, data)
}
