package fees

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shipmytoken/smt/internal/dex/pump"
	"github.com/shipmytoken/smt/internal/store"
	"github.com/shipmytoken/smt/internal/wallet"
)

type fakeChain struct {
	accounts    map[solana.PublicKey][]byte
	balances    map[solana.PublicKey]uint64
	sendCalls   int
	sendErr     error
	confirmErr  error
	infoCalls   int
	lastSentLen int
}

func (f *fakeChain) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{7}, nil
}

func (f *fakeChain) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	return f.balances[pubkey], nil
}

func (f *fakeChain) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	f.infoCalls++
	data, ok := f.accounts[pubkey]
	if !ok {
		return nil, errors.New("account not found")
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Owner: pump.ProgramID,
			Data:  rpc.DataBytesOrJSONFromBytes(data),
		},
	}, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.sendCalls++
	f.lastSentLen = len(tx.Message.Instructions)
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return solana.Signature{9}, nil
}

func (f *fakeChain) WaitForConfirmation(ctx context.Context, signature solana.Signature) error {
	return f.confirmErr
}

func feeSharingConfigBytes(mint, authority solana.PublicKey, minLamports uint64, shares []pump.ShareEntry) []byte {
	data := make([]byte, 0, 8+64+8+1+len(shares)*34)
	data = append(data, pump.FeeSharingConfigDiscriminator[:]...)
	data = append(data, mint.Bytes()...)
	data = append(data, authority.Bytes()...)
	data = binary.LittleEndian.AppendUint64(data, minLamports)
	data = append(data, byte(len(shares)))
	for _, s := range shares {
		data = append(data, s.Address.Bytes()...)
		data = binary.LittleEndian.AppendUint16(data, s.ShareBps)
	}
	return data
}

func newTestEngine(t *testing.T, chain *fakeChain) (*Engine, *store.Store, *wallet.Wallet, solana.PublicKey) {
	t.Helper()

	w, err := wallet.Generate()
	require.NoError(t, err)
	platform, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	st := store.New(t.TempDir(), zap.NewNop())

	e := New(Deps{
		Client:         chain,
		Wallet:         w,
		Store:          st,
		PlatformWallet: platform.PublicKey(),
		PriorityFee:    100_000,
		Logger:         zap.NewNop(),
	})
	return e, st, w, platform.PublicKey()
}

func randomAddress(t *testing.T) string {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey().String()
}

func TestParseShareSpec(t *testing.T) {
	a := randomAddress(t)
	b := randomAddress(t)

	tests := []struct {
		name    string
		spec    string
		want    int
		wantErr string
	}{
		{"two entries", a + ":9000," + b + ":1000", 2, ""},
		{"whitespace tolerated", " " + a + " : 9000 , " + b + ":1000", 2, ""},
		{"empty", "", 0, "empty"},
		{"only commas", ",,", 0, "empty"},
		{"missing colon", a, 0, "expected address:bps"},
		{"bad address", "notanaddress:5000", 0, "invalid address"},
		{"bad bps", a + ":lots", 0, "invalid basis points"},
		{"zero bps", a + ":0", 0, "must be in 1.."},
		{"bps above total", a + ":10001", 0, "must be in 1.."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseShareSpec(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
		})
	}
}

func TestValidateSharesAppendsPlatformWhenAbsent(t *testing.T) {
	creator, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	platform, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	entries := []pump.ShareEntry{{Address: creator.PublicKey(), ShareBps: 9000}}
	normalized, err := ValidateShares(entries, platform.PublicKey())
	require.NoError(t, err)
	require.Len(t, normalized, 2)
	assert.Equal(t, platform.PublicKey(), normalized[1].Address)
	assert.Equal(t, uint16(1000), normalized[1].ShareBps)
}

func TestValidateSharesRejections(t *testing.T) {
	keys := make([]solana.PublicKey, 12)
	for i := range keys {
		k, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		keys[i] = k.PublicKey()
	}
	platform := keys[11]

	t.Run("platform below floor", func(t *testing.T) {
		entries := []pump.ShareEntry{
			{Address: keys[0], ShareBps: 9500},
			{Address: platform, ShareBps: 500},
		}
		_, err := ValidateShares(entries, platform)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "minimum is 1000")
	})

	t.Run("sum below total", func(t *testing.T) {
		entries := []pump.ShareEntry{
			{Address: keys[0], ShareBps: 5000},
			{Address: platform, ShareBps: 1000},
		}
		_, err := ValidateShares(entries, platform)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly 10000")
	})

	t.Run("sum above total", func(t *testing.T) {
		entries := []pump.ShareEntry{
			{Address: keys[0], ShareBps: 9500},
			{Address: platform, ShareBps: 1000},
		}
		_, err := ValidateShares(entries, platform)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly 10000")
	})

	t.Run("too many shareholders", func(t *testing.T) {
		entries := make([]pump.ShareEntry, 0, 11)
		for i := 0; i < 10; i++ {
			entries = append(entries, pump.ShareEntry{Address: keys[i], ShareBps: 900})
		}
		entries = append(entries, pump.ShareEntry{Address: platform, ShareBps: 1000})
		_, err := ValidateShares(entries, platform)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many shareholders")
	})

	t.Run("duplicate shareholder", func(t *testing.T) {
		entries := []pump.ShareEntry{
			{Address: keys[0], ShareBps: 4500},
			{Address: keys[0], ShareBps: 4500},
			{Address: platform, ShareBps: 1000},
		}
		_, err := ValidateShares(entries, platform)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})
}

func seedToken(t *testing.T, st *store.Store, mint string, configured bool) {
	t.Helper()
	history, err := st.ReadHistory()
	require.NoError(t, err)
	history.Tokens = append(history.Tokens, store.TokenRecord{
		Name:                 "Moonshot",
		Symbol:               "MOON",
		Mint:                 mint,
		CreatedAt:            time.Now().UTC(),
		FeeSharingConfigured: configured,
	})
	require.NoError(t, st.WriteHistory(history))
}

func TestUpdateSharesInvalidSplitMakesNoChainCalls(t *testing.T) {
	chain := &fakeChain{}
	e, st, _, platform := newTestEngine(t, chain)

	mint := randomAddress(t)
	seedToken(t, st, mint, true)

	spec := randomAddress(t) + ":9500," + platform.String() + ":500"
	_, err := e.UpdateShares(context.Background(), mint, spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimum is 1000")
	assert.Zero(t, chain.sendCalls)
	assert.Zero(t, chain.infoCalls)
}

func TestUpdateSharesUnknownTokenRejected(t *testing.T) {
	chain := &fakeChain{}
	e, _, _, platform := newTestEngine(t, chain)

	spec := randomAddress(t) + ":9000," + platform.String() + ":1000"
	_, err := e.UpdateShares(context.Background(), randomAddress(t), spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in local history")
	assert.Zero(t, chain.sendCalls)
}

func TestUpdateSharesPersistsOnlyAfterConfirmation(t *testing.T) {
	chain := &fakeChain{sendErr: errors.New("rpc unavailable")}
	e, st, _, platform := newTestEngine(t, chain)

	mint := randomAddress(t)
	seedToken(t, st, mint, true)

	spec := randomAddress(t) + ":9000," + platform.String() + ":1000"
	_, err := e.UpdateShares(context.Background(), mint, spec)
	require.Error(t, err)
	assert.Equal(t, 1, chain.sendCalls)

	history, err := st.ReadHistory()
	require.NoError(t, err)
	assert.Empty(t, history.Tokens[0].Shareholders, "failed update must not touch the ledger")
}

func TestUpdateSharesHappyPath(t *testing.T) {
	chain := &fakeChain{}
	e, st, w, platform := newTestEngine(t, chain)

	mint := randomAddress(t)
	seedToken(t, st, mint, false)

	partner := randomAddress(t)
	spec := w.PublicKey.String() + ":5000," + partner + ":4000," + platform.String() + ":1000"
	result, err := e.UpdateShares(context.Background(), mint, spec)
	require.NoError(t, err)
	assert.Equal(t, mint, result.Mint)
	assert.NotEmpty(t, result.Signature)
	require.Len(t, result.Shareholders, 3)
	assert.Equal(t, "creator", result.Shareholders[0].Label)
	assert.Equal(t, "shipmytoken", result.Shareholders[2].Label)
	assert.Equal(t, 1, chain.sendCalls)

	history, err := st.ReadHistory()
	require.NoError(t, err)
	require.Len(t, history.Tokens, 1)
	assert.True(t, history.Tokens[0].FeeSharingConfigured)
	require.Len(t, history.Tokens[0].Shareholders, 3)
	assert.Equal(t, uint16(4000), history.Tokens[0].Shareholders[1].ShareBps)
}

func TestClaimSkipsUnconfiguredTokensWithoutTransactions(t *testing.T) {
	chain := &fakeChain{}
	e, st, _, _ := newTestEngine(t, chain)

	seedToken(t, st, randomAddress(t), false)
	seedToken(t, st, randomAddress(t), false)

	report, err := e.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, report.Claimed)
	assert.Zero(t, chain.sendCalls)
	for _, entry := range report.Tokens {
		assert.True(t, entry.Skipped)
		assert.Contains(t, entry.SkipReason, "fee sharing not configured")
	}
}

func TestClaimNoTokensErrors(t *testing.T) {
	e, _, _, _ := newTestEngine(t, &fakeChain{})
	_, err := e.Claim(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tokens launched")
}

func TestClaimBelowThresholdSkippedWithAmounts(t *testing.T) {
	chain := &fakeChain{accounts: map[solana.PublicKey][]byte{}, balances: map[solana.PublicKey]uint64{}}
	e, st, w, _ := newTestEngine(t, chain)

	mintKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	mint := mintKey.PublicKey()
	seedToken(t, st, mint.String(), true)

	cfgAddr, err := pump.DeriveFeeSharingConfig(mint)
	require.NoError(t, err)
	chain.accounts[cfgAddr] = feeSharingConfigBytes(mint, w.PublicKey, 5_000_000, []pump.ShareEntry{
		{Address: w.PublicKey, ShareBps: 10000},
	})
	vault, err := pump.DeriveCreatorVault(w.PublicKey)
	require.NoError(t, err)
	chain.balances[vault] = 1_000_000

	report, err := e.Claim(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Tokens, 1)
	entry := report.Tokens[0]
	assert.False(t, entry.Claimed)
	assert.True(t, entry.Skipped)
	assert.Equal(t, uint64(1_000_000), entry.AvailableLamports)
	assert.Equal(t, uint64(5_000_000), entry.RequiredLamports)
	assert.Contains(t, entry.SkipReason, "below")
	assert.Zero(t, chain.sendCalls)
}

func TestClaimEligibleTokenDistributes(t *testing.T) {
	chain := &fakeChain{accounts: map[solana.PublicKey][]byte{}, balances: map[solana.PublicKey]uint64{}}
	e, st, w, platform := newTestEngine(t, chain)

	mintKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	mint := mintKey.PublicKey()
	seedToken(t, st, mint.String(), true)

	cfgAddr, err := pump.DeriveFeeSharingConfig(mint)
	require.NoError(t, err)
	chain.accounts[cfgAddr] = feeSharingConfigBytes(mint, w.PublicKey, 5_000_000, []pump.ShareEntry{
		{Address: w.PublicKey, ShareBps: 9000},
		{Address: platform, ShareBps: 1000},
	})
	vault, err := pump.DeriveCreatorVault(w.PublicKey)
	require.NoError(t, err)
	chain.balances[vault] = 50_000_000

	report, err := e.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Claimed)
	require.Len(t, report.Tokens, 1)
	assert.True(t, report.Tokens[0].Claimed)
	assert.NotEmpty(t, report.Tokens[0].Signature)
	assert.Equal(t, 1, chain.sendCalls)
}

func TestClaimFailureIsolatedPerToken(t *testing.T) {
	chain := &fakeChain{accounts: map[solana.PublicKey][]byte{}, balances: map[solana.PublicKey]uint64{}}
	e, st, w, _ := newTestEngine(t, chain)

	// First token has no on-chain config, second is eligible.
	brokenKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	seedToken(t, st, brokenKey.PublicKey().String(), true)

	goodKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	good := goodKey.PublicKey()
	seedToken(t, st, good.String(), true)

	cfgAddr, err := pump.DeriveFeeSharingConfig(good)
	require.NoError(t, err)
	chain.accounts[cfgAddr] = feeSharingConfigBytes(good, w.PublicKey, 1_000, []pump.ShareEntry{
		{Address: w.PublicKey, ShareBps: 10000},
	})
	vault, err := pump.DeriveCreatorVault(w.PublicKey)
	require.NoError(t, err)
	chain.balances[vault] = 10_000_000

	report, err := e.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Claimed)
	assert.NotEmpty(t, report.Tokens[0].Error)
	assert.True(t, report.Tokens[1].Claimed)
}
