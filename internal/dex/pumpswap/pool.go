package pumpswap

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// ChainReader is the read-only RPC surface the pool reader needs.
type ChainReader interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetMultipleAccounts(ctx context.Context, pubkeys ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error)
}

// PoolReader reads canonical pool state for graduated tokens.
type PoolReader struct {
	client ChainReader
	logger *zap.Logger
}

// NewPoolReader creates a pool reader.
func NewPoolReader(client ChainReader, logger *zap.Logger) *PoolReader {
	return &PoolReader{
		client: client,
		logger: logger.Named("pool_reader"),
	}
}

// PoolExists reports whether the account at poolAddress is an initialized
// pool owned by the AMM program. Used as the graduation check; always asked
// of the chain, never cached.
func (pr *PoolReader) PoolExists(ctx context.Context, poolAddress solana.PublicKey) (bool, error) {
	accountInfo, err := pr.client.GetAccountInfo(ctx, poolAddress)
	if err != nil {
		return false, fmt.Errorf("failed to get pool account: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return false, nil
	}
	return accountInfo.Value.Owner.Equals(ProgramID), nil
}

// FetchPoolInfo reads a pool and its two reserve token accounts.
func (pr *PoolReader) FetchPoolInfo(ctx context.Context, poolAddress solana.PublicKey) (*PoolInfo, error) {
	accountInfo, err := pr.client.GetAccountInfo(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool account: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, fmt.Errorf("pool account not found: %s", poolAddress.String())
	}

	pool, err := ParsePool(accountInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool %s: %w", poolAddress.String(), err)
	}

	reserves, err := pr.client.GetMultipleAccounts(ctx, pool.PoolBaseTokenAccount, pool.PoolQuoteTokenAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool token accounts: %w", err)
	}
	if reserves == nil || len(reserves.Value) != 2 || reserves.Value[0] == nil || reserves.Value[1] == nil {
		return nil, fmt.Errorf("pool token accounts not found for %s", poolAddress.String())
	}

	baseReserves := ParseTokenAccountAmount(reserves.Value[0].Data.GetBinary())
	quoteReserves := ParseTokenAccountAmount(reserves.Value[1].Data.GetBinary())

	pr.logger.Debug("Fetched pool reserves",
		zap.String("pool", poolAddress.String()),
		zap.Uint64("base_reserves", baseReserves),
		zap.Uint64("quote_reserves", quoteReserves))

	return &PoolInfo{
		Address:               poolAddress,
		BaseMint:              pool.BaseMint,
		QuoteMint:             pool.QuoteMint,
		BaseReserves:          baseReserves,
		QuoteReserves:         quoteReserves,
		LPSupply:              pool.LPSupply,
		PoolBaseTokenAccount:  pool.PoolBaseTokenAccount,
		PoolQuoteTokenAccount: pool.PoolQuoteTokenAccount,
	}, nil
}

// PriceSOL returns the SOL price per whole token implied by the pool's
// reserves. The base side is the launched token (6 decimals), the quote
// side WSOL (9 decimals).
func (info *PoolInfo) PriceSOL() float64 {
	if info.BaseReserves == 0 {
		return 0
	}
	base := float64(info.BaseReserves) / 1e6
	quote := float64(info.QuoteReserves) / 1e9
	return quote / base
}
