// Package stats reports portfolio state for launched tokens: bonding curve
// progress before graduation, pool-implied prices after.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/shipmytoken/smt/internal/dex/pump"
	"github.com/shipmytoken/smt/internal/dex/pumpswap"
	"github.com/shipmytoken/smt/internal/store"
)

// recapInterval is the rolling window for the daily recap.
const recapInterval = 24 * time.Hour

// Phase values for a token's lifecycle stage.
const (
	PhaseBonding   = "bonding"
	PhaseGraduated = "graduated"
)

// ChainClient is the read-only RPC surface the reporter needs.
type ChainClient interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetMultipleAccounts(ctx context.Context, pubkeys ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error)
}

// BondingStats is the pre-graduation view of a token.
type BondingStats struct {
	ProgressPercent float64 `json:"progressPercent"`
	PriceSOL        float64 `json:"priceSol"`
	MarketCapSOL    float64 `json:"marketCapSol"`
}

// GraduatedStats is the post-graduation view of a token.
type GraduatedStats struct {
	PoolAddress  string  `json:"poolAddress"`
	PriceSOL     float64 `json:"priceSol"`
	MarketCapSOL float64 `json:"marketCapSol"`
}

// TokenStats carries one token's report entry. Phase selects which payload
// is set; read errors are carried per token instead of failing the report.
type TokenStats struct {
	Name              string          `json:"name"`
	Symbol            string          `json:"symbol"`
	Mint              string          `json:"mint"`
	Phase             string          `json:"phase"`
	Bonding           *BondingStats   `json:"bonding,omitempty"`
	Graduated         *GraduatedStats `json:"graduated,omitempty"`
	BondingCurveError string          `json:"bondingCurveError,omitempty"`
	PoolError         string          `json:"poolError,omitempty"`
}

// Report is a full portfolio snapshot.
type Report struct {
	Wallet           string       `json:"wallet"`
	BalanceSOL       float64      `json:"balanceSol"`
	UnclaimedFeesSOL float64      `json:"unclaimedFeesSol"`
	Tokens           []TokenStats `json:"tokens"`
}

// Reporter builds portfolio reports.
type Reporter struct {
	client ChainClient
	wallet solana.PublicKey
	store  *store.Store
	pools  *pumpswap.PoolReader
	logger *zap.Logger
}

// New creates a reporter.
func New(client ChainClient, owner solana.PublicKey, st *store.Store, logger *zap.Logger) *Reporter {
	return &Reporter{
		client: client,
		wallet: owner,
		store:  st,
		pools:  pumpswap.NewPoolReader(client, logger),
		logger: logger.Named("stats"),
	}
}

// Build assembles a portfolio report. Graduation is decided per token by
// asking the chain whether the canonical pool account exists; the answer is
// never taken from the local ledger. Newly discovered pool addresses are
// written back to the ledger for display.
func (r *Reporter) Build(ctx context.Context) (*Report, error) {
	history, err := r.store.ReadHistory()
	if err != nil {
		return nil, err
	}
	if len(history.Tokens) == 0 {
		return nil, fmt.Errorf("no tokens launched yet")
	}

	report := &Report{Wallet: r.wallet.String()}

	balance, err := r.client.GetBalance(ctx, r.wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	report.BalanceSOL = float64(balance) / pump.LamportsPerSOL

	unclaimed, err := pump.FetchUnclaimedFees(ctx, r.client, r.wallet)
	if err != nil {
		r.logger.Warn("Failed to read unclaimed fees", zap.Error(err))
	} else {
		report.UnclaimedFeesSOL = float64(unclaimed) / pump.LamportsPerSOL
	}

	var global *pump.GlobalAccount
	historyDirty := false
	for i := range history.Tokens {
		entry, poolAddr := r.tokenStats(ctx, &history.Tokens[i], &global)
		report.Tokens = append(report.Tokens, entry)
		if poolAddr != "" && history.Tokens[i].PoolAddress != poolAddr {
			history.Tokens[i].PoolAddress = poolAddr
			historyDirty = true
		}
	}

	if historyDirty {
		if err := r.store.WriteHistory(history); err != nil {
			r.logger.Warn("Failed to persist discovered pool addresses", zap.Error(err))
		}
	}

	return report, nil
}

// tokenStats builds one token's entry. The second return is the pool
// address to persist, empty when the token has not graduated.
func (r *Reporter) tokenStats(ctx context.Context, token *store.TokenRecord, global **pump.GlobalAccount) (TokenStats, string) {
	entry := TokenStats{
		Name:   token.Name,
		Symbol: token.Symbol,
		Mint:   token.Mint,
		Phase:  PhaseBonding,
	}

	mint, err := solana.PublicKeyFromBase58(token.Mint)
	if err != nil {
		entry.BondingCurveError = fmt.Sprintf("invalid mint address: %v", err)
		return entry, ""
	}

	poolAddr, err := r.canonicalPool(mint)
	if err != nil {
		entry.PoolError = err.Error()
		r.bondingStats(ctx, mint, &entry, global)
		return entry, ""
	}

	graduated, err := r.pools.PoolExists(ctx, poolAddr)
	if err != nil {
		entry.PoolError = err.Error()
		r.bondingStats(ctx, mint, &entry, global)
		return entry, ""
	}

	if !graduated {
		r.bondingStats(ctx, mint, &entry, global)
		return entry, ""
	}

	entry.Phase = PhaseGraduated
	info, err := r.pools.FetchPoolInfo(ctx, poolAddr)
	if err != nil {
		entry.PoolError = err.Error()
		return entry, poolAddr.String()
	}

	price := info.PriceSOL()
	entry.Graduated = &GraduatedStats{
		PoolAddress:  poolAddr.String(),
		PriceSOL:     price,
		MarketCapSOL: pump.MarketCapSOL(price),
	}
	return entry, poolAddr.String()
}

func (r *Reporter) canonicalPool(mint solana.PublicKey) (solana.PublicKey, error) {
	migrationAuthority, err := pump.DeriveMigrationAuthority(mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive migration authority: %v", err)
	}
	poolAddr, err := pumpswap.DeriveCanonicalPool(mint, migrationAuthority)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive canonical pool: %v", err)
	}
	return poolAddr, nil
}

func (r *Reporter) bondingStats(ctx context.Context, mint solana.PublicKey, entry *TokenStats, global **pump.GlobalAccount) {
	curve, err := pump.FetchBondingCurve(ctx, r.client, mint)
	if err != nil {
		entry.BondingCurveError = err.Error()
		return
	}

	if *global == nil {
		g, err := pump.FetchGlobalAccount(ctx, r.client)
		if err != nil {
			entry.BondingCurveError = fmt.Sprintf("failed to fetch global account: %v", err)
			return
		}
		*global = g
	}

	price := pump.CurvePriceSOL(curve.VirtualTokenReserves, curve.VirtualSolReserves)
	entry.Bonding = &BondingStats{
		ProgressPercent: pump.CurveProgressPercent(curve.RealTokenReserves, (*global).InitialRealTokenReserves),
		PriceSOL:        price,
		MarketCapSOL:    pump.MarketCapSOL(price),
	}
}

// RecapResult is the outcome of a daily recap request.
type RecapResult struct {
	Due    bool       `json:"due"`
	NextAt *time.Time `json:"nextAt,omitempty"`
	Report *Report    `json:"report,omitempty"`
}

// DailyRecap builds a report at most once per rolling 24 hours. Inside the
// window it returns due=false without touching the chain.
func (r *Reporter) DailyRecap(ctx context.Context) (*RecapResult, error) {
	cfg, err := r.store.ReadConfig()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if cfg.LastRecapAt != nil && now.Sub(*cfg.LastRecapAt) < recapInterval {
		next := cfg.LastRecapAt.Add(recapInterval)
		return &RecapResult{Due: false, NextAt: &next}, nil
	}

	report, err := r.Build(ctx)
	if err != nil {
		return nil, err
	}

	cfg.LastRecapAt = &now
	if err := r.store.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("recap built but timestamp write failed: %w", err)
	}

	return &RecapResult{Due: true, Report: report}, nil
}
