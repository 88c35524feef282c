// Package fees manages creator fee splits and payouts for launched tokens.
package fees

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/shipmytoken/smt/internal/blockchain/solana/transaction"
	"github.com/shipmytoken/smt/internal/dex/pump"
	"github.com/shipmytoken/smt/internal/store"
	"github.com/shipmytoken/smt/internal/wallet"
)

const (
	// TotalShareBps is the full fee allocation in basis points.
	TotalShareBps = 10_000
	// PlatformMinBps is the platform's guaranteed minimum cut.
	PlatformMinBps = 1_000
	// MaxShareholders caps the on-chain shareholder list.
	MaxShareholders = 10
)

// ChainClient is the RPC surface the engine needs.
type ChainClient interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, signature solana.Signature) error
}

// Engine updates fee splits and claims accrued fees.
type Engine struct {
	client         ChainClient
	wallet         *wallet.Wallet
	store          *store.Store
	platformWallet solana.PublicKey
	priorityFee    uint64
	logger         *zap.Logger
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Client         ChainClient
	Wallet         *wallet.Wallet
	Store          *store.Store
	PlatformWallet solana.PublicKey
	PriorityFee    uint64
	Logger         *zap.Logger
}

// New creates a fee engine.
func New(deps Deps) *Engine {
	return &Engine{
		client:         deps.Client,
		wallet:         deps.Wallet,
		store:          deps.Store,
		platformWallet: deps.PlatformWallet,
		priorityFee:    deps.PriorityFee,
		logger:         deps.Logger.Named("fees"),
	}
}

// ParseShareSpec parses a comma-separated list of address:bps pairs.
func ParseShareSpec(spec string) ([]pump.ShareEntry, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("share spec is empty")
	}

	var entries []pump.ShareEntry
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		addr, bpsStr, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("invalid share entry %q: expected address:bps", part)
		}
		pubkey, err := solana.PublicKeyFromBase58(strings.TrimSpace(addr))
		if err != nil {
			return nil, fmt.Errorf("invalid address in share entry %q: %w", part, err)
		}
		bps, err := strconv.ParseUint(strings.TrimSpace(bpsStr), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid basis points in share entry %q: %w", part, err)
		}
		if bps == 0 || bps > TotalShareBps {
			return nil, fmt.Errorf("basis points in share entry %q must be in 1..%d", part, TotalShareBps)
		}
		entries = append(entries, pump.ShareEntry{Address: pubkey, ShareBps: uint16(bps)})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("share spec is empty")
	}
	return entries, nil
}

// ValidateShares normalizes and checks a shareholder set: the platform
// wallet is appended at PlatformMinBps when absent and must hold at least
// that much when present; the total must be exactly TotalShareBps split
// across at most MaxShareholders entries.
func ValidateShares(entries []pump.ShareEntry, platformWallet solana.PublicKey) ([]pump.ShareEntry, error) {
	seen := make(map[solana.PublicKey]bool, len(entries))
	platformPresent := false
	for _, e := range entries {
		if seen[e.Address] {
			return nil, fmt.Errorf("duplicate shareholder %s", e.Address.String())
		}
		seen[e.Address] = true
		if e.Address.Equals(platformWallet) {
			platformPresent = true
			if e.ShareBps < PlatformMinBps {
				return nil, fmt.Errorf("platform share is %d bps, minimum is %d bps", e.ShareBps, PlatformMinBps)
			}
		}
	}

	normalized := make([]pump.ShareEntry, len(entries), len(entries)+1)
	copy(normalized, entries)
	if !platformPresent {
		normalized = append(normalized, pump.ShareEntry{Address: platformWallet, ShareBps: PlatformMinBps})
	}

	if len(normalized) > MaxShareholders {
		return nil, fmt.Errorf("too many shareholders: %d, maximum is %d", len(normalized), MaxShareholders)
	}

	var sum uint64
	for _, e := range normalized {
		sum += uint64(e.ShareBps)
	}
	if sum != TotalShareBps {
		return nil, fmt.Errorf("shares sum to %d bps, must be exactly %d", sum, TotalShareBps)
	}

	return normalized, nil
}

// UpdateResult is the outcome of a share update.
type UpdateResult struct {
	Mint         string              `json:"mint"`
	Signature    string              `json:"signature"`
	Shareholders []store.Shareholder `json:"shareholders"`
}

// UpdateShares replaces the fee split for mint. The new set is validated
// locally before any chain call, and the local ledger is updated only after
// the transaction confirms.
func (e *Engine) UpdateShares(ctx context.Context, mintStr, spec string) (*UpdateResult, error) {
	mint, err := solana.PublicKeyFromBase58(mintStr)
	if err != nil {
		return nil, fmt.Errorf("invalid mint address: %w", err)
	}

	entries, err := ParseShareSpec(spec)
	if err != nil {
		return nil, err
	}
	entries, err = ValidateShares(entries, e.platformWallet)
	if err != nil {
		return nil, err
	}

	history, err := e.store.ReadHistory()
	if err != nil {
		return nil, err
	}
	recordIdx := -1
	for i := range history.Tokens {
		if history.Tokens[i].Mint == mintStr {
			recordIdx = i
			break
		}
	}
	if recordIdx < 0 {
		return nil, fmt.Errorf("token %s not found in local history, launch it first", mintStr)
	}

	builder := transaction.New(e.priorityFee)

	// The current on-chain shareholder set feeds the update instruction so
	// the program can close stale share records. A missing config means the
	// launch-time configuration never landed, so it is created here.
	var current []solana.PublicKey
	cfg, cfgErr := pump.FetchFeeSharingConfig(ctx, e.client, mint)
	if cfgErr != nil {
		createIx, err := pump.BuildCreateFeeConfigInstruction(e.wallet.PublicKey, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to build fee config instruction: %w", err)
		}
		builder.AddInstruction(createIx)
		current = []solana.PublicKey{e.wallet.PublicKey}
	} else {
		for _, s := range cfg.Shareholders {
			current = append(current, s.Address)
		}
	}

	updateIx, err := pump.BuildUpdateFeeSharesInstruction(e.wallet.PublicKey, mint, current, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build update instruction: %w", err)
	}

	tx, err := builder.
		AddInstruction(updateIx).
		AddSigner(e.wallet.PrivateKey).
		Build(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("failed to build share update transaction: %w", err)
	}

	signature, err := e.client.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send share update: %w", err)
	}
	if err := e.client.WaitForConfirmation(ctx, signature); err != nil {
		return nil, fmt.Errorf("share update not confirmed: %w", err)
	}

	shareholders := make([]store.Shareholder, 0, len(entries))
	for _, entry := range entries {
		label := ""
		switch {
		case entry.Address.Equals(e.wallet.PublicKey):
			label = "creator"
		case entry.Address.Equals(e.platformWallet):
			label = "shipmytoken"
		}
		shareholders = append(shareholders, store.Shareholder{
			Address:  entry.Address.String(),
			ShareBps: entry.ShareBps,
			Label:    label,
		})
	}

	history.Tokens[recordIdx].Shareholders = shareholders
	history.Tokens[recordIdx].FeeSharingConfigured = true
	if err := e.store.WriteHistory(history); err != nil {
		return nil, fmt.Errorf("shares updated on chain (%s) but history write failed: %w", signature.String(), err)
	}

	e.logger.Info("Fee shares updated",
		zap.String("mint", mintStr),
		zap.String("signature", signature.String()),
		zap.Int("shareholders", len(shareholders)))

	return &UpdateResult{
		Mint:         mintStr,
		Signature:    signature.String(),
		Shareholders: shareholders,
	}, nil
}

// ClaimEntry is one token's slice of a claim report.
type ClaimEntry struct {
	Mint              string `json:"mint"`
	Name              string `json:"name"`
	Claimed           bool   `json:"claimed"`
	Skipped           bool   `json:"skipped"`
	Signature         string `json:"signature,omitempty"`
	SkipReason        string `json:"skipReason,omitempty"`
	AvailableLamports uint64 `json:"availableLamports,omitempty"`
	RequiredLamports  uint64 `json:"requiredLamports,omitempty"`
	Error             string `json:"error,omitempty"`
}

// ClaimReport summarizes a claim run across all recorded tokens.
type ClaimReport struct {
	Tokens  []ClaimEntry `json:"tokens"`
	Claimed int          `json:"claimed"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
}

// Claim distributes accrued creator fees for every recorded token, one
// independent transaction per token. A failure on one token does not stop
// the others.
func (e *Engine) Claim(ctx context.Context) (*ClaimReport, error) {
	history, err := e.store.ReadHistory()
	if err != nil {
		return nil, err
	}
	if len(history.Tokens) == 0 {
		return nil, fmt.Errorf("no tokens launched yet")
	}

	report := &ClaimReport{}
	for _, token := range history.Tokens {
		entry := e.claimToken(ctx, token)
		report.Tokens = append(report.Tokens, entry)
		switch {
		case entry.Claimed:
			report.Claimed++
		case entry.Error != "":
			report.Failed++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

func (e *Engine) claimToken(ctx context.Context, token store.TokenRecord) ClaimEntry {
	entry := ClaimEntry{Mint: token.Mint, Name: token.Name}

	if !token.FeeSharingConfigured {
		entry.Skipped = true
		entry.SkipReason = "fee sharing not configured, fees accrue entirely to creator"
		return entry
	}

	mint, err := solana.PublicKeyFromBase58(token.Mint)
	if err != nil {
		entry.Error = fmt.Sprintf("invalid mint address: %v", err)
		return entry
	}

	cfg, err := pump.FetchFeeSharingConfig(ctx, e.client, mint)
	if err != nil {
		entry.Error = fmt.Sprintf("failed to read fee sharing config: %v", err)
		return entry
	}

	available, err := pump.FetchUnclaimedFees(ctx, e.client, e.wallet.PublicKey)
	if err != nil {
		entry.Error = fmt.Sprintf("failed to read unclaimed fees: %v", err)
		return entry
	}
	entry.AvailableLamports = available
	entry.RequiredLamports = cfg.MinDistributableLamports
	if available < cfg.MinDistributableLamports {
		entry.Skipped = true
		entry.SkipReason = fmt.Sprintf("unclaimed fees %d lamports below the %d lamport distribution minimum",
			available, cfg.MinDistributableLamports)
		return entry
	}

	shareholders := make([]solana.PublicKey, 0, len(cfg.Shareholders))
	for _, s := range cfg.Shareholders {
		shareholders = append(shareholders, s.Address)
	}

	distributeIx, err := pump.BuildDistributeFeesInstruction(e.wallet.PublicKey, mint, e.wallet.PublicKey, shareholders)
	if err != nil {
		entry.Error = fmt.Sprintf("failed to build distribute instruction: %v", err)
		return entry
	}

	tx, err := transaction.New(e.priorityFee).
		AddInstruction(distributeIx).
		AddSigner(e.wallet.PrivateKey).
		Build(ctx, e.client)
	if err != nil {
		entry.Error = fmt.Sprintf("failed to build distribute transaction: %v", err)
		return entry
	}

	signature, err := e.client.SendTransaction(ctx, tx)
	if err != nil {
		entry.Error = fmt.Sprintf("failed to send distribute transaction: %v", err)
		return entry
	}
	if err := e.client.WaitForConfirmation(ctx, signature); err != nil {
		entry.Error = fmt.Sprintf("distribute transaction not confirmed: %v", err)
		return entry
	}

	e.logger.Info("Fees distributed",
		zap.String("mint", token.Mint),
		zap.Uint64("lamports", available),
		zap.String("signature", signature.String()))

	entry.Claimed = true
	entry.Signature = signature.String()
	return entry
}
