// Package launch assembles and submits the transactions that create a
// bonding-curve token, optionally performs an initial buy, and configures
// the creator/platform fee split.
package launch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/shipmytoken/smt/internal/blockchain/solana/transaction"
	"github.com/shipmytoken/smt/internal/dex/pump"
	"github.com/shipmytoken/smt/internal/metadata"
	"github.com/shipmytoken/smt/internal/store"
	"github.com/shipmytoken/smt/internal/vanity"
	"github.com/shipmytoken/smt/internal/wallet"
)

// brandSuffix is ground into mint addresses by default so launched tokens
// match the market's native address style.
const brandSuffix = "pump"

// ChainClient is the RPC surface the launcher needs.
type ChainClient interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, signature solana.Signature) error
}

// KeyGrinder searches for vanity keypairs.
type KeyGrinder interface {
	Grind(ctx context.Context, prefix, suffix string, opts vanity.Options) (solana.PrivateKey, error)
}

// Publisher uploads token metadata.
type Publisher interface {
	Publish(ctx context.Context, token metadata.Token) (string, error)
}

// Params describes one launch request.
type Params struct {
	Name           string
	Symbol         string
	Image          string
	Description    string
	Twitter        string
	Telegram       string
	Website        string
	InitialBuySOL  float64
	VanityPrefix   string
	VanitySuffix   string
	SkipPumpSuffix bool
}

// Result is the launch outcome.
type Result struct {
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	Mint                 string `json:"mint"`
	URL                  string `json:"url"`
	FeeSharingConfigured bool   `json:"feeSharingConfigured"`
	Signature            string `json:"signature"`
}

// Launcher runs the launch pipeline.
type Launcher struct {
	client             ChainClient
	wallet             *wallet.Wallet
	grinder            KeyGrinder
	publisher          Publisher
	store              *store.Store
	platformWallet     solana.PublicKey
	priorityFee        uint64
	feeReserveLamports uint64
	logger             *zap.Logger
}

// Deps bundles the launcher's collaborators.
type Deps struct {
	Client             ChainClient
	Wallet             *wallet.Wallet
	Grinder            KeyGrinder
	Publisher          Publisher
	Store              *store.Store
	PlatformWallet     solana.PublicKey
	PriorityFee        uint64
	FeeReserveLamports uint64
	Logger             *zap.Logger
}

// New creates a launcher.
func New(deps Deps) *Launcher {
	return &Launcher{
		client:             deps.Client,
		wallet:             deps.Wallet,
		grinder:            deps.Grinder,
		publisher:          deps.Publisher,
		store:              deps.Store,
		platformWallet:     deps.PlatformWallet,
		priorityFee:        deps.PriorityFee,
		feeReserveLamports: deps.FeeReserveLamports,
		logger:             deps.Logger.Named("launch"),
	}
}

// Launch runs the pipeline: preflight, mint keypair, metadata, creation
// transaction, fee-sharing configuration, ledger append.
//
// Fee-sharing failure after a confirmed creation is non-fatal: the token is
// recorded with FeeSharingConfigured=false and the split can be configured
// later. A token without a configured split directs all fees to the
// creator, which is a valid end state.
func (l *Launcher) Launch(ctx context.Context, params Params) (*Result, error) {
	if params.Name == "" || params.Symbol == "" || params.Image == "" {
		return nil, fmt.Errorf("name, symbol and image are required")
	}
	if params.InitialBuySOL < 0 {
		return nil, fmt.Errorf("initial buy amount cannot be negative")
	}
	if params.VanityPrefix != "" || params.VanitySuffix != "" {
		if err := vanity.ValidatePattern(params.VanityPrefix, params.VanitySuffix); err != nil {
			return nil, err
		}
	}

	// Balance preflight runs before the grinder or the metadata upload so
	// an underfunded wallet wastes no external work.
	if err := l.checkBalance(ctx, params.InitialBuySOL); err != nil {
		return nil, err
	}

	mintKey, err := l.resolveMintKeypair(ctx, params)
	if err != nil {
		return nil, err
	}
	mint := mintKey.PublicKey()

	metadataURI, err := l.publisher.Publish(ctx, metadata.Token{
		Name:        params.Name,
		Symbol:      params.Symbol,
		Description: params.Description,
		Image:       params.Image,
		Twitter:     params.Twitter,
		Telegram:    params.Telegram,
		Website:     params.Website,
	})
	if err != nil {
		return nil, err
	}

	signature, err := l.submitCreateTransaction(ctx, params, mintKey, metadataURI)
	if err != nil {
		return nil, err
	}

	shareholders, feeSharingConfigured := l.configureFeeSharing(ctx, mint)

	record := store.TokenRecord{
		Name:                 params.Name,
		Symbol:               params.Symbol,
		Mint:                 mint.String(),
		CreatedAt:            time.Now().UTC(),
		FeeSharingConfigured: feeSharingConfigured,
		Shareholders:         shareholders,
	}
	history, err := l.store.ReadHistory()
	if err != nil {
		return nil, fmt.Errorf("token created (%s) but history read failed: %w", mint.String(), err)
	}
	history.Tokens = append(history.Tokens, record)
	if err := l.store.WriteHistory(history); err != nil {
		return nil, fmt.Errorf("token created (%s) but history write failed: %w", mint.String(), err)
	}

	return &Result{
		Name:                 params.Name,
		Symbol:               params.Symbol,
		Mint:                 mint.String(),
		URL:                  "https://pump.fun/coin/" + mint.String(),
		FeeSharingConfigured: feeSharingConfigured,
		Signature:            signature.String(),
	}, nil
}

// checkBalance verifies the wallet covers the fee reserve plus the
// requested initial buy, and reports the exact shortfall when it does not.
func (l *Launcher) checkBalance(ctx context.Context, initialBuySOL float64) error {
	required := l.feeReserveLamports + uint64(math.Floor(math.Max(0, initialBuySOL)*pump.LamportsPerSOL))

	balance, err := l.client.GetBalance(ctx, l.wallet.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to get wallet balance: %w", err)
	}
	if balance >= required {
		return nil
	}

	have := float64(balance) / pump.LamportsPerSOL
	need := float64(required) / pump.LamportsPerSOL
	shortfall := float64(required-balance) / pump.LamportsPerSOL
	breakdown := fmt.Sprintf("~%g SOL for network fees", float64(l.feeReserveLamports)/pump.LamportsPerSOL)
	if initialBuySOL > 0 {
		breakdown += fmt.Sprintf(" + %g SOL for initial buy", initialBuySOL)
	}
	return fmt.Errorf("insufficient SOL balance for wallet %s: have %g SOL, need at least ~%g SOL (%s), short %g SOL",
		l.wallet.PublicKey.String(), have, need, breakdown, shortfall)
}

// resolveMintKeypair picks the mint keypair: an explicit user pattern is
// mandatory, the default brand-suffix grind is best-effort.
func (l *Launcher) resolveMintKeypair(ctx context.Context, params Params) (solana.PrivateKey, error) {
	if params.VanityPrefix != "" || params.VanitySuffix != "" {
		key, err := l.grinder.Grind(ctx, params.VanityPrefix, params.VanitySuffix, vanity.Options{IgnoreCase: true})
		if err != nil {
			return nil, err
		}
		return key, nil
	}

	if params.SkipPumpSuffix {
		return solana.NewRandomPrivateKey()
	}

	key, err := l.grinder.Grind(ctx, "", brandSuffix, vanity.Options{IgnoreCase: false})
	if err != nil {
		l.logger.Warn("Brand suffix grind failed, falling back to random keypair", zap.Error(err))
		return solana.NewRandomPrivateKey()
	}
	return key, nil
}

// submitCreateTransaction builds, signs, sends and confirms the creation
// transaction, with the optional initial buy in the same transaction.
func (l *Launcher) submitCreateTransaction(
	ctx context.Context,
	params Params,
	mintKey solana.PrivateKey,
	metadataURI string,
) (solana.Signature, error) {
	mint := mintKey.PublicKey()

	createIx, err := pump.BuildCreateInstruction(pump.CreateParams{
		Mint:    mint,
		Name:    params.Name,
		Symbol:  params.Symbol,
		URI:     metadataURI,
		Creator: l.wallet.PublicKey,
		User:    l.wallet.PublicKey,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build create instruction: %w", err)
	}

	builder := transaction.New(l.priorityFee).
		AddInstruction(createIx).
		AddSigner(l.wallet.PrivateKey).
		AddSigner(mintKey)

	if params.InitialBuySOL > 0 {
		buyIxs, err := l.buildInitialBuy(ctx, mint, params.InitialBuySOL)
		if err != nil {
			return solana.Signature{}, err
		}
		for _, ix := range buyIxs {
			builder.AddInstruction(ix)
		}
	}

	tx, err := builder.Build(ctx, l.client)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build create transaction: %w", err)
	}

	signature, err := l.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send create transaction: %w", err)
	}
	if err := l.client.WaitForConfirmation(ctx, signature); err != nil {
		return solana.Signature{}, fmt.Errorf("create transaction not confirmed: %w", err)
	}

	l.logger.Info("Token created",
		zap.String("mint", mint.String()),
		zap.String("signature", signature.String()))
	return signature, nil
}

// buildInitialBuy sizes the buy from the curve's initial virtual reserves
// and returns the ATA-create plus buy instructions.
func (l *Launcher) buildInitialBuy(ctx context.Context, mint solana.PublicKey, amountSOL float64) ([]solana.Instruction, error) {
	global, err := pump.FetchGlobalAccount(ctx, l.client)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch global account for initial buy: %w", err)
	}

	solLamports := uint64(math.Floor(amountSOL * pump.LamportsPerSOL))
	tokenAmount := pump.CalculateBuyTokenAmount(
		global.InitialVirtualTokenReserves,
		global.InitialVirtualSolReserves,
		solLamports,
		global.FeeBasisPoints,
	)
	if tokenAmount == 0 {
		return nil, fmt.Errorf("initial buy of %g SOL computes to zero tokens", amountSOL)
	}

	ataIx, err := l.wallet.CreateATAIdempotentInstruction(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to build ATA instruction: %w", err)
	}
	userATA, err := l.wallet.GetATA(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user ATA: %w", err)
	}

	// Allow 1% over the quoted cost to absorb rounding.
	maxSolCost := solLamports + solLamports/100

	buyIx, err := pump.BuildBuyInstruction(pump.BuyParams{
		Mint:         mint,
		User:         l.wallet.PublicKey,
		UserATA:      userATA,
		FeeRecipient: global.FeeRecipient,
		Amount:       tokenAmount,
		MaxSolCost:   maxSolCost,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build buy instruction: %w", err)
	}

	return []solana.Instruction{ataIx, buyIx}, nil
}

// configureFeeSharing submits the second transaction that splits creator
// fees 9000/1000 bps between creator and platform. Returns the recorded
// shareholder set and whether configuration succeeded.
func (l *Launcher) configureFeeSharing(ctx context.Context, mint solana.PublicKey) ([]store.Shareholder, bool) {
	feeConfigIx, err := pump.BuildCreateFeeConfigInstruction(l.wallet.PublicKey, mint)
	if err != nil {
		l.logger.Warn("Fee sharing config failed (can be configured later)", zap.Error(err))
		return []store.Shareholder{}, false
	}

	newShares := []pump.ShareEntry{
		{Address: l.wallet.PublicKey, ShareBps: 9000},
		{Address: l.platformWallet, ShareBps: 1000},
	}
	updateIx, err := pump.BuildUpdateFeeSharesInstruction(
		l.wallet.PublicKey,
		mint,
		[]solana.PublicKey{l.wallet.PublicKey},
		newShares,
	)
	if err != nil {
		l.logger.Warn("Fee sharing config failed (can be configured later)", zap.Error(err))
		return []store.Shareholder{}, false
	}

	tx, err := transaction.New(l.priorityFee).
		AddInstruction(feeConfigIx).
		AddInstruction(updateIx).
		AddSigner(l.wallet.PrivateKey).
		Build(ctx, l.client)
	if err != nil {
		l.logger.Warn("Fee sharing config failed (can be configured later)", zap.Error(err))
		return []store.Shareholder{}, false
	}

	signature, err := l.client.SendTransaction(ctx, tx)
	if err != nil {
		l.logger.Warn("Fee sharing config failed (can be configured later)", zap.Error(err))
		return []store.Shareholder{}, false
	}
	if err := l.client.WaitForConfirmation(ctx, signature); err != nil {
		l.logger.Warn("Fee sharing config not confirmed (can be configured later)", zap.Error(err))
		return []store.Shareholder{}, false
	}

	l.logger.Info("Fee sharing configured",
		zap.String("mint", mint.String()),
		zap.String("signature", signature.String()))

	return []store.Shareholder{
		{Address: l.wallet.PublicKey.String(), ShareBps: 9000, Label: "creator"},
		{Address: l.platformWallet.String(), ShareBps: 1000, Label: "shipmytoken"},
	}, true
}
