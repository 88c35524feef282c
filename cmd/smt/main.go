// Command smt launches bonding-curve tokens and manages their fee splits.
//
// Every command prints exactly one JSON object to stdout with a "success"
// field; logs go to stderr and a rotated file under the data directory.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	solanaclient "github.com/shipmytoken/smt/internal/blockchain/solana"
	"github.com/shipmytoken/smt/internal/config"
	"github.com/shipmytoken/smt/internal/logger"
	"github.com/shipmytoken/smt/internal/store"
	"github.com/shipmytoken/smt/internal/wallet"
)

var (
	configPath string
	debugMode  bool
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "smt",
		Short:         "Launch tokens on the pump.fun bonding curve and manage creator fees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.AddCommand(
		newSetupCommand(),
		newLaunchCommand(),
		newFeesCommand(),
		newStatsCommand(),
	)
	return root
}

// app holds the wiring shared by every command.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *store.Store
	client *solanaclient.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = filepath.Join(cfg.DataDir, "smt.log")
	logCfg.Development = debugMode || cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  store.New(cfg.DataDir, log.Logger),
		client: solanaclient.NewClient(cfg.RPCURL, log.Logger),
	}, nil
}

func (a *app) close() {
	if a != nil && a.log != nil {
		_ = a.log.Sync()
	}
}

// loadWallet reads the stored private key. The env var takes precedence
// over the persisted one.
func (a *app) loadWallet() (*wallet.Wallet, error) {
	key, err := a.store.Key("SOLANA_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("no wallet configured, run \"smt setup\" first")
	}
	return wallet.New(key)
}

func (a *app) platformWallet() (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(a.cfg.PlatformWallet)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid platform wallet in configuration: %w", err)
	}
	return pk, nil
}

func (a *app) feeReserveLamports() uint64 {
	return uint64(a.cfg.FeeReserveSOL * 1e9)
}

// runCommand wires the app, runs op, and prints the single result object.
// Failures are printed as {"success":false,...} and surface a non-zero
// exit code through the returned error.
func runCommand(cmd *cobra.Command, op func(a *app) (any, error)) error {
	a, err := newApp()
	if err != nil {
		emitError(err)
		return err
	}
	defer a.close()

	payload, err := op(a)
	if err != nil {
		a.log.Error("Command failed", zap.String("command", cmd.Name()), zap.Error(err))
		emitError(err)
		return err
	}
	return emitResult(payload)
}

func emitResult(payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		emitError(err)
		return err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		emitError(err)
		return err
	}
	out["success"] = true
	return writeJSON(out)
}

func emitError(err error) {
	_ = writeJSON(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
