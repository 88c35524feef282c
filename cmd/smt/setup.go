package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shipmytoken/smt/internal/wallet"
)

func newSetupCommand() *cobra.Command {
	var (
		export bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Generate a wallet keypair and store it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, func(a *app) (any, error) {
				if export {
					return exportWallet(a)
				}
				return setupWallet(a, force)
			})
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "print the stored private key instead of generating one")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing wallet")
	return cmd
}

func exportWallet(a *app) (any, error) {
	w, err := a.loadWallet()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"wallet":     w.PublicKey.String(),
		"privateKey": w.ExportBase58(),
	}, nil
}

func setupWallet(a *app, force bool) (any, error) {
	cfg, err := a.store.ReadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.PrivateKey != "" && !force {
		return nil, fmt.Errorf("a wallet is already configured; use --export to print it or --force to replace it")
	}

	w, err := wallet.Generate()
	if err != nil {
		return nil, err
	}

	cfg.PrivateKey = w.ExportBase58()
	if err := a.store.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to persist wallet: %w", err)
	}

	a.log.Info("Wallet configured",
		zap.String("wallet", w.PublicKey.String()),
		zap.String("data_dir", a.cfg.DataDir))

	return map[string]any{
		"wallet":  w.PublicKey.String(),
		"dataDir": a.cfg.DataDir,
	}, nil
}
