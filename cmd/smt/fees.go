package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipmytoken/smt/internal/fees"
)

func newFeesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Claim creator fees and manage the fee split",
	}
	cmd.AddCommand(newFeesClaimCommand(), newFeesUpdateCommand())
	return cmd
}

func newFeesClaimCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "claim",
		Short: "Distribute accrued creator fees for every launched token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, func(a *app) (any, error) {
				engine, err := newFeeEngine(a)
				if err != nil {
					return nil, err
				}
				return engine.Claim(cmd.Context())
			})
		},
	}
}

func newFeesUpdateCommand() *cobra.Command {
	var (
		mint   string
		shares string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a token's fee split",
		Long:  "Replace a token's fee split with a comma-separated list of address:bps pairs. Shares must sum to 10000 basis points; the platform wallet is added at 1000 bps when omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, func(a *app) (any, error) {
				if mint == "" || shares == "" {
					return nil, fmt.Errorf("--mint and --shares are required")
				}
				engine, err := newFeeEngine(a)
				if err != nil {
					return nil, err
				}
				return engine.UpdateShares(cmd.Context(), mint, shares)
			})
		},
	}
	cmd.Flags().StringVar(&mint, "mint", "", "token mint address (required)")
	cmd.Flags().StringVar(&shares, "shares", "", "address:bps pairs, comma separated (required)")
	return cmd
}

func newFeeEngine(a *app) (*fees.Engine, error) {
	w, err := a.loadWallet()
	if err != nil {
		return nil, err
	}
	platform, err := a.platformWallet()
	if err != nil {
		return nil, err
	}
	return fees.New(fees.Deps{
		Client:         a.client,
		Wallet:         w,
		Store:          a.store,
		PlatformWallet: platform,
		PriorityFee:    a.cfg.PriorityFee,
		Logger:         a.log.WithOperation("fees"),
	}), nil
}
