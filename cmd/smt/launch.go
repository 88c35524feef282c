package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipmytoken/smt/internal/launch"
	"github.com/shipmytoken/smt/internal/metadata"
	"github.com/shipmytoken/smt/internal/vanity"
)

func newLaunchCommand() *cobra.Command {
	var params launch.Params

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Create a token on the bonding curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, func(a *app) (any, error) {
				return runLaunch(cmd, a, params)
			})
		},
	}

	cmd.Flags().StringVar(&params.Name, "name", "", "token name (required)")
	cmd.Flags().StringVar(&params.Symbol, "symbol", "", "token symbol (required)")
	cmd.Flags().StringVar(&params.Image, "image", "", "token image, local path or URL (required)")
	cmd.Flags().StringVar(&params.Description, "description", "", "token description")
	cmd.Flags().StringVar(&params.Twitter, "twitter", "", "twitter link")
	cmd.Flags().StringVar(&params.Telegram, "telegram", "", "telegram link")
	cmd.Flags().StringVar(&params.Website, "website", "", "website link")
	cmd.Flags().Float64Var(&params.InitialBuySOL, "initial-buy", 0, "SOL to spend buying the token at launch")
	cmd.Flags().StringVar(&params.VanityPrefix, "vanity-prefix", "", "grind a mint address starting with this")
	cmd.Flags().StringVar(&params.VanitySuffix, "vanity-suffix", "", "grind a mint address ending with this")
	cmd.Flags().BoolVar(&params.SkipPumpSuffix, "skip-pump-suffix", false, "use a random mint address instead of grinding the pump suffix")
	return cmd
}

func runLaunch(cmd *cobra.Command, a *app, params launch.Params) (any, error) {
	if params.Name == "" || params.Symbol == "" || params.Image == "" {
		return nil, fmt.Errorf("--name, --symbol and --image are required")
	}

	w, err := a.loadWallet()
	if err != nil {
		return nil, err
	}
	platform, err := a.platformWallet()
	if err != nil {
		return nil, err
	}

	opLog := a.log.WithOperation("launch")

	launcher := launch.New(launch.Deps{
		Client:             a.client,
		Wallet:             w,
		Grinder:            vanity.NewGrinder(a.cfg.GrinderBinary, time.Duration(a.cfg.VanityTimeout)*time.Second, opLog),
		Publisher:          metadata.NewPublisher(a.cfg.IPFSEndpoint, opLog),
		Store:              a.store,
		PlatformWallet:     platform,
		PriorityFee:        a.cfg.PriorityFee,
		FeeReserveLamports: a.feeReserveLamports(),
		Logger:             opLog,
	})

	return launcher.Launch(cmd.Context(), params)
}
