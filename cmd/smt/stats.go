package main

import (
	"github.com/spf13/cobra"

	"github.com/shipmytoken/smt/internal/stats"
)

func newStatsCommand() *cobra.Command {
	var recap bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report portfolio state for every launched token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, func(a *app) (any, error) {
				w, err := a.loadWallet()
				if err != nil {
					return nil, err
				}
				reporter := stats.New(a.client, w.PublicKey, a.store, a.log.WithOperation("stats"))
				if recap {
					return reporter.DailyRecap(cmd.Context())
				}
				return reporter.Build(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVar(&recap, "daily-recap", false, "rate-limited daily recap; inside the 24h window no chain reads happen")
	return cmd
}
