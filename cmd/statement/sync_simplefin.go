package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/statement-press/internal/cli"
	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/config"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/simplefin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func syncSimpleFINCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-simplefin",
		Short: "Fetch an account's ledger through a SimpleFIN bridge",
		Long: `Fetch posted transactions through SimpleFIN and store them for rendering.

The first run claims the setup token in simplefin.token and saves the access
URL to simplefin.state_file; later runs reuse it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			holderName, _ := cmd.Flags().GetString("holder-name")
			storeAs, _ := cmd.Flags().GetString("store-as")

			start, end, err := syncRange(cmd, time.Now())
			if err != nil {
				return err
			}

			client, err := simplefin.NewClient(ctx, simplefin.Config{
				Token:     viper.GetString("simplefin.token"),
				AccessURL: viper.GetString("simplefin.access_url"),
				StateFile: config.ExpandPath(viper.GetString("simplefin.state_file")),
				AccountID: viper.GetString("simplefin.account_id"),
			}, slog.Default())
			if err != nil {
				if common.IsConfigError(err) {
					return common.NewUserError("SimpleFIN is not configured", err)
				}
				return err
			}

			accounts, err := client.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list SimpleFIN accounts: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			var acct simplefin.Account
			for _, a := range accounts {
				if a.ID == viper.GetString("simplefin.account_id") || len(accounts) == 1 {
					acct = a
				}
			}
			if storeAs == "" {
				storeAs = acct.ID
			}

			holder := model.Holder{Name: holderName, Product: acct.Name}
			n, err := syncLedger(ctx, client, store, storeAs, acct.Currency, holder, start, end)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess( //nolint:forbidigo // User-facing output
				fmt.Sprintf("Synced %d transactions for %s (%s to %s)",
					n, storeAs, start.Format(time.DateOnly), end.Format(time.DateOnly))))
			return nil
		},
	}

	cmd.Flags().String("account-id", "", "SimpleFIN account ID (default: simplefin.account_id)")
	cmd.Flags().String("from", "", "first date to fetch (YYYY-MM-DD, default: 90 days ago)")
	cmd.Flags().String("to", "", "last date to fetch (YYYY-MM-DD, default: today)")
	cmd.Flags().String("holder-name", "", "Holder name for a newly seen account")
	cmd.Flags().String("store-as", "", "account number to store the ledger under (default: the SimpleFIN account ID)")
	_ = viper.BindPFlag("simplefin.account_id", cmd.Flags().Lookup("account-id"))

	return cmd
}
