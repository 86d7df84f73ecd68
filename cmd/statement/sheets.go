package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/statement-press/internal/cli"
	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/config"
	"github.com/Veraticus/statement-press/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportSheetsCmd() *cobra.Command {
	var flags *statementFlags

	cmd := &cobra.Command{
		Use:   "export-sheets [payload.json | -]",
		Short: "Export the laid-out statement pages to Google Sheets",
		Long: `Write every laid-out row of a statement, page by page, to a tab of the
configured spreadsheet. The tab is named after the statement and replaced on
each export.`,
		Args: statementArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tab, _ := cmd.Flags().GetString("tab")

			doc, err := loadDocument(cmd, args, flags)
			if err != nil {
				return err
			}
			composer, err := newComposer(doc, time.Now())
			if err != nil {
				return err
			}
			pages, err := composer.Pages()
			if err != nil {
				return err
			}

			cfg, err := config.LoadSheetsConfig()
			if err != nil {
				return common.NewUserError("Google Sheets is not configured (run auth-sheets first)", err)
			}
			writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
			if err != nil {
				return err
			}

			if tab == "" {
				tab = doc.PDFName
			}
			id, err := writer.Export(ctx, tab, pages, len(composer.Schedule().Columns))
			if err != nil {
				return fmt.Errorf("failed to export to Google Sheets: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess( //nolint:forbidigo // User-facing output
				fmt.Sprintf("Exported %d page(s) to https://docs.google.com/spreadsheets/d/%s", len(pages), id)))
			return nil
		},
	}

	flags = addStatementFlags(cmd)
	cmd.Flags().String("tab", "", "sheet tab name (default: the statement name)")
	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth-sheets",
		Short: "Authorize Google Sheets export",
		Long: `Run the Google OAuth2 consent flow and save the token used by export-sheets.

Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID
and GOOGLE_SHEETS_CLIENT_SECRET).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listen, _ := cmd.Flags().GetString("listen")

			cfg := sheets.DefaultConfig()
			cfg.ClientID = viper.GetString("sheets.client_id")
			cfg.ClientSecret = viper.GetString("sheets.client_secret")
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				return common.NewUserError("sheets.client_id and sheets.client_secret are required", common.ErrMissingConfig)
			}

			tokenFile := config.ExpandPath(viper.GetString("sheets.token_file"))
			if tokenFile == "" {
				tokenFile = config.ExpandPath("~/.config/statement/sheets-token.json")
			}

			token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenFile:    tokenFile,
				ListenAddr:   listen,
			})
			if err != nil {
				return fmt.Errorf("google authentication failed: %w", err)
			}

			details := cli.KeyValue(
				[2]string{"Token file", tokenFile},
				[2]string{"Refresh token", fmt.Sprintf("%t", token.RefreshToken != "")},
			)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Google Sheets authorized")) //nolint:forbidigo // User-facing output
			fmt.Fprintln(out, details)                                       //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().String("listen", "localhost:8080", "address for the OAuth callback")
	return cmd
}
