package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/statement-press/internal/cli"
	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/config"
	"github.com/Veraticus/statement-press/internal/render/pdf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func renderCmd() *cobra.Command {
	var flags *statementFlags

	cmd := &cobra.Command{
		Use:   "render [payload.json | -]",
		Short: "Render a statement to PDF",
		Long: `Lay out a statement and write it as a PDF.

The statement is read from a JSON payload file (or stdin with -), or from an
account previously stored with import-ofx or sync-plaid.

Examples:
  # Render a payload with its variant's default profile
  statement render member-00019.json

  # Force the money-market profile and write somewhere else
  statement render member-00019.json --profile money-market --output-dir ~/statements

  # Render a stored account for January
  statement render --account 001-00019-001 --from 2024-01-01 --to 2024-01-31`,
		Args: statementArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, flags)
		},
	}

	flags = addStatementFlags(cmd)
	cmd.Flags().StringP("output-dir", "o", "", "directory for the rendered PDF (default: output.dir)")
	cmd.Flags().String("output", "", "exact output file, overrides --output-dir")
	cmd.Flags().Bool("no-progress", false, "hide the page progress bar")
	cmd.Flags().Bool("no-history", false, "do not record the run in the database")
	_ = viper.BindPFlag("output.dir", cmd.Flags().Lookup("output-dir"))

	return cmd
}

func runRender(cmd *cobra.Command, args []string, flags *statementFlags) error {
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	output, _ := cmd.Flags().GetString("output")

	doc, err := loadDocument(cmd, args, flags)
	if err != nil {
		return err
	}

	now := time.Now()
	composer, err := newComposer(doc, now)
	if err != nil {
		return err
	}

	if output == "" {
		output = config.OutputPath(viper.GetString("output.dir"), doc.PDFName)
	}

	pages, err := composer.Pages()
	if err != nil {
		return common.NewUserError("cannot lay out statement", err)
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Statement rendering")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	var opts []pdf.Option
	if !noProgress {
		bar := cli.NewPageProgress(cmd.ErrOrStderr(), len(pages), "🧾 Rendering pages")
		defer bar.Finish()
		opts = append(opts, pdf.WithProgress(bar.Page))
	}

	slog.Info("Rendering statement",
		"pdf_name", doc.PDFName,
		"profile", composer.Statement().Profile.Name,
		"records", composer.Plan().Total,
		"pages", len(pages),
		"output", output)

	renderer := pdf.NewRenderer(slog.Default(), opts...)
	err = renderer.RenderFile(ctx, output, pdf.Document{
		Title:   doc.PDFName,
		Author:  composer.Statement().Holder.Name,
		Created: now,
		Profile: composer.Statement().Profile,
		Pages:   pages,
	})
	if err != nil {
		if handler.WasInterrupted() || errors.Is(err, ctx.Err()) {
			return common.NewUserError("rendering interrupted", err)
		}
		return fmt.Errorf("failed to render %s: %w", output, err)
	}

	if !noHistory {
		recordRun(ctx, composer, output)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d page(s) to %s", len(pages), output))) //nolint:forbidigo // User-facing output
	return nil
}
