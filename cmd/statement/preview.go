package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/render/terminal"
	"github.com/Veraticus/statement-press/internal/tui"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var flags *statementFlags

	cmd := &cobra.Command{
		Use:   "preview [payload.json | -]",
		Short: "Print the laid-out statement pages to the terminal",
		Args:  statementArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			width, _ := cmd.Flags().GetInt("width")

			doc, err := loadDocument(cmd, args, flags)
			if err != nil {
				return err
			}
			composer, err := newComposer(doc, time.Now())
			if err != nil {
				return err
			}

			preview := terminal.NewPreview(composer.Schedule().Columns, width)
			if page > 0 {
				if page > composer.TotalPages() {
					return common.NewUserError(fmt.Sprintf("statement has %d page(s)", composer.TotalPages()), nil)
				}
				plan, err := composer.Page(page - 1)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), preview.Page(plan)) //nolint:forbidigo // User-facing output
				return nil
			}

			pages, err := composer.Pages()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), preview.Document(pages)) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	flags = addStatementFlags(cmd)
	cmd.Flags().Int("page", 0, "only show this page (1-based)")
	cmd.Flags().Int("width", 120, "terminal width")
	return cmd
}

func browseCmd() *cobra.Command {
	var flags *statementFlags

	cmd := &cobra.Command{
		Use:   "browse [payload.json | -]",
		Short: "Page through a statement interactively",
		Args:  statementArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			altScreen, _ := cmd.Flags().GetBool("alt-screen")

			doc, err := loadDocument(cmd, args, flags)
			if err != nil {
				return err
			}
			composer, err := newComposer(doc, time.Now())
			if err != nil {
				return err
			}

			return tui.Run(cmd.Context(), composer,
				tui.WithTitle("🧾 "+doc.PDFName),
				tui.WithAltScreen(altScreen))
		},
	}

	flags = addStatementFlags(cmd)
	cmd.Flags().Bool("alt-screen", true, "use the terminal's alternate screen")
	return cmd
}
