package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/statement-press/internal/cli"
	"github.com/spf13/cobra"
)

func planCmd() *cobra.Command {
	var flags *statementFlags

	cmd := &cobra.Command{
		Use:   "plan [payload.json | -]",
		Short: "Show how a statement splits into pages",
		Args:  statementArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd, args, flags)
			if err != nil {
				return err
			}
			composer, err := newComposer(doc, time.Now())
			if err != nil {
				return err
			}

			plan := composer.Plan()
			stmt := composer.Statement()
			out := cmd.OutOrStdout()

			overview := cli.KeyValue(
				[2]string{"Profile", stmt.Profile.Name},
				[2]string{"Variant", stmt.Variant().String()},
				[2]string{"Records", strconv.Itoa(plan.Total)},
				[2]string{"Pages", strconv.Itoa(plan.TotalPages)},
			)

			fmt.Fprintln(out, cli.FormatTitle("🧾 "+doc.PDFName)) //nolint:forbidigo // User-facing output
			fmt.Fprintln(out, overview)                           //nolint:forbidigo // User-facing output

			fmt.Fprintln(out) //nolint:forbidigo // User-facing output

			for i := 0; i < plan.TotalPages; i++ {
				page := plan.Page(i)
				line := fmt.Sprintf("page %d/%d  records %d-%d (%d)",
					page.Index+1, plan.TotalPages, page.Start+1, page.End(), page.Count)
				if page.RenderSummary() {
					line += "  + summary"
				}
				fmt.Fprintln(out, "  "+line) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}

	flags = addStatementFlags(cmd)
	return cmd
}
