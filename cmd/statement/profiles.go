package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Veraticus/statement-press/internal/cli"
	"github.com/Veraticus/statement-press/internal/config"
	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the layout profiles",
		Long: `List the built-in layout profiles plus any defined under profiles.<name>
in the config file, with the overrides applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range profileNames() {
				p, err := config.LoadProfile(name)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.RenderBox(p.Name, describeProfile(p))) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}
}

// profileNames lists built-in profiles followed by config-only ones.
func profileNames() []string {
	names := engine.ProfileNames()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	custom := viper.GetStringMap("profiles")
	extra := make([]string, 0, len(custom))
	for n := range custom {
		if !seen[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func describeProfile(p engine.Profile) string {
	money := "cents"
	if p.WholeUnits {
		money = "whole units"
	}
	def := viper.GetString("defaults.profile." + p.Variant.String())
	if def == "" {
		def = engine.DefaultProfileFor(p.Variant).Name
	}

	return cli.KeyValue(
		[2]string{"Variant", p.Variant.String()},
		[2]string{"Default", strconv.FormatBool(p.Name == def)},
		[2]string{"Page", fmt.Sprintf("%.0f x %.0f mm", p.PageWidth, p.PageHeight)},
		[2]string{"Rows per page", fmt.Sprintf("%d first, %d later", p.FirstPageCapacity, p.LaterPageCapacity)},
		[2]string{"Row height", fmt.Sprintf("%.0f mm", p.RowHeight)},
		[2]string{"Table top", fmt.Sprintf("%.0f mm first, %.0f mm later", p.FirstTableTop, p.LaterTableTop)},
		[2]string{"Money", money},
	)
}
