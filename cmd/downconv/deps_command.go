package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"downconv/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Report external tools and output directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			statuses := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(statuses))
			var missingRequired []string
			for _, status := range statuses {
				version := "-"
				state := "ok"
				if status.Available {
					if probe := preflight.ProbeVersion(cmd.Context(), status.Command, preflight.VersionFlag(status.Name)); probe.Found && probe.Version != "" {
						version = probe.Version
					}
				} else if status.Optional {
					state = "optional, missing"
				} else {
					state = "missing"
					missingRequired = append(missingRequired, status.Name)
				}
				shown := status.Command
				if status.Path != "" {
					shown = status.Path
				}
				rows = append(rows, []string{status.Name, shown, version, state})
			}
			fmt.Fprint(out, renderTable([]string{"Tool", "Path", "Version", "Status"}, rows))

			fmt.Fprintln(out, "Directories:")
			for _, res := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !res.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(res.Name, kind, res.Detail, colorize))
			}
			if len(missingRequired) > 0 {
				fmt.Fprintln(out, renderStatusLine("Missing tools", statusWarn, strings.Join(missingRequired, ", "), colorize))
			}
			return nil
		},
	}
}
