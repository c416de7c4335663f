package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"roster/internal/preflight"
	"roster/internal/records"
	"roster/internal/theme"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the database and the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var results []preflight.Result
			store, openErr := records.Open(cfg)
			if openErr != nil {
				results = preflight.RunAll(commandCtx(cmd), cfg, nil, openErr)
			} else {
				defer store.Close()
				results = preflight.RunAll(commandCtx(cmd), cfg, store, nil)
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				th := ctx.themeFor(cmd)
				out := cmd.OutOrStdout()
				for _, line := range renderSectionHeader(th, "Roster doctor") {
					fmt.Fprintln(out, line)
				}
				configDetail := ctx.configPath
				if !ctx.configExists {
					configDetail += " (not found, defaults used)"
				}
				fmt.Fprintln(out, renderStatusLine(th, "Config", theme.KindInfo, configDetail))
				for _, r := range results {
					fmt.Fprintln(out, renderStatusLine(th, r.Name, resultKind(r), r.Detail))
				}
			}
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func resultKind(r preflight.Result) theme.Kind {
	switch r.Status() {
	case "ERROR":
		return theme.KindError
	case "WARN":
		return theme.KindWarn
	default:
		return theme.KindOK
	}
}
