package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"roster/internal/config"
	"roster/internal/theme"
)

type themeView struct {
	Active      string         `json:"active"`
	ToggleLabel string         `json:"toggleLabel"`
	Palette     config.Palette `json:"palette"`
	ConfigPath  string         `json:"configPath"`
}

func newThemeCommand(ctx *commandContext) *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or switch the display theme",
	}
	themeCmd.AddCommand(newThemeShowCommand(ctx))
	themeCmd.AddCommand(newThemeToggleCommand(ctx))
	return themeCmd
}

func newThemeShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active theme and its palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view := themeView{
				Active:      cfg.Display.Theme,
				ToggleLabel: theme.ToggleLabel(cfg.Display.Theme),
				Palette:     cfg.ActivePalette(),
				ConfigPath:  ctx.configPath,
			}
			if jsonOutput {
				return writeJSON(cmd, view)
			}
			th := ctx.themeFor(cmd)
			out := cmd.OutOrStdout()
			for _, line := range renderSectionHeader(th, "Theme "+view.Active) {
				fmt.Fprintln(out, line)
			}
			p := view.Palette
			fmt.Fprintln(out, renderStatusLine(th, "Table style", theme.KindInfo, p.TableStyle))
			fmt.Fprintln(out, renderStatusLine(th, "Header", theme.KindInfo, valueOrDash(p.HeaderColor)))
			fmt.Fprintln(out, renderStatusLine(th, "Info", theme.KindInfo, valueOrDash(p.InfoColor)))
			fmt.Fprintln(out, renderStatusLine(th, "OK", theme.KindOK, valueOrDash(p.OKColor)))
			fmt.Fprintln(out, renderStatusLine(th, "Warn", theme.KindWarn, valueOrDash(p.WarnColor)))
			fmt.Fprintln(out, renderStatusLine(th, "Error", theme.KindError, valueOrDash(p.ErrorColor)))
			fmt.Fprintf(out, "\nToggle: %s\n", view.ToggleLabel)
			fmt.Fprintf(out, "Available table styles: %s\n", strings.Join(theme.StyleNames(), ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newThemeToggleCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between the light and dark themes and save the choice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := theme.Toggle(ctx.configPath, cfg)
			if err != nil {
				return err
			}
			ctx.configExists = true
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			th := ctx.themeFor(cmd)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, th.Paint(theme.KindOK, fmt.Sprintf("Theme switched to %s", result.Active)))
			fmt.Fprintf(out, "Saved to %s\n", result.ConfigPath)
			fmt.Fprintf(out, "Toggle: %s\n", result.ToggleLabel)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
