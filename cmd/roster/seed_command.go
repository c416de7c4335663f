package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"roster/internal/seed"
	"roster/internal/theme"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var file string
	var skipExisting bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import courses and students from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(file)
			if path == "" {
				return errors.New("--file is required")
			}
			doc, err := seed.LoadFile(path)
			if err != nil {
				return err
			}
			return ctx.withService(func(rt *runtime) error {
				importer := seed.NewImporter(rt.service, rt.logger)
				report, importErr := importer.Import(commandCtx(cmd), doc, seed.Options{SkipExisting: skipExisting})
				if jsonOutput && importErr == nil {
					return writeJSON(cmd, report)
				}
				th := ctx.themeFor(cmd)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine(th, "Courses", theme.KindInfo,
					fmt.Sprintf("%d created, %d skipped", report.CoursesCreated, report.CoursesSkipped)))
				fmt.Fprintln(out, renderStatusLine(th, "Students", theme.KindInfo,
					fmt.Sprintf("%d created, %d skipped", report.StudentsCreated, report.StudentsSkipped)))
				if importErr != nil {
					return fmt.Errorf("seed import stopped: %w", importErr)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip rows whose student number or course code already exists")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the import report as JSON")
	return cmd
}
