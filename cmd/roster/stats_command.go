package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show student and course totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				stats, err := rt.service.Stats(commandCtx(cmd))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				th := ctx.themeFor(cmd)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Students:   %d\n", stats.Students)
				fmt.Fprintf(out, "Courses:    %d\n", stats.Courses)
				fmt.Fprintf(out, "Unassigned: %d\n", stats.Unassigned)
				if len(stats.Enrollment) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(stats.Enrollment))
				for _, e := range stats.Enrollment {
					rows = append(rows, []string{e.Code, e.Name, strconv.Itoa(e.Students)})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(th,
					[]string{"Code", "Course", "Students"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
