package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/audit"
	"roster/internal/theme"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}
	auditCmd.AddCommand(newAuditListCommand(ctx))
	return auditCmd
}

func newAuditListCommand(ctx *commandContext) *cobra.Command {
	var (
		actionFlag string
		entity     string
		key        string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, most recent last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := audit.ParseAction(actionFlag)
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must be zero or positive, got %d", limit)
			}
			return ctx.withService(func(rt *runtime) error {
				result, err := rt.service.Audit(audit.Filter{
					Action: action,
					Entity: entity,
					Key:    key,
					Limit:  limit,
				})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.AuditResponse{
						Entries: api.FromAuditEntries(result.Entries),
						Skipped: result.Skipped,
					})
				}
				out := cmd.OutOrStdout()
				th := ctx.themeFor(cmd)
				if len(result.Entries) == 0 {
					fmt.Fprintln(out, th.Paint(theme.KindInfo, "No audit entries"))
				} else {
					rows := make([][]string, 0, len(result.Entries))
					for _, e := range result.Entries {
						rows = append(rows, []string{
							e.Time.Local().Format(time.DateTime),
							th.Paint(actionKind(e.Action), string(e.Action)),
							e.Entity,
							strconv.FormatInt(e.RecordID, 10),
							e.Key,
							valueOrDash(e.Summary),
							valueOrDash(e.Actor),
						})
					}
					fmt.Fprintln(out, renderTable(th,
						[]string{"Time", "Action", "Entity", "ID", "Key", "Summary", "Actor"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
					))
				}
				if result.Skipped > 0 {
					fmt.Fprintln(out, th.Paint(theme.KindWarn,
						fmt.Sprintf("%d malformed line(s) skipped in %s", result.Skipped, rt.cfg.AuditLogPath())))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&actionFlag, "action", "", "Only show CREATE, UPDATE or DELETE entries")
	cmd.Flags().StringVar(&entity, "entity", "", "Only show student or course entries")
	cmd.Flags().StringVar(&key, "key", "", "Only show entries for this student number or course code")
	cmd.Flags().IntVar(&limit, "limit", 50, "Show at most this many recent entries (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func actionKind(action audit.Action) theme.Kind {
	switch action {
	case audit.ActionCreate:
		return theme.KindOK
	case audit.ActionDelete:
		return theme.KindError
	default:
		return theme.KindWarn
	}
}
