package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"roster/internal/audit"
	"roster/internal/export"
	"roster/internal/theme"
)

type exportOptions struct {
	out    string
	format string
}

func (o *exportOptions) bind(cmd *cobra.Command, allowCSV bool) {
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Output file (.csv or .xlsx); defaults to the export directory")
	if allowCSV {
		cmd.Flags().StringVar(&o.format, "format", "csv", "Format used for the default file name: csv or xlsx")
	}
}

// target resolves the output path, defaulting to a timestamped file in the
// configured export directory.
func (o *exportOptions) target(exportDir, name string, now time.Time) (string, error) {
	if out := strings.TrimSpace(o.out); out != "" {
		return filepath.Abs(out)
	}
	format := strings.ToLower(strings.TrimSpace(o.format))
	if format == "" {
		format = string(export.FormatXLSX)
	}
	switch export.Format(format) {
	case export.FormatCSV, export.FormatXLSX:
	default:
		return "", fmt.Errorf("unsupported export format %q (use csv or xlsx)", o.format)
	}
	file := fmt.Sprintf("%s-%s.%s", name, now.Format("20060102-150405"), format)
	return filepath.Join(exportDir, file), nil
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export records and the audit log to CSV or XLSX",
	}

	exportCmd.AddCommand(newExportTableCommand(ctx, "logs", "Export the audit log", func(rt *runtime, cmd *cobra.Command) (export.Table, error) {
		result, err := rt.service.Audit(audit.Filter{})
		if err != nil {
			return export.Table{}, err
		}
		return export.AuditTable(result.Entries), nil
	}))
	exportCmd.AddCommand(newExportTableCommand(ctx, "students", "Export all students", func(rt *runtime, cmd *cobra.Command) (export.Table, error) {
		rows, err := rt.service.Students.Rows(commandCtx(cmd))
		if err != nil {
			return export.Table{}, err
		}
		return export.StudentTable(rows), nil
	}))
	exportCmd.AddCommand(newExportTableCommand(ctx, "courses", "Export all courses", func(rt *runtime, cmd *cobra.Command) (export.Table, error) {
		courses, err := rt.service.Courses.Rows(commandCtx(cmd))
		if err != nil {
			return export.Table{}, err
		}
		return export.CourseTable(courses), nil
	}))
	exportCmd.AddCommand(newExportAllCommand(ctx))

	return exportCmd
}

func newExportTableCommand(ctx *commandContext, name, short string, build func(*runtime, *cobra.Command) (export.Table, error)) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				path, err := opts.target(rt.cfg.Paths.ExportDir, name, time.Now())
				if err != nil {
					return err
				}
				table, err := build(rt, cmd)
				if err != nil {
					return err
				}
				if err := export.WriteFile(path, table); err != nil {
					return fmt.Errorf("export %s: %w", name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ctx.themeFor(cmd).Paint(theme.KindOK,
					fmt.Sprintf("Exported %d row(s) to %s", len(table.Rows), path)))
				return nil
			})
		},
	}
	opts.bind(cmd, true)
	return cmd
}

func newExportAllCommand(ctx *commandContext) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Export students, courses and the audit log as one workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				path, err := opts.target(rt.cfg.Paths.ExportDir, "roster", time.Now())
				if err != nil {
					return err
				}
				c := commandCtx(cmd)
				students, err := rt.service.Students.Rows(c)
				if err != nil {
					return err
				}
				courses, err := rt.service.Courses.Rows(c)
				if err != nil {
					return err
				}
				entries, err := rt.service.Audit(audit.Filter{})
				if err != nil {
					return err
				}
				if err := export.WriteWorkbookFile(path,
					export.StudentTable(students),
					export.CourseTable(courses),
					export.AuditTable(entries.Entries),
				); err != nil {
					return fmt.Errorf("export workbook: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ctx.themeFor(cmd).Paint(theme.KindOK,
					fmt.Sprintf("Exported %d student(s), %d course(s) and %d audit entries to %s",
						len(students), len(courses), len(entries.Entries), path)))
				return nil
			})
		},
	}
	opts.bind(cmd, false)
	return cmd
}
