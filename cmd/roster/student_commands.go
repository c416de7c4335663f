package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/theme"
)

type studentFlags struct {
	studentNo string
	first     string
	last      string
	name      string
	email     string
	course    string
}

func (f *studentFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.studentNo, "no", "", "Student number")
	cmd.Flags().StringVar(&f.first, "first", "", "First name")
	cmd.Flags().StringVar(&f.last, "last", "", "Last name")
	cmd.Flags().StringVar(&f.name, "name", "", "Full name, split into first and last name")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.course, "course", "", "Course id, code or name")
}

func (f *studentFlags) input() api.StudentInput {
	return api.StudentInput{
		StudentNo: f.studentNo,
		FirstName: f.first,
		LastName:  f.last,
		FullName:  f.name,
		Email:     f.email,
		Course:    api.Text(f.course),
	}
}

// overlay applies only the flags the user set onto in.
func (f *studentFlags) overlay(cmd *cobra.Command, in api.StudentInput) api.StudentInput {
	changed := cmd.Flags().Changed
	if changed("no") {
		in.StudentNo = f.studentNo
	}
	if changed("name") {
		in.FirstName, in.LastName = "", ""
		in.FullName = f.name
	}
	if changed("first") {
		in.FirstName = f.first
	}
	if changed("last") {
		in.LastName = f.last
	}
	if changed("email") {
		in.Email = f.email
	}
	if changed("course") {
		in.Course = api.Text(f.course)
	}
	return in
}

func newStudentCommand(ctx *commandContext) *cobra.Command {
	studentCmd := &cobra.Command{
		Use:     "student",
		Aliases: []string{"students"},
		Short:   "Manage students",
	}

	studentCmd.AddCommand(newStudentAddCommand(ctx))
	studentCmd.AddCommand(newStudentListCommand(ctx))
	studentCmd.AddCommand(newStudentShowCommand(ctx))
	studentCmd.AddCommand(newStudentUpdateCommand(ctx))
	studentCmd.AddCommand(newStudentDeleteCommand(ctx))
	studentCmd.AddCommand(newStudentSearchCommand(ctx))

	return studentCmd
}

func newStudentAddCommand(ctx *commandContext) *cobra.Command {
	var flags studentFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				student, err := rt.service.Students.Add(commandCtx(cmd), flags.input())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, student)
				}
				th := ctx.themeFor(cmd)
				fmt.Fprintln(cmd.OutOrStdout(), th.Paint(theme.KindOK,
					fmt.Sprintf("Added student %s (%s) with id %d", student.StudentNo, student.FullName, student.ID)))
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStudentListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				students, err := rt.service.Students.List(commandCtx(cmd))
				if err != nil {
					return err
				}
				return printStudents(cmd, ctx, students, jsonOutput, "No students recorded")
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStudentSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search students by number, name, email or course",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			return ctx.withService(func(rt *runtime) error {
				students, err := rt.service.Students.Search(commandCtx(cmd), term)
				if err != nil {
					return err
				}
				return printStudents(cmd, ctx, students, jsonOutput, fmt.Sprintf("No students match %q", term))
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStudentShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <student-no|id>",
		Short: "Show one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				student, err := rt.service.Students.Lookup(commandCtx(cmd), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, student)
				}
				printStudentDetail(cmd, ctx.themeFor(cmd), student)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStudentUpdateCommand(ctx *commandContext) *cobra.Command {
	var flags studentFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "update <student-no|id>",
		Short: "Update a student; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				c := commandCtx(cmd)
				existing, err := rt.service.Students.Lookup(c, args[0])
				if err != nil {
					return err
				}
				in := flags.overlay(cmd, api.InputFromStudent(existing))
				student, err := rt.service.Students.Update(c, existing.ID, in)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, student)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ctx.themeFor(cmd).Paint(theme.KindOK,
					fmt.Sprintf("Updated student %s (%s)", student.StudentNo, student.FullName)))
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStudentDeleteCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <student-no|id>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				c := commandCtx(cmd)
				existing, err := rt.service.Students.Lookup(c, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				th := ctx.themeFor(cmd)
				if !assumeYes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete student %s (%s)?", existing.StudentNo, existing.FullName))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, th.Paint(theme.KindWarn, "Delete cancelled"))
						return nil
					}
				}
				removed, err := rt.service.Students.Delete(c, existing.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, th.Paint(theme.KindOK,
					fmt.Sprintf("Deleted student %s (%s)", removed.StudentNo, removed.FullName)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func printStudents(cmd *cobra.Command, ctx *commandContext, students []api.Student, jsonOutput bool, empty string) error {
	if jsonOutput {
		return writeJSON(cmd, api.StudentListResponse{Students: students})
	}
	out := cmd.OutOrStdout()
	th := ctx.themeFor(cmd)
	if len(students) == 0 {
		fmt.Fprintln(out, th.Paint(theme.KindInfo, empty))
		return nil
	}
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.StudentNo,
			s.FullName,
			valueOrDash(s.Email),
			courseLabel(s),
		})
	}
	fmt.Fprintln(out, renderTable(th,
		[]string{"ID", "Student No", "Name", "Email", "Course"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func printStudentDetail(cmd *cobra.Command, th *theme.Theme, s api.Student) {
	out := cmd.OutOrStdout()
	for _, line := range renderSectionHeader(th, "Student "+s.StudentNo) {
		fmt.Fprintln(out, line)
	}
	fields := [][2]string{
		{"ID", strconv.FormatInt(s.ID, 10)},
		{"Name", s.FullName},
		{"First name", s.FirstName},
		{"Last name", valueOrDash(s.LastName)},
		{"Email", valueOrDash(s.Email)},
		{"Course", courseLabel(s)},
		{"Created", valueOrDash(s.CreatedAt)},
		{"Updated", valueOrDash(s.UpdatedAt)},
	}
	for _, f := range fields {
		fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, f[0]+":", f[1])
	}
}

func courseLabel(s api.Student) string {
	switch {
	case s.CourseCode != "" && s.CourseName != "":
		return s.CourseCode + " - " + s.CourseName
	case s.CourseCode != "":
		return s.CourseCode
	default:
		return "-"
	}
}
