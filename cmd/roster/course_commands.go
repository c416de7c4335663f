package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/theme"
)

type courseFlags struct {
	code     string
	name     string
	lecturer string
	credits  string
}

func (f *courseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, "code", "", "Course code")
	cmd.Flags().StringVar(&f.name, "name", "", "Course name")
	cmd.Flags().StringVar(&f.lecturer, "lecturer", "", "Lecturer")
	cmd.Flags().StringVar(&f.credits, "credits", "", "Credits")
}

func (f *courseFlags) input() api.CourseInput {
	return api.CourseInput{
		Code:     f.code,
		Name:     f.name,
		Lecturer: f.lecturer,
		Credits:  api.Text(f.credits),
	}
}

func (f *courseFlags) overlay(cmd *cobra.Command, in api.CourseInput) api.CourseInput {
	changed := cmd.Flags().Changed
	if changed("code") {
		in.Code = f.code
	}
	if changed("name") {
		in.Name = f.name
	}
	if changed("lecturer") {
		in.Lecturer = f.lecturer
	}
	if changed("credits") {
		in.Credits = api.Text(f.credits)
	}
	return in
}

func newCourseCommand(ctx *commandContext) *cobra.Command {
	courseCmd := &cobra.Command{
		Use:     "course",
		Aliases: []string{"courses"},
		Short:   "Manage courses",
	}

	courseCmd.AddCommand(newCourseAddCommand(ctx))
	courseCmd.AddCommand(newCourseListCommand(ctx))
	courseCmd.AddCommand(newCourseShowCommand(ctx))
	courseCmd.AddCommand(newCourseUpdateCommand(ctx))
	courseCmd.AddCommand(newCourseDeleteCommand(ctx))
	courseCmd.AddCommand(newCourseSearchCommand(ctx))
	courseCmd.AddCommand(newCourseOptionsCommand(ctx))

	return courseCmd
}

func newCourseAddCommand(ctx *commandContext) *cobra.Command {
	var flags courseFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				course, err := rt.service.Courses.Add(commandCtx(cmd), flags.input())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, course)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ctx.themeFor(cmd).Paint(theme.KindOK,
					fmt.Sprintf("Added course %s (%s) with id %d", course.Code, course.Name, course.ID)))
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCourseListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				courses, err := rt.service.Courses.List(commandCtx(cmd))
				if err != nil {
					return err
				}
				return printCourses(cmd, ctx, courses, jsonOutput, "No courses recorded")
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCourseSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search courses by code, name or lecturer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			return ctx.withService(func(rt *runtime) error {
				courses, err := rt.service.Courses.Search(commandCtx(cmd), term)
				if err != nil {
					return err
				}
				return printCourses(cmd, ctx, courses, jsonOutput, fmt.Sprintf("No courses match %q", term))
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCourseShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id|code|name>",
		Short: "Show one course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				course, err := rt.service.Courses.Lookup(commandCtx(cmd), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, course)
				}
				th := ctx.themeFor(cmd)
				out := cmd.OutOrStdout()
				for _, line := range renderSectionHeader(th, "Course "+course.Code) {
					fmt.Fprintln(out, line)
				}
				fields := [][2]string{
					{"ID", strconv.FormatInt(course.ID, 10)},
					{"Name", course.Name},
					{"Lecturer", valueOrDash(course.Lecturer)},
					{"Credits", strconv.Itoa(course.Credits)},
					{"Created", valueOrDash(course.CreatedAt)},
					{"Updated", valueOrDash(course.UpdatedAt)},
				}
				for _, f := range fields {
					fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, f[0]+":", f[1])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCourseUpdateCommand(ctx *commandContext) *cobra.Command {
	var flags courseFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "update <id|code|name>",
		Short: "Update a course; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				c := commandCtx(cmd)
				existing, err := rt.service.Courses.Lookup(c, args[0])
				if err != nil {
					return err
				}
				course, err := rt.service.Courses.Update(c, existing.ID, flags.overlay(cmd, api.InputFromCourse(existing)))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, course)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ctx.themeFor(cmd).Paint(theme.KindOK,
					fmt.Sprintf("Updated course %s (%s)", course.Code, course.Name)))
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCourseDeleteCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <id|code|name>",
		Short: "Delete a course; enrolled students become unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				c := commandCtx(cmd)
				existing, err := rt.service.Courses.Lookup(c, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				th := ctx.themeFor(cmd)
				if !assumeYes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete course %s (%s)?", existing.Code, existing.Name))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, th.Paint(theme.KindWarn, "Delete cancelled"))
						return nil
					}
				}
				removed, err := rt.service.Courses.Delete(c, existing.ID)
				if err != nil {
					return err
				}
				msg := fmt.Sprintf("Deleted course %s (%s)", removed.Course.Code, removed.Course.Name)
				if removed.Detached > 0 {
					msg += fmt.Sprintf("; %d student(s) now unassigned", removed.Detached)
				}
				fmt.Fprintln(out, th.Paint(theme.KindOK, msg))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func newCourseOptionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List course choices for the student form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(rt *runtime) error {
				options, err := rt.service.Courses.Options(commandCtx(cmd))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.CourseOptionsResponse{Options: options})
				}
				out := cmd.OutOrStdout()
				for _, opt := range options {
					fmt.Fprintln(out, opt.Label)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printCourses(cmd *cobra.Command, ctx *commandContext, courses []api.Course, jsonOutput bool, empty string) error {
	if jsonOutput {
		return writeJSON(cmd, api.CourseListResponse{Courses: courses})
	}
	out := cmd.OutOrStdout()
	th := ctx.themeFor(cmd)
	if len(courses) == 0 {
		fmt.Fprintln(out, th.Paint(theme.KindInfo, empty))
		return nil
	}
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Code,
			c.Name,
			valueOrDash(c.Lecturer),
			strconv.Itoa(c.Credits),
		})
	}
	fmt.Fprintln(out, renderTable(th,
		[]string{"ID", "Code", "Name", "Lecturer", "Credits"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}
