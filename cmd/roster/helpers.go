package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"roster/internal/records"
	"roster/internal/validation"
)

// formatError renders err for stderr. Validation failures list one field per
// line; other kinds get a short prefix.
func formatError(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		keys := make([]string, 0, len(verr.Fields))
		for key := range verr.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("Error: " + verr.Message)
		for _, key := range keys {
			fmt.Fprintf(&b, "\n  %s: %s", key, verr.Fields[key])
		}
		return b.String()
	}
	switch records.Kind(err) {
	case "not_found":
		return "Not found: " + err.Error()
	case "conflict":
		return "Conflict: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// confirm asks a yes/no question on the command's input. Only "y" or "yes"
// accept; EOF declines.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
