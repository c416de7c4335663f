package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"roster/internal/theme"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(th *theme.Theme, label string, kind theme.Kind, message string) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	return th.Paint(kind, fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText))
}

func statusKindLabel(kind theme.Kind) string {
	switch kind {
	case theme.KindOK:
		return "OK"
	case theme.KindWarn:
		return "WARN"
	case theme.KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func renderSectionHeader(th *theme.Theme, title string) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{th.Header(line), th.Header(rule)}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
