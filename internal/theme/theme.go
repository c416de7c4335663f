// Package theme maps the configured display palettes onto go-pretty table
// styles and terminal colors, and switches between the light and dark themes.
package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"roster/internal/config"
)

// Kind selects the color used for a status message.
type Kind int

const (
	KindInfo Kind = iota
	KindOK
	KindWarn
	KindError
)

var tableStyles = map[string]table.Style{
	"default":        table.StyleDefault,
	"light":          table.StyleLight,
	"rounded":        table.StyleRounded,
	"bold":           table.StyleBold,
	"double":         table.StyleDouble,
	"colored_bright": table.StyleColoredBright,
	"colored_dark":   table.StyleColoredDark,
}

var colors = map[string]text.Color{
	"black":      text.FgBlack,
	"red":        text.FgRed,
	"green":      text.FgGreen,
	"yellow":     text.FgYellow,
	"blue":       text.FgBlue,
	"magenta":    text.FgMagenta,
	"cyan":       text.FgCyan,
	"white":      text.FgWhite,
	"hi-black":   text.FgHiBlack,
	"hi-red":     text.FgHiRed,
	"hi-green":   text.FgHiGreen,
	"hi-yellow":  text.FgHiYellow,
	"hi-blue":    text.FgHiBlue,
	"hi-magenta": text.FgHiMagenta,
	"hi-cyan":    text.FgHiCyan,
	"hi-white":   text.FgHiWhite,
}

// Theme is a resolved palette. When colorize is false every method returns
// plain text and table styles lose their colors.
type Theme struct {
	Name     string
	style    table.Style
	header   text.Colors
	kinds    map[Kind]text.Colors
	colorize bool
}

// New resolves palette into a Theme.
func New(name string, palette config.Palette, colorize bool) (*Theme, error) {
	style, err := ParseStyle(palette.TableStyle)
	if err != nil {
		return nil, err
	}
	header, err := ParseColor(palette.HeaderColor)
	if err != nil {
		return nil, fmt.Errorf("header_color: %w", err)
	}
	kinds := make(map[Kind]text.Colors, 4)
	for kind, value := range map[Kind]string{
		KindInfo:  palette.InfoColor,
		KindOK:    palette.OKColor,
		KindWarn:  palette.WarnColor,
		KindError: palette.ErrorColor,
	} {
		c, err := ParseColor(value)
		if err != nil {
			return nil, fmt.Errorf("%s color: %w", kind, err)
		}
		kinds[kind] = c
	}
	return &Theme{
		Name:     name,
		style:    style,
		header:   append(text.Colors{text.Bold}, header...),
		kinds:    kinds,
		colorize: colorize,
	}, nil
}

// FromConfig resolves the active palette of cfg.
func FromConfig(cfg *config.Config, colorize bool) (*Theme, error) {
	return New(cfg.Display.Theme, cfg.ActivePalette(), colorize)
}

// Plain is an uncolored theme using rounded tables.
func Plain() *Theme {
	return &Theme{Name: "plain", style: table.StyleRounded, kinds: map[Kind]text.Colors{}}
}

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindWarn:
		return "warn"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// Colorized reports whether output is styled.
func (t *Theme) Colorized() bool { return t != nil && t.colorize }

// TableStyle returns the go-pretty style, with colors removed when output is
// not a terminal.
func (t *Theme) TableStyle() table.Style {
	if t == nil {
		return table.StyleRounded
	}
	style := t.style
	if !t.colorize {
		style.Color = table.ColorOptions{}
		return style
	}
	if len(style.Color.Header) == 0 {
		style.Color.Header = t.header
	}
	return style
}

// Header styles a section heading.
func (t *Theme) Header(s string) string {
	if !t.Colorized() || len(t.header) == 0 {
		return s
	}
	return t.header.Sprint(s)
}

// Paint colors s for the given status kind.
func (t *Theme) Paint(kind Kind, s string) string {
	if !t.Colorized() {
		return s
	}
	c := t.kinds[kind]
	if len(c) == 0 {
		return s
	}
	return c.Sprint(s)
}

// ParseStyle resolves a table style name.
func ParseStyle(name string) (table.Style, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return table.StyleRounded, nil
	}
	style, ok := tableStyles[key]
	if !ok {
		return table.Style{}, fmt.Errorf("unknown table style %q (known: %s)", name, strings.Join(StyleNames(), ", "))
	}
	return style, nil
}

// ParseColor resolves a color name. An empty name means no color.
func ParseColor(name string) (text.Colors, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "none" {
		return nil, nil
	}
	c, ok := colors[key]
	if !ok {
		return nil, fmt.Errorf("unknown color %q", name)
	}
	return text.Colors{c}, nil
}

// StyleNames lists the accepted table style names.
func StyleNames() []string {
	names := make([]string, 0, len(tableStyles))
	for name := range tableStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
