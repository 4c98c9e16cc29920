package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/metro/sink"
)

// statusOut receives status lines.
var statusOut io.Writer = os.Stdout

// ===== Styles =====

// Status colors are taken from the line palette so the terminal output
// matches the rendered maps.
var (
	colorRed   = lipgloss.Color(sink.Palette[0])
	colorBlue  = lipgloss.Color(sink.Palette[1])
	colorGreen = lipgloss.Color(sink.Palette[2])
	colorAmber = lipgloss.Color(sink.Palette[3])
	colorTeal  = lipgloss.Color(sink.Palette[5])
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleDim is used for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	styleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	styleCached = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh  = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// ===== Status lines =====

func status(icon string, style lipgloss.Style, msg string) {
	fmt.Fprintln(statusOut, style.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	status(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status(iconWarning, styleIconWarning, styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleKey.Render(key)+" "+styleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(statusOut)
}

// ===== Layout summaries =====

// statsLine summarizes a layout, e.g.
// "12 stations · 3 lines · 2 interchanges · fresh".
func statsLine(l graph.Layout, cached bool) string {
	var parts []string
	add := func(n int, noun string) {
		if n > 0 {
			parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", n, noun)))
		}
	}
	add(len(l.Stations), "stations")
	add(len(l.Lines), "lines")
	add(l.InterchangeCount(), "interchanges")
	add(l.Collisions, "collisions resolved")
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(l graph.Layout, cached bool) {
	fmt.Fprintln(statusOut, statsLine(l, cached))
}

// printLines prints one legend row per line: a swatch in the line color,
// the line name and its terminus stations.
func printLines(l graph.Layout) {
	names := l.StationMap()
	for i, line := range l.Lines {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(sink.LineColor(line, i))).Render("━━")
		route := ""
		if n := len(line.StationIDs); n > 0 {
			first, last := names[line.StationIDs[0]], names[line.StationIDs[n-1]]
			route = StyleDim.Render(fmt.Sprintf("%s %s %s", first.Label(), iconArrow, last.Label()))
		}
		fmt.Fprintf(statusOut, "  %s %-24s %s\n", swatch, lineLabel(line), route)
	}
}

// printConflicts warns about roles listed at different levels on different
// paths. The first listing wins, so the others are reported.
func printConflicts(l graph.Layout) {
	for _, c := range l.Conflicts {
		printWarning("%s is level %d on %s but placed at level %d", c.RoleID, c.Level, c.PathID, c.CanonicalLevel)
	}
}
