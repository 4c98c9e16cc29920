package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/metro/sink"
	"github.com/matzehuels/metromap/pkg/storage"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	listNormalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tableHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// window is a cursor over n items of which Height are visible from Offset.
type window struct {
	Cursor int
	Offset int
	Height int
}

func (w *window) move(delta, n int) {
	if n == 0 {
		return
	}
	w.Cursor = min(max(w.Cursor+delta, 0), n-1)
	if w.Cursor < w.Offset {
		w.Offset = w.Cursor
	}
	if w.Height > 0 && w.Cursor >= w.Offset+w.Height {
		w.Offset = w.Cursor - w.Height + 1
	}
}

func (w window) visible(n int) (from, to int) {
	if w.Height <= 0 {
		return 0, n
	}
	return w.Offset, min(w.Offset+w.Height, n)
}

func styledTable(border lipgloss.Color, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers(headers...)
}

// MapListModel picks one of the stored career maps.
type MapListModel struct {
	window
	Maps     []storage.Summary
	Selected *storage.Summary
	now      time.Time
}

func NewMapListModel(maps []storage.Summary) MapListModel {
	return MapListModel{Maps: maps, window: window{Height: 15}, now: time.Now()}
}

func (m MapListModel) Init() tea.Cmd { return nil }

func (m MapListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1, len(m.Maps))
		case "down", "j":
			m.move(1, len(m.Maps))
		case "home", "g":
			m.move(-len(m.Maps), len(m.Maps))
		case "end", "G":
			m.move(len(m.Maps), len(m.Maps))
		case "enter":
			if len(m.Maps) > 0 {
				s := m.Maps[m.Cursor]
				m.Selected = &s
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MapListModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Select Career Map") + "\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit") + "\n\n")

	if len(m.Maps) == 0 {
		b.WriteString(listDimStyle.Render("  no stored maps"))
		return b.String()
	}

	from, to := m.visible(len(m.Maps))
	t := styledTable(colorDim, "", "Name", "Lines", "Roles", "Updated", "ID")
	for i := from; i < to; i++ {
		s := m.Maps[i]
		marker := "  "
		if i == m.Cursor {
			marker = "▸ "
		}
		name := s.Name
		if name == "" {
			name = "—"
		}
		t.Row(marker, name, strconv.Itoa(s.Paths), strconv.Itoa(s.Roles), formatRelativeTime(s.UpdatedAt, m.now), s.ID)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return tableHeaderStyle
		case from+row == m.Cursor:
			return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
		case col >= 4:
			return listDimStyle
		}
		return lipgloss.NewStyle()
	})

	b.WriteString(t.Render() + "\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Maps))))
	return b.String()
}

// LineListModel rides the lines of a layout. Up and down pick a line,
// left and right move between its stations, and enter selects the station
// under the cursor.
type LineListModel struct {
	Layout   graph.Layout
	Cursor   int // line
	Stop     int // station on the current line
	Selected *graph.Station

	stations map[string]graph.Station
}

func NewLineListModel(l graph.Layout) LineListModel {
	return LineListModel{Layout: l, stations: l.StationMap()}
}

func (m LineListModel) Init() tea.Cmd { return nil }

func (m LineListModel) stops() []graph.Station {
	if len(m.Layout.Lines) == 0 {
		return nil
	}
	ids := m.Layout.Lines[m.Cursor].StationIDs
	out := make([]graph.Station, 0, len(ids))
	for _, id := range ids {
		if st, ok := m.stations[id]; ok {
			out = append(out, st)
		}
	}
	return out
}

func (m LineListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.Stop = 0
		}
	case "down", "j":
		if m.Cursor < len(m.Layout.Lines)-1 {
			m.Cursor++
			m.Stop = 0
		}
	case "left", "h":
		m.Stop = max(m.Stop-1, 0)
	case "right", "l":
		m.Stop = min(m.Stop+1, max(len(m.stops())-1, 0))
	case "enter":
		if stops := m.stops(); len(stops) > 0 {
			st := stops[m.Stop]
			m.Selected = &st
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m LineListModel) View() string {
	var b strings.Builder
	title := m.Layout.Name
	if title == "" {
		title = "Lines"
	}
	b.WriteString(styleTitle.Render(title) + "\n")
	b.WriteString(listDimStyle.Render("↑/↓ line  ←/→ station  ⏎ pick station  q quit") + "\n\n")

	if len(m.Layout.Lines) == 0 {
		b.WriteString(listDimStyle.Render("  no lines"))
		return b.String()
	}

	for i, line := range m.Layout.Lines {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(sink.LineColor(line, i))).Render("●")
		marker, style := "  ", listNormalStyle
		if i == m.Cursor {
			marker, style = "> ", listSelectedStyle
		}
		count := listDimStyle.Render(fmt.Sprintf("%d stations", len(line.StationIDs)))
		b.WriteString(style.Render(fmt.Sprintf("%s%s %-20s %s", marker, swatch, lineLabel(line), count)) + "\n")
	}

	line := m.Layout.Lines[m.Cursor]
	t := styledTable(lipgloss.Color(sink.LineColor(line, m.Cursor)), "", "Station", "Level", "X", "Y", "Change for")
	for i, st := range m.stops() {
		marker := " "
		if i == m.Stop {
			marker = "▸"
		}
		t.Row(marker, st.Label(), strconv.Itoa(st.Level),
			strconv.FormatFloat(st.X, 'f', 1, 64), strconv.FormatFloat(st.Y, 'f', 1, 64),
			strings.Join(transfers(st, line.ID), ", "))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return tableHeaderStyle
		case row == m.Stop:
			return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
		case col == 5:
			return lipgloss.NewStyle().Foreground(colorAmber)
		}
		return lipgloss.NewStyle()
	})
	b.WriteString("\n" + t.Render() + "\n")
	return b.String()
}

// transfers lists the other lines serving an interchange station.
func transfers(st graph.Station, current string) []string {
	if !st.Interchange {
		return nil
	}
	out := slices.DeleteFunc(slices.Clone(st.PathIDs), func(id string) bool { return id == current })
	slices.Sort(out)
	return out
}

func lineLabel(l graph.Line) string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	switch d := now.Sub(t); {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
