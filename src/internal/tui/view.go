package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	tipStyle      = lipgloss.NewStyle().Faint(true).Italic(true)
)

const (
	rowHeight     = 3
	sidebarWidth  = 38
	minListWidth  = 30
	defaultWidth  = 100
	defaultHeight = 30
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	listWidth := width - sidebarWidth - 1
	if listWidth < minListWidth {
		listWidth = width
	}
	listHeight := height - 4 // search bar, separator, message bar

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.search.View(),
		"",
		m.viewResults(listWidth, listHeight),
	)
	body := left
	if listWidth != width {
		right := m.viewSidebar(sidebarWidth)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewMessage(width))
}

func (m Model) viewResults(width, height int) string {
	rows := m.visibleRows()
	if len(rows) == 0 {
		if strings.TrimSpace(m.search.Value()) == "" {
			return dimStyle.Render("Type to search the configured repositories.")
		}
		return dimStyle.Render("No matches.")
	}

	perPage := height / rowHeight
	if perPage < 1 {
		perPage = 1
	}
	offset := m.offset
	if m.cursor < offset {
		offset = m.cursor
	}
	if m.cursor >= offset+perPage {
		offset = m.cursor - perPage + 1
	}

	var b strings.Builder
	for i := offset; i < len(rows) && i < offset+perPage; i++ {
		if i > offset {
			b.WriteByte('\n')
		}
		b.WriteString(m.viewRow(rows[i], width, i == m.cursor && m.focus == focusResults))
	}
	return b.String()
}

func (m Model) viewRow(row resultRow, width int, current bool) string {
	e := row.entry
	mark := "[ ]"
	if _, ok := m.selIndex[e.UniqueKey()]; ok {
		mark = selectedStyle.Render("[X]")
	}
	title := titleStyle.Render(truncate(e.Title, width-5))

	meta := e.AbbrevAuthors()
	if e.Venue != "" {
		meta += ". " + e.Venue
	}
	line2 := "    " + truncate(meta, width-5)

	tail := e.UniqueKey()
	switch row.fetch {
	case fetchPending:
		tail += "  " + dimStyle.Render("(fetching bibtex)")
	case fetchReady:
		tail += "  " + dimStyle.Render("(bibtex ready)")
	case fetchFailed:
		tail += "  " + errStyle.Render("(bibtex failed)")
	}
	line3 := "    " + e.Year + ". " + dimStyle.Render(tail)

	first := mark + " " + title
	if current {
		first = cursorStyle.Render(mark+" ") + titleStyle.Render(truncate(e.Title, width-5))
	}
	return first + "\n" + line2 + "\n" + line3
}

func (m Model) viewSidebar(width int) string {
	var sections []string

	var b strings.Builder
	b.WriteString(headingStyle.Render("Database Info"))
	b.WriteByte('\n')
	for i, rs := range m.repos {
		onOff := "off"
		if rs.enabled {
			onOff = "on "
		}
		line := fmt.Sprintf("%d [%s] %s (%s, %s)", i+1, onOff, truncate(rs.repo.Source(), width-14), rs.repo.Access(), rs.status)
		if rs.status == statusNoFile {
			line = warnStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.opts.Config != nil && m.opts.Config.Source != "" {
		b.WriteString(dimStyle.Render("config: " + truncate(m.opts.Config.Source, width-9)))
	}
	sections = append(sections, b.String())

	b.Reset()
	b.WriteString(headingStyle.Render("Detailed Info"))
	b.WriteByte('\n')
	if m.details == nil {
		b.WriteString(dimStyle.Render("Hit <i> on a highlighted item\nto see its details."))
	} else {
		e := m.details
		writeDetail(&b, "key", e.Key, width)
		writeDetail(&b, "type", e.Type, width)
		writeDetail(&b, "title", e.Title, width)
		writeDetail(&b, "authors", strings.Join(e.Authors, "; "), width)
		writeDetail(&b, "venue", e.Venue, width)
		writeDetail(&b, "year", e.Year, width)
		writeDetail(&b, "url", e.URL, width)
	}
	sections = append(sections, b.String())

	b.Reset()
	b.WriteString(headingStyle.Render("Selected Entries"))
	b.WriteByte('\n')
	if len(m.selected) == 0 {
		b.WriteString(dimStyle.Render("Hit <SPACE> on a highlighted\nitem to select it."))
	} else {
		for _, e := range m.selected {
			b.WriteString(selectedStyle.Render(e.Key))
			b.WriteString(dimStyle.Render("  " + e.Source))
			b.WriteByte('\n')
		}
	}
	sections = append(sections, b.String())

	return lipgloss.NewStyle().Width(width).Render(strings.Join(sections, "\n\n"))
}

func writeDetail(b *strings.Builder, name, value string, width int) {
	if value == "" {
		return
	}
	b.WriteString(dimStyle.Render(name + ": "))
	b.WriteString(truncate(value, width-len(name)-2))
	b.WriteByte('\n')
}

func (m Model) viewMessage(width int) string {
	text := truncate(m.message, width)
	switch m.msgLevel {
	case msgTip:
		return tipStyle.Render(text)
	case msgWarning:
		return warnStyle.Render(text)
	case msgError:
		return errStyle.Render(text)
	default:
		return text
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
