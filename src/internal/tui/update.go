package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bibrarian/src/internal/browser"
	"bibrarian/src/internal/dblp"
	"bibrarian/src/internal/keys"
	"bibrarian/src/internal/repo"
)

func loadCmd(idx int, r repo.Repo) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{idx: idx, err: r.Load(context.Background())}
	}
}

func searchCmd(serial, idx int, r repo.Repo, query string) tea.Cmd {
	return func() tea.Msg {
		entries, err := r.Search(context.Background(), query)
		return searchDoneMsg{serial: serial, idx: idx, entries: entries, err: err}
	}
}

func fetchCmd(uniqueKey, remoteID string) tea.Cmd {
	return func() tea.Msg {
		rec, err := dblp.FetchRecord(context.Background(), remoteID)
		return recordMsg{uniqueKey: uniqueKey, rec: rec, err: err}
	}
}

func browserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return browserMsg{url: url, err: browser.Open(context.Background(), url)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case loadedMsg:
		return m.onLoaded(msg)
	case searchDoneMsg:
		return m.onSearchDone(msg)
	case recordMsg:
		return m.onRecord(msg)
	case browserMsg:
		if msg.err != nil {
			m.log.Error("open browser", "url", msg.url, "err", msg.err)
			m.post(fmt.Sprintf("Could not open %s", msg.url), msgError)
		} else {
			m.post(fmt.Sprintf("Opened %s", msg.url), msgNormal)
		}
		return m, nil
	case tipTickMsg:
		if time.Now().After(m.msgExpiry) {
			m.message = "Tip: " + tips[m.tipIdx%len(tips)]
			m.msgLevel = msgTip
			m.tipIdx++
		}
		return m, tipTick()
	case tea.KeyMsg:
		return m.onKey(msg)
	}
	return m, nil
}

func (m Model) onLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	rs := &m.repos[msg.idx]
	switch {
	case msg.err == nil:
		rs.status = statusReady
	case errors.Is(msg.err, repo.ErrNoFile):
		rs.status = statusNoFile
		m.post(fmt.Sprintf("Glob %q matches no file.", rs.repo.Source()), msgWarning)
		m.log.Warn("repo load", "source", rs.repo.Source(), "err", msg.err)
	default:
		rs.status = statusNoFile
		m.post(fmt.Sprintf("Loading %s failed.", rs.repo.Source()), msgError)
		m.log.Error("repo load", "source", rs.repo.Source(), "err", msg.err)
		return m, nil
	}
	// A search typed while this repo was still loading runs now.
	if q := strings.TrimSpace(m.search.Value()); q != "" && rs.status == statusReady && rs.enabled {
		rs.status = statusSearching
		rs.lastSerial = m.serial
		return m, searchCmd(m.serial, msg.idx, rs.repo, q)
	}
	return m, nil
}

func (m Model) onSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	rs := &m.repos[msg.idx]
	if msg.serial == rs.lastSerial && rs.status == statusSearching {
		rs.status = statusReady
	}
	if msg.serial != m.serial {
		return m, nil // stale
	}
	if msg.err != nil {
		m.log.Error("search", "source", rs.repo.Source(), "err", msg.err)
		m.post(fmt.Sprintf("Search failed on %s.", rs.repo.Source()), msgError)
		return m, nil
	}
	for _, e := range msg.entries {
		fetch := fetchNone
		if m.fetching[e.UniqueKey()] {
			fetch = fetchPending
		}
		if i, ok := m.selIndex[e.UniqueKey()]; ok && m.selected[i].Record != nil {
			e.Record = m.selected[i].Record
			fetch = fetchReady
		}
		m.results = append(m.results, resultRow{entry: e, repoIdx: msg.idx, fetch: fetch})
	}
	m.clampCursor()
	return m, nil
}

func (m Model) onRecord(msg recordMsg) (tea.Model, tea.Cmd) {
	delete(m.fetching, msg.uniqueKey)
	if msg.err != nil {
		m.log.Error("fetch bibtex", "key", msg.uniqueKey, "err", msg.err)
		m.post("Fetching bibtex failed for "+msg.uniqueKey, msgError)
		for i := range m.results {
			if m.results[i].entry.UniqueKey() == msg.uniqueKey {
				m.results[i].fetch = fetchFailed
			}
		}
		return m, nil
	}
	if i, ok := m.selIndex[msg.uniqueKey]; ok {
		m.selected[i].Record = msg.rec
	}
	for i := range m.results {
		if m.results[i].entry.UniqueKey() == msg.uniqueKey {
			m.results[i].entry.Record = msg.rec
			m.results[i].fetch = fetchReady
		}
	}
	return m, nil
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global chords work regardless of focus.
	switch key {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+w":
		return m.writeAndQuit()
	case "enter":
		if m.focus == focusSearch {
			m.focus = focusResults
			m.search.Blur()
		} else {
			m.focus = focusSearch
			m.search.Focus()
		}
		return m, nil
	case "ctrl+n", "down":
		m.moveCursor(1)
		return m, nil
	case "ctrl+p", "up":
		m.moveCursor(-1)
		return m, nil
	}
	if toggled, cmd := m.repoToggle(key); toggled {
		return m, cmd
	}

	if m.focus == focusResults {
		return m.onResultsKey(key)
	}

	// Search bar: delegate to the text input and re-search on change.
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		searches := m.startSearch()
		return m, tea.Batch(append(searches, cmd)...)
	}
	return m, cmd
}

func (m Model) onResultsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j":
		m.moveCursor(1)
	case "k":
		m.moveCursor(-1)
	case " ", "space":
		return m.toggleSelection()
	case "i":
		if row, ok := m.currentRow(); ok {
			e := row.entry
			m.details = &e
		}
	case "@":
		if row, ok := m.currentRow(); ok {
			if row.entry.URL == "" {
				m.post("Could not infer url of this entry.", msgWarning)
				return m, nil
			}
			return m, browserCmd(row.entry.URL)
		}
	case "q", "esc":
		m.focus = focusSearch
		m.search.Focus()
	}
	return m, nil
}

// startSearch bumps the serial, clears results, and dispatches one search
// command per enabled, ready repository.
func (m *Model) startSearch() []tea.Cmd {
	m.serial++
	m.results = nil
	m.cursor, m.offset = 0, 0
	q := strings.TrimSpace(m.search.Value())
	if q == "" {
		return nil
	}
	var cmds []tea.Cmd
	for i := range m.repos {
		rs := &m.repos[i]
		if !rs.enabled || rs.status == statusNoFile || rs.status == statusInit || rs.status == statusLoading {
			continue
		}
		rs.status = statusSearching
		rs.lastSerial = m.serial
		cmds = append(cmds, searchCmd(m.serial, i, rs.repo, q))
	}
	return cmds
}

func (m Model) toggleSelection() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	uk := row.entry.UniqueKey()
	if i, ok := m.selIndex[uk]; ok {
		m.selected = append(m.selected[:i], m.selected[i+1:]...)
		delete(m.selIndex, uk)
		for k, v := range m.selIndex {
			if v > i {
				m.selIndex[k] = v - 1
			}
		}
		return m, nil
	}
	m.selIndex[uk] = len(m.selected)
	m.selected = append(m.selected, row.entry)
	// Remote entries start their BibTeX fetch on first selection.
	if row.entry.Record == nil && row.entry.RemoteID != "" && !m.fetching[uk] {
		m.fetching[uk] = true
		if i := m.rowIndex(uk); i >= 0 {
			m.results[i].fetch = fetchPending
		}
		return m, fetchCmd(uk, row.entry.RemoteID)
	}
	return m, nil
}

// repoToggle handles alt+1..9 (toggle one), alt+0 (all off), alt+~ (all on).
func (m *Model) repoToggle(key string) (bool, tea.Cmd) {
	if !strings.HasPrefix(key, "alt+") || len(key) != 5 {
		return false, nil
	}
	switch c := key[4]; {
	case c == '~':
		for i := range m.repos {
			m.repos[i].enabled = true
		}
	case c == '0':
		for i := range m.repos {
			m.repos[i].enabled = false
		}
	case c >= '1' && c <= '9':
		n := int(c - '1')
		if n >= len(m.repos) {
			return true, nil
		}
		m.repos[n].enabled = !m.repos[n].enabled
	default:
		return false, nil
	}
	searches := m.startSearch()
	return true, tea.Batch(searches...)
}

// writeAndQuit emits the key file and merges selections into writable
// repositories, then quits. Failures keep the session open so nothing is
// silently lost.
func (m Model) writeAndQuit() (tea.Model, tea.Cmd) {
	delim := m.delimiter()
	if m.opts.KeysOutput != "" {
		if err := keys.Write(m.opts.KeysOutput, m.SelectedKeys(), delim); err != nil {
			m.log.Error("write keys", "path", m.opts.KeysOutput, "err", err)
			m.post("Writing key file failed.", msgError)
			return m, nil
		}
		m.log.Info("wrote selected keys", "path", m.opts.KeysOutput, "count", len(m.selected))
	}
	for _, o := range repo.Outputs(reposOf(m.repos)) {
		if err := o.Write(m.selected); err != nil {
			m.log.Error("write library", "target", o.Target(), "err", err)
			m.post(err.Error(), msgError)
			return m, nil
		}
		m.log.Info("wrote library", "target", o.Target())
	}
	m.quitting = true
	return m, tea.Quit
}

func reposOf(states []repoState) []repo.Repo {
	out := make([]repo.Repo, len(states))
	for i := range states {
		out[i] = states[i].repo
	}
	return out
}

func (m *Model) post(text string, level msgLevel) {
	m.message = text
	m.msgLevel = level
	m.msgExpiry = time.Now().Add(postDelay)
}

func (m *Model) moveCursor(d int) {
	m.cursor += d
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.visibleRows()) {
		m.cursor = len(m.visibleRows()) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// visibleRows hides results whose repository is currently disabled, without
// discarding them; re-enabling the repo brings them back.
func (m Model) visibleRows() []resultRow {
	var out []resultRow
	for _, r := range m.results {
		if m.repos[r.repoIdx].enabled {
			out = append(out, r)
		}
	}
	return out
}

func (m Model) currentRow() (resultRow, bool) {
	rows := m.visibleRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return resultRow{}, false
	}
	return rows[m.cursor], true
}

func (m Model) rowIndex(uniqueKey string) int {
	for i := range m.results {
		if m.results[i].entry.UniqueKey() == uniqueKey {
			return i
		}
	}
	return -1
}
