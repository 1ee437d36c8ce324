// Package tui is the interactive search-and-select interface. It follows
// the bubbletea model/update/view shape: repositories load and search in
// background commands, and every search carries a serial so stale results
// arriving late are dropped instead of clobbering newer ones.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"bibrarian/src/internal/bibtex"
	"bibrarian/src/internal/config"
	"bibrarian/src/internal/keys"
	"bibrarian/src/internal/repo"
	"bibrarian/src/internal/schema"
)

// Options wires the model to its environment.
type Options struct {
	Config     *config.Config
	Repos      []repo.Repo
	Enabled    []bool
	KeysOutput string
	Log        *slog.Logger
}

// Run blocks until the user quits the interface.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type status int

const (
	statusInit status = iota
	statusLoading
	statusSearching
	statusReady
	statusNoFile
)

func (s status) String() string {
	switch s {
	case statusLoading:
		return "loading"
	case statusSearching:
		return "searching"
	case statusReady:
		return "ready"
	case statusNoFile:
		return "no file"
	default:
		return "initialized"
	}
}

type fetchState int

const (
	fetchNone fetchState = iota
	fetchPending
	fetchReady
	fetchFailed
)

type repoState struct {
	repo    repo.Repo
	enabled bool
	status  status
	// lastSerial is the newest search dispatched to this repo; completions
	// for older serials do not flip the status back to ready.
	lastSerial int
}

type resultRow struct {
	entry   schema.Entry
	repoIdx int
	fetch   fetchState
}

type focusArea int

const (
	focusSearch focusArea = iota
	focusResults
)

type msgLevel int

const (
	msgTip msgLevel = iota
	msgNormal
	msgWarning
	msgError
)

// Model is the bubbletea model for the whole interface.
type Model struct {
	opts Options
	log  *slog.Logger

	search textinput.Model
	serial int

	repos   []repoState
	results []resultRow
	cursor  int
	offset  int

	selected []schema.Entry
	selIndex map[string]int

	details  *schema.Entry
	fetching map[string]bool

	focus focusArea

	message   string
	msgLevel  msgLevel
	msgExpiry time.Time
	tipIdx    int
	quitting  bool

	width, height int
}

var tips = []string{
	"Use ctrl+c to exit with all files untouched.",
	"Use ctrl+w to write the selected entries and quit.",
	"Press @ to open the highlighted entry in the browser.",
	"Use up/down (or ctrl+p/ctrl+n, k/j) to move through results.",
	"Use alt+N to toggle the N-th repository; alt+~ enables all.",
	"Press <enter> to jump between the search bar and the results.",
}

const (
	tipDelay  = 5 * time.Second
	postDelay = 3 * time.Second
)

// New builds the initial model from options.
func New(opts Options) Model {
	in := textinput.New()
	in.Prompt = "Search: "
	in.Focus()
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	m := Model{
		opts:     opts,
		log:      log,
		search:   in,
		selIndex: map[string]int{},
		fetching: map[string]bool{},
		message:  "Welcome to bibrarian.",
		msgLevel: msgNormal,
	}
	for i, r := range opts.Repos {
		enabled := true
		if i < len(opts.Enabled) {
			enabled = opts.Enabled[i]
		}
		m.repos = append(m.repos, repoState{repo: r, enabled: enabled, status: statusLoading})
	}
	return m
}

// Selected returns the chosen entries in selection order.
func (m Model) Selected() []schema.Entry { return m.selected }

// SelectedKeys returns just the citation keys, for the key-mode file.
func (m Model) SelectedKeys() []string {
	out := make([]string, 0, len(m.selected))
	for _, e := range m.selected {
		out = append(out, e.Key)
	}
	return out
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tipTick()}
	for i := range m.repos {
		cmds = append(cmds, loadCmd(i, m.repos[i].repo))
	}
	return tea.Batch(cmds...)
}

func tipTick() tea.Cmd {
	return tea.Tick(tipDelay, func(t time.Time) tea.Msg { return tipTickMsg(t) })
}

// delimiter resolves the key file delimiter from config.
func (m Model) delimiter() string {
	if m.opts.Config != nil && m.opts.Config.KeysDelimiter != "" {
		return m.opts.Config.KeysDelimiter
	}
	return keys.DefaultDelimiter
}

type (
	loadedMsg struct {
		idx int
		err error
	}
	searchDoneMsg struct {
		serial  int
		idx     int
		entries []schema.Entry
		err     error
	}
	recordMsg struct {
		uniqueKey string
		rec       *bibtex.Record
		err       error
	}
	browserMsg struct {
		url string
		err error
	}
	tipTickMsg time.Time
)
