package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/coverage"
	"github.com/adrior11/check24-best-combination-submission/internal/otel"
)

// defaultNoticeTTL is how long an error notice stays up unless dismissed.
const defaultNoticeTTL = 10 * time.Second

// Actions are the operations the App triggers. The App never talks to the
// backend itself. Nil fields are skipped.
type Actions struct {
	// SetInput reports every change of the raw input.
	SetInput func(raw string)
	// Add returns a Cmd yielding SelectionChanged.
	Add func(raw, suggestion string) tea.Cmd
	// Remove returns a Cmd yielding SelectionChanged.
	Remove func(item string) tea.Cmd
	// Search returns a Cmd yielding PollFinished.
	Search func() tea.Cmd
}

// ObsConfig wires observability into the App.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig configures NewAppWithConfig.
type AppConfig struct {
	Actions   Actions
	Obs       ObsConfig
	Currency  string
	NoticeTTL time.Duration
	ShowDebug bool
	Now       func() time.Time
}

type focus int

const (
	focusInput focus = iota
	focusSelection
)

// concern separates notices so a poll error never hides a suggestion error.
type concern int

const (
	concernSuggest concern = iota
	concernPoll
	numConcerns
)

type notice struct {
	text string
	seq  int
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the controllers. It receives state via messages.
type App struct {
	actions   Actions
	log       *otel.Logger
	ring      *otel.RingBuffer
	currency  string
	noticeTTL time.Duration
	now       func() time.Time

	input      textinput.Model
	suggestion string

	items  []string
	cursor int
	focus  focus

	results   []combo.Combination
	memo      *coverage.Memo
	page      int
	searching bool
	mirror    string

	notices   [numConcerns]notice
	noticeSeq int

	debugVisible bool
	width        int
	height       int
	ready        bool
}

// NewApp creates an App with default settings.
func NewApp(actions Actions) App {
	return NewAppWithConfig(AppConfig{Actions: actions})
}

// NewAppWithConfig creates an App.
func NewAppWithConfig(cfg AppConfig) App {
	ti := textinput.New()
	ti.Placeholder = "Type a team or tournament..."
	ti.Prompt = "> "
	ti.CharLimit = 128
	ti.ShowSuggestions = true
	ti.Focus()

	if cfg.Currency == "" {
		cfg.Currency = "€"
	}
	if cfg.NoticeTTL <= 0 {
		cfg.NoticeTTL = defaultNoticeTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return App{
		actions:      cfg.Actions,
		log:          cfg.Obs.Logger,
		ring:         cfg.Obs.Ring,
		currency:     cfg.Currency,
		noticeTTL:    cfg.NoticeTTL,
		now:          cfg.Now,
		input:        ti,
		debugVisible: cfg.ShowDebug,
	}
}

// Init starts the cursor blink.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(10, msg.Width-8)
		a.ready = true
		return a, nil

	case SuggestionUpdated:
		if msg.Input != a.input.Value() {
			return a, nil
		}
		if msg.Err != nil {
			a.setSuggestion("")
			return a, a.raise(concernSuggest, combo.UserMessage(msg.Err))
		}
		a.setSuggestion(msg.Suggestion)
		return a, nil

	case SelectionChanged:
		a.items = msg.Items
		if msg.SearchCancelled {
			a.searching = false
		}
		if a.cursor >= len(a.items) {
			a.cursor = max(0, len(a.items)-1)
		}
		if len(a.items) == 0 {
			a.focus = focusInput
			a.input.Focus()
		}
		return a, nil

	case MirrorAcked:
		switch {
		case msg.Err != nil:
			a.mirror = "mirror failed"
		default:
			a.mirror = strings.ToLower(string(msg.Status))
		}
		return a, nil

	case PollFinished:
		if errors.Is(msg.Err, context.Canceled) {
			return a, nil
		}
		a.searching = false
		if msg.Err != nil {
			return a, a.raise(concernPoll, combo.UserMessage(msg.Err))
		}
		a.results = msg.Combinations
		a.memo = coverage.NewMemo(msg.Combinations)
		a.page = 0
		a.notices[concernPoll] = notice{}
		return a, nil

	case noticeExpired:
		if a.notices[msg.concern].seq == msg.seq {
			a.notices[msg.concern] = notice{}
		}
		return a, nil
	}

	if a.focus == focusInput {
		return a.updateInput(msg)
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+g":
		a.debugVisible = !a.debugVisible
		return a, nil
	case "esc":
		a.notices = [numConcerns]notice{}
		return a, nil
	case "ctrl+s":
		return a, a.search()
	case "pgdown", "ctrl+right":
		if a.page < len(a.results)-1 {
			a.page++
		}
		return a, nil
	case "pgup", "ctrl+left":
		if a.page > 0 {
			a.page--
		}
		return a, nil
	case "shift+tab":
		return a.toggleFocus(), nil
	}

	if a.focus == focusSelection {
		return a.handleSelectionKey(msg)
	}

	if msg.String() == "enter" {
		raw := a.input.Value()
		if strings.TrimSpace(raw) == "" {
			return a, a.search()
		}
		var cmd tea.Cmd
		if a.actions.Add != nil {
			cmd = a.actions.Add(raw, a.suggestion)
		}
		a.input.Reset()
		a.setSuggestion("")
		if a.actions.SetInput != nil {
			a.actions.SetInput("")
		}
		return a, cmd
	}
	return a.updateInput(msg)
}

func (a App) handleSelectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down", "right":
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
	case "k", "up", "left":
		if a.cursor > 0 {
			a.cursor--
		}
	case "x", "delete", "backspace":
		if a.cursor < len(a.items) && a.actions.Remove != nil {
			return a, a.actions.Remove(a.items[a.cursor])
		}
	case "enter", "s":
		return a, a.search()
	case "i", "/":
		return a.toggleFocus(), nil
	}
	return a, nil
}

// updateInput forwards msg to the text input and reports value changes.
func (a App) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before {
		a.setSuggestion("")
		if a.actions.SetInput != nil {
			a.actions.SetInput(after)
		}
	}
	return a, cmd
}

func (a App) toggleFocus() App {
	if a.focus == focusInput && len(a.items) > 0 {
		a.focus = focusSelection
		a.input.Blur()
		return a
	}
	a.focus = focusInput
	a.input.Focus()
	return a
}

func (a *App) setSuggestion(s string) {
	a.suggestion = s
	if s == "" {
		a.input.SetSuggestions(nil)
		return
	}
	a.input.SetSuggestions([]string{s})
}

func (a *App) search() tea.Cmd {
	if a.actions.Search == nil {
		return nil
	}
	a.searching = true
	return a.actions.Search()
}

// raise shows text for concern c, replacing any prior notice and restarting
// its expiry.
func (a *App) raise(c concern, text string) tea.Cmd {
	a.noticeSeq++
	seq := a.noticeSeq
	a.notices[c] = notice{text: text, seq: seq}
	a.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindNotice, Comp: "ui", Msg: text})
	return tea.Tick(a.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpired{concern: c, seq: seq}
	})
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.debugVisible {
		overlay := debugOverlay(a.ring, a.width, a.height-1, a.now())
		return lipgloss.JoinVertical(lipgloss.Left, overlay, debugStatusBar(a.width))
	}

	var sections []string
	sections = append(sections, Title.Render("bestcombo"))
	sections = append(sections, InputBox.Width(max(20, a.width-4)).Render(a.input.View()))
	sections = append(sections, a.renderSelection())
	for _, n := range a.notices {
		if n.text != "" {
			sections = append(sections, ErrorStyle.Render(n.text+" (esc to dismiss)"))
		}
	}
	sections = append(sections, a.renderResults())
	sections = append(sections, a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) renderSelection() string {
	if len(a.items) == 0 {
		return HelpStyle.Render("Nothing selected. Type a name and press enter.")
	}
	chips := make([]string, len(a.items))
	for i, item := range a.items {
		if a.focus == focusSelection && i == a.cursor {
			chips[i] = ActiveChip.Render(item)
		} else {
			chips[i] = Chip.Render(item)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (a App) renderResults() string {
	if a.searching && len(a.results) == 0 {
		return HelpStyle.Render("Searching...")
	}
	if len(a.results) == 0 {
		return ""
	}
	m, _ := a.memo.Matrix(a.page)
	head := HelpStyle.Render(fmt.Sprintf("Results %d/%d", a.page+1, len(a.results)))
	return head + "\n" + RenderCombination(a.results[a.page], m, a.page, a.currency)
}

func (a App) renderStatusBar() string {
	var left string
	switch {
	case a.searching:
		left = " Searching... "
	default:
		left = fmt.Sprintf(" %d selected ", len(a.items))
	}
	if a.mirror != "" {
		left += StatusBarText.Render("[" + a.mirror + "]")
	}

	keys := []string{
		StatusBarKey.Render("enter") + StatusBarText.Render(":add/search"),
		StatusBarKey.Render("tab") + StatusBarText.Render(":complete"),
		StatusBarKey.Render("shift+tab") + StatusBarText.Render(":selection"),
		StatusBarKey.Render("pgup/pgdn") + StatusBarText.Render(":results"),
		StatusBarKey.Render("ctrl+g") + StatusBarText.Render(":debug"),
		StatusBarKey.Render("ctrl+c") + StatusBarText.Render(":quit"),
	}
	keyHints := strings.Join(keys, " ")

	padding := a.width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(a.width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

// Items returns the current selection (for testing).
func (a App) Items() []string {
	return a.items
}

// Suggestion returns the suggestion shown for the current input (for testing).
func (a App) Suggestion() string {
	return a.suggestion
}

// Results returns the displayed combinations (for testing).
func (a App) Results() []combo.Combination {
	return a.results
}
