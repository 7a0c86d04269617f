package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/config"
	"simpletasks/pkg/keymaps"
	"simpletasks/pkg/tasks"
)

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	CategoriesMode
	AddCategoryMode
	DetailMode
	HelpViewMode
)

// Model represents the application state
type Model struct {
	table         table.Model
	items         []tasks.Task
	backend       backend.Backend
	width, height int

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap
	help   help.Model

	// Form state
	mode          InputMode
	titleInput    textinput.Model
	descInput     textinput.Model
	categoryInput textinput.Model
	nameInput     textinput.Model
	colorInput    textinput.Model
	activeInput   int

	// Edit/delete state
	editingItem     *tasks.Task
	editingCategory *tasks.Category
	selectedID      string
	catCursor       int

	// Status line
	spinner   spinner.Model
	notice    string
	noticeErr bool
	noticeSeq int

	// ticks enables the spinner and notice timers. Tests turn it off so
	// commands never sleep.
	ticks bool
}

// NewModel creates a new UI model over a backend
func NewModel(b backend.Backend, cfg config.Config, styles config.Styles) Model {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Task", Width: 48},
		{Title: "Category", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	// Set table styles using the loaded styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.BorderColor)).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.AccentColor))

	m := Model{
		table:         t,
		backend:       b,
		config:        cfg,
		styles:        styles,
		keyMap:        keymaps.BuildKeyMap(cfg.KeyMap),
		help:          help.New(),
		mode:          NormalMode,
		titleInput:    newInput("Title", 40),
		descInput:     newInput("Description", 40),
		categoryInput: newInput("Category (blank for General)", 40),
		nameInput:     newInput("Category name", 30),
		colorInput:    newInput("Color, e.g. #84cc16 (optional)", 30),
		spinner:       sp,
		ticks:         true,
	}
	m.refresh()
	return m
}

func newInput(placeholder string, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = width
	return in
}

// Init loads the backend's data (required by Bubble Tea Model interface)
func (m Model) Init() tea.Cmd {
	load := m.run("", m.backend.Load)
	if !m.ticks {
		return load
	}
	return tea.Batch(load, m.spinner.Tick)
}

// resetInputs clears all form inputs
func (m *Model) resetInputs() {
	for _, in := range []*textinput.Model{&m.titleInput, &m.descInput, &m.categoryInput, &m.nameInput, &m.colorInput} {
		in.Reset()
		in.Blur()
	}
	m.activeInput = 0
	m.focusInput()
}

// formInputs returns the inputs of the active form in tab order.
func (m *Model) formInputs() []*textinput.Model {
	if m.mode == AddCategoryMode {
		return []*textinput.Model{&m.nameInput, &m.colorInput}
	}
	return []*textinput.Model{&m.titleInput, &m.descInput, &m.categoryInput}
}

func (m *Model) focusInput() {
	for i, in := range m.formInputs() {
		if i == m.activeInput {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}
