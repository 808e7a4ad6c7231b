package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/theme"
)

type focusArea int

const (
	focusName focusArea = iota
	focusNumber
	focusFilter
	focusList
)

// Options configures an AppModel.
type Options struct {
	Styles   theme.Styles
	ToastTTL time.Duration
	// Changes signals external edits of the stored contacts. Nil disables
	// live reloading.
	Changes <-chan struct{}
	Logger  *zap.Logger
}

// AppModel renders the phonebook: the add form, the filter and the list.
type AppModel struct {
	ctx     context.Context
	store   *contactbook.Store
	toasts  *ToastQueue
	changes <-chan struct{}
	logger  *zap.Logger

	state    contactbook.State
	active   []Toast
	toastTTL time.Duration
	styles   theme.Styles

	nameInput   textinput.Model
	numberInput textinput.Model
	filterInput textinput.Model
	spinner     spinner.Model
	focus       focusArea
	selected    int

	width  int
	height int
	err    error
}

// NewAppModel expects toasts to be the notifier the store was built with.
func NewAppModel(ctx context.Context, store *contactbook.Store, toasts *ToastQueue, opts Options) AppModel {
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = 3 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := AppModel{
		ctx:      ctx,
		store:    store,
		toasts:   toasts,
		changes:  opts.Changes,
		logger:   opts.Logger,
		state:    store.Snapshot(),
		toastTTL: opts.ToastTTL,
		styles:   opts.Styles,

		nameInput:   newInput(opts.Styles, "Enter name", nameCharLimit),
		numberInput: newInput(opts.Styles, "Enter number", numberCharLimit),
		filterInput: newInput(opts.Styles, "Search...", nameCharLimit),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(opts.Styles.Spinner),
		),
	}
	m.nameInput.Focus()
	return m
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		loadCmd(m.ctx, m.store),
		waitForChange(m.changes),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state.Status != contactbook.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.err = msg.err
		cmd := m.refresh()
		return m, cmd

	case storeChangedMsg:
		if msg.op == opAdd && !keepsFormInput(msg.err) {
			m.resetForm()
		}
		if msg.err != nil {
			m.logger.Debug("store operation failed", zap.Int("op", int(msg.op)), zap.Error(msg.err))
		}
		cmd := m.refresh()
		return m, cmd

	case externalChangeMsg:
		return m, tea.Batch(reloadCmd(m.ctx, m.store), waitForChange(m.changes))

	case reloadedMsg:
		m.err = msg.err
		if !msg.changed {
			return m, nil
		}
		cmd := m.refresh()
		return m, cmd

	case toastExpiredMsg:
		m.active = removeToast(m.active, msg.id)
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+l":
		if m.state.Status == contactbook.StatusEmpty {
			return m, defaultsCmd(m.ctx, m.store)
		}
		return m, nil

	case "tab":
		cmd := m.cycleFocus(1)
		return m, cmd

	case "shift+tab":
		cmd := m.cycleFocus(-1)
		return m, cmd

	case "esc":
		if m.filterInput.Value() != "" {
			m.filterInput.Reset()
			m.store.SetFilter("")
			m.state = m.store.Snapshot()
			m.clampSelection()
		}
		return m, nil
	}

	switch m.focus {
	case focusName, focusNumber:
		if msg.Type == tea.KeyEnter {
			return m, addCmd(m.ctx, m.store, m.nameInput.Value(), m.numberInput.Value())
		}

	case focusFilter:
		if msg.Type == tea.KeyEnter {
			cmd := m.setFocus(focusList)
			return m, cmd
		}

	case focusList:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "up", "k":
			m.moveSelection(-1)
		case "down", "j":
			m.moveSelection(1)
		case "d", "delete":
			if m.selected < len(m.state.Visible) {
				return m, removeCmd(m.ctx, m.store, m.state.Visible[m.selected].ID)
			}
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused text input.
func (m AppModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case focusNumber:
		m.numberInput, cmd = m.numberInput.Update(msg)
	case focusFilter:
		before := m.filterInput.Value()
		m.filterInput, cmd = m.filterInput.Update(msg)
		if after := m.filterInput.Value(); after != before {
			m.store.SetFilter(after)
			m.state = m.store.Snapshot()
			m.selected = 0
		}
	}
	return m, cmd
}

// refresh copies the store state into the model and turns pending
// notifications into toasts.
func (m *AppModel) refresh() tea.Cmd {
	m.state = m.store.Snapshot()
	if m.state.Filter != m.filterInput.Value() {
		m.filterInput.SetValue(m.state.Filter)
	}
	m.clampSelection()

	var cmds []tea.Cmd
	if m.state.Status != contactbook.StatusReady && (m.focus == focusFilter || m.focus == focusList) {
		cmds = append(cmds, m.setFocus(focusName))
	}

	for _, toast := range m.toasts.Drain() {
		m.active = append(m.active, toast)
		cmds = append(cmds, expireToast(toast.ID, m.toastTTL))
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) focusOrder() []focusArea {
	if m.state.Status == contactbook.StatusReady {
		return []focusArea{focusName, focusNumber, focusFilter, focusList}
	}
	return []focusArea{focusName, focusNumber}
}

func (m *AppModel) cycleFocus(delta int) tea.Cmd {
	order := m.focusOrder()
	idx := 0
	for i, area := range order {
		if area == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	return m.setFocus(order[idx])
}

func (m *AppModel) setFocus(area focusArea) tea.Cmd {
	m.focus = area
	m.nameInput.Blur()
	m.numberInput.Blur()
	m.filterInput.Blur()

	switch area {
	case focusName:
		return m.nameInput.Focus()
	case focusNumber:
		return m.numberInput.Focus()
	case focusFilter:
		return m.filterInput.Focus()
	default:
		m.clampSelection()
		return nil
	}
}

func (m AppModel) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("Phonebook"),
		m.renderForm(),
		m.styles.Section.Render("Contacts"),
		m.renderContacts(),
	)

	if toasts := renderToasts(m.styles, m.active); toasts != "" {
		content += "\n\n" + toasts
	}

	if m.err != nil {
		content += "\n" + m.styles.FormatError.Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}

	content += "\n" + m.styles.Help.Render(m.helpText())

	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m AppModel) helpText() string {
	switch m.focus {
	case focusList:
		return "↑/↓ select • d delete • tab next • esc clear filter • q quit"
	case focusFilter:
		return "type to filter • enter list • tab next • esc clear filter • ctrl+c quit"
	default:
		if m.state.Status == contactbook.StatusEmpty {
			return "enter add • tab next • ctrl+l default contacts • ctrl+c quit"
		}
		return "enter add • tab next • ctrl+c quit"
	}
}

// keepsFormInput reports whether a failed add left nothing in the list, so the
// user can correct and resubmit what they typed.
func keepsFormInput(err error) bool {
	return errors.Is(err, contactbook.ErrDuplicateName) ||
		errors.Is(err, contactbook.ErrNameRequired) ||
		errors.Is(err, contactbook.ErrNotLoaded)
}
