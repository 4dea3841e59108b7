// Package tui is the interactive shopping list. It renders the controller's
// view and turns key presses into controller operations; it holds no state
// that matters for data integrity.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/shoplist/internal/model"
	"github.com/Makepad-fr/shoplist/internal/shopping"
)

// Controller is the part of shopping.List the TUI drives.
type Controller interface {
	Load(ctx context.Context) ([]model.Item, error)
	Add(ctx context.Context, name string) (model.Item, error)
	Toggle(ctx context.Context, t shopping.Target) (model.Item, error)
	Edit(ctx context.Context, t shopping.Target, name string) (model.Item, error)
	Delete(ctx context.Context, t shopping.Target) (model.Item, error)
	Subscribe() (<-chan []model.Item, func())
}

// viewMsg carries a fresh view published by the controller.
type viewMsg []model.Item

// opDoneMsg reports the outcome of one controller operation.
type opDoneMsg struct {
	verb string
	item model.Item
	err  error
}

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) Title() string       { return i.Name }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Name }

// itemDelegate renders each item on a single line.
type itemDelegate struct {
	st styles
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box, text := d.st.muted.Render(d.st.boxPending), it.Name
	if it.IsBought {
		box, text = d.st.success.Render(d.st.boxBought), d.st.bought.Render(it.Name)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = d.st.selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleKey = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "bought"))
	deleteKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	reloadKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
)

// Model is the bubbletea model for the shopping list screen.
type Model struct {
	ctx   context.Context
	ctrl  Controller
	views <-chan []model.Item
	stop  func()
	st    styles

	list list.Model
	ti   textinput.Model // shared by add & edit

	adding   bool
	editing  bool
	editID   int64
	inputErr string
	status   string

	width, height int
}

// New builds the model and subscribes to the controller's view.
// Call Close once the program has exited.
func New(ctx context.Context, ctrl Controller) Model {
	st := currentStyles()
	l := list.New(nil, itemDelegate{st: st}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = st.title
	l.Styles.HelpStyle = st.help
	l.Styles.PaginationStyle = st.help
	l.SetStatusBarItemName("item", "items")
	l.Title = header(st, nil)

	extra := func() []key.Binding {
		return []key.Binding{toggleKey, addKey, editKey, deleteKey, reloadKey}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	views, stop := ctrl.Subscribe()
	return Model{
		ctx:    ctx,
		ctrl:   ctrl,
		views:  views,
		stop:   stop,
		st:     st,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,
	}
}

// Close drops the view subscription.
func (m Model) Close() {
	if m.stop != nil {
		m.stop()
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, ctrl Controller) error {
	m := New(ctx, ctrl)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run("loaded", func(ctx context.Context) (model.Item, error) {
		_, err := m.ctrl.Load(ctx)
		return model.Item{}, err
	}), waitForView(m.views))
}

// run wraps one controller call as a background unit of work.
func (m Model) run(verb string, op func(ctx context.Context) (model.Item, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		it, err := op(ctx)
		return opDoneMsg{verb: verb, item: it, err: err}
	}
}

func waitForView(ch <-chan []model.Item) tea.Cmd {
	return func() tea.Msg {
		items, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(items)
	}
}

func (m Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.Item, true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case viewMsg:
		m.list.Title = header(m.st, msg)
		out := make([]list.Item, len(msg))
		for i, it := range msg {
			out[i] = listItem{it}
		}
		cmd := m.list.SetItems(out)
		return m, tea.Batch(cmd, waitForView(m.views))

	case opDoneMsg:
		if msg.err != nil {
			m.status = m.st.err.Render("✖ " + msg.err.Error())
		} else if msg.verb != "loaded" {
			m.status = m.st.success.Render(m.st.symBought + " " + msg.verb)
		}
		return m, nil
	}

	if m.adding || m.editing {
		return m.updateInput(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case k.String() == "q" || k.String() == "esc" || k.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(k, toggleKey):
			it, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, m.run("toggled", func(ctx context.Context) (model.Item, error) {
				return m.ctrl.Toggle(ctx, shopping.ByID(it.ID))
			})
		case key.Matches(k, deleteKey):
			it, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, m.run("deleted", func(ctx context.Context) (model.Item, error) {
				return m.ctrl.Delete(ctx, shopping.ByID(it.ID))
			})
		case key.Matches(k, reloadKey):
			return m, m.run("reloaded", func(ctx context.Context) (model.Item, error) {
				_, err := m.ctrl.Load(ctx)
				return model.Item{}, err
			})
		case key.Matches(k, addKey):
			m.adding = true
			m.inputErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "New item name..."
			m.resize()
			return m, m.ti.Focus()
		case key.Matches(k, editKey):
			it, ok := m.selected()
			if !ok {
				return m, nil
			}
			m.editing = true
			m.editID = it.ID
			m.inputErr = ""
			m.ti.SetValue(it.Name)
			m.ti.CursorEnd()
			m.ti.Placeholder = "Edit item name..."
			m.resize()
			return m, m.ti.Focus()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateInput handles keys while the inline add/edit field is open.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			name := strings.TrimSpace(m.ti.Value())
			if name == "" {
				m.inputErr = "Name cannot be empty"
				return m, nil
			}
			var cmd tea.Cmd
			if m.adding {
				cmd = m.run("added", func(ctx context.Context) (model.Item, error) {
					return m.ctrl.Add(ctx, name)
				})
			} else {
				id := m.editID
				cmd = m.run("renamed", func(ctx context.Context) (model.Item, error) {
					return m.ctrl.Edit(ctx, shopping.ByID(id), name)
				})
			}
			m.closeInput()
			return m, cmd
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding, m.editing = false, false
	m.editID = 0
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) resize() {
	h := m.height - 5
	if m.adding || m.editing {
		h -= 4
	}
	if h < 1 {
		h = 1
	}
	w := m.width - 4
	if w < 10 {
		w = 10
	}
	m.list.SetSize(w, h)
}

func (m Model) View() string {
	content := m.list.View()
	if m.adding || m.editing {
		title := "Add item"
		if m.editing {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += "  " + m.st.err.Render(m.inputErr)
		}
		content += "\n" + m.st.frame.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		content += "\n" + m.status
	}
	return m.st.frame.Render(content)
}

// header is the list title with live counts.
func header(st styles, items []model.Item) string {
	var bought int
	for _, it := range items {
		if it.IsBought {
			bought++
		}
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		st.title.Render("Shopping list"),
		st.success.Render(st.symBought), bought,
		st.pending.Render(st.symPending), len(items)-bought,
		st.accent.Render("Total"), len(items),
	)
}
