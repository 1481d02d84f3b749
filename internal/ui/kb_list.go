package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// KBListModel shows the knowledge bases known to the registry and lets
// the user activate one or start indexing a new PDF.
type KBListModel struct {
	list   list.Model
	active string
	width  int
	height int
}

type kbItem struct {
	name   string
	active bool
}

func (i kbItem) Title() string {
	if i.active {
		return i.name + " (active)"
	}
	return i.name
}
func (i kbItem) Description() string { return "" }
func (i kbItem) FilterValue() string { return i.name }

// KBChosen is sent when the user picks a knowledge base to activate.
type KBChosen struct {
	Name string
}

// OpenPicker is sent when the user wants to index a new PDF.
type OpenPicker struct{}

func NewKBListModel(names []string, active string, width, height int) KBListModel {
	m := KBListModel{
		active: active,
		width:  width,
		height: height,
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New(kbItems(names, active), delegate, width, height-2)
	l.Title = "Knowledge Bases"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.KeyMap.Quit = key.NewBinding()
	l.KeyMap.ForceQuit = key.NewBinding()

	m.list = l
	return m
}

func kbItems(names []string, active string) []list.Item {
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = kbItem{name: name, active: name == active}
	}
	return items
}

func (m KBListModel) Init() tea.Cmd {
	return nil
}

func (m KBListModel) Update(msg tea.Msg) (KBListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			item := m.list.SelectedItem()
			if item == nil {
				return m, nil
			}
			name := item.(kbItem).name
			return m, func() tea.Msg {
				return KBChosen{Name: name}
			}

		case "ctrl+n":
			return m, func() tea.Msg {
				return OpenPicker{}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m KBListModel) View() string {
	help := "↑/↓: navigate • enter: activate • /: filter • ctrl+n: index new PDF • ctrl+c: quit"
	return lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		helpStyle.Render(help),
	)
}

// Refresh replaces the listed names, keeping the active marker current.
func (m *KBListModel) Refresh(names []string, active string) {
	m.active = active
	m.list.SetItems(kbItems(names, active))
}

// SetActive updates which entry carries the active marker.
func (m *KBListModel) SetActive(active string) {
	m.active = active
	items := m.list.Items()
	for i, it := range items {
		kb := it.(kbItem)
		kb.active = kb.name == active
		items[i] = kb
	}
	m.list.SetItems(items)
}

// StatusLine renders a one-line summary for the footer.
func (m KBListModel) StatusLine() string {
	if m.active == "" {
		return "no knowledge base active"
	}
	return fmt.Sprintf("active: %s", activeKBStyle.Render(m.active))
}
