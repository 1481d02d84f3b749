package ui

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerModel wraps a file picker restricted to PDFs.
type PickerModel struct {
	picker filepicker.Model
	width  int
	height int
}

// PDFPicked is sent when the user selects a PDF to index.
type PDFPicked struct {
	Path string
}

// PickerCancelled is sent when the user backs out without selecting.
type PickerCancelled struct{}

func NewPickerModel(width, height int) PickerModel {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf"}
	fp.CurrentDirectory, _ = os.UserHomeDir()
	fp.Height = height - 4

	return PickerModel{
		picker: fp,
		width:  width,
		height: height,
	}
}

func (m PickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.Height = msg.Height - 4

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, func() tea.Msg {
				return PickerCancelled{}
			}
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, func() tea.Msg {
			return PDFPicked{Path: path}
		}
	}

	return m, cmd
}

func (m PickerModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Select a PDF to index"),
		m.picker.View(),
		helpStyle.Render("enter: select • esc: back"),
	)
}
