// docuchat is a terminal app for chatting with PDF documents: index a
// PDF into a local knowledge base, pick one, and ask questions answered
// from its contents by a local model.
package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"docuchat/internal/config"
	"docuchat/internal/document"
	"docuchat/internal/logging"
	"docuchat/internal/ollama"
	"docuchat/internal/rag"
	"docuchat/internal/registry"
	"docuchat/internal/ui"
)

type appState int

const (
	stateKBList appState = iota
	statePicker
	stateChat
)

type model struct {
	state   appState
	session *rag.Session

	kbList ui.KBListModel
	picker ui.PickerModel
	chat   ui.ChatViewModel

	notifyCh <-chan string
	watchCh  <-chan struct{}

	width  int
	height int
	status string
}

type kbRootChangedMsg struct{}

type notifyMsg struct {
	text string
}

type activatedMsg struct {
	name   string
	status string
	err    error
}

type indexedMsg struct {
	status string
	err    error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if err := logging.InitLogger(filepath.Join(dataDir, "logs")); err != nil {
		log.Printf("Logging disabled: %v", err)
	}
	defer logging.Close()

	kbRoot, err := cfg.KBRoot()
	if err != nil {
		log.Fatalf("Failed to resolve knowledge base root: %v", err)
	}

	reg := registry.New(kbRoot)
	client := ollama.NewClient(cfg.OllamaURL)
	embedder := rag.NewOllamaEmbedder(client, cfg.EmbedModel)
	generator := rag.NewOllamaGenerator(client)
	indexer := rag.NewIndexer(reg, document.NewLoader(), document.NewChunker(), embedder)
	compiler := rag.NewStoreCompiler(reg, embedder, generator)

	// Fire-and-forget status channel; a full buffer just drops messages
	notifyCh := make(chan string, 16)
	session := rag.NewSession(reg, compiler, indexer, rag.ChainConfig{
		Model:         cfg.Chain.Model,
		Temperature:   cfg.Chain.Temperature,
		ContextWindow: cfg.Chain.ContextWindow,
		TopK:          cfg.Chain.TopK,
		MaxTokens:     cfg.Chain.MaxTokens,
	}, func(text string) {
		select {
		case notifyCh <- text:
		default:
		}
	})
	defer session.Close()

	watchCh, err := reg.Watch(context.Background())
	if err != nil {
		log.Fatalf("Failed to watch knowledge base root: %v", err)
	}

	names, err := session.ListKnowledgeBases()
	if err != nil {
		log.Fatalf("Failed to list knowledge bases: %v", err)
	}

	m := model{
		state:    stateKBList,
		session:  session,
		kbList:   ui.NewKBListModel(names, "", 80, 24),
		notifyCh: notifyCh,
		watchCh:  watchCh,
		width:    80,
		height:   24,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.kbList.Init(), m.waitForNotify(), m.waitForRootChange())
}

func (m model) waitForNotify() tea.Cmd {
	ch := m.notifyCh
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return nil
		}
		return notifyMsg{text: text}
	}
}

func (m model) waitForRootChange() tea.Cmd {
	ch := m.watchCh
	return func() tea.Msg {
		_, ok := <-ch
		if !ok {
			return nil
		}
		return kbRootChangedMsg{}
	}
}

func (m model) activateCmd(name string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ch, err := session.ActivateAsync(context.Background(), name)
		if err != nil {
			return activatedMsg{name: name, err: err}
		}
		res := <-ch
		return activatedMsg{name: name, status: res.Message, err: res.Err}
	}
}

func (m model) indexCmd(path string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ch, err := session.IndexAsync(context.Background(), path)
		if err != nil {
			return indexedMsg{err: err}
		}
		res := <-ch
		return indexedMsg{status: res.Message, err: res.Err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case notifyMsg:
		// Status text shows in the chat transcript when one is open
		if m.state == stateChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(ui.SysMsg{Text: msg.text})
			return m, tea.Batch(cmd, m.waitForNotify())
		}
		m.status = msg.text
		return m, m.waitForNotify()

	case kbRootChangedMsg:
		if names, err := m.session.ListKnowledgeBases(); err == nil {
			m.kbList.Refresh(names, m.session.ActiveKnowledgeBase())
		}
		return m, m.waitForRootChange()

	case ui.KBChosen:
		m.status = fmt.Sprintf("Activating %s...", msg.Name)
		return m, m.activateCmd(msg.Name)

	case activatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.status = msg.status
		active := m.session.ActiveKnowledgeBase()
		m.kbList.SetActive(active)
		m.state = stateChat
		m.chat = ui.NewChatViewModel(m.session, active, m.width, m.height)
		return m, m.chat.Init()

	case ui.OpenPicker:
		m.state = statePicker
		m.picker = ui.NewPickerModel(m.width, m.height)
		return m, m.picker.Init()

	case ui.PDFPicked:
		m.state = stateKBList
		m.status = fmt.Sprintf("Indexing %s...", msg.Path)
		return m, m.indexCmd(msg.Path)

	case ui.PickerCancelled:
		m.state = stateKBList
		return m, nil

	case indexedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		if names, err := m.session.ListKnowledgeBases(); err == nil {
			m.kbList.Refresh(names, m.session.ActiveKnowledgeBase())
		}
		return m, nil

	case ui.BackToList:
		m.state = stateKBList
		return m, nil
	}

	// Delegate to the current screen
	var cmd tea.Cmd
	switch m.state {
	case stateKBList:
		m.kbList, cmd = m.kbList.Update(msg)
	case statePicker:
		m.picker, cmd = m.picker.Update(msg)
	case stateChat:
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	switch m.state {
	case statePicker:
		return m.picker.View()
	case stateChat:
		return m.chat.View()
	default:
		view := m.kbList.View() + "\n" + m.kbList.StatusLine()
		if m.status != "" {
			view += "\n" + m.status
		}
		return view
	}
}
