package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"docuchat/internal/logging"
	"docuchat/internal/registry"
)

// Notify receives fire-and-forget status text: progress messages,
// stripped reasoning segments, errors. Display only, never required for
// correctness.
type Notify func(text string)

// Session tracks which knowledge base is active and the chain compiled
// for it. A session starts with no active knowledge base; activation and
// configuration changes are the only transitions. Either no knowledge
// base is active and there is no chain, or both are set.
//
// Long-running operations (activate, index, ask) run one at a time per
// session; the Async variants reject overlap with ErrBusy.
type Session struct {
	mu       sync.Mutex
	inflight bool

	registry *registry.Registry
	compiler Compiler
	indexer  *Indexer
	notify   Notify

	cfg      ChainConfig
	activeKB string
	chain    *Chain
}

func NewSession(reg *registry.Registry, compiler Compiler, indexer *Indexer, cfg ChainConfig, notify Notify) *Session {
	if notify == nil {
		notify = func(string) {}
	}
	return &Session{
		registry: reg,
		compiler: compiler,
		indexer:  indexer,
		cfg:      cfg.Clamp(),
		notify:   notify,
	}
}

// ActiveKnowledgeBase returns the name of the active knowledge base, or
// empty when none is active.
func (s *Session) ActiveKnowledgeBase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKB
}

// Config returns the current chain configuration.
func (s *Session) Config() ChainConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// ListKnowledgeBases enumerates the knowledge bases known to the registry.
func (s *Session) ListKnowledgeBases() ([]string, error) {
	return s.registry.ListAll()
}

// Activate binds the session to the named knowledge base, compiling a
// chain for it. Re-activating the active knowledge base is a no-op.
// On any failure the session keeps its prior state.
func (s *Session) Activate(ctx context.Context, name string) (string, error) {
	stored := registry.Normalize(name)

	s.mu.Lock()
	if s.activeKB == stored && s.chain != nil {
		s.mu.Unlock()
		return fmt.Sprintf("knowledge base %q is already active", stored), nil
	}
	cfg := s.cfg
	s.mu.Unlock()

	if !s.registry.Exists(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKnowledgeBase, stored)
	}

	chain, err := s.compiler.Compile(ctx, stored, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to activate %q: %w", stored, err)
	}

	s.mu.Lock()
	old := s.chain
	s.activeKB = stored
	s.chain = chain
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			logging.Error("failed to close previous chain: %v", err)
		}
	}

	logging.Info("activated knowledge base %q", stored)
	return fmt.Sprintf("knowledge base %q activated", stored), nil
}

// ApplyConfig merges the patch into the session configuration. With an
// active knowledge base the chain is rebound to the new parameters
// immediately, without reopening its collection; otherwise the new
// configuration simply applies to the next activation.
func (s *Session) ApplyConfig(ctx context.Context, patch ChainPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = s.cfg.Merge(patch)
	if s.chain != nil {
		s.chain = s.chain.WithConfig(s.cfg)
	}
	logging.Info("chain config now %+v", s.cfg)
	return nil
}

// Ask answers a question against the active knowledge base. With no
// active knowledge base it returns a guidance answer rather than failing
// the caller. Stripped reasoning goes to the notify channel only.
func (s *Session) Ask(ctx context.Context, question string) (Answer, error) {
	s.mu.Lock()
	chain := s.chain
	s.mu.Unlock()

	if chain == nil {
		return Answer{Text: "No knowledge base is active. Select a knowledge base first."}, nil
	}

	answer, err := chain.Ask(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	if answer.Thinking != "" {
		s.notify("Thoughts: " + answer.Thinking)
	}

	return answer, nil
}

// Index builds a knowledge base from filePath. The active knowledge base
// does not change.
func (s *Session) Index(ctx context.Context, filePath string) (string, error) {
	s.notify("Indexing " + filePath + "...")
	name, err := s.indexer.Index(ctx, filePath)
	if err != nil {
		return "", err
	}
	s.notify(fmt.Sprintf("Indexed %q at %s", name, s.registry.PathFor(name)))
	return name, nil
}

// AskResult delivers an asynchronous answer.
type AskResult struct {
	Answer Answer
	Err    error
}

// StatusResult delivers an asynchronous completion message.
type StatusResult struct {
	Message string
	Err     error
}

// AskAsync runs Ask off the caller's thread and delivers the result on a
// one-shot channel. Returns ErrBusy if another operation is in flight.
func (s *Session) AskAsync(ctx context.Context, question string) (<-chan AskResult, error) {
	if !s.acquire() {
		return nil, ErrBusy
	}
	ch := make(chan AskResult, 1)
	go func() {
		defer s.release()
		answer, err := s.Ask(ctx, question)
		ch <- AskResult{Answer: answer, Err: err}
		close(ch)
	}()
	return ch, nil
}

// ActivateAsync runs Activate off the caller's thread.
func (s *Session) ActivateAsync(ctx context.Context, name string) (<-chan StatusResult, error) {
	if !s.acquire() {
		return nil, ErrBusy
	}
	ch := make(chan StatusResult, 1)
	go func() {
		defer s.release()
		msg, err := s.Activate(ctx, name)
		ch <- StatusResult{Message: msg, Err: err}
		close(ch)
	}()
	return ch, nil
}

// IndexAsync runs Index off the caller's thread.
func (s *Session) IndexAsync(ctx context.Context, filePath string) (<-chan StatusResult, error) {
	if !s.acquire() {
		return nil, ErrBusy
	}
	ch := make(chan StatusResult, 1)
	go func() {
		defer s.release()
		name, err := s.Index(ctx, filePath)
		msg := ""
		if err == nil {
			msg = fmt.Sprintf("Indexed %q", name)
		}
		ch <- StatusResult{Message: msg, Err: err}
		close(ch)
	}()
	return ch, nil
}

// Busy reports whether a long-running operation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Close tears down the session's chain, if any.
func (s *Session) Close() error {
	s.mu.Lock()
	chain := s.chain
	s.chain = nil
	s.activeKB = ""
	s.mu.Unlock()

	if chain != nil {
		return chain.Close()
	}
	return nil
}

func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight {
		return false
	}
	s.inflight = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.inflight = false
	s.mu.Unlock()
}

// IsBusyErr reports whether err is the session-busy condition, which
// callers typically render as "try again when the current operation
// finishes" rather than as a failure.
func IsBusyErr(err error) bool {
	return errors.Is(err, ErrBusy)
}
