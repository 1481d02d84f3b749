// docuctl is the headless companion to docuchat: index PDFs, list
// knowledge bases, and ask one-off questions without the chat interface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"docuchat/internal/config"
	"docuchat/internal/document"
	"docuchat/internal/logging"
	"docuchat/internal/ollama"
	"docuchat/internal/rag"
	"docuchat/internal/registry"
)

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed, color.Bold)
	infoColor = color.New(color.FgCyan)
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  docuctl index <file.pdf>        index a PDF into a new knowledge base
  docuctl list                    list knowledge bases
  docuctl ask <kb> <question>     ask a question against a knowledge base

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(fmt.Errorf("failed to load config: %w", err))
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		fatal(err)
	}
	if err := logging.InitLogger(filepath.Join(dataDir, "logs")); err == nil {
		defer logging.Close()
	}

	kbRoot, err := cfg.KBRoot()
	if err != nil {
		fatal(err)
	}

	reg := registry.New(kbRoot)
	client := ollama.NewClient(cfg.OllamaURL)
	embedder := rag.NewOllamaEmbedder(client, cfg.EmbedModel)
	generator := rag.NewOllamaGenerator(client)
	indexer := rag.NewIndexer(reg, document.NewLoader(), document.NewChunker(), embedder)
	compiler := rag.NewStoreCompiler(reg, embedder, generator)

	session := rag.NewSession(reg, compiler, indexer, chainConfig(cfg), func(text string) {
		infoColor.Fprintln(os.Stderr, text)
	})
	defer session.Close()

	ctx := context.Background()

	switch args[0] {
	case "index":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		runIndex(ctx, session, args[1])
	case "list":
		runList(session)
	case "ask":
		if len(args) < 3 {
			usage()
			os.Exit(2)
		}
		runAsk(ctx, session, args[1], args[2])
	default:
		usage()
		os.Exit(2)
	}
}

func chainConfig(cfg *config.Config) rag.ChainConfig {
	return rag.ChainConfig{
		Model:         cfg.Chain.Model,
		Temperature:   cfg.Chain.Temperature,
		ContextWindow: cfg.Chain.ContextWindow,
		TopK:          cfg.Chain.TopK,
		MaxTokens:     cfg.Chain.MaxTokens,
	}.Clamp()
}

func runIndex(ctx context.Context, session *rag.Session, path string) {
	name, err := session.Index(ctx, path)
	if err != nil {
		if errors.Is(err, rag.ErrDuplicateKnowledgeBase) {
			fatal(fmt.Errorf("refusing to re-index: %w", err))
		}
		fatal(err)
	}
	okColor.Printf("indexed %s as %q\n", path, name)
}

func runList(session *rag.Session) {
	names, err := session.ListKnowledgeBases()
	if err != nil {
		fatal(err)
	}
	if len(names) == 0 {
		infoColor.Println("no knowledge bases yet; run: docuctl index <file.pdf>")
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func runAsk(ctx context.Context, session *rag.Session, kb, question string) {
	if _, err := session.Activate(ctx, kb); err != nil {
		fatal(err)
	}

	answer, err := session.Ask(ctx, question)
	if err != nil {
		fatal(err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		infoColor.Fprintf(os.Stderr, "(%d passages retrieved)\n", len(answer.Sources))
	}
}

func fatal(err error) {
	errColor.Fprintf(os.Stderr, "docuctl: %v\n", err)
	os.Exit(1)
}
