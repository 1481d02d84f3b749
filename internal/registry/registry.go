// Package registry enumerates, creates, and locates named knowledge bases
// on disk. Each knowledge base is one subdirectory of the registry root;
// the directory contents belong to the vector store.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const stagePrefix = ".staging-"

type Registry struct {
	root string
}

func New(root string) *Registry {
	return &Registry{root: root}
}

// Root returns the directory that holds all knowledge bases.
func (r *Registry) Root() string {
	return r.root
}

// NameFor derives the display name for a source file: the base name with
// the extension stripped. Normalization is applied separately, at storage
// time, so display and storage names may differ.
func NameFor(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Normalize maps a display name onto its storage name: trimmed,
// lowercased, spaces replaced with underscores.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// PathFor computes the storage path for a name without touching disk.
func (r *Registry) PathFor(name string) string {
	return filepath.Join(r.root, Normalize(name))
}

// Exists reports whether a knowledge base directory is present for name.
func (r *Registry) Exists(name string) bool {
	info, err := os.Stat(r.PathFor(name))
	return err == nil && info.IsDir()
}

// Create makes the knowledge base directory if absent and returns its
// path. Idempotent: an existing directory is returned as is.
func (r *Registry) Create(name string) (string, error) {
	path := r.PathFor(name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create knowledge base directory: %w", err)
	}
	return path, nil
}

// ListAll enumerates the knowledge base names under the root, sorted. A
// missing root yields an empty list, not an error.
func (r *Registry) ListAll() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read registry root: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		// Staging and other dot-directories are not knowledge bases
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Stage prepares a fresh staging directory for name. Indexing writes the
// collection there and publishes it atomically, so a failed index never
// leaves a half-written knowledge base under its real name.
func (r *Registry) Stage(name string) (string, error) {
	stage := filepath.Join(r.root, stagePrefix+Normalize(name))
	if err := os.RemoveAll(stage); err != nil {
		return "", fmt.Errorf("failed to clear stale staging directory: %w", err)
	}
	if err := os.MkdirAll(stage, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return stage, nil
}

// Publish renames the staging directory into place as the knowledge base
// for name. Fails if the final directory already exists.
func (r *Registry) Publish(name string) (string, error) {
	stage := filepath.Join(r.root, stagePrefix+Normalize(name))
	final := r.PathFor(name)

	if _, err := os.Stat(final); err == nil {
		return "", fmt.Errorf("knowledge base %q already exists at %s", Normalize(name), final)
	}

	if err := os.Rename(stage, final); err != nil {
		return "", fmt.Errorf("failed to publish knowledge base: %w", err)
	}
	return final, nil
}

// DiscardStage removes the staging directory for name, if any.
func (r *Registry) DiscardStage(name string) {
	_ = os.RemoveAll(filepath.Join(r.root, stagePrefix+Normalize(name)))
}
