package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNameFor(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		expected string
	}{
		{
			name:     "Simple PDF",
			filePath: "/home/user/report.pdf",
			expected: "report",
		},
		{
			name:     "Name with spaces",
			filePath: "/tmp/My Doc.pdf",
			expected: "My Doc",
		},
		{
			name:     "No extension",
			filePath: "/tmp/notes",
			expected: "notes",
		},
		{
			name:     "Multiple dots",
			filePath: "paper.v2.pdf",
			expected: "paper.v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NameFor(tt.filePath); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Mixed case with spaces",
			input:    "My Doc",
			expected: "my_doc",
		},
		{
			name:     "Surrounding whitespace",
			input:    "  Report  ",
			expected: "report",
		},
		{
			name:     "Already normalized",
			input:    "my_doc",
			expected: "my_doc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
			// Normalizing twice must not change the result
			if again := Normalize(Normalize(tt.input)); again != tt.expected {
				t.Errorf("Expected idempotent result %q, got %q", tt.expected, again)
			}
		})
	}
}

func TestListAllMissingRoot(t *testing.T) {
	reg := New(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := reg.ListAll()
	if err != nil {
		t.Fatalf("Expected no error for missing root, got %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected empty list, got %v", names)
	}
}

func TestListAllSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	reg := New(root)

	for _, dir := range []string{"zebra", "apple", ".staging-half_done"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Plain files under the root are not knowledge bases either
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	names, err := reg.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(names) != 2 || names[0] != "apple" || names[1] != "zebra" {
		t.Errorf("Expected [apple zebra], got %v", names)
	}
}

func TestCreateIdempotent(t *testing.T) {
	reg := New(t.TempDir())

	first, err := reg.Create("My Doc")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := reg.Create("My Doc")
	if err != nil {
		t.Fatalf("Second create failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected same path on repeat create, got %q and %q", first, second)
	}
	if filepath.Base(first) != "my_doc" {
		t.Errorf("Expected normalized directory name my_doc, got %q", filepath.Base(first))
	}
	if !reg.Exists("My Doc") {
		t.Error("Expected Exists to report the created knowledge base")
	}
}

func TestStagePublish(t *testing.T) {
	reg := New(t.TempDir())

	stage, err := reg.Stage("My Doc")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stage, "data"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// Staging directories stay invisible until published
	if reg.Exists("My Doc") {
		t.Error("Expected knowledge base to be absent before publish")
	}
	names, err := reg.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("Expected staging directory to be hidden, got %v", names)
	}

	final, err := reg.Publish("My Doc")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !reg.Exists("My Doc") {
		t.Error("Expected knowledge base to exist after publish")
	}
	if _, err := os.Stat(filepath.Join(final, "data")); err != nil {
		t.Errorf("Expected staged contents under final path: %v", err)
	}
	if _, err := os.Stat(stage); !os.IsNotExist(err) {
		t.Error("Expected staging directory to be gone after publish")
	}
}

func TestPublishRefusesExisting(t *testing.T) {
	reg := New(t.TempDir())

	if _, err := reg.Create("My Doc"); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Stage("My Doc"); err != nil {
		t.Fatal(err)
	}

	if _, err := reg.Publish("My Doc"); err == nil {
		t.Error("Expected publish over an existing knowledge base to fail")
	}
}

func TestDiscardStage(t *testing.T) {
	reg := New(t.TempDir())

	stage, err := reg.Stage("My Doc")
	if err != nil {
		t.Fatal(err)
	}
	reg.DiscardStage("My Doc")
	if _, err := os.Stat(stage); !os.IsNotExist(err) {
		t.Error("Expected staging directory to be removed")
	}
}
