package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSummarizeDefaultBoard(t *testing.T) {
	summary, err := summarize("")
	if err != nil {
		t.Fatalf("summarize(\"\") failed: %v", err)
	}

	for _, want := range []string{
		"Name: pentagame",
		"Vertices: 100",
		"Directed edges: 220",
		"Fully connected",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestSummarizeDisconnectedLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "split.json")
	content := `{
		"name": "split",
		"base_vertices": [0, 1, 2, 3],
		"edges": [[{"peer": 1, "length": 2}], [], [{"peer": 3, "length": 1}], []]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	summary, err := summarize(path)
	if err != nil {
		t.Fatalf("summarize() failed: %v", err)
	}
	if !strings.Contains(summary, "WARNING") {
		t.Errorf("expected unreachability warning, got:\n%s", summary)
	}
}

func TestSummarizeRejectsBrokenLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	content := `{
		"name": "broken",
		"base_vertices": [0],
		"edges": [[{"peer": 5, "length": 3}]]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, err := summarize(path); err == nil {
		t.Error("summarize() accepted a layout with an undeclared peer")
	}
}
